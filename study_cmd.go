package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/lecternapp/lectern/internal/config"
	"github.com/lecternapp/lectern/internal/drive"
	"github.com/lecternapp/lectern/internal/gemini"
	"github.com/lecternapp/lectern/internal/history"
	"github.com/lecternapp/lectern/internal/study"
)

func newStudyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "study [audio-file]",
		Short: "Generate study notes and a quiz from an audio recording",
		Long: "Sends the recording to Gemini for study notes and a quiz. When Drive is\n" +
			"configured the recording is archived there as well; the upload never blocks\n" +
			"note generation. Without an argument, prompts for a file name from the\n" +
			"configured audio directory.",
		Args: cobra.MaximumNArgs(1),
		RunE: runStudy,
	}
}

func runStudy(cmd *cobra.Command, args []string) error {
	logger := buildLogger()
	ctx := cmd.Context()

	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}

	audioPath, err := resolveAudioPath(arg)
	if err != nil {
		return err
	}

	runner, cleanup, err := buildRunner(ctx, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	statusf("Processing %s...\n", audioPath)

	res, err := runner.Run(ctx, audioPath)
	if err != nil {
		return err
	}

	printResult(res)

	return nil
}

// resolveAudioPath turns the command argument (or an interactive prompt) into
// a usable audio file path. Bare file names resolve against the configured
// audio directory.
func resolveAudioPath(arg string) (string, error) {
	name := strings.TrimSpace(arg)

	if name == "" {
		if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			return "", errors.New("no audio file given and stdin is not a terminal")
		}

		fmt.Fprintf(os.Stderr, "Audio file name (in %s/): ", resolvedCfg.AudioDir)

		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("reading file name: %w", err)
		}

		name = strings.TrimSpace(line)
		if name == "" {
			return "", errors.New("no audio file name entered")
		}
	}

	// An existing path wins; otherwise look inside the audio directory.
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	if filepath.IsAbs(name) {
		return name, nil
	}

	return filepath.Join(resolvedCfg.AudioDir, name), nil
}

// buildRunner assembles the study pipeline from the resolved config. The
// archive branch is wired only when a Drive client secret is configured.
// The returned cleanup closes the history store.
func buildRunner(ctx context.Context, logger *slog.Logger) (*study.Runner, func(), error) {
	gen, err := gemini.NewGenerator(ctx, resolvedCfg.Gemini.APIKey, resolvedCfg.Gemini.Model, logger)
	if err != nil {
		return nil, nil, err
	}

	cfg := study.Config{
		Generator:        gen,
		FolderID:         resolvedCfg.Drive.FolderID,
		NotesInstruction: resolvedCfg.Gemini.NotesInstruction,
		QuizInstruction:  resolvedCfg.Gemini.QuizInstruction,
		Logger:           logger,
	}

	if resolvedCfg.Drive.ClientSecretPath != "" {
		auth, err := newAuthorizer(logger)
		if err != nil {
			return nil, nil, err
		}

		cfg.Auth = auth
		cfg.NewUploader = func(ctx context.Context, tok *oauth2.Token) (study.Uploader, error) {
			return drive.NewUploader(ctx, oauth2.StaticTokenSource(tok), logger)
		}
	}

	cleanup := func() {}

	store, err := openHistoryStore(logger)
	if err != nil {
		// History is a convenience; a broken store never blocks a run.
		logger.Warn("history database unavailable", slog.String("error", err.Error()))
	} else {
		cfg.History = store
		cleanup = func() { store.Close() }
	}

	return study.NewRunner(cfg), cleanup, nil
}

func openHistoryStore(logger *slog.Logger) (*history.Store, error) {
	dataDir := config.DefaultDataDir()
	if dataDir == "" {
		return nil, errors.New("cannot determine data directory")
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return history.NewStore(config.HistoryDBPath(), logger)
}

// printResult writes the artifacts to stdout and branch outcomes to stderr.
func printResult(res *study.Result) {
	if res.NotesErr != nil {
		statusf("Notes: not available (%v)\n", res.NotesErr)
	} else {
		fmt.Println("=== Study notes ===")
		fmt.Println(res.Notes)
	}

	if res.QuizErr != nil {
		statusf("Quiz: not available (%v)\n", res.QuizErr)
	} else if len(res.Quiz) == 0 {
		statusf("Quiz: the response contained no question/answer pairs\n")
	} else {
		fmt.Println("\n=== Quiz ===")

		for i, item := range res.Quiz {
			fmt.Printf("%d. %s\n   Answer: %s\n", i+1, item.Question, item.Answer)
		}
	}

	switch {
	case res.Upload != nil:
		statusf("Uploaded to Drive (file ID %s).\n", res.Upload.FileID)
	case res.UploadErr != nil:
		statusf("Drive upload skipped: %v\n", res.UploadErr)
	}
}
