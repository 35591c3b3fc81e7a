// Package study orchestrates the pipeline: archive the audio to Drive and
// derive study artifacts from it. The two branches are independent; a failed
// authorization or upload never aborts content generation, and vice versa.
package study

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/oauth2"

	"github.com/lecternapp/lectern/internal/drive"
	"github.com/lecternapp/lectern/internal/history"
	"github.com/lecternapp/lectern/internal/quiz"
)

// Config assembles a Runner. Auth may be nil to disable the archive branch
// entirely (no Drive configured); History may be nil to skip recording.
type Config struct {
	Auth        Authorizer
	NewUploader UploaderFactory
	Generator   Generator
	History     Recorder

	FolderID         string
	NotesInstruction string
	QuizInstruction  string

	Logger *slog.Logger
}

// Result carries the outcome of one run. Each artifact is either present or
// absent with its branch error. Absence is reported plainly, never as
// partial content.
type Result struct {
	Notes    string
	NotesErr error

	Quiz    []quiz.Item
	QuizErr error

	Upload    *drive.Result
	UploadErr error
}

// Runner executes the study pipeline for one audio file at a time.
type Runner struct {
	auth        Authorizer
	newUploader UploaderFactory
	gen         Generator
	hist        Recorder

	folderID         string
	notesInstruction string
	quizInstruction  string

	logger *slog.Logger
}

// NewRunner builds a Runner from cfg.
func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		auth:             cfg.Auth,
		newUploader:      cfg.NewUploader,
		gen:              cfg.Generator,
		hist:             cfg.History,
		folderID:         cfg.FolderID,
		notesInstruction: cfg.NotesInstruction,
		quizInstruction:  cfg.QuizInstruction,
		logger:           logger,
	}
}

// Run processes one audio file. The archive branch and the generation branch
// run concurrently; each records its own failure in the Result. The returned
// error is non-nil only when the audio file itself is unusable.
func (r *Runner) Run(ctx context.Context, audioPath string) (*Result, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, fmt.Errorf("study: audio file: %w", err)
	}

	res := &Result{}

	var wg sync.WaitGroup

	if r.auth != nil {
		wg.Add(1)

		go func() {
			defer wg.Done()

			res.Upload, res.UploadErr = r.archive(ctx, audioPath)
		}()
	}

	wg.Add(1)

	go func() {
		defer wg.Done()

		r.generate(ctx, audioPath, res)
	}()

	wg.Wait()

	r.record(ctx, audioPath, res)

	return res, nil
}

// archive authorizes and uploads. Failures are logged here and surfaced only
// through Result.UploadErr; the upload path is optional.
func (r *Runner) archive(ctx context.Context, audioPath string) (*drive.Result, error) {
	tok, err := r.auth.Authorize(ctx)
	if err != nil {
		r.logger.Warn("authorization failed, skipping Drive upload",
			slog.String("error", err.Error()),
		)

		return nil, err
	}

	uploader, err := r.newUploader(ctx, tok)
	if err != nil {
		r.logger.Warn("creating uploader failed",
			slog.String("error", err.Error()),
		)

		return nil, err
	}

	result, err := uploader.Upload(ctx, audioPath, r.folderID)
	if err != nil {
		r.logger.Warn("Drive upload failed",
			slog.String("path", audioPath),
			slog.String("error", err.Error()),
		)

		return nil, err
	}

	return result, nil
}

// generate stages the audio once and issues one request per instruction.
// A notes failure does not prevent the quiz request; both reference the same
// staged audio.
func (r *Runner) generate(ctx context.Context, audioPath string, res *Result) {
	staged, err := r.gen.Stage(ctx, audioPath)
	if err != nil {
		r.logger.Warn("audio staging failed",
			slog.String("path", audioPath),
			slog.String("error", err.Error()),
		)

		res.NotesErr = err
		res.QuizErr = err

		return
	}

	res.Notes, res.NotesErr = r.gen.Generate(ctx, staged, r.notesInstruction)
	if res.NotesErr != nil {
		r.logger.Warn("notes generation failed", slog.String("error", res.NotesErr.Error()))
	}

	raw, err := r.gen.Generate(ctx, staged, r.quizInstruction)
	if err != nil {
		r.logger.Warn("quiz generation failed", slog.String("error", err.Error()))

		res.QuizErr = err

		return
	}

	res.Quiz = quiz.Parse(raw)
}

// record persists the run outcome. Best-effort: a history failure is logged,
// never propagated.
func (r *Runner) record(ctx context.Context, audioPath string, res *Result) {
	if r.hist == nil {
		return
	}

	run := history.Run{
		AudioPath:  audioPath,
		NotesChars: len(res.Notes),
		QuizItems:  len(res.Quiz),
	}
	if res.Upload != nil {
		run.DriveFileID = res.Upload.FileID
	}

	if _, err := r.hist.Record(ctx, run); err != nil {
		r.logger.Warn("recording run history failed",
			slog.String("error", err.Error()),
		)
	}
}

// StaticUploaderFactory wraps an already-built Uploader, ignoring the
// credential. Used where the uploader does not need per-run construction.
func StaticUploaderFactory(u Uploader) UploaderFactory {
	return func(_ context.Context, _ *oauth2.Token) (Uploader, error) {
		return u, nil
	}
}
