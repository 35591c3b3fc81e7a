package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagHistoryLimit int

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline runs",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}

	cmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "max runs to show")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	logger := buildLogger()

	store, err := openHistoryStore(logger)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), flagHistoryLimit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		statusf("No runs recorded yet.\n")

		return nil
	}

	for _, run := range runs {
		drive := "-"
		if run.DriveFileID != "" {
			drive = run.DriveFileID
		}

		fmt.Printf("%s  %-40s  notes:%6d chars  quiz:%2d  drive:%s\n",
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			run.AudioPath, run.NotesChars, run.QuizItems, drive)
	}

	return nil
}
