package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lecternapp/lectern/internal/gemini"
)

// settleDelay is how long a file must be quiet after its last write before
// processing starts. Recordings are often copied into the directory, which
// produces a burst of write events.
const settleDelay = 2 * time.Second

var flagWatchWorkers int

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch the audio directory and process new recordings",
		Long: "Watches the audio directory (configured, or given as an argument) and runs\n" +
			"the study pipeline for every new or updated recording. Stop with Ctrl-C.",
		Args: cobra.MaximumNArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().IntVar(&flagWatchWorkers, "workers", 2, "max concurrent pipeline runs")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := buildLogger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir := resolvedCfg.AudioDir
	if len(args) > 0 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating audio directory %s: %w", dir, err)
	}

	runner, cleanup, err := buildRunner(ctx, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating filesystem watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	// Bounded worker pool; a failed run is logged, never fatal to the watch.
	g := new(errgroup.Group)
	g.SetLimit(flagWatchWorkers)

	var (
		mu      sync.Mutex
		timers  = make(map[string]*time.Timer)
		printMu sync.Mutex
	)

	submit := func(path string) {
		mu.Lock()
		delete(timers, path)
		mu.Unlock()

		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			statusf("Processing %s...\n", path)

			res, runErr := runner.Run(ctx, path)
			if runErr != nil {
				logger.Warn("pipeline run failed",
					slog.String("path", path),
					slog.String("error", runErr.Error()),
				)

				return nil
			}

			printMu.Lock()
			printResult(res)
			printMu.Unlock()

			return nil
		})
	}

	statusf("Watching %s for new recordings. Press Ctrl-C to stop.\n", dir)

	for {
		select {
		case <-ctx.Done():
			// Let in-flight runs finish before returning.
			return g.Wait()

		case ev, ok := <-watcher.Events:
			if !ok {
				return g.Wait()
			}

			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}

			if !gemini.IsSupportedAudio(ev.Name) {
				continue
			}

			path := ev.Name

			// Debounce per path: restart the settle timer on every event.
			mu.Lock()
			if t, exists := timers[path]; exists {
				t.Stop()
			}

			timers[path] = time.AfterFunc(settleDelay, func() { submit(path) })
			mu.Unlock()

		case werr, ok := <-watcher.Errors:
			if !ok {
				return g.Wait()
			}

			logger.Warn("filesystem watcher error", slog.String("error", werr.Error()))
		}
	}
}
