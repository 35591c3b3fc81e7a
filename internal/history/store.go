// Package history records completed pipeline runs in an embedded SQLite
// database so `lectern history` can show what was processed, when, and
// whether the audio made it to Drive.
package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // Pure Go SQLite driver, registers as "sqlite".
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Run is one recorded pipeline execution. DriveFileID is empty when the
// upload was skipped or failed.
type Run struct {
	ID          int64
	AudioPath   string
	DriveFileID string
	NotesChars  int
	QuizItems   int
	CreatedAt   time.Time
}

// Store wraps the history database. Use ":memory:" as the path for tests.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore opens (creating if needed) the history database at dbPath and
// applies pending schema migrations.
func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: opening %s: %w", dbPath, err)
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: enabling WAL: %w", err)
	}

	if err := runMigrations(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("history database ready", slog.String("path", dbPath))

	return &Store{db: db, logger: logger}, nil
}

// runMigrations applies embedded migrations via the goose v3 Provider API
// (no global state, context-aware).
func runMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	subFS, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("history: creating migration sub-filesystem: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, subFS)
	if err != nil {
		return fmt.Errorf("history: creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("history: running migrations: %w", err)
	}

	for _, r := range results {
		logger.Info("applied migration",
			slog.String("source", r.Source.Path),
			slog.Int64("duration_ms", r.Duration.Milliseconds()),
		)
	}

	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a run and returns its ID. Zero CreatedAt defaults to now.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	created := run.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (audio_path, drive_file_id, notes_chars, quiz_items, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		run.AudioPath, run.DriveFileID, run.NotesChars, run.QuizItems,
		created.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("history: recording run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: reading run id: %w", err)
	}

	s.logger.Debug("run recorded",
		slog.Int64("id", id),
		slog.String("audio_path", run.AudioPath),
	)

	return id, nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, audio_path, drive_file_id, notes_chars, quiz_items, created_at
		 FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run

	for rows.Next() {
		var (
			run     Run
			created string
		)

		if err := rows.Scan(
			&run.ID, &run.AudioPath, &run.DriveFileID,
			&run.NotesChars, &run.QuizItems, &created,
		); err != nil {
			return nil, fmt.Errorf("history: scanning run: %w", err)
		}

		ts, parseErr := time.Parse(time.RFC3339, created)
		if parseErr != nil {
			s.logger.Warn("invalid created_at in history row",
				slog.Int64("id", run.ID),
				slog.String("raw", created),
			)
		}

		run.CreatedAt = ts
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterating runs: %w", err)
	}

	return runs, nil
}
