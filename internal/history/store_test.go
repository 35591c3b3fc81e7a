package history

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:", slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestRecordAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Record(ctx, Run{
		AudioPath:   "input_audio/lecture1.mp3",
		DriveFileID: "remote-1",
		NotesChars:  1200,
		QuizItems:   5,
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	runs, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "input_audio/lecture1.mp3", runs[0].AudioPath)
	assert.Equal(t, "remote-1", runs[0].DriveFileID)
	assert.Equal(t, 1200, runs[0].NotesChars)
	assert.Equal(t, 5, runs[0].QuizItems)
	assert.False(t, runs[0].CreatedAt.IsZero())
}

func TestList_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := s.Record(ctx, Run{
			AudioPath: "lecture.mp3",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	runs, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.True(t, runs[0].CreatedAt.After(runs[1].CreatedAt))
	assert.True(t, runs[1].CreatedAt.After(runs[2].CreatedAt))
}

func TestList_RespectsLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.Record(ctx, Run{AudioPath: "lecture.mp3"})
		require.NoError(t, err)
	}

	runs, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestList_EmptyStore(t *testing.T) {
	s := newTestStore(t)

	runs, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRecord_EmptyDriveFileID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Record(ctx, Run{AudioPath: "lecture.mp3"})
	require.NoError(t, err)

	runs, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Empty(t, runs[0].DriveFileID)
}

func TestNewStore_OnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := NewStore(path, slog.Default())
	require.NoError(t, err)

	_, err = s.Record(context.Background(), Run{AudioPath: "a.mp3"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// Reopen: schema already applied, data intact.
	s2, err := NewStore(path, slog.Default())
	require.NoError(t, err)
	defer s2.Close()

	runs, err := s2.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
