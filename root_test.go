package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lecternapp/lectern/internal/config"
)

func setTestConfig(t *testing.T) {
	t.Helper()

	prev := resolvedCfg
	resolvedCfg = config.DefaultConfig()
	t.Cleanup(func() { resolvedCfg = prev })
}

func TestNewRootCmd_RegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()

	want := []string{"login", "logout", "whoami", "study", "upload", "watch", "history"}
	got := make(map[string]bool)

	for _, sub := range cmd.Commands() {
		got[sub.Name()] = true
	}

	for _, name := range want {
		assert.True(t, got[name], "missing subcommand %s", name)
	}
}

func TestResolveAudioPath_ExistingPathWins(t *testing.T) {
	setTestConfig(t)

	path := filepath.Join(t.TempDir(), "lecture.mp3")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	got, err := resolveAudioPath(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestResolveAudioPath_BareNameJoinsAudioDir(t *testing.T) {
	setTestConfig(t)
	resolvedCfg.AudioDir = "recordings"

	got, err := resolveAudioPath("lecture.mp3")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("recordings", "lecture.mp3"), got)
}

func TestResolveAudioPath_TrimsWhitespace(t *testing.T) {
	setTestConfig(t)
	resolvedCfg.AudioDir = "recordings"

	got, err := resolveAudioPath("  lecture.mp3  ")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("recordings", "lecture.mp3"), got)
}

func TestResolveAudioPath_NoArgWithoutTerminal(t *testing.T) {
	setTestConfig(t)

	// Under `go test` stdin is not a terminal, so the prompt path must fail
	// rather than hang.
	_, err := resolveAudioPath("")
	require.Error(t, err)
}

func TestBuildLogger_FlagPrecedence(t *testing.T) {
	setTestConfig(t)
	resolvedCfg.LogLevel = "warn"

	prevVerbose, prevQuiet := flagVerbose, flagQuiet
	t.Cleanup(func() { flagVerbose, flagQuiet = prevVerbose, prevQuiet })

	flagVerbose, flagQuiet = false, false
	logger := buildLogger()
	assert.False(t, logger.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, logger.Enabled(t.Context(), slog.LevelWarn))

	flagVerbose = true
	logger = buildLogger()
	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))

	flagVerbose, flagQuiet = false, true
	logger = buildLogger()
	assert.False(t, logger.Enabled(t.Context(), slog.LevelWarn))
	assert.True(t, logger.Enabled(t.Context(), slog.LevelError))
}
