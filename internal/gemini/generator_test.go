package gemini

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAudioMIMEType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"lecture.mp3", "audio/mpeg"},
		{"lecture.wav", "audio/wav"},
		{"lecture.m4a", "audio/mp4"},
		{"lecture.mp4", "audio/mp4"},
		{"lecture.ogg", "audio/ogg"},
		{"lecture.flac", "audio/flac"},
		{"lecture.aac", "audio/aac"},
		{"lecture.webm", "audio/webm"},
		{"dir/with.dots/Lecture.MP3", "audio/mpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := audioMIMEType(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAudioMIMEType_NoExtension(t *testing.T) {
	_, err := audioMIMEType("lecture")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extension required")
}

func TestAudioMIMEType_NonAudio(t *testing.T) {
	_, err := audioMIMEType("notes.html")
	require.Error(t, err)
}

func TestGenerationError_Unwrap(t *testing.T) {
	cause := errors.New("rate limited")
	err := &GenerationError{Op: "generation", Err: cause}

	assert.Contains(t, err.Error(), "generation failed")
	assert.ErrorIs(t, err, cause)

	var genErr *GenerationError
	require.ErrorAs(t, error(err), &genErr)
	assert.Equal(t, "generation", genErr.Op)
}

func TestGenerate_RequiresStagedReference(t *testing.T) {
	g := &Generator{model: DefaultModel, logger: discardLogger()}

	_, err := g.Generate(t.Context(), nil, "produce notes")
	require.Error(t, err)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "generation", genErr.Op)
}

func TestGenerate_RequiresInstruction(t *testing.T) {
	g := &Generator{model: DefaultModel, logger: discardLogger()}

	_, err := g.Generate(t.Context(), &StagedAudio{URI: "files/abc", MIMEType: "audio/mpeg"}, "  ")
	require.Error(t, err)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, genErr.Err.Error(), "empty instruction")
}

func TestStage_RejectsUnknownExtension(t *testing.T) {
	g := &Generator{model: DefaultModel, logger: discardLogger()}

	_, err := g.Stage(t.Context(), "lecture.xyz123")
	require.Error(t, err)

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "staging", genErr.Op)
}
