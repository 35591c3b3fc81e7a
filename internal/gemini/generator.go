// Package gemini submits audio to the Gemini API and requests free-text
// outputs (study notes, quiz prompts). The audio is staged once via the Files
// API; each instruction then pairs the staged reference with its prompt in an
// independent generation request — there is no batching of instructions.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when the config does not name a model.
const DefaultModel = "gemini-2.5-flash"

// GenerationError is the single error kind this package reports: staging
// failures, API errors, and empty responses all collapse into it. Finer
// distinction is the caller's concern via Unwrap.
type GenerationError struct {
	Op  string // "staging" or "generation"
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("gemini: %s failed: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// StagedAudio is the handle the Files API returns for uploaded audio. It is
// reused across generation requests instead of re-sending raw bytes.
type StagedAudio struct {
	Name     string
	URI      string
	MIMEType string
}

// Generator wraps a Gemini API client for a fixed model.
type Generator struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGenerator creates a Generator using API-key auth against the Gemini API
// backend.
func NewGenerator(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: API key required (set GEMINI_API_KEY)")
	}

	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}

	return &Generator{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Stage uploads the audio file to the Gemini staging area and returns the
// reference used by subsequent Generate calls.
func (g *Generator) Stage(ctx context.Context, localPath string) (*StagedAudio, error) {
	mimeType, err := audioMIMEType(localPath)
	if err != nil {
		return nil, &GenerationError{Op: "staging", Err: err}
	}

	g.logger.Info("staging audio file",
		slog.String("path", localPath),
		slog.String("mime_type", mimeType),
	)

	f, err := g.client.Files.UploadFromPath(ctx, localPath, &genai.UploadFileConfig{
		MIMEType: mimeType,
	})
	if err != nil {
		g.logger.Error("audio staging failed", slog.String("error", err.Error()))

		return nil, &GenerationError{Op: "staging", Err: err}
	}

	staged := &StagedAudio{
		Name:     f.Name,
		URI:      f.URI,
		MIMEType: f.MIMEType,
	}
	if staged.MIMEType == "" {
		staged.MIMEType = mimeType
	}

	g.logger.Debug("audio staged", slog.String("uri", staged.URI))

	return staged, nil
}

// Generate issues one generation request pairing the staged audio reference
// with a natural-language instruction. Each instruction needs its own call.
// An empty model response is a GenerationError, not an empty success.
func (g *Generator) Generate(ctx context.Context, staged *StagedAudio, instruction string) (string, error) {
	if staged == nil || staged.URI == "" {
		return "", &GenerationError{Op: "generation", Err: errors.New("no staged audio reference")}
	}

	if strings.TrimSpace(instruction) == "" {
		return "", &GenerationError{Op: "generation", Err: errors.New("empty instruction")}
	}

	g.logger.Info("requesting generation",
		slog.String("model", g.model),
		slog.String("instruction", instruction),
	)

	contents := []*genai.Content{
		genai.NewContentFromParts(
			[]*genai.Part{
				genai.NewPartFromURI(staged.URI, staged.MIMEType),
				genai.NewPartFromText(instruction),
			},
			genai.RoleUser,
		),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		g.logger.Error("generation request failed", slog.String("error", err.Error()))

		return "", &GenerationError{Op: "generation", Err: err}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &GenerationError{Op: "generation", Err: errors.New("model returned an empty result")}
	}

	g.logger.Debug("generation complete", slog.Int("chars", len(text)))

	return text, nil
}

// GenerateFromAudio stages the file and runs a single generation request.
// Callers issuing several instructions against the same audio should Stage
// once and call Generate per instruction instead.
func (g *Generator) GenerateFromAudio(ctx context.Context, localPath, instruction string) (string, error) {
	staged, err := g.Stage(ctx, localPath)
	if err != nil {
		return "", err
	}

	return g.Generate(ctx, staged, instruction)
}
