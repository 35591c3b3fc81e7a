package study

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/lecternapp/lectern/internal/drive"
	"github.com/lecternapp/lectern/internal/gemini"
	"github.com/lecternapp/lectern/internal/history"
)

// Interfaces are defined here at the consumer per "accept interfaces, return
// structs". The live implementations are authflow.Authorizer, drive.Uploader,
// gemini.Generator, and history.Store; tests substitute fakes.

// Authorizer produces a valid credential or fails.
type Authorizer interface {
	Authorize(ctx context.Context) (*oauth2.Token, error)
}

// Uploader sends a local file to remote storage.
type Uploader interface {
	Upload(ctx context.Context, localPath, folderID string) (*drive.Result, error)
}

// UploaderFactory binds a freshly authorized credential to an Uploader.
// The credential is handed over for the duration of one upload; the factory
// runs inside the archive branch so the generation branch never touches it.
type UploaderFactory func(ctx context.Context, tok *oauth2.Token) (Uploader, error)

// Generator stages audio once and serves any number of generation requests
// against the staged reference.
type Generator interface {
	Stage(ctx context.Context, localPath string) (*gemini.StagedAudio, error)
	Generate(ctx context.Context, staged *gemini.StagedAudio, instruction string) (string, error)
}

// Recorder persists a completed run.
type Recorder interface {
	Record(ctx context.Context, run history.Run) (int64, error)
}
