// Package drive uploads local audio files to Google Drive. It requires a
// valid credential from authflow — it never re-authorizes — and uses the
// Drive v3 resumable media protocol so large recordings survive connection
// drops mid-transfer.
package drive

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/text/unicode/norm"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// uploadChunkSize is the resumable transfer chunk size (8 MiB). Each chunk is
// retried independently by the media uploader, so a flaky connection costs at
// most one chunk of progress.
const uploadChunkSize = 8 * 1024 * 1024

// Result identifies a completed upload: the remote file ID plus the local
// path it came from. Absent result (nil) signals failure, never a sentinel ID.
type Result struct {
	FileID    string
	LocalPath string
}

// Uploader wraps an authenticated Drive v3 service.
type Uploader struct {
	svc    *driveapi.Service
	logger *slog.Logger
}

// NewUploader builds an Uploader from a token source over a valid credential.
// Extra client options are for tests (custom endpoint).
func NewUploader(
	ctx context.Context, ts oauth2.TokenSource, logger *slog.Logger, opts ...option.ClientOption,
) (*Uploader, error) {
	if logger == nil {
		logger = slog.Default()
	}

	all := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)

	svc, err := driveapi.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("drive: creating service: %w", err)
	}

	return &Uploader{svc: svc, logger: logger}, nil
}

// Upload sends the local file to Drive, filed under folderID when given.
// The remote name is the NFC-normalized base name of the local path.
// On any remote error it logs a diagnostic and returns a nil Result — retry
// policy belongs to the caller.
func (u *Uploader) Upload(ctx context.Context, localPath, folderID string) (*Result, error) {
	fh, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("drive: opening %s: %w", localPath, err)
	}
	defer fh.Close()

	info, err := fh.Stat()
	if err != nil {
		return nil, fmt.Errorf("drive: stat %s: %w", localPath, err)
	}

	// NFC keeps names stable regardless of how the local filesystem encoded
	// composed characters.
	name := norm.NFC.String(filepath.Base(localPath))

	meta := &driveapi.File{Name: name}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}

	u.logger.Info("uploading to Drive",
		slog.String("path", localPath),
		slog.String("name", name),
		slog.String("folder_id", folderID),
		slog.Int64("size", info.Size()),
	)

	created, err := u.svc.Files.Create(meta).
		Fields("id").
		Media(fh, googleapi.ChunkSize(uploadChunkSize)).
		Context(ctx).
		Do()
	if err != nil {
		u.logger.Error("Drive upload failed",
			slog.String("path", localPath),
			slog.String("error", err.Error()),
		)

		return nil, fmt.Errorf("drive: uploading %s: %w", localPath, err)
	}

	u.logger.Info("upload complete",
		slog.String("file_id", created.Id),
		slog.String("name", name),
	)

	return &Result{FileID: created.Id, LocalPath: localPath}, nil
}
