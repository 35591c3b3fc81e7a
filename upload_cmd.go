package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/lecternapp/lectern/internal/drive"
)

func newUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <audio-file>",
		Short: "Archive a recording to Google Drive without generating notes",
		Args:  cobra.ExactArgs(1),
		RunE:  runUpload,
	}
}

func runUpload(cmd *cobra.Command, args []string) error {
	logger := buildLogger()
	ctx := cmd.Context()

	audioPath, err := resolveAudioPath(args[0])
	if err != nil {
		return err
	}

	auth, err := newAuthorizer(logger)
	if err != nil {
		return err
	}

	tok, err := auth.Authorize(ctx)
	if err != nil {
		return err
	}

	uploader, err := drive.NewUploader(ctx, oauth2.StaticTokenSource(tok), logger)
	if err != nil {
		return err
	}

	res, err := uploader.Upload(ctx, audioPath, resolvedCfg.Drive.FolderID)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", audioPath, err)
	}

	statusf("Uploaded %s (file ID %s).\n", audioPath, res.FileID)

	return nil
}
