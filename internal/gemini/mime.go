package gemini

import (
	"errors"
	"mime"
	"path/filepath"
	"strings"
)

// audioMIMEType resolves the MIME type the Files API expects from the file
// extension. Common audio extensions are mapped directly; anything else falls
// back to the platform MIME table and must still resolve to an audio/ type.
func audioMIMEType(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(path)))
	if ext == "" {
		return "", errors.New("audio file extension required to determine mime type")
	}

	switch ext {
	case ".wav":
		return "audio/wav", nil
	case ".mp3":
		return "audio/mpeg", nil
	case ".m4a", ".mp4":
		return "audio/mp4", nil
	case ".webm":
		return "audio/webm", nil
	case ".ogg":
		return "audio/ogg", nil
	case ".flac":
		return "audio/flac", nil
	case ".aac":
		return "audio/aac", nil
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return "", errors.New("unsupported audio file extension: " + ext)
	}

	// Strip parameters such as "; charset=utf-8".
	mimeType = strings.TrimSpace(strings.Split(mimeType, ";")[0])
	if !strings.HasPrefix(mimeType, "audio/") {
		return "", errors.New("not an audio file: " + mimeType)
	}

	return mimeType, nil
}

// IsSupportedAudio reports whether the file's extension maps to an audio MIME
// type the Files API accepts.
func IsSupportedAudio(path string) bool {
	_, err := audioMIMEType(path)

	return err == nil
}
