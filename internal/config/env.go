package config

import "os"

// EnvOverrides carries configuration read from environment variables.
// GEMINI_API_KEY keeps its conventional name so existing .env files work;
// lectern-specific variables are prefixed LECTERN_.
type EnvOverrides struct {
	ConfigPath       string
	GeminiAPIKey     string
	ClientSecretPath string
	DriveFolderID    string
	AudioDir         string
}

// ReadEnvOverrides snapshots the relevant environment variables.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:       os.Getenv("LECTERN_CONFIG"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		ClientSecretPath: os.Getenv("LECTERN_CLIENT_SECRET"),
		DriveFolderID:    os.Getenv("LECTERN_DRIVE_FOLDER"),
		AudioDir:         os.Getenv("LECTERN_AUDIO_DIR"),
	}
}

// CLIOverrides carries configuration set via command-line flags.
// Empty string means "not specified".
type CLIOverrides struct {
	ConfigPath    string
	DriveFolderID string
	AudioDir      string
}
