// Package config resolves lectern's effective configuration from the
// override chain: built-in defaults, then the TOML config file, then
// environment variables, then CLI flags. CLI flags always win — one-off
// overrides should never require editing the config file.
package config

// Config is the TOML config file schema.
type Config struct {
	LogLevel string `toml:"log_level"`
	AudioDir string `toml:"audio_dir"`

	Gemini GeminiConfig `toml:"gemini"`
	Drive  DriveConfig  `toml:"drive"`
}

// GeminiConfig configures the content generation service.
type GeminiConfig struct {
	APIKey           string `toml:"api_key"`
	Model            string `toml:"model"`
	NotesInstruction string `toml:"notes_instruction"`
	QuizInstruction  string `toml:"quiz_instruction"`
}

// DriveConfig configures the optional Google Drive archival.
// Uploads are skipped entirely when ClientSecretPath is empty.
type DriveConfig struct {
	ClientSecretPath string `toml:"client_secret_path"`
	FolderID         string `toml:"folder_id"`
}

// Default instruction strings. The quiz instruction pins the model to the
// alternating question/answer line format the parser pairs up.
const (
	defaultNotesInstruction = "Listen to this audio lecture and produce detailed study notes " +
		"covering every topic discussed, in plain prose."
	defaultQuizInstruction = "Create a 5-question multiple-choice quiz from this audio lecture. " +
		"Output exactly one question line (with inline answer choices) followed by its answer " +
		"line, alternating, with no blank lines and no extra commentary."
)

// DefaultConfig returns a Config populated with every default value.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		AudioDir: "input_audio",
		Gemini: GeminiConfig{
			Model:            "gemini-2.5-flash",
			NotesInstruction: defaultNotesInstruction,
			QuizInstruction:  defaultQuizInstruction,
		},
	}
}
