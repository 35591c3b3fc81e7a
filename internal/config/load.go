package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// validLogLevels are the accepted log_level values.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Load reads and parses a TOML config file and validates it. Unknown keys are
// fatal — silently ignoring a typo in a config file leads to hard-to-debug
// behavior.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}

		return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns the
// defaults. Supports the zero-config first run: no file required.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve applies the override chain: defaults -> config file -> environment
// -> CLI flags, and validates the result.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Config, error) {
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	if env.GeminiAPIKey != "" {
		cfg.Gemini.APIKey = env.GeminiAPIKey
	}

	if env.ClientSecretPath != "" {
		cfg.Drive.ClientSecretPath = env.ClientSecretPath
	}

	if env.DriveFolderID != "" {
		cfg.Drive.FolderID = env.DriveFolderID
	}

	if env.AudioDir != "" {
		cfg.AudioDir = env.AudioDir
	}

	if cli.DriveFolderID != "" {
		cfg.Drive.FolderID = cli.DriveFolderID
	}

	if cli.AudioDir != "" {
		cfg.AudioDir = cli.AudioDir
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level %q (want debug, info, warn, or error)", cfg.LogLevel)
	}

	if strings.TrimSpace(cfg.Gemini.Model) == "" {
		return errors.New("gemini.model must not be empty")
	}

	if strings.TrimSpace(cfg.Gemini.NotesInstruction) == "" {
		return errors.New("gemini.notes_instruction must not be empty")
	}

	if strings.TrimSpace(cfg.Gemini.QuizInstruction) == "" {
		return errors.New("gemini.quiz_instruction must not be empty")
	}

	if cfg.Drive.FolderID != "" && cfg.Drive.ClientSecretPath == "" {
		return errors.New("drive.folder_id is set but drive.client_secret_path is not")
	}

	return nil
}
