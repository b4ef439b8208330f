package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config holds persistent application settings
type Config struct {
	FFmpegPath     string `toml:"ffmpeg_path"`
	LastWorkingDir string `toml:"last_working_dir"`
	ConvertFormat  string `toml:"convert_format"`
	AudioFormat    string `toml:"audio_format"`
	Resolution     string `toml:"resolution"`
	LogLevel       string `toml:"log_level" validate:"oneof=trace debug info warn error"`
	LogFormat      string `toml:"log_format" validate:"oneof=auto console json"`

	path string
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		ConvertFormat: "mp4",
		AudioFormat:   "mp3",
		LogLevel:      "info",
		LogFormat:     "auto",
	}
}

// DefaultPath returns the config file location under the user config dir
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "ffmpeg-gui", "config.toml"), nil
}

// Load reads the config at path, or at DefaultPath when path is empty.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = p
	}

	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var validate = validator.New()

// Validate checks the enumerated settings
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Path returns the file the config was loaded from and will be saved to
func (c *Config) Path() string {
	return c.path
}

// Save saves the config to disk
func (c *Config) Save() error {
	if c.path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		c.path = p
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(c.path, data, 0o644)
}
