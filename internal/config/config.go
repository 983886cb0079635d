package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds client settings.
type Config struct {
	// ServerURL is the HTTP base URL of the game server.
	ServerURL string `yaml:"server_url"`

	// IdentityPath is where the local identity JSON lives.
	IdentityPath string `yaml:"identity_path"`

	// Volume is playback volume in [0, 1].
	Volume float64 `yaml:"volume"`

	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		ServerURL:    "http://localhost:8000",
		IdentityPath: filepath.Join(home, ".tunequiz", "identity.json"),
		Volume:       0.5,
		LogLevel:     "info",
	}
}

// FromEnv layers TUNEQUIZ_* environment variables over the defaults.
func FromEnv() Config {
	cfg := Default()
	cfg.ServerURL = getEnv("TUNEQUIZ_SERVER_URL", cfg.ServerURL)
	cfg.IdentityPath = getEnv("TUNEQUIZ_IDENTITY_PATH", cfg.IdentityPath)
	cfg.LogLevel = getEnv("TUNEQUIZ_LOG_LEVEL", cfg.LogLevel)

	if v := os.Getenv("TUNEQUIZ_VOLUME"); v != "" {
		vol, err := strconv.ParseFloat(v, 64)
		if err == nil && vol >= 0 && vol <= 1 {
			cfg.Volume = vol
		}
	}
	return cfg
}

// Load reads a YAML config file over the env-layered defaults. A
// missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := FromEnv()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
