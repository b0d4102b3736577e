package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

type UIConfig struct {
	RefreshIntervalSeconds int `json:"refresh_interval_seconds"`
}

type Config struct {
	// Endpoint is the management server base URL.
	Endpoint string `json:"endpoint"`
	// ManagementKey authenticates management API calls.
	ManagementKey string `json:"management_key,omitempty"`
	// APIKeys is the statically configured key list. The shape is
	// deliberately loose: entries may be plain strings or objects with
	// an api-key / apiKey field, matching what servers emit.
	APIKeys []any    `json:"api_keys,omitempty"`
	UI      UIConfig `json:"ui"`
	Theme   string   `json:"theme,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Endpoint: "http://127.0.0.1:8317",
		UI: UIConfig{
			RefreshIntervalSeconds: 30,
		},
	}
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "quotadeck")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "quotadeck")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultConfig().Endpoint
	}
	if cfg.UI.RefreshIntervalSeconds <= 0 {
		cfg.UI.RefreshIntervalSeconds = 30
	}

	return cfg, nil
}

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
