package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/flowviz/sankey/pkg/pipeline"
)

// Config holds user defaults loaded from the config file. Values here seed
// command flag defaults; flags always win.
type Config struct {
	Width       float64 `toml:"width"`
	Height      float64 `toml:"height"`
	NodeWidth   float64 `toml:"node_width"`
	NodePadding float64 `toml:"node_padding"`
	Align       string  `toml:"align"`
	Iterations  int     `toml:"iterations"`
	CacheDir    string  `toml:"cache_dir"`

	Server ServerConfig `toml:"server"`
}

// ServerConfig holds serve command defaults.
type ServerConfig struct {
	Addr          string `toml:"addr"`
	RedisURL      string `toml:"redis_url"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// defaultConfig returns the built-in defaults used when no config file exists.
func defaultConfig() Config {
	return Config{
		Width:      pipeline.DefaultWidth,
		Height:     pipeline.DefaultHeight,
		Align:      pipeline.DefaultAlign,
		Iterations: pipeline.DefaultIterations,
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// configPath returns the default config file location
// (e.g. ~/.config/sankey/config.toml).
func configPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName, "config.toml"), nil
}

// loadConfig reads the config file at path, or the default location when path
// is empty. A missing file is not an error; built-in defaults are returned.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		p, err := configPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
