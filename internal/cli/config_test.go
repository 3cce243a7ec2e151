package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flowviz/sankey/pkg/pipeline"
)

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Width != pipeline.DefaultWidth || cfg.Align != pipeline.DefaultAlign {
		t.Errorf("missing config did not yield defaults: %+v", cfg)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("server addr = %q, want :8080", cfg.Server.Addr)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
width = 1024
align = "left"

[server]
addr = ":9090"
redis_url = "localhost:6379"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Width != 1024 {
		t.Errorf("width = %v, want 1024", cfg.Width)
	}
	if cfg.Align != "left" {
		t.Errorf("align = %q, want left", cfg.Align)
	}
	// Unset keys keep their defaults.
	if cfg.Height != pipeline.DefaultHeight {
		t.Errorf("height = %v, want default %v", cfg.Height, pipeline.DefaultHeight)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.RedisURL != "localhost:6379" {
		t.Errorf("server config = %+v", cfg.Server)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("width = [not valid"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Error("loadConfig() accepted invalid TOML")
	}
}
