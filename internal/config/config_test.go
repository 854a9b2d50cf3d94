package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Pipeline.BatchInitialVertices != 4096 {
		t.Errorf("expected batch_initial_vertices 4096, got %d", cfg.Pipeline.BatchInitialVertices)
	}
	if cfg.Pipeline.BatchMaxVertices <= cfg.Pipeline.BatchInitialVertices {
		t.Error("expected batch ceiling above initial capacity")
	}
	if cfg.Pipeline.MaxUploadLights > cfg.Pipeline.MaxLights {
		t.Error("upload cap must not exceed registry capacity")
	}
	if cfg.Pipeline.JunctionRadius <= 0 {
		t.Error("expected positive default junction radius")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

pipeline:
  batch_initial_vertices: 1024
  batch_max_vertices: 8192
  max_lights: 64
  max_upload_lights: 16
  light_relevance: 0.1
  junction_radius: 25.0

logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync false")
	}
	if cfg.Pipeline.BatchMaxVertices != 8192 {
		t.Errorf("expected batch_max_vertices 8192, got %d", cfg.Pipeline.BatchMaxVertices)
	}
	if cfg.Pipeline.MaxUploadLights != 16 {
		t.Errorf("expected max_upload_lights 16, got %d", cfg.Pipeline.MaxUploadLights)
	}
	if cfg.Pipeline.JunctionRadius != 25.0 {
		t.Errorf("expected junction_radius 25, got %f", cfg.Pipeline.JunctionRadius)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile_PartialOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Only graphics present; pipeline keeps defaults.
	yamlContent := `
graphics:
  width: 800
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}

	if cfg.Graphics.Width != 800 {
		t.Errorf("expected width 800, got %d", cfg.Graphics.Width)
	}
	if cfg.Pipeline.MaxLights != 256 {
		t.Errorf("expected default max_lights 256, got %d", cfg.Pipeline.MaxLights)
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "sub", "config.yaml")

	cfg := Default()
	cfg.Graphics.Width = 640
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Graphics.Width != 640 {
		t.Errorf("round-trip width: got %d, want 640", loaded.Graphics.Width)
	}
}
