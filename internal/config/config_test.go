package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize returned error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Output.Format != "tif" {
		t.Fatalf("expected default format tif, got %q", cfg.Output.Format)
	}
	if cfg.Models.TimepointSwitch != -1 {
		t.Fatalf("expected default timepoint switch -1, got %d", cfg.Models.TimepointSwitch)
	}
	if cfg.Runner.Binary != "stardist-runner" {
		t.Fatalf("expected default runner binary, got %q", cfg.Runner.Binary)
	}
}

func TestLoadParsesAndExpands(t *testing.T) {
	dir := t.TempDir()
	modelDir := filepath.Join(dir, "model-early")
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
output_dir = "` + dir + `/out"
log_dir = "` + dir + `/logs"

[models]
early_dir = "` + modelDir + `"
timepoint_switch = 10

[output]
format = "h5"
pixel_size_xyz = "0.4,0.4,1"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Models.EarlyDir != modelDir {
		t.Fatalf("unexpected early dir %q", cfg.Models.EarlyDir)
	}
	if cfg.Models.TimepointSwitch != 10 {
		t.Fatalf("unexpected timepoint switch %d", cfg.Models.TimepointSwitch)
	}
	if cfg.Output.Format != "h5" {
		t.Fatalf("unexpected format %q", cfg.Output.Format)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Fatalf("expected expanded output dir, got %q", cfg.Paths.OutputDir)
	}
	// Thresholds keep their defaults when the file does not set them.
	if cfg.Models.EarlyProbThresh != 0.5 || cfg.Models.LateProbThresh != 0.451 {
		t.Fatalf("unexpected thresholds %+v", cfg.Models)
	}
}

func TestLoadRejectsBadFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[output]\nformat = \"png\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported output format")
	}
}

func TestLoadRejectsBadPixelSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[output]\npixel_size_xyz = \"0.2,-1,2\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error for non-positive pixel size")
	}
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[models]\nearly_prob_thresh = 1.2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error for threshold above 1")
	}
}

func TestEnvFallbackForModelDirs(t *testing.T) {
	modelDir := t.TempDir()
	t.Setenv("EMBSEG_EARLY_MODEL_DIR", modelDir)
	t.Setenv("EMBSEG_LATE_MODEL_DIR", "")

	cfg, _, _, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Models.EarlyDir != modelDir {
		t.Fatalf("expected env fallback for early dir, got %q", cfg.Models.EarlyDir)
	}
	if cfg.LateConfigured() {
		t.Fatal("late model should not be configured")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[models]", "timepoint_switch", "stardist-runner"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("sample config missing %q", want)
		}
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/models")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "models") {
		t.Fatalf("unexpected expansion %q", got)
	}
}
