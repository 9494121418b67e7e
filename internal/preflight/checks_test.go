package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"embseg/internal/config"
)

func TestRunAllChecksPass(t *testing.T) {
	base := t.TempDir()
	earlyDir := filepath.Join(base, "early")
	outputDir := filepath.Join(base, "out")
	for _, dir := range []string{earlyDir, outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	runner := filepath.Join(base, "stardist-runner")
	if err := os.WriteFile(runner, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write runner stub: %v", err)
	}

	cfg := config.Default()
	cfg.Runner.Binary = runner
	cfg.Runner.MinFreeGiB = 0
	cfg.Models.EarlyDir = earlyDir

	results := Run(&cfg, outputDir)
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("expected no failures, got %#v", failed)
	}
}

func TestRunReportsMissingPieces(t *testing.T) {
	base := t.TempDir()
	outputDir := filepath.Join(base, "out")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cfg := config.Default()
	cfg.Runner.Binary = "clearly-not-present-runner"
	cfg.Runner.MinFreeGiB = 0
	cfg.Models.EarlyDir = filepath.Join(base, "missing-early")
	cfg.Models.LateDir = filepath.Join(base, "missing-late")

	results := Run(&cfg, outputDir)
	failed := Failed(results)
	if len(failed) != 3 {
		t.Fatalf("expected 3 failures (runner, early dir, late dir), got %d: %#v", len(failed), failed)
	}
	for _, result := range failed {
		if result.Detail == "" {
			t.Fatalf("failed check %q missing detail", result.Name)
		}
	}
}

func TestCheckDirectoryReadableRejectsFile(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "model.bin")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	result := CheckDirectoryReadable("Early model directory", file)
	if result.Passed {
		t.Fatal("expected check to fail for a regular file")
	}
}

func TestCheckOutputDirectoryMissing(t *testing.T) {
	result := CheckOutputDirectory(filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected missing output directory to fail")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	if result := CheckFreeSpace(dir, 0); !result.Passed {
		t.Fatalf("expected zero-requirement check to pass, got %#v", result)
	}
	if result := CheckFreeSpace(dir, 1<<40); result.Passed {
		t.Fatal("expected absurd requirement to fail")
	}
}
