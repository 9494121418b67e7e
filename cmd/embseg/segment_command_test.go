package main

import (
	"strings"
	"testing"
)

func TestCLISegmentDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	writeVolume(t, env.inputDir, "emb_001.tif")
	writeVolume(t, env.inputDir, "emb_000.tif")
	writeVolume(t, env.inputDir, "readme.txt")

	out, _, err := runCLI(t, env.configPath, "segment", "--image_path", env.inputDir)
	if err != nil {
		t.Fatalf("segment: %v\noutput:\n%s", err, out)
	}
	requireContains(t, out, "emb_000.tif")
	requireContains(t, out, "emb_001.tif")
	requireContains(t, out, "Processed 2, failed 0, skipped 0")
	if strings.Contains(out, "readme.txt") {
		t.Fatalf("unsupported extension should be filtered out:\n%s", out)
	}
}

func TestCLISegmentResumeSkipsCompleted(t *testing.T) {
	env := setupCLITestEnv(t)
	writeVolume(t, env.inputDir, "emb_000.tif")

	out, _, err := runCLI(t, env.configPath, "segment", "--image_path", env.inputDir)
	if err != nil {
		t.Fatalf("first segment: %v\noutput:\n%s", err, out)
	}
	requireContains(t, out, "Processed 1, failed 0, skipped 0")

	out, _, err = runCLI(t, env.configPath, "segment", "--image_path", env.inputDir, "--resume")
	if err != nil {
		t.Fatalf("resume segment: %v\noutput:\n%s", err, out)
	}
	requireContains(t, out, "Processed 0, failed 0, skipped 1")
}

func TestCLISegmentReportsRunnerFailure(t *testing.T) {
	env := setupCLITestEnv(t)
	writeVolume(t, env.inputDir, "emb_000.tif")
	writeVolume(t, env.inputDir, "emb_001.tif")
	writeStubRunner(t, env.runnerPath, `#!/bin/sh
echo '{"type":"error","kind":"inference","message":"oom during nms"}'
exit 1
`)

	out, _, err := runCLI(t, env.configPath, "segment", "--image_path", env.inputDir)
	if err == nil {
		t.Fatalf("expected failure exit, output:\n%s", out)
	}
	requireContains(t, err.Error(), "2 of 2 volumes failed")
	requireContains(t, out, "oom during nms")
}

func TestCLISegmentPreflightFailsWhenRunnerMissing(t *testing.T) {
	env := setupCLITestEnv(t)
	writeVolume(t, env.inputDir, "emb_000.tif")
	writeTestConfigWithRunner(t, env, "definitely-not-a-runner")

	out, _, err := runCLI(t, env.configPath, "segment", "--image_path", env.inputDir)
	if err == nil {
		t.Fatalf("expected preflight failure, output:\n%s", out)
	}
	requireContains(t, err.Error(), "preflight")
}

func TestCLISegmentRejectsLateDemandWithoutLateModel(t *testing.T) {
	env := setupCLITestEnv(t)
	writeVolume(t, env.inputDir, "emb_020.tif")

	out, _, err := runCLI(t, env.configPath,
		"segment", "--image_path", env.inputDir, "--timepoint_switch", "10")
	if err == nil {
		t.Fatalf("expected configuration error, output:\n%s", out)
	}
	requireContains(t, err.Error(), "late")
}
