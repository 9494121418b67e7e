package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	inputDir   string
	outputDir  string
	modelDir   string
	runnerPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		inputDir:   filepath.Join(base, "volumes"),
		outputDir:  filepath.Join(base, "labels"),
		modelDir:   filepath.Join(base, "model-early"),
		runnerPath: filepath.Join(base, "bin", "stardist-runner"),
	}
	for _, dir := range []string{env.inputDir, env.outputDir, env.modelDir, filepath.Dir(env.runnerPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	writeStubRunner(t, env.runnerPath, `#!/bin/sh
echo '{"type":"progress","percent":50,"stage":"unet"}'
echo '{"type":"result","object_count":7}'
exit 0
`)
	writeTestConfig(t, env)
	return env
}

func writeStubRunner(t *testing.T, path, script string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write runner stub: %v", err)
	}
}

func writeTestConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	writeTestConfigWithRunner(t, env, env.runnerPath)
}

func writeTestConfigWithRunner(t *testing.T, env *cliTestEnv, runner string) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
output_dir = %q
log_dir = %q
ledger_path = %q

[models]
early_dir = %q

[runner]
binary = %q
`,
		env.outputDir,
		filepath.Join(env.baseDir, "logs"),
		filepath.Join(env.baseDir, "ledger.db"),
		env.modelDir,
		runner,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func writeVolume(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("volume"), 0o644); err != nil {
		t.Fatalf("write volume %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}
