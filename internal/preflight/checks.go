package preflight

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"embseg/internal/config"
	"embseg/internal/deps"
)

// Result captures the outcome of one preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Run evaluates every check a batch run depends on: the runner binary, the
// configured model directories, and the output directory's writability and
// free space. Configuration problems surface here, before any volume is
// read.
func Run(cfg *config.Config, outputDir string) []Result {
	results := []Result{
		checkRunnerBinary(cfg.Runner.Binary),
		CheckDirectoryReadable("Early model directory", cfg.Models.EarlyDir),
	}
	if cfg.LateConfigured() {
		results = append(results, CheckDirectoryReadable("Late model directory", cfg.Models.LateDir))
	}
	results = append(results, CheckOutputDirectory(outputDir))
	if cfg.Runner.MinFreeGiB > 0 {
		results = append(results, CheckFreeSpace(outputDir, uint64(cfg.Runner.MinFreeGiB)))
	}
	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}

func checkRunnerBinary(binary string) Result {
	const name = "Inference runner"
	statuses := deps.CheckBinaries([]deps.Requirement{{
		Name:        name,
		Command:     binary,
		Description: "Executes model inference on volumes",
	}})
	status := statuses[0]
	if !status.Available {
		return Result{Name: name, Detail: status.Detail}
	}
	return Result{Name: name, Passed: true, Detail: binary}
}

// CheckDirectoryReadable verifies that the directory exists and is readable.
func CheckDirectoryReadable(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "path not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckOutputDirectory verifies the output directory exists and is writable.
func CheckOutputDirectory(path string) Result {
	const name = "Output directory"
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "path not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the filesystem holding path has at least minGiB
// available. Label volumes are written next to large inputs, so running out
// of space mid-batch is a real failure mode.
func CheckFreeSpace(path string, minGiB uint64) Result {
	const name = "Free space"
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	availableBytes := stat.Bavail * uint64(stat.Bsize)
	availableGiB := availableBytes / (1 << 30)
	detail := fmt.Sprintf("%d GiB available, %d GiB required", availableGiB, minGiB)
	if availableGiB < minGiB {
		return Result{Name: name, Detail: detail}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}
