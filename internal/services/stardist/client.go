package stardist

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"embseg/internal/model"
	"embseg/internal/scaling"
)

var commandContext = exec.CommandContext

// ProgressUpdate captures runner progress events.
type ProgressUpdate struct {
	Percent float64
	Stage   string
	Message string
}

// Request describes one volume segmentation: where to read the intensity
// volume, which model to apply, how to rescale, and where the label volume
// (and optional ROI artifacts) should land.
type Request struct {
	InputPath    string
	OutputPath   string
	Model        *model.Model
	Scale        scaling.ScaleFactors
	OutputFormat string
	GenerateROI  bool
	No8BitShift  bool
}

// Result reports what the runner produced for one volume.
type Result struct {
	LabelPath   string
	ObjectCount int
}

// RunError is a structured failure reported by the runner. Kind is one of
// "read", "inference", or "write" so the driver can classify the failure
// without string matching.
type RunError struct {
	Kind    string
	Message string
}

func (e *RunError) Error() string {
	if e.Message == "" {
		return e.Kind + " failure"
	}
	return e.Kind + ": " + e.Message
}

// Client defines segmentation runner behaviour.
type Client interface {
	Segment(ctx context.Context, req Request, progress func(ProgressUpdate)) (Result, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default runner binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the stardist-runner worker. One invocation reads a single
// volume, runs the forward pass and non-maximum suppression against the
// requested model, and writes the instance label volume.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "stardist-runner"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Binary returns the runner command the client will execute.
func (c *CLI) Binary() string {
	return c.binary
}

// Segment launches the runner for one volume and returns the label output.
func (c *CLI) Segment(ctx context.Context, req Request, progress func(ProgressUpdate)) (Result, error) {
	if req.InputPath == "" {
		return Result{}, errors.New("input path required")
	}
	if req.OutputPath == "" {
		return Result{}, errors.New("output path required")
	}
	if req.Model == nil {
		return Result{}, errors.New("model required")
	}
	format := strings.TrimSpace(req.OutputFormat)
	if format == "" {
		return Result{}, errors.New("output format required")
	}

	args := []string{
		"segment",
		"--input", req.InputPath,
		"--output", req.OutputPath,
		"--model-dir", req.Model.Dir,
		"--prob-thresh", strconv.FormatFloat(req.Model.ProbThresh, 'g', -1, 64),
		"--nms-thresh", strconv.FormatFloat(req.Model.NMSThresh, 'g', -1, 64),
		"--scale", req.Scale.Flag(),
		"--format", format,
		"--progress-json",
	}
	if req.GenerateROI {
		args = append(args, "--gen-roi")
	}
	if req.No8BitShift {
		args = append(args, "--no-8bit-shift")
	}

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("start %s: %w", c.binary, err)
	}

	var result Result
	var runErr *RunError
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Bytes()
		var payload struct {
			Type        string  `json:"type"`
			Percent     float64 `json:"percent"`
			Stage       string  `json:"stage"`
			Message     string  `json:"message"`
			Kind        string  `json:"kind"`
			LabelPath   string  `json:"label_path"`
			ObjectCount int     `json:"object_count"`
		}
		if err := json.Unmarshal(line, &payload); err != nil {
			continue
		}
		switch payload.Type {
		case "progress":
			if progress != nil {
				progress(ProgressUpdate{Percent: payload.Percent, Stage: payload.Stage, Message: payload.Message})
			}
		case "result":
			result = Result{LabelPath: payload.LabelPath, ObjectCount: payload.ObjectCount}
		case "error":
			kind := strings.TrimSpace(payload.Kind)
			if kind == "" {
				kind = "inference"
			}
			runErr = &RunError{Kind: kind, Message: payload.Message}
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("read runner output: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		if runErr != nil {
			return Result{}, runErr
		}
		return Result{}, fmt.Errorf("%s segment failed: %w", c.binary, err)
	}
	if runErr != nil {
		return Result{}, runErr
	}

	if result.LabelPath == "" {
		result.LabelPath = req.OutputPath
	}
	return result, nil
}

var _ Client = (*CLI)(nil)
