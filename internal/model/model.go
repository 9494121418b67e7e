package model

import (
	"fmt"
	"os"

	"embseg/internal/services"
)

// Stage identifies which developmental window a trained model covers.
type Stage string

const (
	StageEarly Stage = "early"
	StageLate  Stage = "late"
)

// Model is an initialized shape-prior segmentation model: a validated model
// directory with its acceptance thresholds baked in. Instances are read-only
// after Load and safe to share across sequential inference calls.
type Model struct {
	Stage      Stage
	Dir        string
	ProbThresh float64
	NMSThresh  float64
}

// Load validates the model directory and thresholds for one stage. Both
// stage models are loaded eagerly before any input is processed, so a bad
// configuration surfaces before the first volume is read.
func Load(stage Stage, dir string, probThresh, nmsThresh float64) (*Model, error) {
	if dir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "model", string(stage), "model directory is required", nil)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "model", string(stage), fmt.Sprintf("model directory %q", dir), err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrConfiguration, "model", string(stage), fmt.Sprintf("model path %q is not a directory", dir), nil)
	}
	if probThresh < 0 || probThresh > 1 {
		return nil, services.Wrap(services.ErrConfiguration, "model", string(stage), fmt.Sprintf("probability threshold %g outside [0,1]", probThresh), nil)
	}
	if nmsThresh < 0 || nmsThresh > 1 {
		return nil, services.Wrap(services.ErrConfiguration, "model", string(stage), fmt.Sprintf("nms threshold %g outside [0,1]", nmsThresh), nil)
	}
	return &Model{Stage: stage, Dir: dir, ProbThresh: probThresh, NMSThresh: nmsThresh}, nil
}
