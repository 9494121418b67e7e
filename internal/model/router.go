package model

import (
	"fmt"

	"embseg/internal/services"
)

// AlwaysEarly is the timepoint switch sentinel that routes every input to
// the early-stage model regardless of its time index.
const AlwaysEarly = -1

// Router selects the applicable stage model for a given time index. It is
// immutable after construction and therefore safe to consult from anywhere
// in the driver loop.
type Router struct {
	early    *Model
	late     *Model
	switchAt int
}

// NewRouter builds a router over the loaded stage models. The late model may
// be nil when no late-stage directory was configured; routing then fails only
// if an input actually demands the late stage.
func NewRouter(early, late *Model, switchAt int) (*Router, error) {
	if early == nil {
		return nil, services.Wrap(services.ErrConfiguration, "router", "", "early-stage model is required", nil)
	}
	if switchAt < AlwaysEarly {
		return nil, services.Wrap(services.ErrConfiguration, "router", "", fmt.Sprintf("timepoint switch %d is invalid; use -1 to disable late routing", switchAt), nil)
	}
	return &Router{early: early, late: late, switchAt: switchAt}, nil
}

// Select returns the model to apply to an input with the given time index.
//
// With switchAt == -1 every index maps to the early model. Otherwise indices
// below the switch use the early model and all others the late model; asking
// for the late stage without a configured late model is a configuration
// error, never a silent fallback to early.
func (r *Router) Select(timeIndex int) (*Model, error) {
	if r.switchAt == AlwaysEarly || timeIndex < r.switchAt {
		return r.early, nil
	}
	if r.late == nil {
		return nil, services.Wrap(services.ErrConfiguration, "router", "",
			fmt.Sprintf("time index %d requires the late-stage model but no late model directory was configured", timeIndex), nil)
	}
	return r.late, nil
}

// HasLate reports whether a late-stage model was configured.
func (r *Router) HasLate() bool {
	return r.late != nil
}
