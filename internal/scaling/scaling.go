package scaling

import (
	"fmt"
	"strconv"
	"strings"
)

// Reference training resolution in micrometers. Both stage models were
// trained on volumes resampled to 0.2x0.2x2um, so every input is rescaled
// relative to these values.
const (
	ReferenceXY = 0.2
	ReferenceZ  = 2.0
)

// PixelSize is the physical voxel size of the input data in micrometers,
// in the X, Y, Z order users supply it.
type PixelSize struct {
	X float64
	Y float64
	Z float64
}

// ScaleFactors holds the per-axis resampling ratios in Z, Y, X order.
// Inference expects z-first axis ordering; the transposition from the
// user-facing X, Y, Z order happens exactly once, in Compute.
type ScaleFactors struct {
	Z float64
	Y float64
	X float64
}

// Flag renders the factors as a "z,y,x" triple for the runner command line.
func (s ScaleFactors) Flag() string {
	return fmt.Sprintf("%g,%g,%g", s.Z, s.Y, s.X)
}

func (s ScaleFactors) String() string {
	return fmt.Sprintf("(z=%g, y=%g, x=%g)", s.Z, s.Y, s.X)
}

// ParsePixelSize parses the "x,y,z" CLI triple into a PixelSize.
func ParsePixelSize(value string) (PixelSize, error) {
	parts := strings.Split(strings.TrimSpace(value), ",")
	if len(parts) != 3 {
		return PixelSize{}, fmt.Errorf("pixel size %q: expected three comma-separated values (x,y,z)", value)
	}
	axes := make([]float64, 3)
	for i, part := range parts {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return PixelSize{}, fmt.Errorf("pixel size %q: %q is not a number", value, strings.TrimSpace(part))
		}
		axes[i] = parsed
	}
	return PixelSize{X: axes[0], Y: axes[1], Z: axes[2]}, nil
}

// Compute derives the resampling factors from the supplied pixel size.
// The result is ordered (z, y, x): z scales against the 2um training
// spacing, x and y against the 0.2um lateral training spacing.
func Compute(px PixelSize) (ScaleFactors, error) {
	if px.X <= 0 || px.Y <= 0 || px.Z <= 0 {
		return ScaleFactors{}, fmt.Errorf("pixel size must be positive on every axis, got x=%g y=%g z=%g", px.X, px.Y, px.Z)
	}
	return ScaleFactors{
		Z: px.Z / ReferenceZ,
		Y: px.X / ReferenceXY,
		X: px.Y / ReferenceXY,
	}, nil
}
