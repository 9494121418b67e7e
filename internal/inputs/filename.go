package inputs

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Components are the pieces of an input filename the pipeline cares about.
// For /data/run1/emb_003.tif they are Base "emb_003", Prefix "emb_",
// Ext ".tif", and TimeIndex 3.
type Components struct {
	Base      string
	Prefix    string
	Ext       string
	TimeIndex int
}

// ParseComponents splits a volume path into naming components and extracts
// the time index from the trailing digit run of the base name. Microscope
// exports name time series frames with a zero-padded counter suffix
// (emb_003.klb, stack_t0042.h5), so the last digit run is the frame's
// position in the developmental series.
func ParseComponents(path string) (Components, error) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		return Components{}, fmt.Errorf("filename %q has no base name", path)
	}

	end := len(stem)
	start := end
	for start > 0 && stem[start-1] >= '0' && stem[start-1] <= '9' {
		start--
	}
	if start == end {
		return Components{}, fmt.Errorf("filename %q has no trailing time index digits", path)
	}

	index, err := strconv.Atoi(stem[start:end])
	if err != nil {
		return Components{}, fmt.Errorf("filename %q: parse time index: %w", path, err)
	}

	return Components{
		Base:      stem,
		Prefix:    stem[:start],
		Ext:       ext,
		TimeIndex: index,
	}, nil
}
