package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks failures that make the whole run unusable:
	// missing model directories, invalid thresholds, bad pixel sizes,
	// unsupported output formats. These abort before any input is touched.
	ErrConfiguration = errors.New("configuration error")

	// ErrInputParse marks a filename whose time index cannot be extracted.
	ErrInputParse = errors.New("input parse error")

	// ErrIO marks unreadable inputs or unwritable outputs.
	ErrIO = errors.New("io error")

	// ErrInference marks a model forward-pass failure reported by the
	// runner. Not retried; inference failures are not assumed transient.
	ErrInference = errors.New("inference error")
)

// Wrap builds an error message that includes pipeline context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether an error must abort the batch rather than skip the
// current file.
func Fatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// Classify returns the taxonomy label recorded in the run ledger for err.
func Classify(err error) string {
	switch {
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrInputParse):
		return "input_parse"
	case errors.Is(err, ErrInference):
		return "inference"
	case errors.Is(err, ErrIO):
		return "io"
	default:
		return "unknown"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
