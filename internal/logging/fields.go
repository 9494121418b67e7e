package logging

import "log/slog"

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldInputFile is the standardized structured logging key for the volume being processed.
	FieldInputFile = "input_file"
	// FieldTimeIndex is the standardized structured logging key for the parsed developmental time index.
	FieldTimeIndex = "time_index"
	// FieldModelStage is the standardized structured logging key for the routed model stage.
	FieldModelStage = "model_stage"
	// FieldRunID is the standardized structured logging key for batch run identifiers.
	FieldRunID = "run_id"
)

// WithComponent returns a logger tagged with a component name.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(slog.String(FieldComponent, component))
}
