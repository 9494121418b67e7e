// Package logging assembles the structured slog loggers used across the
// segmentation pipeline.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and defines the standardized field keys (input file, time index,
// model stage, run id) so every component emits progress lines with the same
// shape. A no-op logger is provided for tests.
package logging
