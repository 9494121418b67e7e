// Package services defines shared utilities consumed by the segmentation
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that keep the failure
//     taxonomy (configuration, input parse, io, inference) uniform across
//     the pipeline, so the driver can decide between aborting the batch and
//     skipping a single file.
//   - The stardist subpackage, a thin exec wrapper around the external
//     model runner that keeps command execution and progress streaming
//     testable.
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// stays consistent.
package services
