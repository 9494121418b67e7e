// Package model loads the two stage-specific segmentation models and routes
// each input volume to the right one based on its developmental time index.
//
// Embryo nuclei change shape enough over development that a single shape
// prior segments poorly across the whole series, so runs carry an early-stage
// model, optionally a late-stage model, and a timepoint switch that splits
// the series between them. Both models are initialized eagerly with their
// probability and NMS thresholds before the first volume is processed.
package model
