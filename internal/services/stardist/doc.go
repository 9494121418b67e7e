// Package stardist drives the external stardist-runner worker, the process
// that owns model weights, volume decoding, and the 3D forward pass.
//
// The Go side never holds voxel data: one runner invocation reads a volume,
// rescales it to the training resolution, applies the model with its baked-in
// thresholds, and writes the instance label volume (plus ROI artifacts when
// requested). The runner streams JSON events on stdout; this package parses
// them into progress callbacks, a typed result, and classified failures.
package stardist
