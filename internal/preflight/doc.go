// Package preflight validates the environment a batch run depends on before
// any volume is processed: runner binary availability, model directory
// access, and output directory writability and free space.
package preflight
