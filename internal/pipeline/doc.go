// Package pipeline drives batch segmentation: it enumerates input volumes,
// routes each one to the early or late stage model by its time index, invokes
// the external inference runner, and records per-file outcomes in the run
// ledger. Per-file failures skip to the next volume; configuration failures
// abort the batch.
package pipeline
