// Package deps verifies that the external binaries the pipeline shells out
// to are installed before a batch run starts.
package deps
