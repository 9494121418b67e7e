// Package inputs resolves a user-supplied path into the ordered sequence of
// volume files a batch run will process, and parses the naming components
// (including the developmental time index) out of each filename.
//
// Single files bypass extension filtering; directories are walked recursively
// and filtered to the klb/h5/tif/npy formats the inference runner reads.
package inputs
