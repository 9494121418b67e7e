// Package scaling converts user-supplied physical pixel sizes into the
// per-axis resampling factors the segmentation models expect.
//
// The models were trained on 0.2x0.2x2um data, so inputs acquired at other
// resolutions are rescaled by the ratio of their pixel size to that
// reference. The output tuple is ordered (z, y, x) to match the axis order
// the inference runner consumes; downstream code must never reorder it.
package scaling
