// Package detection compares two images of the same scene and reports what changed.
//
// The pipeline runs strictly forward:
//
//  1. Normalize: validate both images, resize them to the smaller width and
//     height with area averaging, and convert to linear BT.601 luminance.
//  2. Score: windowed structural similarity (SSIM) per pixel, giving a
//     SimilarityMap in [0,1] and an overall similarity percentage.
//  3. ExtractRegions: threshold the map into a ChangeMask, label 8-connected
//     components, drop components under a minimum area, rank by area.
//  4. Classify: bucket the percentage into a ChangeLevel.
//  5. Render: paint the continuous dissimilarity onto the "after" image.
//
// Detect runs the pipeline on decoded images; Compare runs it on raw bytes and
// returns a serializable Report.
//
// # Determinism
//
// Identical inputs and Options always produce identical maps, percentages and
// region lists. Swapping the two inputs yields the same percentage: every
// window score is computed from terms that are symmetric in the two images.
//
// # Errors
//
// Failures wrap one of ErrInvalidImage, ErrDimensionMismatch, ErrComputation
// or ErrInvalidOptions. ErrorTag maps an error to the tag reported to callers.
// No partial result is ever returned.
//
// # Concurrency
//
// All functions are stateless and safe to call concurrently. Score scores
// bands of window rows in parallel; Options.Workers bounds the goroutines.
package detection
