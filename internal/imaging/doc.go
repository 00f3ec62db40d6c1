// Package imaging provides the pixel-level analysis used by the detection
// pipeline: raw frame handling, per-zone activity scoring, the far-object
// filter, frame loading from image files, and debug annotation overlays.
//
// # Frames
//
// A Frame is a raw camera buffer with 4 bytes per pixel in B, G, R, A order
// and an explicit row stride, matching what capture pipelines deliver.
// Frames loaded from image files go through FromImage.
//
// # Zones and Sampling
//
// Pixel analysis divides the frame into three equal-width zones (left,
// center, right) and samples only the vertical middle half of the frame
// (rows 25% to 75% of the height) to bias toward subject matter rather than
// floor or ceiling.
//
// # Edge Strength
//
// Both analyzers use the same per-pixel proxy for object presence:
//
//	edge = |R-G| + |G-B| + |B-R|
//
// Samples at or below NoiseFloor (30) are treated as background.
//
// # Failure Policy
//
// Analysis functions never return errors. An unreadable frame produces the
// safest answer for each question: no activity, a center position, and
// "too far" for the far-object filter. Silence is preferred to a wrong
// announcement.
//
// # Thread Safety
//
// All analysis functions are pure and may be called concurrently. FrameCache
// is safe for concurrent use.
package imaging
