// Package detection turns raw detector hits into canonical, immutable
// Detection records and provides the per-frame post-processing applied to
// them.
//
// # Detections
//
// A Detection carries a cleaned label, a confidence in [0,1], a bounding box
// in normalized frame coordinates, and a position (left, center or right).
// The position is always derived from the box against a geometry.Zones split;
// there is no way to set it independently. Detections are values: accessors
// only, and "modifying" one (for example attaching a better box) returns a
// new Detection.
//
// Hits from label-only detectors (image classifiers) have no box of their
// own. They are given the synthetic box of the zone resolved from pixel
// activity and are marked as having no geometry, so they never carry a
// distance estimate.
//
// # Post-processing
//
//   - Normalizer: label cleanup, generic-label denylist, confidence floor
//   - NMS: greedy non-maximum suppression, input or confidence order
//   - EstimateDistance: box area to one of five distance bands
//   - MatchBoxes: pairs label detections with boxes from a geometry-only
//     detector by best IoU
package detection
