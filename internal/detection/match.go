package detection

import "github.com/ironsheep/sightline/internal/geometry"

// BestMatch returns the candidate with the highest IoU against box. Ties go
// to the earliest candidate. It reports false when there are no candidates.
func BestMatch(box geometry.Rect, candidates []geometry.Rect) (geometry.Rect, float64, bool) {
	if len(candidates) == 0 {
		return geometry.Rect{}, 0, false
	}
	best := candidates[0]
	bestIoU := geometry.IoU(box, best)
	for _, c := range candidates[1:] {
		if iou := geometry.IoU(box, c); iou > bestIoU {
			best, bestIoU = c, iou
		}
	}
	return best, bestIoU, true
}

// MatchBoxes pairs each label detection with its best-IoU box from a
// geometry-only detector run on the same frame. Matched detections take the
// box as real geometry, so their position and distance follow it. When boxes
// is empty the detections are returned unchanged.
func MatchBoxes(labels []Detection, boxes []geometry.Rect, zones geometry.Zones) []Detection {
	if len(boxes) == 0 {
		return labels
	}
	out := make([]Detection, len(labels))
	for i, d := range labels {
		box, _, _ := BestMatch(d.box, boxes)
		out[i] = d.WithBox(box, zones)
	}
	return out
}
