package detection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ironsheep/sightline/internal/geometry"
)

// DefaultIoUThreshold is the overlap above which two boxes are treated as the
// same object.
const DefaultIoUThreshold = 0.5

// Order selects the order in which greedy NMS visits detections.
type Order int

const (
	// OrderInput visits detections in the order the channel produced them.
	OrderInput Order = iota

	// OrderConfidence visits detections from highest to lowest confidence,
	// so each cluster keeps its best-scoring member.
	OrderConfidence
)

func (o Order) String() string {
	switch o {
	case OrderConfidence:
		return "confidence"
	default:
		return "input"
	}
}

// ParseOrder accepts "input" or "confidence". The empty string is OrderInput.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "input":
		return OrderInput, nil
	case "confidence", "score":
		return OrderConfidence, nil
	default:
		return OrderInput, fmt.Errorf("unknown NMS order %q (valid: input, confidence)", s)
	}
}

// MarshalText encodes the order name.
func (o Order) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an order name.
func (o *Order) UnmarshalText(text []byte) error {
	parsed, err := ParseOrder(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// NMS removes detections whose box overlaps an already kept one by more than
// threshold IoU.
//
// The pass is greedy: each visited detection that is not yet suppressed is
// kept and suppresses every later unsuppressed one it overlaps. The output
// keeps the original relative order regardless of the visiting order.
// Detections without geometry sit on synthetic zone boxes and are passed
// through untouched.
func NMS(dets []Detection, threshold float64, order Order) []Detection {
	if len(dets) < 2 {
		return dets
	}

	visit := make([]int, 0, len(dets))
	for i, d := range dets {
		if d.hasGeometry {
			visit = append(visit, i)
		}
	}
	if order == OrderConfidence {
		sort.SliceStable(visit, func(a, b int) bool {
			return dets[visit[a]].confidence > dets[visit[b]].confidence
		})
	}

	suppressed := make([]bool, len(dets))
	for vi, i := range visit {
		if suppressed[i] {
			continue
		}
		for _, j := range visit[vi+1:] {
			if suppressed[j] {
				continue
			}
			if geometry.IoU(dets[i].box, dets[j].box) > threshold {
				suppressed[j] = true
			}
		}
	}

	out := make([]Detection, 0, len(dets))
	for i, d := range dets {
		if !suppressed[i] {
			out = append(out, d)
		}
	}
	return out
}
