package detection

import "fmt"

// DistanceCategory is a coarse distance band.
type DistanceCategory int

const (
	CategoryNone DistanceCategory = iota
	VeryClose
	Close
	Medium
	Far
	VeryFar
)

func (c DistanceCategory) String() string {
	switch c {
	case VeryClose:
		return "very close"
	case Close:
		return "close"
	case Medium:
		return "medium"
	case Far:
		return "far"
	case VeryFar:
		return "very far"
	case CategoryNone:
		return ""
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// MarshalText encodes the category as its spoken name.
func (c DistanceCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Estimate is a distance band with its representative distance.
type Estimate struct {
	Meters   float64          `json:"meters"`
	Category DistanceCategory `json:"category"`
}

// distanceBands is checked in order; the first band whose minimum area the
// box reaches wins.
var distanceBands = []struct {
	minArea float64
	est     Estimate
}{
	{0.15, Estimate{0.5, VeryClose}},
	{0.08, Estimate{1.0, Close}},
	{0.04, Estimate{1.5, Medium}},
	{0.02, Estimate{2.5, Far}},
}

// EstimateDistance maps a normalized box area (width × height) to a distance
// band. It reports false for a degenerate area of zero or less.
func EstimateDistance(area float64) (Estimate, bool) {
	if area <= 0 {
		return Estimate{}, false
	}
	for _, b := range distanceBands {
		if area >= b.minArea {
			return b.est, true
		}
	}
	return Estimate{Meters: 4.0, Category: VeryFar}, true
}
