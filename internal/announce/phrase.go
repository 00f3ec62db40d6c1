package announce

import (
	"fmt"
	"math"
	"strings"

	"github.com/ironsheep/sightline/internal/detection"
	"github.com/ironsheep/sightline/internal/geometry"
)

// Phrase renders one detection for speech, for example
// "Dog on your left, about 1.5 meters away".
func Phrase(d detection.Detection) string {
	var b strings.Builder
	b.WriteString(d.Label())

	switch d.Position() {
	case geometry.ZoneLeft:
		b.WriteString(" on your left")
	case geometry.ZoneRight:
		b.WriteString(" on your right")
	default:
		b.WriteString(" ahead")
	}

	if est, ok := d.Distance(); ok {
		fmt.Fprintf(&b, ", about %s away", meters(est.Meters))
	}
	return b.String()
}

// Phrases joins the phrases for a detection set.
func Phrases(dets []detection.Detection) string {
	parts := make([]string, len(dets))
	for i, d := range dets {
		parts[i] = Phrase(d)
	}
	return strings.Join(parts, ". ")
}

func meters(m float64) string {
	if m == 1 {
		return "1 meter"
	}
	if m == math.Trunc(m) {
		return fmt.Sprintf("%.0f meters", m)
	}
	return fmt.Sprintf("%.1f meters", m)
}
