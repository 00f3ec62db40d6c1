package imaging

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/sightline/internal/geometry"
)

const (
	// NoiseFloor is the edge strength a sample must exceed to count as
	// object signal.
	NoiseFloor = 30

	// activityStride samples every 8th pixel in each axis.
	activityStride = 8

	// activityCandidateRatio keeps regions within 80% of the most active one.
	activityCandidateRatio = 0.8
)

// sampleRows returns the vertical middle half of the frame, [25%, 75%).
// Floors and ceilings carry little subject matter.
func sampleRows(f *Frame) (y1, y2 int) {
	return f.Height / 4, f.Height * 3 / 4
}

// sampleColumns returns the pixel span of a zone's third of the frame.
func sampleColumns(f *Frame, z geometry.Zone) (x1, x2 int) {
	third := f.Width / 3
	switch z {
	case geometry.ZoneLeft:
		return 0, third
	case geometry.ZoneRight:
		return 2 * third, f.Width
	default:
		return third, 2 * third
	}
}

// RegionActivity returns the mean edge strength of the samples in the zone
// that rise above the noise floor, or 0 when none do.
//
// The zone is one third of the frame width, sampled over rows 25%–75% of the
// height at every 8th pixel in each axis. An unreadable frame has no
// activity.
func RegionActivity(f *Frame, z geometry.Zone) float64 {
	if f.Validate() != nil {
		return 0
	}

	x1, x2 := sampleColumns(f, z)
	y1, y2 := sampleRows(f)

	strengths := make([]float64, 0, ((x2-x1)/activityStride+1)*((y2-y1)/activityStride+1))
	for y := y1; y < y2; y += activityStride {
		for x := x1; x < x2; x += activityStride {
			r, g, b := f.RGB(x, y)
			if s := EdgeStrength(r, g, b); s > NoiseFloor {
				strengths = append(strengths, float64(s))
			}
		}
	}

	if len(strengths) == 0 {
		return 0
	}
	return stat.Mean(strengths, nil)
}

// ActivityReport describes how a position was inferred from pixel activity.
type ActivityReport struct {
	// Activity holds the score of each zone, indexed by geometry.Zone.
	Activity [3]float64 `json:"activity"`

	// Candidates lists zones scoring within 80% of the maximum.
	Candidates []geometry.Zone `json:"candidates"`

	// Position is the resolved zone.
	Position geometry.Zone `json:"position"`
}

// AnalyzeActivity scores all three zones and resolves a position.
//
// Zones within 80% of the maximum are candidates; the single highest wins,
// with ties going to the leftmost. If no zone has any activity (including
// an unreadable frame) the position is Center.
func AnalyzeActivity(f *Frame) ActivityReport {
	report := ActivityReport{Position: geometry.ZoneCenter}

	scores := make([]float64, len(geometry.AllZones))
	for i, z := range geometry.AllZones {
		scores[i] = RegionActivity(f, z)
		report.Activity[i] = scores[i]
	}

	best := floats.Max(scores)
	if best <= 0 {
		return report
	}

	for i, z := range geometry.AllZones {
		if scores[i] >= best*activityCandidateRatio {
			report.Candidates = append(report.Candidates, z)
		}
	}
	report.Position = geometry.AllZones[floats.MaxIdx(scores)]
	return report
}

// ResolvePosition infers where the subject of a frame sits when the
// detector supplied only a label.
func ResolvePosition(f *Frame) geometry.Zone {
	return AnalyzeActivity(f).Position
}
