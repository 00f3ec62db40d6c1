package detection

import (
	"encoding/json"

	"github.com/ironsheep/sightline/internal/geometry"
)

// Raw is one hit as emitted by a detector channel, before normalization.
// Box is nil for label-only detectors.
type Raw struct {
	Label      string         `json:"label"`
	Confidence float64        `json:"confidence"`
	Box        *geometry.Rect `json:"box,omitempty"`
}

// Detection is a normalized single-object observation for one frame.
//
// The zero value is an empty detection centered in the frame.
type Detection struct {
	label       string
	confidence  float64
	box         geometry.Rect
	position    geometry.Zone
	hasGeometry bool
	distance    Estimate
	hasDistance bool
}

// New builds a detection from a box produced by a geometry-capable detector.
// The position is derived from the box center and the distance from its area.
func New(label string, confidence float64, box geometry.Rect, zones geometry.Zones) Detection {
	d := Detection{
		label:       label,
		confidence:  confidence,
		box:         box,
		position:    zones.ZoneOf(box),
		hasGeometry: true,
	}
	d.distance, d.hasDistance = EstimateDistance(box.Area())
	return d
}

// NewLabelOnly builds a detection for a hit that has no box. It is placed on
// the synthetic box of zone z and carries no distance.
func NewLabelOnly(label string, confidence float64, z geometry.Zone, zones geometry.Zones) Detection {
	box := geometry.ZoneBox(z)
	return Detection{
		label:      label,
		confidence: confidence,
		box:        box,
		position:   zones.ZoneOf(box),
	}
}

// Label returns the cleaned, human-readable category name.
func (d Detection) Label() string { return d.label }

// Confidence returns the detector score in [0,1].
func (d Detection) Confidence() float64 { return d.confidence }

// Box returns the bounding box in normalized coordinates.
func (d Detection) Box() geometry.Rect { return d.box }

// Position returns the zone of the box center.
func (d Detection) Position() geometry.Zone { return d.position }

// HasGeometry reports whether the box came from a geometry-capable detector
// rather than a synthetic zone box.
func (d Detection) HasGeometry() bool { return d.hasGeometry }

// Distance returns the distance estimate, if the detection has one.
func (d Detection) Distance() (Estimate, bool) { return d.distance, d.hasDistance }

// WithBox returns a copy of d placed on box, which is treated as real
// geometry. Position and distance are recomputed.
func (d Detection) WithBox(box geometry.Rect, zones geometry.Zones) Detection {
	return New(d.label, d.confidence, box, zones)
}

type detectionJSON struct {
	Label            string           `json:"label"`
	Confidence       float64          `json:"confidence"`
	Box              geometry.Rect    `json:"box"`
	Position         geometry.Zone    `json:"position"`
	HasGeometry      bool             `json:"has_geometry"`
	Distance         *float64         `json:"distance_m,omitempty"`
	DistanceCategory DistanceCategory `json:"distance_category,omitempty"`
}

// MarshalJSON encodes the detection with its derived fields.
func (d Detection) MarshalJSON() ([]byte, error) {
	out := detectionJSON{
		Label:       d.label,
		Confidence:  d.confidence,
		Box:         d.box,
		Position:    d.position,
		HasGeometry: d.hasGeometry,
	}
	if d.hasDistance {
		m := d.distance.Meters
		out.Distance = &m
		out.DistanceCategory = d.distance.Category
	}
	return json.Marshal(out)
}

// Labels returns the labels of dets in order.
func Labels(dets []Detection) []string {
	labels := make([]string, len(dets))
	for i, d := range dets {
		labels[i] = d.label
	}
	return labels
}
