package geometry

import (
	"fmt"
	"strings"
)

// Zone is one of the three horizontal partitions of a frame used for
// directional guidance.
type Zone int

const (
	ZoneLeft Zone = iota
	ZoneCenter
	ZoneRight
)

// AllZones lists the zones left to right.
var AllZones = []Zone{ZoneLeft, ZoneCenter, ZoneRight}

func (z Zone) String() string {
	switch z {
	case ZoneLeft:
		return "left"
	case ZoneCenter:
		return "center"
	case ZoneRight:
		return "right"
	default:
		return fmt.Sprintf("zone(%d)", int(z))
	}
}

// MarshalText encodes the zone as its lowercase name.
func (z Zone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

// UnmarshalText accepts the names produced by String, case-insensitively.
func (z *Zone) UnmarshalText(text []byte) error {
	parsed, err := ParseZone(string(text))
	if err != nil {
		return err
	}
	*z = parsed
	return nil
}

// ParseZone converts "left", "center"/"centre"/"middle", or "right" to a Zone.
func ParseZone(s string) (Zone, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return ZoneLeft, nil
	case "center", "centre", "middle":
		return ZoneCenter, nil
	case "right":
		return ZoneRight, nil
	default:
		return ZoneCenter, fmt.Errorf("unknown zone: %q", s)
	}
}

// Span returns the zone's horizontal extent as equal thirds of the frame.
// Pixel-level analysis always works on thirds regardless of the
// configured position boundaries.
func (z Zone) Span() (x1, x2 float64) {
	switch z {
	case ZoneLeft:
		return 0, 1.0 / 3.0
	case ZoneRight:
		return 2.0 / 3.0, 1
	default:
		return 1.0 / 3.0, 2.0 / 3.0
	}
}

// Zones holds the two normalized x boundaries that split a frame into
// left, center and right.
type Zones struct {
	Left  float64 `json:"left" mapstructure:"left"`
	Right float64 `json:"right" mapstructure:"right"`
}

// DefaultZones is the 40/20/40 split.
var DefaultZones = Zones{Left: 0.4, Right: 0.6}

// ThirdsZones is the equal-thirds split.
var ThirdsZones = Zones{Left: 0.33, Right: 0.67}

// Valid reports whether the boundaries are ordered inside (0,1).
func (zs Zones) Valid() bool {
	return zs.Left > 0 && zs.Left < zs.Right && zs.Right < 1
}

// ZoneAt classifies a normalized x coordinate.
func (zs Zones) ZoneAt(x float64) Zone {
	switch {
	case x < zs.Left:
		return ZoneLeft
	case x > zs.Right:
		return ZoneRight
	default:
		return ZoneCenter
	}
}

// ZoneOf classifies a rectangle by its center x.
func (zs Zones) ZoneOf(r Rect) Zone {
	cx, _ := r.Center()
	return zs.ZoneAt(cx)
}

// ZoneBox returns a synthetic box covering the zone's third of the frame over
// the vertical middle half. Its center classifies back into the same zone
// under both DefaultZones and ThirdsZones.
func ZoneBox(z Zone) Rect {
	x1, x2 := z.Span()
	return Rect{X: x1, Y: 0.25, Width: x2 - x1, Height: 0.5}
}
