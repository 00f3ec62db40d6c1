package imaging

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ironsheep/sightline/internal/geometry"
)

// farStride samples every 4th pixel; finer than activity scoring because the
// size estimate needs a denser grid.
const farStride = 4

// DistanceConfig is a named threshold bundle for deciding whether the
// dominant object in a zone is too far away to be worth announcing.
//
// Presets are immutable values; pick one per call site rather than mutating.
type DistanceConfig struct {
	// Name identifies the preset.
	Name string `json:"name"`

	// MinObjectDensity is the minimum share of sampled pixels (0-1) whose
	// edge strength exceeds the noise floor.
	MinObjectDensity float64 `json:"min_object_density"`

	// MinEdgeStrength is the minimum peak edge strength (0-510).
	MinEdgeStrength float64 `json:"min_edge_strength"`

	// MinObjectSize is the minimum bounding extent of significant pixels as
	// a fraction (0-1) of the sampled grid.
	MinObjectSize float64 `json:"min_object_size"`

	// AggressiveFiltering rejects an object when any sub-test fails. When
	// false, two of three sub-tests must fail.
	AggressiveFiltering bool `json:"aggressive_filtering"`
}

// Distance presets, ordered from most to least permissive.
var (
	LenientDistance = DistanceConfig{
		Name:             "lenient",
		MinObjectDensity: 0.05,
		MinEdgeStrength:  40,
		MinObjectSize:    0.08,
	}

	DefaultDistance = DistanceConfig{
		Name:             "default",
		MinObjectDensity: 0.10,
		MinEdgeStrength:  60,
		MinObjectSize:    0.15,
	}

	AggressiveDistance = DistanceConfig{
		Name:                "aggressive",
		MinObjectDensity:    0.20,
		MinEdgeStrength:     90,
		MinObjectSize:       0.25,
		AggressiveFiltering: true,
	}

	// VeryCloseDistance is for "within arm's reach" modes.
	VeryCloseDistance = DistanceConfig{
		Name:                "veryClose",
		MinObjectDensity:    0.30,
		MinEdgeStrength:     110,
		MinObjectSize:       0.40,
		AggressiveFiltering: true,
	}

	UltraCloseDistance = DistanceConfig{
		Name:                "ultraClose",
		MinObjectDensity:    0.45,
		MinEdgeStrength:     140,
		MinObjectSize:       0.60,
		AggressiveFiltering: true,
	}
)

var distancePresets = map[string]DistanceConfig{
	"lenient":    LenientDistance,
	"default":    DefaultDistance,
	"aggressive": AggressiveDistance,
	"veryclose":  VeryCloseDistance,
	"ultraclose": UltraCloseDistance,
}

// PresetByName looks up a distance preset, ignoring case, dashes and
// underscores ("very_close" and "veryClose" are the same preset).
func PresetByName(name string) (DistanceConfig, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(name))
	if key == "" {
		return DefaultDistance, nil
	}
	cfg, ok := distancePresets[key]
	if !ok {
		return DistanceConfig{}, fmt.Errorf("unknown distance preset %q (valid: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return cfg, nil
}

// PresetNames lists the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(distancePresets))
	for _, cfg := range distancePresets {
		names = append(names, cfg.Name)
	}
	sort.Strings(names)
	return names
}

// FarAnalysis holds the pixel statistics behind a too-far decision.
type FarAnalysis struct {
	Zone                geometry.Zone `json:"zone"`
	Readable            bool          `json:"readable"`
	SignificantFraction float64       `json:"significant_fraction"`
	MaxEdgeStrength     float64       `json:"max_edge_strength"`
	ObjectSizeFraction  float64       `json:"object_size_fraction"`
	LowDensity          bool          `json:"low_density"`
	WeakEdges           bool          `json:"weak_edges"`
	SmallObject         bool          `json:"small_object"`
	TooFar              bool          `json:"too_far"`
}

// Failures counts the failed sub-tests.
func (a FarAnalysis) Failures() int {
	n := 0
	for _, failed := range []bool{a.LowDensity, a.WeakEdges, a.SmallObject} {
		if failed {
			n++
		}
	}
	return n
}

// AnalyzeFar measures the zone and applies cfg.
//
// Samples every 4th pixel over the zone's third of the frame and the
// vertical middle half. Three sub-tests are evaluated: significant-pixel
// density, peak edge strength, and the bounding extent of significant
// samples. An unreadable frame is reported as too far.
func AnalyzeFar(f *Frame, z geometry.Zone, cfg DistanceConfig) FarAnalysis {
	a := FarAnalysis{Zone: z}
	if f.Validate() != nil {
		a.TooFar = true
		return a
	}
	a.Readable = true

	x1, x2 := sampleColumns(f, z)
	y1, y2 := sampleRows(f)

	var (
		sampled, significant int
		maxEdge              int
		rows, cols           int
		minCol, maxCol       = -1, -1
		minRow, maxRow       = -1, -1
	)

	for y, row := y1, 0; y < y2; y, row = y+farStride, row+1 {
		rows = row + 1
		for x, col := x1, 0; x < x2; x, col = x+farStride, col+1 {
			if row == 0 {
				cols = col + 1
			}
			sampled++

			r, g, b := f.RGB(x, y)
			s := EdgeStrength(r, g, b)
			if s > maxEdge {
				maxEdge = s
			}
			if s <= NoiseFloor {
				continue
			}

			significant++
			if minCol < 0 || col < minCol {
				minCol = col
			}
			if col > maxCol {
				maxCol = col
			}
			if minRow < 0 {
				minRow = row
			}
			maxRow = row
		}
	}

	if sampled > 0 {
		a.SignificantFraction = float64(significant) / float64(sampled)
	}
	a.MaxEdgeStrength = float64(maxEdge)
	if significant > 0 && rows > 0 && cols > 0 {
		extent := (maxCol - minCol + 1) * (maxRow - minRow + 1)
		a.ObjectSizeFraction = float64(extent) / float64(rows*cols)
	}

	a.LowDensity = a.SignificantFraction < cfg.MinObjectDensity
	a.WeakEdges = a.MaxEdgeStrength < cfg.MinEdgeStrength
	a.SmallObject = a.ObjectSizeFraction < cfg.MinObjectSize

	if cfg.AggressiveFiltering {
		a.TooFar = a.Failures() > 0
	} else {
		a.TooFar = a.Failures() >= 2
	}
	return a
}

// IsTooFar reports whether the dominant object in zone z is too far away to
// be actionable under cfg. It never fails: unreadable frames are too far.
func IsTooFar(f *Frame, z geometry.Zone, cfg DistanceConfig) bool {
	return AnalyzeFar(f, z, cfg).TooFar
}

// IsTooFarAt is IsTooFar for a position already resolved to a string such
// as "left". Unknown positions are checked against the center zone.
func IsTooFarAt(f *Frame, position string, cfg DistanceConfig) bool {
	z, _ := geometry.ParseZone(position)
	return IsTooFar(f, z, cfg)
}
