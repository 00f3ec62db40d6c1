package detection

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/sightline/internal/geometry"
)

func boxPtr(x, y, w, h float64) *geometry.Rect {
	r := geometry.NewRect(x, y, w, h)
	return &r
}

func TestCleanLabel(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"dog", "Dog"},
		{"n02084071 dog, domestic dog, Canis familiaris", "Dog"},
		{"golden_retriever", "Golden retriever"},
		{"class_traffic_light", "Traffic light"},
		{"Label: coffee mug", "Coffee mug"},
		{"category:label:sofa", "Sofa"},
		{"  teddy   bear ", "Teddy bear"},
		{"", ""},
		{"n04285008", ""},
		{"éclair", "Éclair"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := CleanLabel(tt.raw); got != tt.want {
				t.Errorf("CleanLabel(%q): got %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestIsGeneric(t *testing.T) {
	generic := []string{"Object", "thing", "Surface", "background", "Unknown animal", "unidentified flying object", ""}
	for _, l := range generic {
		if !IsGeneric(l) {
			t.Errorf("IsGeneric(%q) = false, want true", l)
		}
	}
	specific := []string{"Dog", "Chair", "Traffic light", "Objective lens"}
	for _, l := range specific {
		if IsGeneric(l) {
			t.Errorf("IsGeneric(%q) = true, want false", l)
		}
	}
}

func TestNormalizer_Normalize(t *testing.T) {
	n := Normalizer{Zones: geometry.DefaultZones, MinConfidence: 0.3}

	d, ok := n.Normalize(Raw{Label: "person", Confidence: 0.9, Box: boxPtr(0.1, 0.1, 0.1, 0.1)}, geometry.ZoneCenter, false)
	if !ok {
		t.Fatal("person should survive normalization")
	}
	if d.Label() != "Person" {
		t.Errorf("Label: got %q", d.Label())
	}
	direct := geometry.DefaultZones.ZoneOf(geometry.NewRect(0.1, 0.1, 0.1, 0.1))
	if d.Position() != direct || geometry.DefaultZones.ZoneOf(d.Box()) != direct {
		t.Errorf("position round trip: got %s, want %s", d.Position(), direct)
	}

	if _, ok := n.Normalize(Raw{Label: "dog", Confidence: 0.2, Box: boxPtr(0, 0, 0.5, 0.5)}, geometry.ZoneCenter, true); ok {
		t.Error("hit under the confidence floor should be dropped even in returnAll mode")
	}
	if _, ok := n.Normalize(Raw{Label: "object", Confidence: 0.9}, geometry.ZoneCenter, false); ok {
		t.Error("generic label should be dropped")
	}
	if d, ok := n.Normalize(Raw{Label: "object", Confidence: 0.9}, geometry.ZoneCenter, true); !ok || d.Label() != "Object" {
		t.Error("generic label should be kept in returnAll mode")
	}
}

func TestNormalizer_LabelOnlyUsesFallback(t *testing.T) {
	n := Normalizer{Zones: geometry.DefaultZones}
	d, ok := n.Normalize(Raw{Label: "laptop", Confidence: 0.8}, geometry.ZoneRight, false)
	if !ok {
		t.Fatal("laptop should survive normalization")
	}
	if d.Position() != geometry.ZoneRight || d.HasGeometry() {
		t.Errorf("got position %s geometry %v, want right without geometry", d.Position(), d.HasGeometry())
	}

	// An empty box is as good as none
	d, _ = n.Normalize(Raw{Label: "laptop", Confidence: 0.8, Box: boxPtr(0.2, 0.2, 0, 0)}, geometry.ZoneLeft, false)
	if d.HasGeometry() || d.Position() != geometry.ZoneLeft {
		t.Errorf("empty box: got position %s geometry %v", d.Position(), d.HasGeometry())
	}
}

func TestNormalizer_NormalizeAll(t *testing.T) {
	n := Normalizer{Zones: geometry.DefaultZones, MinConfidence: 0.1}
	calls := 0
	resolve := func() geometry.Zone {
		calls++
		return geometry.ZoneLeft
	}

	raws := []Raw{
		{Label: "n03001627 chair", Confidence: 0.9},
		{Label: "thing", Confidence: 0.8},
		{Label: "table", Confidence: 0.7, Box: boxPtr(0.6, 0.5, 0.3, 0.3)},
		{Label: "lamp", Confidence: 0.6},
	}
	got := n.NormalizeAll(raws, resolve, false)

	if diff := cmp.Diff([]string{"Chair", "Table", "Lamp"}, Labels(got)); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if calls != 1 {
		t.Errorf("resolve called %d times, want 1", calls)
	}
	if got[0].Position() != geometry.ZoneLeft || got[2].Position() != geometry.ZoneLeft {
		t.Error("label-only hits should use the resolved zone")
	}

	calls = 0
	n.NormalizeAll(raws[2:3], resolve, false)
	if calls != 0 {
		t.Error("resolve should not run when every hit has a box")
	}
}
