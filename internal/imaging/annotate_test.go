package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/ironsheep/sightline/internal/geometry"
)

func TestAnnotate(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			src.Set(x, y, color.Gray{40})
		}
	}

	boxes := []AnnotatedBox{
		{Label: "Dog", Box: geometry.NewRect(0.05, 0.4, 0.25, 0.3)},
		{Label: "Chair", Box: geometry.NewRect(0.7, 0.2, 0.2, 0.5)},
	}

	result, err := Annotate(src, boxes, geometry.DefaultZones)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if result.Width != 200 || result.Height != 100 || result.Boxes != 2 {
		t.Errorf("result: got %+v", result)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	out, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}

	// Left edge of the dog box is drawn in the left-zone color
	want := zoneColors[geometry.ZoneLeft]
	r, g, b, _ := out.At(10, 60).RGBA()
	wr, wg, wb, _ := want.RGBA()
	if r>>8 != wr>>8 || g>>8 != wg>>8 || b>>8 != wb>>8 {
		t.Errorf("box outline color: got (%d,%d,%d), want %s", r>>8, g>>8, b>>8, want.Hex())
	}
}

func TestAnnotate_NoBoxes(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 30, 30))
	result, err := Annotate(src, nil, geometry.ThirdsZones)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if result.Boxes != 0 {
		t.Errorf("Boxes: got %d, want 0", result.Boxes)
	}
}

func TestZoneColorDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, z := range geometry.AllZones {
		seen[ZoneColor(z)] = true
	}
	if len(seen) != 3 {
		t.Errorf("zone colors should be distinct: %v", seen)
	}
}
