package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/sightline/internal/geometry"
)

// AnnotatedBox is one labeled box to draw on an annotation overlay.
type AnnotatedBox struct {
	Label string
	Box   geometry.Rect
}

// AnnotateResult contains the annotated image
type AnnotateResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Boxes       int    `json:"boxes"`
}

// zoneColors gives each zone a distinct hue so a sighted reviewer can check
// position decisions at a glance.
var zoneColors = map[geometry.Zone]colorful.Color{
	geometry.ZoneLeft:   colorful.Hsv(210, 0.85, 0.95),
	geometry.ZoneCenter: colorful.Hsv(120, 0.85, 0.85),
	geometry.ZoneRight:  colorful.Hsv(30, 0.9, 0.95),
}

// ZoneColor returns the overlay color for a zone as a hex string.
func ZoneColor(z geometry.Zone) string {
	return zoneColors[z].Hex()
}

// Annotate draws the zone boundaries and each box, colored by the zone its
// center falls in, and returns the result as base64 PNG.
func Annotate(img image.Image, boxes []AnnotatedBox, zones geometry.Zones) (*AnnotateResult, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	result := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	// Zone boundaries: thin translucent white verticals
	guide := color.RGBA{255, 255, 255, 160}
	for _, bx := range []float64{zones.Left, zones.Right} {
		x := int(bx * float64(width))
		for y := 0; y < height; y++ {
			result.Set(x, y, guide)
		}
	}

	for _, b := range boxes {
		c := zoneColors[zones.ZoneOf(b.Box)]
		x1 := int(b.Box.X * float64(width))
		y1 := int(b.Box.Y * float64(height))
		x2 := int(b.Box.MaxX() * float64(width))
		y2 := int(b.Box.MaxY() * float64(height))
		drawOutline(result, x1, y1, x2, y2, 2, c)
		if b.Label != "" {
			drawLabel(result, x1+2, y1+2, b.Label, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		return nil, fmt.Errorf("failed to encode annotated image: %w", err)
	}

	return &AnnotateResult{
		Width:       width,
		Height:      height,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		Boxes:       len(boxes),
	}, nil
}

// drawOutline draws a rectangle border of the given thickness, clipped to
// the image.
func drawOutline(img *image.RGBA, x1, y1, x2, y2, thickness int, c color.Color) {
	b := img.Bounds()
	set := func(x, y int) {
		if image.Pt(x, y).In(b) {
			img.Set(x, y, c)
		}
	}
	for t := 0; t < thickness; t++ {
		for x := x1; x < x2; x++ {
			set(x, y1+t)
			set(x, y2-1-t)
		}
		for y := y1; y < y2; y++ {
			set(x1+t, y)
			set(x2-1-t, y)
		}
	}
}

// drawLabel renders text on a dark plate at (x, y), top-left anchored.
func drawLabel(img *image.RGBA, x, y int, text string, fg color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(fg), Face: face}

	w := d.MeasureString(text).Ceil()
	plate := image.Rect(x-1, y-1, x+w+1, y+face.Height+1).Intersect(img.Bounds())
	draw.Draw(img, plate, image.NewUniform(color.RGBA{0, 0, 0, 180}), image.Point{}, draw.Over)

	d.Dot = fixed.P(x, y+face.Ascent)
	d.DrawString(text)
}
