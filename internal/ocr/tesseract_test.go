package ocr

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/sightline/internal/geometry"
)

// drawText draws text on an image using basicfont
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// createImageWithText renders text in black on white and scales it up by
// repeating pixels, so Tesseract sees glyphs of a usable size.
func createImageWithText(text string, scale int) *image.RGBA {
	width := len(text)*7 + 40
	height := 40

	small := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	drawText(small, 20, 25, text, color.Black)

	img := image.NewRGBA(image.Rect(0, 0, width*scale, height*scale))
	for y := 0; y < height*scale; y++ {
		for x := 0; x < width*scale; x++ {
			img.Set(x, y, small.At(x/scale, y/scale))
		}
	}
	return img
}

func skipWithoutTesseract(t *testing.T, err error) {
	t.Helper()
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "tesseract") || strings.Contains(msg, "library") || strings.Contains(msg, "language") {
		t.Skip("Tesseract not available")
	}
}

func TestTesseract_Recognize(t *testing.T) {
	if testing.Short() {
		t.Skip("OCR is slow")
	}

	img := createImageWithText("EXIT STAIRS", 4)
	obs, err := Tesseract{}.Recognize(context.Background(), img)
	if err != nil {
		skipWithoutTesseract(t, err)
		t.Fatalf("Recognize failed: %v", err)
	}

	for _, o := range obs {
		if o.Box.X < 0 || o.Box.MaxX() > 1.0001 || o.Box.Y < 0 || o.Box.MaxY() > 1.0001 {
			t.Errorf("box %s for %q is not normalized", o.Box, o.Text)
		}
		if o.Confidence < 0 || o.Confidence > 1 {
			t.Errorf("confidence %.2f for %q out of range", o.Confidence, o.Text)
		}
	}
}

func TestTesseract_RecognizeRegion_Offsets(t *testing.T) {
	if testing.Short() {
		t.Skip("OCR is slow")
	}

	img := createImageWithText("OPEN", 4)
	region := geometry.NewRect(0.5, 0, 0.5, 1)
	obs, err := Tesseract{}.RecognizeRegion(context.Background(), img, region)
	if err != nil {
		skipWithoutTesseract(t, err)
		t.Fatalf("RecognizeRegion failed: %v", err)
	}
	for _, o := range obs {
		if o.Box.X < 0.5 {
			t.Errorf("box %s should be offset into the right half", o.Box)
		}
	}
}

func TestTesseract_RecognizeRegion_Empty(t *testing.T) {
	img := createImageWithText("X", 1)
	obs, err := Tesseract{}.RecognizeRegion(context.Background(), img, geometry.NewRect(2, 2, 1, 1))
	if err != nil {
		t.Fatalf("RecognizeRegion failed: %v", err)
	}
	if len(obs) != 0 {
		t.Errorf("region outside the image should yield nothing, got %v", obs)
	}
}

func TestTesseract_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Tesseract{}).Recognize(ctx, createImageWithText("X", 1)); err == nil {
		t.Error("Recognize should fail on a canceled context")
	}
}

func TestGetInfo(t *testing.T) {
	info := GetInfo()
	if info.Backend != "gosseract" {
		t.Errorf("Backend = %q, want gosseract", info.Backend)
	}
	if info.Available != (info.Version != "") {
		t.Errorf("Available = %v with version %q", info.Available, info.Version)
	}
	if info.Version != Version() {
		t.Errorf("Version = %q, want %q", info.Version, Version())
	}
}
