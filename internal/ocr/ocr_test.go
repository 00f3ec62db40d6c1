package ocr

import (
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/sightline/internal/geometry"
)

func word(text string, conf, x float64) Observation {
	return Observation{Text: text, Confidence: conf, Box: geometry.NewRect(x, 0.4, 0.1, 0.05)}
}

func TestReadingOrder(t *testing.T) {
	obs := []Observation{word("world", 0.9, 0.5), word("hello", 0.9, 0.1), word("again", 0.9, 0.8)}
	got := ReadingOrder(obs)

	texts := make([]string, len(got))
	for i, o := range got {
		texts[i] = o.Text
	}
	if diff := cmp.Diff([]string{"hello", "world", "again"}, texts); diff != "" {
		t.Errorf("reading order mismatch (-want +got):\n%s", diff)
	}
	if obs[0].Text != "world" {
		t.Error("ReadingOrder modified its input")
	}
}

func TestSentence(t *testing.T) {
	obs := []Observation{
		word("$4.99", 0.8, 0.7),
		word("Coffee", 0.9, 0.1),
		word("xqzkt", 0.9, 0.3),
		word("Large", 0.2, 0.4),
		word("only", 0.85, 0.5),
	}
	if got := Sentence(obs, 0.5); got != "Coffee only $4.99" {
		t.Errorf("Sentence: got %q", got)
	}
	if got := Sentence(nil, 0); got != "" {
		t.Errorf("Sentence(nil): got %q", got)
	}
}

func TestIsPlausibleWord(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"hello", true},
		{"Street", true},
		{"rhythm", true},
		{"strengths", true},
		{"eye", true},
		{"queue", true},
		{"don't", true},
		{"EXIT", true},
		{"TV", true},
		{"a", true},
		{"I", true},
		{"(open)", true},
		{"$4.99", true},
		{"€12", true},
		{"3,50€", true},
		{"10 USD", true},
		{"2024", true},
		{"10:30", true},
		{"50%", true},
		{"5kg", true},
		{"3rd", true},

		{"", false},
		{"...", false},
		{"x", false},
		{"bcdfg", false},
		{"xqzkt", false},
		{"hello111", false},
		{"l0ve", false},
		{"Hhello", false},
		{"savvy", false},
		{"coool", false},
		{"aeiouae", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := IsPlausibleWord(tt.token); got != tt.want {
				t.Errorf("IsPlausibleWord(%q): got %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestPreprocess(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{200, 40, 40, 255})
		}
	}

	out := Preprocess(img)
	if out.Bounds().Dy() != minTextHeight {
		t.Errorf("height: got %d, want %d", out.Bounds().Dy(), minTextHeight)
	}
	if out.Bounds().Dx() != 600 {
		t.Errorf("width: got %d, want 600", out.Bounds().Dx())
	}

	r, g, b, _ := out.At(10, 10).RGBA()
	if r != g || g != b {
		t.Errorf("expected gray output, got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestCropRegion(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	crop := CropRegion(img, geometry.NewRect(0.25, 0.5, 0.5, 0.5))
	if crop.Bounds().Dx() != 100 || crop.Bounds().Dy() != 50 {
		t.Errorf("crop size: got %dx%d, want 100x50", crop.Bounds().Dx(), crop.Bounds().Dy())
	}

	clamped := CropRegion(img, geometry.NewRect(0.9, 0.9, 0.5, 0.5))
	if clamped.Bounds().Dx() != 20 || clamped.Bounds().Dy() != 10 {
		t.Errorf("clamped crop size: got %dx%d, want 20x10", clamped.Bounds().Dx(), clamped.Bounds().Dy())
	}
}
