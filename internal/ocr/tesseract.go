package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/sightline/internal/geometry"
)

// Tesseract is a Recognizer backed by the Tesseract engine.
//
// Each call creates its own client, so a Tesseract value is safe for
// concurrent use.
type Tesseract struct {
	// Language is the Tesseract language code. Empty means "eng".
	Language string

	// TessdataPrefix points at the language data directory. Empty uses
	// Tesseract's default search path.
	TessdataPrefix string

	// Raw disables Preprocess.
	Raw bool
}

// Recognize runs word-level OCR on img.
//
// Recognition cannot be interrupted once started; ctx is checked before
// the engine runs.
func (t Tesseract) Recognize(ctx context.Context, img image.Image) ([]Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := img
	if !t.Raw {
		src = Preprocess(img)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}

	client, err := t.client()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	b := src.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	obs := make([]Observation, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		obs = append(obs, Observation{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Box: geometry.FromCorners(
				float64(box.Box.Min.X-b.Min.X)/w,
				float64(box.Box.Min.Y-b.Min.Y)/h,
				float64(box.Box.Max.X-b.Min.X)/w,
				float64(box.Box.Max.Y-b.Min.Y)/h,
			),
		})
	}
	return obs, nil
}

// RecognizeRegion runs OCR on a normalized region of img. Returned boxes are
// normalized against the whole image, not the crop.
func (t Tesseract) RecognizeRegion(ctx context.Context, img image.Image, region geometry.Rect) ([]Observation, error) {
	r := region.Clamp()
	if r.Empty() {
		return []Observation{}, nil
	}
	obs, err := t.Recognize(ctx, CropRegion(img, r))
	if err != nil {
		return nil, err
	}
	for i := range obs {
		box := obs[i].Box
		obs[i].Box = geometry.NewRect(
			r.X+box.X*r.Width,
			r.Y+box.Y*r.Height,
			box.Width*r.Width,
			box.Height*r.Height,
		)
	}
	return obs, nil
}

func (t Tesseract) client() (*gosseract.Client, error) {
	client := gosseract.NewClient()
	if t.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	lang := t.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	return client, nil
}

// Info describes the OCR backend.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Backend   string `json:"backend"`
}

// Version returns the linked Tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

// GetInfo reports whether Tesseract is usable.
func GetInfo() Info {
	v := Version()
	return Info{Available: v != "", Version: v, Backend: "gosseract"}
}
