package ocr

import (
	"context"
	"image"
	"sort"
	"strings"

	"github.com/ironsheep/sightline/internal/geometry"
)

// Observation is one recognized word.
type Observation struct {
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"`
	Box        geometry.Rect `json:"box"`
}

// Recognizer finds text in an image.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]Observation, error)
}

// ReadingOrder returns the observations sorted left to right by box x.
// Observations starting at the same x keep their recognizer order.
func ReadingOrder(obs []Observation) []Observation {
	out := append([]Observation(nil), obs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Box.X < out[j].Box.X
	})
	return out
}

// Sentence joins the plausible words scoring at least minConfidence, in
// reading order.
func Sentence(obs []Observation, minConfidence float64) string {
	words := make([]string, 0, len(obs))
	for _, o := range ReadingOrder(obs) {
		if o.Confidence < minConfidence {
			continue
		}
		if w := strings.TrimSpace(o.Text); IsPlausibleWord(w) {
			words = append(words, w)
		}
	}
	return strings.Join(words, " ")
}
