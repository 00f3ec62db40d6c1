package detection

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ironsheep/sightline/internal/geometry"
)

// synsetPrefix matches WordNet synset ids such as "n02084071" that some
// classifiers put in front of their labels.
var synsetPrefix = regexp.MustCompile(`^n\d{8}[\s:_-]*`)

// labelPrefixes are verbose technical prefixes stripped from labels,
// matched case-insensitively.
var labelPrefixes = []string{
	"label:",
	"class:",
	"class_",
	"category:",
	"object:",
	"obj_",
	"tag:",
	"coco:",
	"imagenet:",
}

// genericLabels are labels too vague to announce. Matched against the
// lowercased, cleaned label.
var genericLabels = map[string]struct{}{
	"object": {}, "objects": {}, "thing": {}, "things": {}, "item": {},
	"items": {}, "stuff": {}, "surface": {}, "background": {}, "foreground": {},
	"material": {}, "texture": {}, "pattern": {}, "structure": {}, "shape": {},
	"area": {}, "space": {}, "scene": {}, "image": {}, "picture": {},
	"photo": {}, "view": {}, "artifact": {}, "entity": {}, "physical entity": {},
	"abstraction": {}, "matter": {}, "substance": {}, "form": {}, "element": {},
	"piece": {}, "part": {}, "unit": {}, "whole": {}, "instrumentality": {},
	"commodity": {}, "covering": {}, "layer": {}, "color": {}, "light": {},
	"darkness": {}, "blur": {}, "other": {}, "misc": {}, "none": {},
}

// genericSubstrings reject any label containing them.
var genericSubstrings = []string{"unknown", "unidentified"}

// CleanLabel turns a raw detector label into a human-readable name: known
// technical prefixes are stripped, only the first of comma-separated
// synonyms is kept, underscores become spaces, and the first letter is
// capitalized.
func CleanLabel(raw string) string {
	s := strings.TrimSpace(raw)
	s = synsetPrefix.ReplaceAllString(s, "")

	for stripped := true; stripped; {
		stripped = false
		for _, p := range labelPrefixes {
			if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
				s = strings.TrimSpace(s[len(p):])
				stripped = true
				break
			}
		}
	}

	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	s = strings.Join(strings.Fields(strings.ReplaceAll(s, "_", " ")), " ")
	if s == "" {
		return ""
	}

	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// IsGeneric reports whether a cleaned label is too vague to announce.
func IsGeneric(label string) bool {
	lower := strings.ToLower(strings.TrimSpace(label))
	if lower == "" {
		return true
	}
	if _, ok := genericLabels[lower]; ok {
		return true
	}
	for _, sub := range genericSubstrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

// Normalizer converts raw hits from one channel into Detections.
type Normalizer struct {
	// Zones splits the frame into positions.
	Zones geometry.Zones

	// MinConfidence drops hits scoring below it. It applies in every mode.
	MinConfidence float64
}

// Normalize cleans one raw hit. Hits without a box are placed in zone
// fallback. It reports false when the hit is dropped: below the confidence
// floor, an empty label, or a generic label when returnAll is false.
func (n Normalizer) Normalize(raw Raw, fallback geometry.Zone, returnAll bool) (Detection, bool) {
	if raw.Confidence < n.MinConfidence {
		return Detection{}, false
	}
	label := CleanLabel(raw.Label)
	if label == "" {
		return Detection{}, false
	}
	if !returnAll && IsGeneric(label) {
		return Detection{}, false
	}

	if raw.Box == nil || raw.Box.Empty() {
		return NewLabelOnly(label, raw.Confidence, fallback, n.Zones), true
	}
	return New(label, raw.Confidence, raw.Box.Clamp(), n.Zones), true
}

// NormalizeAll cleans a channel's output, preserving order. resolve is
// called at most once, and only if some hit lacks a box; a nil resolve
// places such hits in the center.
func (n Normalizer) NormalizeAll(raws []Raw, resolve func() geometry.Zone, returnAll bool) []Detection {
	out := make([]Detection, 0, len(raws))

	fallback := geometry.ZoneCenter
	resolved := false
	for _, raw := range raws {
		if (raw.Box == nil || raw.Box.Empty()) && !resolved {
			if resolve != nil {
				fallback = resolve()
			}
			resolved = true
		}
		if d, ok := n.Normalize(raw, fallback, returnAll); ok {
			out = append(out, d)
		}
	}
	return out
}
