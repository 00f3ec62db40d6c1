// Package location infers what kind of place the user is in from the objects
// seen during a short environment scan.
package location

import "strings"

// Fallback and terminal location names.
const (
	RoomWithPeople = "room with people"
	IndoorSpace    = "indoor space"
	IndoorArea     = "indoor area"
	Unknown        = "unknown location"
)

// Context is a candidate place and the objects that suggest it.
type Context struct {
	Name     string
	Keywords []string
}

// Contexts are scored in this order; earlier contexts win ties.
var Contexts = []Context{
	{"bedroom", []string{
		"bed", "pillow", "blanket", "lamp", "nightstand", "dresser", "wardrobe",
		"closet", "alarm clock", "quilt", "mattress", "teddy bear", "curtain", "four-poster",
	}},
	{"kitchen", []string{
		"refrigerator", "oven", "microwave", "stove", "sink", "toaster", "kettle",
		"dishwasher", "cup", "bowl", "knife", "spoon", "fork", "frying pan",
		"cutting board", "bottle", "coffee maker", "blender",
	}},
	{"living room", []string{
		"couch", "sofa", "television", "tv", "remote", "coffee table", "armchair",
		"bookcase", "fireplace", "potted plant", "rug", "cushion", "entertainment center", "vase",
	}},
	{"bathroom", []string{
		"toilet", "bathtub", "shower", "toothbrush", "towel", "soap", "mirror",
		"hair drier", "washbasin", "toilet tissue", "shower curtain", "medicine chest", "tub",
	}},
	{"office", []string{
		"desk", "computer", "laptop", "keyboard", "mouse", "monitor", "printer",
		"office chair", "notebook", "book", "pen", "stapler", "filing cabinet", "desktop computer", "scissors",
	}},
	{"street", []string{
		"car", "road", "tree", "traffic light", "stop sign", "bicycle", "bus",
		"truck", "motorcycle", "sidewalk", "parking meter", "fire hydrant", "pole", "street sign", "crosswalk",
	}},
	{"dining room", []string{
		"dining table", "chair", "plate", "wine glass", "glass", "napkin", "candle",
		"tablecloth", "chandelier", "table", "place mat", "cutlery", "buffet",
	}},
	{"garage", []string{
		"car", "tool", "toolbox", "ladder", "workbench", "tire", "wheel",
		"lawn mower", "garage door", "hammer", "drill", "shelf", "motorcycle", "bicycle",
	}},
}

// Broader hints used only when no context scores.
var (
	furnitureTerms = []string{
		"furniture", "cabinet", "bench", "stool", "drawer", "cupboard",
		"bookshelf", "ottoman", "sideboard",
	}
	architecturalTerms = []string{
		"wall", "door", "window", "ceiling", "floor", "stairs", "staircase",
		"hallway", "corridor", "doorway", "column", "room",
	}
)

// Score is one context's match count.
type Score struct {
	Context string `json:"context"`
	Score   int    `json:"score"`
}

func labelKey(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

func labelSet(labels []string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if l = labelKey(l); l != "" {
			set[l] = struct{}{}
		}
	}
	return set
}

func overlap(set map[string]struct{}, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if _, ok := set[k]; ok {
			n++
		}
	}
	return n
}

// Scores returns each context's score in declaration order. Labels are
// matched case-insensitively and duplicates count once.
func Scores(labels []string) []Score {
	set := labelSet(labels)
	scores := make([]Score, len(Contexts))
	for i, c := range Contexts {
		scores[i] = Score{Context: c.Name, Score: overlap(set, c.Keywords)}
	}
	return scores
}

// Infer names the most likely location for a set of observed labels.
//
// The context with the most matching keywords wins, ties going to the
// earlier context. With no match at all a broader cascade applies: a person
// suggests a room with people, furniture an indoor space, and walls or doors
// an indoor area. Otherwise the result is "unknown location".
func Infer(labels []string) string {
	best := Score{}
	for _, s := range Scores(labels) {
		if s.Score > best.Score {
			best = s
		}
	}
	if best.Score > 0 {
		return best.Context
	}

	set := labelSet(labels)
	switch {
	case overlap(set, []string{"person", "people", "man", "woman", "child"}) > 0:
		return RoomWithPeople
	case overlap(set, furnitureTerms) > 0:
		return IndoorSpace
	case overlap(set, architecturalTerms) > 0:
		return IndoorArea
	default:
		return Unknown
	}
}
