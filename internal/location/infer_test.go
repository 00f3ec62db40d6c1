package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfer(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   string
	}{
		{"bedroom", []string{"bed", "pillow", "lamp"}, "bedroom"},
		{"street", []string{"car", "road", "tree"}, "street"},
		{"case insensitive", []string{"Refrigerator", "OVEN", "Cup"}, "kitchen"},
		{"bathroom", []string{"Toilet", "Towel", "Mirror"}, "bathroom"},
		{"office", []string{"Laptop", "Keyboard", "Mouse", "Chair"}, "office"},
		{"garage", []string{"Car", "Ladder", "Toolbox"}, "garage"},
		{"person fallback", []string{"Person", "Backpack"}, RoomWithPeople},
		{"furniture fallback", []string{"Cabinet"}, IndoorSpace},
		{"architecture fallback", []string{"Door", "Wall"}, IndoorArea},
		{"person beats furniture", []string{"cabinet", "person"}, RoomWithPeople},
		{"empty", nil, Unknown},
		{"no overlap", []string{"Giraffe", "Zebra"}, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Infer(tt.labels))
		})
	}
}

func TestInfer_TieGoesToEarlierContext(t *testing.T) {
	// "car" scores 1 for street and 1 for garage; street is declared first
	assert.Equal(t, "street", Infer([]string{"car"}))
	// "motorcycle" and "bicycle" are in both as well
	assert.Equal(t, "street", Infer([]string{"motorcycle", "bicycle"}))
}

func TestScores(t *testing.T) {
	scores := Scores([]string{"bed", "Bed", "pillow"})
	assert.Len(t, scores, len(Contexts))
	assert.Equal(t, Score{Context: "bedroom", Score: 2}, scores[0], "duplicates count once")
	for _, s := range scores[1:] {
		assert.Zero(t, s.Score, s.Context)
	}
}

func TestContextsAreLowercase(t *testing.T) {
	for _, c := range Contexts {
		assert.GreaterOrEqual(t, len(c.Keywords), 10, c.Name)
		for _, k := range c.Keywords {
			assert.Equal(t, labelKey(k), k, "%s keyword %q", c.Name, k)
		}
	}
}
