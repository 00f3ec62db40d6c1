// Package geometry provides axis-aligned bounding box operations in
// normalized image coordinates.
//
// All rectangles use the convention of the detection pipeline: the origin is
// the top-left corner of the frame, X increases rightward, Y increases
// downward, and both axes span [0,1]. A rectangle is described by its
// top-left corner and its size.
//
// Rectangles with a negative width or height are treated as empty by every
// function in this package. None of the functions have side effects or
// failure modes.
package geometry

import "fmt"

// Rect is an axis-aligned rectangle in normalized [0,1] coordinates.
type Rect struct {
	X      float64 `json:"x"`      // Left edge
	Y      float64 `json:"y"`      // Top edge
	Width  float64 `json:"width"`  // Horizontal extent
	Height float64 `json:"height"` // Vertical extent
}

// NewRect builds a rectangle from its top-left corner and size.
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// FromCorners builds a rectangle from two opposite corners in any order.
func FromCorners(x1, y1, x2, y2 float64) Rect {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Empty reports whether r encloses no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Area returns width × height, or 0 for empty rectangles.
func (r Rect) Area() float64 {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Center returns the center point of the rectangle.
func (r Rect) Center() (x, y float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Intersect returns the overlapping rectangle, or the zero Rect when a and b
// do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	if r.Empty() || o.Empty() {
		return Rect{}
	}
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.MaxX(), o.MaxX())
	y2 := min(r.MaxY(), o.MaxY())
	if x1 >= x2 || y1 >= y2 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Clamp restricts r to the unit square.
func (r Rect) Clamp() Rect {
	return r.Intersect(Rect{Width: 1, Height: 1})
}

func (r Rect) String() string {
	return fmt.Sprintf("(%.3f,%.3f %.3fx%.3f)", r.X, r.Y, r.Width, r.Height)
}

// IntersectionArea returns the area shared by a and b.
func IntersectionArea(a, b Rect) float64 {
	return a.Intersect(b).Area()
}

// UnionArea returns the area covered by a or b.
func UnionArea(a, b Rect) float64 {
	return a.Area() + b.Area() - IntersectionArea(a, b)
}

// IoU returns the Intersection over Union of a and b in [0,1].
//
// Degenerate inputs whose union has no area yield 0 rather than NaN.
func IoU(a, b Rect) float64 {
	union := UnionArea(a, b)
	if union <= 0 {
		return 0
	}
	iou := IntersectionArea(a, b) / union
	if iou > 1 {
		return 1
	}
	return iou
}
