package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Point is a location in world pixels.
type Point = mgl64.Vec2

// IsFinite reports whether both coordinates of p are real numbers.
func IsFinite(p Point) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (r Rect) isFinite() bool {
	return IsFinite(Point{r.X, r.Y}) && IsFinite(Point{r.W, r.H})
}

// Rect is an axis-aligned rectangle. Collision rectangles on entity types
// are relative to the entity's location.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// At offsets the rectangle by p.
func (r Rect) At(p Point) Rect {
	return Rect{X: r.X + p.X(), Y: r.Y + p.Y(), W: r.W, H: r.H}
}

// Intersects reports whether r and o overlap with non-zero area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W &&
		r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

func (r Rect) Center() Point {
	return Point{r.X + r.W/2, r.Y + r.H/2}
}

// RectDistance is the gap between two rectangles, zero when they touch.
func RectDistance(a, b Rect) float64 {
	dx := max(a.X-(b.X+b.W), b.X-(a.X+a.W), 0)
	dy := max(a.Y-(b.Y+b.H), b.Y-(a.Y+a.H), 0)
	return math.Hypot(dx, dy)
}

func Distance(a, b Point) float64 {
	return a.Sub(b).Len()
}
