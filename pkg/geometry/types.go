// Package geometry provides basic 2-D types shared across the application.
package geometry

import (
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Rect represents a rectangle with floating-point coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// RectFromCorners builds a rectangle from two opposite corners, normalizing
// so that the stored origin is the minimum on both axes independently.
func RectFromCorners(a, b Point2D) Rect {
	x1, x2 := a.X, b.X
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	y1, y2 := a.Y, b.Y
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// X2 returns the maximum X coordinate.
func (r Rect) X2() float64 { return r.X + r.Width }

// Y2 returns the maximum Y coordinate.
func (r Rect) Y2() float64 { return r.Y + r.Height }

// IsEmpty reports whether the rectangle has zero area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains returns true if the point is inside the rectangle (edges inclusive).
func (r Rect) Contains(p Point2D) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Clip returns the intersection of this rectangle with bounds. When the two
// do not overlap the result has zero width or height.
func (r Rect) Clip(bounds Rect) Rect {
	x1 := math.Max(r.X, bounds.X)
	y1 := math.Max(r.Y, bounds.Y)
	x2 := math.Min(r.X2(), bounds.X2())
	y2 := math.Min(r.Y2(), bounds.Y2())
	if x2 < x1 {
		x2 = x1
	}
	if y2 < y1 {
		y2 = y1
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
