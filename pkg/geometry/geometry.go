// Package geometry provides the 2D primitives used by placement math:
// offsets, sizes, rectangles and edge insets, all in pixel coordinates.
package geometry

import "math"

// epsilon is the tolerance for floating-point comparisons.
const epsilon = 0.0001

// Offset represents a 2D point or vector in pixel coordinates.
type Offset struct {
	X float64
	Y float64
}

// Add returns the component-wise sum of two offsets.
func (o Offset) Add(other Offset) Offset {
	return Offset{X: o.X + other.X, Y: o.Y + other.Y}
}

// IsZero returns true if both components are approximately zero.
func (o Offset) IsZero() bool {
	return floatEqual(o.X, 0) && floatEqual(o.Y, 0)
}

// Size represents width and height dimensions in pixels.
type Size struct {
	Width  float64
	Height float64
}

// IsEmpty returns true if the size has no positive area.
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect represents a rectangle using left, top, right, bottom coordinates.
type Rect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// RectFromLTWH constructs a Rect from left, top, width, height values.
func RectFromLTWH(left, top, width, height float64) Rect {
	return Rect{
		Left:   left,
		Top:    top,
		Right:  left + width,
		Bottom: top + height,
	}
}

// RectFromOffsetSize constructs a Rect from a top-left offset and a size.
func RectFromOffsetSize(origin Offset, size Size) Rect {
	return RectFromLTWH(origin.X, origin.Y, size.Width, size.Height)
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Size returns the size of the rectangle.
func (r Rect) Size() Size {
	return Size{Width: r.Width(), Height: r.Height()}
}

// Origin returns the top-left corner of the rectangle.
func (r Rect) Origin() Offset {
	return Offset{X: r.Left, Y: r.Top}
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Offset {
	return Offset{
		X: (r.Left + r.Right) * 0.5,
		Y: (r.Top + r.Bottom) * 0.5,
	}
}

// IsEmpty returns true if the rectangle has no positive area.
func (r Rect) IsEmpty() bool {
	return r.Right <= r.Left || r.Bottom <= r.Top
}

// Translate returns the rectangle moved by dx, dy.
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{
		Left:   r.Left + dx,
		Top:    r.Top + dy,
		Right:  r.Right + dx,
		Bottom: r.Bottom + dy,
	}
}

// Intersect returns the intersection of two rectangles.
// Returns empty rect if they don't overlap.
func (r Rect) Intersect(other Rect) Rect {
	left := math.Max(r.Left, other.Left)
	top := math.Max(r.Top, other.Top)
	right := math.Min(r.Right, other.Right)
	bottom := math.Min(r.Bottom, other.Bottom)
	if left >= right || top >= bottom {
		return Rect{}
	}
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// Union returns the smallest rectangle containing both rectangles.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	return Rect{
		Left:   math.Min(r.Left, other.Left),
		Top:    math.Min(r.Top, other.Top),
		Right:  math.Max(r.Right, other.Right),
		Bottom: math.Max(r.Bottom, other.Bottom),
	}
}

// Contains returns true if the offset lies inside the rectangle.
func (r Rect) Contains(o Offset) bool {
	return o.X >= r.Left && o.X < r.Right && o.Y >= r.Top && o.Y < r.Bottom
}

// ContainsRect returns true if other lies entirely inside the rectangle,
// within floating-point tolerance.
func (r Rect) ContainsRect(other Rect) bool {
	return other.Left >= r.Left-epsilon &&
		other.Top >= r.Top-epsilon &&
		other.Right <= r.Right+epsilon &&
		other.Bottom <= r.Bottom+epsilon
}

// Insets represents distances from each edge of a rectangle.
type Insets struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// UniformInsets creates insets with the same value on every edge.
func UniformInsets(value float64) Insets {
	return Insets{Top: value, Right: value, Bottom: value, Left: value}
}

// Shrink returns the rectangle deflated by the insets. If the insets
// exceed the rectangle's extent the result collapses to its center.
func (i Insets) Shrink(r Rect) Rect {
	out := Rect{
		Left:   r.Left + i.Left,
		Top:    r.Top + i.Top,
		Right:  r.Right - i.Right,
		Bottom: r.Bottom - i.Bottom,
	}
	if out.Left > out.Right {
		mid := (out.Left + out.Right) * 0.5
		out.Left, out.Right = mid, mid
	}
	if out.Top > out.Bottom {
		mid := (out.Top + out.Bottom) * 0.5
		out.Top, out.Bottom = mid, mid
	}
	return out
}

// Clamp limits v to the inclusive range [min, max]. If min > max the
// lower bound wins.
func Clamp(v, min, max float64) float64 {
	if v > max {
		v = max
	}
	if v < min {
		v = min
	}
	return v
}

// floatEqual returns true if two float64 values are approximately equal.
func floatEqual(a, b float64) bool {
	return math.Abs(a-b) <= epsilon
}
