package corkboard

import (
	"fmt"
	"math"
	"strings"
)

// Vec2 is a 2D vector used for positions, offsets, sizes, and deltas
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v scaled by s on both axes.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// IsFinite reports whether both components are neither NaN nor infinite.
func (v Vec2) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Vec2 {
	return Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	minX := math.Min(r.X, other.X)
	minY := math.Min(r.Y, other.Y)
	maxX := math.Max(r.X+r.Width, other.X+other.Width)
	maxY := math.Max(r.Y+r.Height, other.Y+other.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// SizeClass bounds the maximum content extent of a board relative to the
// visible frame.
type SizeClass uint8

const (
	SizeSmall     SizeClass = iota // content is 2x the frame on each axis
	SizeMedium                     // 4x
	SizeLarge                      // 8x
	SizeVeryLarge                  // 16x
)

var sizeClassNames = [...]string{"small", "medium", "large", "very-large"}

// String returns the persisted name of the size class.
func (s SizeClass) String() string {
	if int(s) < len(sizeClassNames) {
		return sizeClassNames[s]
	}
	return fmt.Sprintf("SizeClass(%d)", uint8(s))
}

// Multiplier returns how many frames wide (and tall) the content is.
func (s SizeClass) Multiplier() float64 {
	switch s {
	case SizeSmall:
		return 2
	case SizeLarge:
		return 8
	case SizeVeryLarge:
		return 16
	default:
		return 4
	}
}

// ParseSizeClass maps a persisted name back to a SizeClass.
func ParseSizeClass(name string) (SizeClass, error) {
	for i, n := range sizeClassNames {
		if strings.EqualFold(n, name) {
			return SizeClass(i), nil
		}
	}
	return SizeMedium, fmt.Errorf("unknown size class %q", name)
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// Has reports whether every modifier in m is set.
func (k KeyModifiers) Has(m KeyModifiers) bool {
	return m != 0 && k&m == m
}

// ParseModifier maps a config name ("ctrl", "shift", "alt", "meta") to its bit.
func ParseModifier(name string) (KeyModifiers, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ctrl", "control":
		return ModCtrl, nil
	case "shift":
		return ModShift, nil
	case "alt", "option":
		return ModAlt, nil
	case "meta", "cmd", "super":
		return ModMeta, nil
	}
	return 0, fmt.Errorf("unknown modifier %q", name)
}

// ZoomDirection selects a zoom step.
type ZoomDirection int8

const (
	ZoomOut ZoomDirection = -1
	ZoomIn  ZoomDirection = 1
)
