package tray

import (
	"fmt"
	"math"
)

// Axis identifies one of the three box dimensions.
type Axis int

const (
	AxisNone   Axis = iota // no axis selected
	AxisLength             // X
	AxisWidth              // Y
	AxisHeight             // Z
)

func (a Axis) String() string {
	switch a {
	case AxisNone:
		return "none"
	case AxisLength:
		return "length"
	case AxisWidth:
		return "width"
	case AxisHeight:
		return "height"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Extents is the bounding box of a solid to be printed, in mm.
// Values are never mutated in place; helpers return copies.
type Extents struct {
	Length float64 `json:"length" yaml:"length" toml:"length"`
	Width  float64 `json:"width" yaml:"width" toml:"width"`
	Height float64 `json:"height" yaml:"height" toml:"height"`
}

// NewExtents returns Extents with the given dimensions.
func NewExtents(length, width, height float64) Extents {
	return Extents{Length: length, Width: width, Height: height}
}

// Positive reports whether all three components are finite and > 0.
func (e Extents) Positive() bool {
	for _, v := range [3]float64{e.Length, e.Width, e.Height} {
		if !(v > 0) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Get returns the component for axis a. AxisNone yields 0.
func (e Extents) Get(a Axis) float64 {
	switch a {
	case AxisLength:
		return e.Length
	case AxisWidth:
		return e.Width
	case AxisHeight:
		return e.Height
	}
	return 0
}

// With returns a copy of e with the component for axis a replaced by v.
func (e Extents) With(a Axis, v float64) Extents {
	switch a {
	case AxisLength:
		e.Length = v
	case AxisWidth:
		e.Width = v
	case AxisHeight:
		e.Height = v
	}
	return e
}

// DominantAxis returns the longest axis using a fixed priority on ties:
// length beats width, width beats height.
func (e Extents) DominantAxis() Axis {
	switch {
	case e.Length >= e.Width && e.Length >= e.Height:
		return AxisLength
	case e.Width >= e.Length && e.Width >= e.Height:
		return AxisWidth
	default:
		return AxisHeight
	}
}

// Exceeds reports whether any component is greater than max.
func (e Extents) Exceeds(max float64) bool {
	return e.Length > max || e.Width > max || e.Height > max
}

// FitsWithin reports whether e fits inside v without rotation.
func (e Extents) FitsWithin(v Extents) bool {
	return e.Length <= v.Length && e.Width <= v.Width && e.Height <= v.Height
}

// Volume returns length * width * height.
func (e Extents) Volume() float64 {
	return e.Length * e.Width * e.Height
}

func (e Extents) String() string {
	return fmt.Sprintf("%gx%gx%g", e.Length, e.Width, e.Height)
}

// DefaultBuildVolume is a typical FDM bed (Ender 3 class printers).
var DefaultBuildVolume = Extents{Length: 220, Width: 220, Height: 250}
