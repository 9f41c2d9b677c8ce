// Package splitter divides boxes that are too large for the printer into
// two printable parts along their longest axis.
package splitter

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/lostmodeler/pkg/tray"
)

// DefaultMaxDim is the default maximum printable dimension in mm.
const DefaultMaxDim = 256.0

// ErrInvalidArgument is returned when an input violates the positivity
// precondition of Split.
var ErrInvalidArgument = errors.New("invalid argument")

// Result is the ordered list of printable parts produced by Split. Parts
// holds either the original extents alone or two copies with Axis halved.
type Result struct {
	Parts []tray.Extents `json:"parts"`
	Axis  tray.Axis      `json:"-"` // AxisNone when not split
}

// IsSplit reports whether the result holds two parts.
func (r Result) IsSplit() bool {
	return len(r.Parts) == 2
}

// Len returns the number of parts.
func (r Result) Len() int {
	return len(r.Parts)
}

// Split decides whether extents exceed maxDim on any axis. If none does,
// the result is the extents unchanged. Otherwise the result is two parts,
// each equal to extents with the dominant axis (length, then width, then
// height on ties) divided by 2. The halved axis is not necessarily the one
// that exceeded maxDim.
//
// The two parts are identical copies, not complementary pieces of a
// partition.
func Split(extents tray.Extents, maxDim float64) (Result, error) {
	if !extents.Positive() {
		return Result{}, fmt.Errorf("%w: extents %s must all be positive", ErrInvalidArgument, extents)
	}
	if !(maxDim > 0) || math.IsInf(maxDim, 0) {
		return Result{}, fmt.Errorf("%w: max dimension %g must be positive", ErrInvalidArgument, maxDim)
	}

	if !extents.Exceeds(maxDim) {
		return Result{Parts: []tray.Extents{extents}, Axis: tray.AxisNone}, nil
	}

	axis := extents.DominantAxis()
	half := extents.With(axis, extents.Get(axis)/2)
	return Result{Parts: []tray.Extents{half, half}, Axis: axis}, nil
}

// AutoSplitter splits the current dimensions of a box model and remembers
// the parts from the last call.
type AutoSplitter struct {
	Box    *tray.BoxModel
	MaxDim float64
	parts  []tray.Extents
}

// NewAutoSplitter returns a splitter for box. A non-positive maxDim selects
// DefaultMaxDim.
func NewAutoSplitter(box *tray.BoxModel, maxDim float64) *AutoSplitter {
	if maxDim <= 0 {
		maxDim = DefaultMaxDim
	}
	return &AutoSplitter{Box: box, MaxDim: maxDim}
}

// Split reads the box dimensions and splits them. The previous parts are
// discarded even when the call fails.
func (s *AutoSplitter) Split() ([]tray.Extents, error) {
	s.parts = nil
	res, err := Split(s.Box.Extents(), s.MaxDim)
	if err != nil {
		return nil, err
	}
	s.parts = res.Parts
	return s.Parts(), nil
}

// Parts returns a copy of the parts from the last Split call.
func (s *AutoSplitter) Parts() []tray.Extents {
	out := make([]tray.Extents, len(s.parts))
	copy(out, s.parts)
	return out
}
