// Package kernel defines the geometry kernel capabilities the tray builder
// needs. Implementations (sdfx, manifold, null) provide solid modeling and
// file export behind these interfaces, so the backend can be chosen at
// startup without changing the rest of the system.
package kernel

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned by Export for a format the kernel
	// cannot write.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrUnavailable is returned by every operation of a kernel that has no
	// geometry backend behind it.
	ErrUnavailable = errors.New("geometry kernel unavailable")
)

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// SolidBuilder constructs and combines solids.
//
// Boxes are created with their minimum corner at the origin. Cylinders and
// hexagonal prisms stand on the XY plane with their base centred on the
// origin and extend along +Z.
type SolidBuilder interface {
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid
	// HexPrism creates a regular hexagonal prism. radius is the
	// circumradius; two vertices lie on the X axis.
	HexPrism(height, radius float64) Solid

	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Translate(s Solid, x, y, z float64) Solid

	ToMesh(s Solid) (*Mesh, error)
}

// Exporter writes solids to files.
type Exporter interface {
	// Export writes s to path. It returns an error wrapping
	// ErrUnsupportedFormat when f is not one of Formats().
	Export(s Solid, path string, f Format) error
	Formats() []Format
}

// Kernel is a complete geometry backend.
type Kernel interface {
	Name() string
	SolidBuilder
	Exporter
}

// Format is an export file format.
type Format string

const (
	FormatSTL  Format = "stl"
	FormatSTEP Format = "step"
	FormatJSON Format = "json"
)

// AllFormats lists every format a kernel may support.
var AllFormats = []Format{FormatSTL, FormatSTEP, FormatJSON}

// ParseFormat converts a name such as "STL" or ".stl" to a Format.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "."))
	switch f {
	case FormatSTL, FormatSTEP, FormatJSON:
		return f, nil
	case "stp":
		return FormatSTEP, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Supports reports whether e can write f.
func Supports(e Exporter, f Format) bool {
	for _, have := range e.Formats() {
		if have == f {
			return true
		}
	}
	return false
}

// Unsupported returns the error an Exporter reports for format f.
func Unsupported(kernelName string, f Format) error {
	return fmt.Errorf("%s kernel cannot write %q: %w", kernelName, f, ErrUnsupportedFormat)
}
