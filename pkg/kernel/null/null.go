// Package null provides a geometry kernel with no backend. Every operation
// that would need real geometry fails with kernel.ErrUnavailable, which lets
// the rest of the application (validation, splitting, config) run where no
// CAD library is installed.
package null

import (
	"fmt"

	"github.com/chazu/lostmodeler/pkg/kernel"
)

var _ kernel.Kernel = Kernel{}

// Solid records only its bounding box.
type Solid struct {
	Min, Max [3]float64
}

// BoundingBox returns the recorded bounds.
func (s Solid) BoundingBox() (min, max [3]float64) {
	return s.Min, s.Max
}

// Kernel is the null geometry kernel. The zero value is ready to use.
type Kernel struct{}

// New returns a null kernel.
func New() Kernel { return Kernel{} }

func (Kernel) Name() string { return "null" }

func (Kernel) Box(x, y, z float64) kernel.Solid {
	return Solid{Max: [3]float64{x, y, z}}
}

func (Kernel) Cylinder(height, radius float64, _ int) kernel.Solid {
	return Solid{
		Min: [3]float64{-radius, -radius, 0},
		Max: [3]float64{radius, radius, height},
	}
}

func (k Kernel) HexPrism(height, radius float64) kernel.Solid {
	return k.Cylinder(height, radius, 6)
}

func (Kernel) Union(a, b kernel.Solid) kernel.Solid {
	amin, amax := a.BoundingBox()
	bmin, bmax := b.BoundingBox()
	var out Solid
	for i := 0; i < 3; i++ {
		out.Min[i] = min(amin[i], bmin[i])
		out.Max[i] = max(amax[i], bmax[i])
	}
	return out
}

func (Kernel) Difference(a, _ kernel.Solid) kernel.Solid {
	return a
}

func (Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	smin, smax := s.BoundingBox()
	d := [3]float64{x, y, z}
	var out Solid
	for i := 0; i < 3; i++ {
		out.Min[i] = smin[i] + d[i]
		out.Max[i] = smax[i] + d[i]
	}
	return out
}

// ToMesh always fails.
func (Kernel) ToMesh(kernel.Solid) (*kernel.Mesh, error) {
	return nil, fmt.Errorf("null kernel cannot mesh: %w", kernel.ErrUnavailable)
}

// Formats is empty.
func (Kernel) Formats() []kernel.Format { return nil }

// Export always fails.
func (Kernel) Export(_ kernel.Solid, path string, f kernel.Format) error {
	return fmt.Errorf("null kernel cannot write %s (%s): %w", path, f, kernel.ErrUnavailable)
}
