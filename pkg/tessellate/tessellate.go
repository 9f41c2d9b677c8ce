// Package tessellate builds each planned tray part and produces triangle
// meshes using a geometry kernel. One mesh is produced per part.
package tessellate

import (
	"fmt"

	"github.com/chazu/lostmodeler/pkg/build"
	"github.com/chazu/lostmodeler/pkg/kernel"
)

// PartGap is the distance left between neighbouring parts along X when
// several parts are laid out for preview.
const PartGap = 10.0

// layout accumulates the X offset of each part as parts are laid out.
type layout struct {
	offset float64
}

// next returns the offset for a part of the given length and advances past it.
func (l *layout) next(length float64) float64 {
	x := l.offset
	l.offset += length + PartGap
	return x
}

// Tessellate builds and meshes each part, laying the parts out side by
// side along X so that a split tray previews as separate pieces. The parts
// are never mutated.
func Tessellate(k kernel.SolidBuilder, parts []build.Part) ([]*kernel.Mesh, error) {
	meshes := make([]*kernel.Mesh, 0, len(parts))
	var l layout

	for _, p := range parts {
		solid, err := build.Solid(k, p)
		if err != nil {
			return nil, fmt.Errorf("tessellate: %w", err)
		}

		if x := l.next(p.Extents.Length); x != 0 {
			solid = k.Translate(solid, x, 0, 0)
		}

		mesh, err := k.ToMesh(solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for part %s: %w", p.Name, err)
		}
		mesh.PartName = p.Name
		meshes = append(meshes, mesh)
	}

	return meshes, nil
}
