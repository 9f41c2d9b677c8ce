// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/rs/zerolog/log"

	"github.com/chazu/lostmodeler/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution along
// the longest axis of a solid.
const DefaultMeshCells = 200

// Options configures the kernel.
type Options struct {
	// MeshCells is the marching cubes resolution. Zero means DefaultMeshCells.
	MeshCells int
}

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel.
func New(opts Options) *SdfxKernel {
	cells := opts.MeshCells
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// Name returns "sdfx".
func (k *SdfxKernel) Name() string { return "sdfx" }

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Box creates a box with its minimum corner at the origin.
// sdf.Box3D centers the box at the origin, so we translate by half-dimensions.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return wrap(sdf.Transform3D(s, m))
}

// Cylinder creates a cylinder standing on the XY plane.
// The segments parameter is ignored since SDF represents smooth surfaces.
func (k *SdfxKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	return wrap(sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: height / 2})))
}

// HexPrism extrudes a regular hexagon with circumradius radius.
func (k *SdfxKernel) HexPrism(height, radius float64) kernel.Solid {
	verts := make([]v2.Vec, 6)
	for i := range verts {
		a := float64(i) * math.Pi / 3
		verts[i] = v2.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	hex, err := sdf.Polygon2D(verts)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Polygon2D: %v", err))
	}
	// Extrude3D is symmetric about z=0.
	s := sdf.Extrude3D(hex, height)
	return wrap(sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: height / 2})))
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(unwrap(s), renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// Formats returns STL and JSON. sdfx has no boundary representation, so
// STEP is not available.
func (k *SdfxKernel) Formats() []kernel.Format {
	return []kernel.Format{kernel.FormatSTL, kernel.FormatJSON}
}

// Export writes s to path.
func (k *SdfxKernel) Export(s kernel.Solid, path string, f kernel.Format) error {
	switch f {
	case kernel.FormatSTL:
		tris := render.ToTriangles(unwrap(s), render.NewMarchingCubesUniform(k.cells))
		if err := render.SaveSTL(path, tris); err != nil {
			return fmt.Errorf("sdfx: save stl: %w", err)
		}
		log.Debug().Str("path", path).Int("triangles", len(tris)).Msg("stl written")
		return nil
	case kernel.FormatJSON:
		m, err := k.ToMesh(s)
		if err != nil {
			return err
		}
		return kernel.SaveMesh(path, m, f)
	default:
		return kernel.Unsupported(k.Name(), f)
	}
}
