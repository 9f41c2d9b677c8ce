package kernel

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which planned tray part this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Bounds returns the axis-aligned bounds of the vertices. An empty mesh
// has zero bounds.
func (m *Mesh) Bounds() (min, max [3]float32) {
	if m.IsEmpty() {
		return min, max
	}
	for i := 0; i < 3; i++ {
		min[i] = math.MaxFloat32
		max[i] = -math.MaxFloat32
	}
	for v := 0; v < m.VertexCount(); v++ {
		for i := 0; i < 3; i++ {
			c := m.Vertices[v*3+i]
			if c < min[i] {
				min[i] = c
			}
			if c > max[i] {
				max[i] = c
			}
		}
	}
	return min, max
}

// Triangles converts m to sdfx triangles. Normals are not carried over;
// they follow from the winding.
func (m *Mesh) Triangles() ([]*sdf.Triangle3, error) {
	tris := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for t := 0; t < m.TriangleCount(); t++ {
		var tri sdf.Triangle3
		for j := 0; j < 3; j++ {
			idx := int(m.Indices[t*3+j])
			if idx*3+2 >= len(m.Vertices) {
				return nil, fmt.Errorf("triangle %d: vertex index %d out of range", t, idx)
			}
			v := m.Vertices[idx*3 : idx*3+3]
			tri[j] = v3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
		}
		tris = append(tris, &tri)
	}
	return tris, nil
}

// WriteJSON writes m in the same layout the Mesh JSON tags describe.
func WriteJSON(w io.Writer, m *Mesh) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("write mesh json: %w", err)
	}
	return nil
}

// SaveMesh writes m to path in format f. Only STL and JSON are mesh
// formats; anything else returns ErrUnsupportedFormat and creates no file.
func SaveMesh(path string, m *Mesh, f Format) (err error) {
	switch f {
	case FormatSTL:
		tris, err := m.Triangles()
		if err != nil {
			return err
		}
		if err := render.SaveSTL(path, tris); err != nil {
			return fmt.Errorf("save stl %s: %w", path, err)
		}
		return nil
	case FormatJSON:
	default:
		return fmt.Errorf("mesh cannot be written as %q: %w", f, ErrUnsupportedFormat)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return WriteJSON(file, m)
}
