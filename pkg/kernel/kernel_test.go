package kernel

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/deadsy/sdfx/render"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

func TestMeshBounds(t *testing.T) {
	m := &Mesh{Vertices: []float32{1, 5, -2, -3, 0, 4, 2, 2, 2}}
	min, max := m.Bounds()
	if min != [3]float32{-3, 0, -2} {
		t.Errorf("min = %v, want [-3 0 -2]", min)
	}
	if max != [3]float32{2, 5, 4} {
		t.Errorf("max = %v, want [2 5 4]", max)
	}

	min, max = (&Mesh{}).Bounds()
	if min != ([3]float32{}) || max != ([3]float32{}) {
		t.Errorf("empty bounds = %v %v, want zeros", min, max)
	}
}

// --- Formats ---

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"stl", FormatSTL, false},
		{"STL", FormatSTL, false},
		{".json", FormatJSON, false},
		{"step", FormatSTEP, false},
		{"stp", FormatSTEP, false},
		{"3mf", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Fatalf("ParseFormat(%q) error = %v, want ErrUnsupportedFormat", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatExt(t *testing.T) {
	if FormatSTL.Ext() != ".stl" {
		t.Errorf("Ext() = %q", FormatSTL.Ext())
	}
}

func TestUnsupportedWrapsSentinel(t *testing.T) {
	err := Unsupported("sdfx", FormatSTEP)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("error %v does not wrap ErrUnsupportedFormat", err)
	}
}

// --- Mesh writers ---

// quad is two triangles forming a unit square in the XY plane.
func quad() *Mesh {
	return &Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0},
		Normals:  []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		Indices:  []uint32{0, 1, 2, 2, 3, 0},
		PartName: "tray",
	}
}

func TestMeshTriangles(t *testing.T) {
	tris, err := quad().Triangles()
	if err != nil {
		t.Fatalf("Triangles() error = %v", err)
	}
	if len(tris) != 2 {
		t.Fatalf("triangles = %d, want 2", len(tris))
	}
	if n := tris[0].Normal(); n.X != 0 || n.Y != 0 || n.Z != 1 {
		t.Errorf("first triangle normal = %v, want [0 0 1]", n)
	}
	if tris[1][1].X != 0 || tris[1][1].Y != 1 {
		t.Errorf("second triangle vertex 1 = %v, want (0, 1, 0)", tris[1][1])
	}
}

func TestMeshTrianglesBadIndex(t *testing.T) {
	m := quad()
	m.Indices[5] = 42
	if _, err := m.Triangles(); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, quad()); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	var got Mesh
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.TriangleCount() != 2 || got.PartName != "tray" {
		t.Errorf("decoded mesh = %+v", got)
	}
}

func TestSaveMesh(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "tray.stl")
	if err := SaveMesh(path, quad(), FormatSTL); err != nil {
		t.Fatalf("SaveMesh() error = %v", err)
	}
	tris, err := render.LoadSTL(path)
	if err != nil {
		t.Fatalf("LoadSTL() error = %v", err)
	}
	if len(tris) != 2 {
		t.Errorf("round-tripped triangles = %d, want 2", len(tris))
	}

	bad := quad()
	bad.Indices[0] = 99
	if err := SaveMesh(filepath.Join(dir, "bad.stl"), bad, FormatSTL); err == nil {
		t.Error("expected error for out-of-range index")
	}

	err = SaveMesh(filepath.Join(dir, "tray.step"), quad(), FormatSTEP)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("SaveMesh(step) error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "tray.step")); !os.IsNotExist(err) {
		t.Error("unsupported format should not create a file")
	}
}

// --- Compile-time interface check with a stub kernel ---

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable. All methods return trivial results.
type stubKernel struct{}

func (k *stubKernel) Name() string { return "stub" }

func (k *stubKernel) Box(x, y, z float64) Solid {
	return &stubSolid{
		minBB: [3]float64{0, 0, 0},
		maxBB: [3]float64{x, y, z},
	}
}

func (k *stubKernel) Cylinder(height, radius float64, _ int) Solid {
	return &stubSolid{
		minBB: [3]float64{-radius, -radius, 0},
		maxBB: [3]float64{radius, radius, height},
	}
}

func (k *stubKernel) HexPrism(height, radius float64) Solid {
	return k.Cylinder(height, radius, 6)
}

func (k *stubKernel) Union(a, _ Solid) Solid     { return a }
func (k *stubKernel) Difference(a, _ Solid) Solid { return a }

func (k *stubKernel) Translate(s Solid, _, _, _ float64) Solid { return s }

func (k *stubKernel) ToMesh(_ Solid) (*Mesh, error) {
	return &Mesh{}, nil
}

func (k *stubKernel) Export(_ Solid, _ string, f Format) error {
	if !Supports(k, f) {
		return Unsupported(k.Name(), f)
	}
	return nil
}

func (k *stubKernel) Formats() []Format { return []Format{FormatJSON} }

// Compile-time checks that the stubs implement the interfaces.
var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelBoxBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	s := k.Box(10, 20, 30)
	min, max := s.BoundingBox()
	if min != [3]float64{0, 0, 0} {
		t.Errorf("Box min = %v, want [0 0 0]", min)
	}
	if max != [3]float64{10, 20, 30} {
		t.Errorf("Box max = %v, want [10 20 30]", max)
	}
}

func TestSupports(t *testing.T) {
	k := &stubKernel{}
	if !Supports(k, FormatJSON) {
		t.Error("Supports(json) = false, want true")
	}
	if Supports(k, FormatSTL) {
		t.Error("Supports(stl) = true, want false")
	}
	if err := k.Export(k.Box(1, 1, 1), "x.stl", FormatSTL); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Export(stl) error = %v, want ErrUnsupportedFormat", err)
	}
}
