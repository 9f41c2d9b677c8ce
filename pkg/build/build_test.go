package build

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/lostmodeler/pkg/kernel"
	"github.com/chazu/lostmodeler/pkg/kernel/null"
	"github.com/chazu/lostmodeler/pkg/splitter"
	"github.com/chazu/lostmodeler/pkg/tray"
)

// recorder wraps the null kernel and counts the cutting tools it is asked for.
type recorder struct {
	null.Kernel
	boxes, cylinders, hexes, differences int
}

func (r *recorder) Box(x, y, z float64) kernel.Solid {
	r.boxes++
	return r.Kernel.Box(x, y, z)
}

func (r *recorder) Cylinder(h, rad float64, seg int) kernel.Solid {
	r.cylinders++
	return r.Kernel.Cylinder(h, rad, seg)
}

func (r *recorder) HexPrism(h, rad float64) kernel.Solid {
	r.hexes++
	return r.Kernel.Cylinder(h, rad, 6)
}

func (r *recorder) Difference(a, b kernel.Solid) kernel.Solid {
	r.differences++
	return r.Kernel.Difference(a, b)
}

func settings(l, w, h float64) tray.Settings {
	s := tray.DefaultSettings()
	s.Length, s.Width, s.Height = l, w, h
	return s
}

func TestPlanSinglePart(t *testing.T) {
	s := settings(200, 100, 40)
	res, err := splitter.Split(s.Extents(), splitter.DefaultMaxDim)
	require.NoError(t, err)

	parts := Plan(s, res)
	require.Len(t, parts, 1)
	assert.Equal(t, "tray", parts[0].Name)
	assert.Equal(t, 1, parts[0].Index)
	assert.Equal(t, s.Extents(), parts[0].Extents)
	assert.Equal(t, parts, Single(s))
}

func TestPlanSplitNamesAndCompartments(t *testing.T) {
	s := settings(300, 100, 40)
	s.Compartments = []tray.Compartment{
		{X: 2, Y: 2, Width: 100, Depth: 50, Label: "fits"},
		{X: 160, Y: 2, Width: 100, Depth: 50, Label: "beyond half"},
	}
	res, err := splitter.Split(s.Extents(), splitter.DefaultMaxDim)
	require.NoError(t, err)

	parts := Plan(s, res)
	require.Len(t, parts, 2)
	assert.Equal(t, "tray_part1", parts[0].Name)
	assert.Equal(t, "tray_part2", parts[1].Name)
	for _, p := range parts {
		assert.Equal(t, tray.NewExtents(150, 100, 40), p.Extents)
		assert.Equal(t, p.Extents, p.Settings.Extents())
		require.Len(t, p.Settings.Compartments, 1)
		assert.Equal(t, "fits", p.Settings.Compartments[0].Label)
	}
	// The source settings keep all compartments.
	assert.Len(t, s.Compartments, 2)
}

func TestSolidPlainTray(t *testing.T) {
	r := &recorder{}
	solid, err := Solid(r, Single(settings(100, 80, 30))[0])
	require.NoError(t, err)

	min, max := solid.BoundingBox()
	assert.Equal(t, [3]float64{0, 0, 0}, min)
	assert.Equal(t, [3]float64{100, 80, 30}, max)
	assert.Equal(t, 2, r.boxes, "outer box and one cavity")
	assert.Equal(t, 1, r.differences)
}

func TestSolidCompartments(t *testing.T) {
	s := settings(100, 100, 30)
	s.Compartments = []tray.Compartment{
		{X: 2, Y: 2, Width: 40, Depth: 40},
		{X: 50, Y: 2, Width: 40, Depth: 40, Shape: tray.ShapeRound},
	}
	r := &recorder{}
	_, err := Solid(r, Single(s)[0])
	require.NoError(t, err)
	assert.Equal(t, 2, r.boxes, "outer box and one rectangular pocket")
	assert.Equal(t, 1, r.cylinders)
	assert.Equal(t, 2, r.differences)
}

func TestSolidHoneycomb(t *testing.T) {
	s := settings(100, 100, 30)
	s.Cutout.Enable()
	r := &recorder{}
	_, err := Solid(r, Single(s)[0])
	require.NoError(t, err)

	want := len(NewHoneycomb(s.Cutout.Density).Centers(s.Extents(), s.Wall))
	require.Positive(t, want)
	assert.Equal(t, want, r.hexes)
	assert.Equal(t, 2, r.differences, "cavity and cutout")
}

func TestSolidRejectsDegenerateParts(t *testing.T) {
	k := null.New()

	s := settings(100, 100, 30)
	s.Wall = 50
	_, err := Solid(k, Single(s)[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leaves no room")

	_, err = Solid(k, Single(settings(0, 100, 30))[0])
	require.Error(t, err)

	s = settings(100, 100, 30)
	s.Compartments = []tray.Compartment{{X: 2, Y: 2, Width: 10, Depth: 10, Height: 1}}
	_, err = Solid(k, Single(s)[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inside the floor")
}

func TestPocketSolidBounds(t *testing.T) {
	k := null.New()

	// Full-height pocket opens through the top and stops at the floor.
	p, err := pocketSolid(k, tray.Compartment{X: 5, Y: 6, Width: 20, Depth: 10}, 2, 30)
	require.NoError(t, err)
	min, max := p.BoundingBox()
	assert.Equal(t, [3]float64{5, 6, 2}, min)
	assert.Equal(t, [3]float64{25, 16, 30 + overshoot}, max)

	// A shallow pocket sitting higher up keeps its own bottom.
	p, err = pocketSolid(k, tray.Compartment{X: 0, Y: 0, Z: 10, Width: 10, Depth: 10, Height: 5}, 2, 30)
	require.NoError(t, err)
	min, max = p.BoundingBox()
	assert.Equal(t, 10.0, min[2])
	assert.Equal(t, 15.0, max[2])

	// Round pockets are centred in their footprint.
	p, err = pocketSolid(k, tray.Compartment{X: 10, Y: 10, Width: 20, Depth: 30, Shape: tray.ShapeRound}, 2, 30)
	require.NoError(t, err)
	min, max = p.BoundingBox()
	assert.Equal(t, [3]float64{10, 15, 2}, min)
	assert.Equal(t, 30.0, max[0])
	assert.Equal(t, 35.0, max[1])
}

func TestSolidAgreesWithValidation(t *testing.T) {
	tests := []struct {
		name string
		c    tray.Compartment
	}{
		{name: "pocket inside the floor", c: tray.Compartment{X: 10, Y: 10, Width: 20, Depth: 20, Height: 1}},
		{name: "pocket ending at the floor", c: tray.Compartment{X: 10, Y: 10, Z: 1, Width: 20, Depth: 20, Height: 1}},
		{name: "shallow pocket", c: tray.Compartment{X: 10, Y: 10, Width: 20, Depth: 20, Height: 3}},
		{name: "full-height pocket", c: tray.Compartment{X: 10, Y: 10, Width: 20, Depth: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := settings(100, 100, 40)
			s.Compartments = []tray.Compartment{tt.c}
			valid := !tray.HasErrors(tray.Validate(s, tray.DefaultBuildVolume))

			_, err := Solid(null.New(), Single(s)[0])
			assert.Equal(t, valid, err == nil, "validation and build disagree: build err = %v", err)
		})
	}
}

func TestHoneycombDensity(t *testing.T) {
	sparse := NewHoneycomb(0)
	dense := NewHoneycomb(1)
	assert.Equal(t, MaxRib, sparse.Rib)
	assert.Equal(t, MinRib, dense.Rib)
	assert.Equal(t, NewHoneycomb(1), NewHoneycomb(7), "density is clamped")
	assert.InDelta(t, 3.6, NewHoneycomb(0.5).Rib, 1e-12)

	e := tray.NewExtents(200, 200, 20)
	assert.Greater(t, len(dense.Centers(e, 2)), len(sparse.Centers(e, 2)))
}

func TestHoneycombCentersStayInsideFloor(t *testing.T) {
	h := NewHoneycomb(0.5)
	e := tray.NewExtents(120, 90, 20)
	const wall = 2.0
	inradius := h.Radius * math.Sqrt(3) / 2

	centers := h.Centers(e, wall)
	require.NotEmpty(t, centers)
	for _, c := range centers {
		assert.GreaterOrEqual(t, c[0]-h.Radius, wall)
		assert.LessOrEqual(t, c[0]+h.Radius, e.Length-wall+1e-9)
		assert.GreaterOrEqual(t, c[1]-inradius, wall)
		assert.LessOrEqual(t, c[1]+inradius, e.Width-wall+1e-9)
	}
}

func TestHoneycombTooSmall(t *testing.T) {
	assert.Empty(t, NewHoneycomb(0.5).Centers(tray.NewExtents(10, 10, 10), 2))
}
