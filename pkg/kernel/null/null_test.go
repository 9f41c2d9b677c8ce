package null

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/lostmodeler/pkg/kernel"
)

func TestNullKernelBounds(t *testing.T) {
	k := New()
	box := k.Box(10, 20, 30)
	moved := k.Translate(box, 5, 0, -1)
	min, max := moved.BoundingBox()
	assert.Equal(t, [3]float64{5, 0, -1}, min)
	assert.Equal(t, [3]float64{15, 20, 29}, max)

	u := k.Union(box, k.Translate(k.Cylinder(40, 2, 16), 0, 0, 0))
	min, max = u.BoundingBox()
	assert.Equal(t, [3]float64{-2, -2, 0}, min)
	assert.Equal(t, [3]float64{10, 20, 40}, max)

	assert.Equal(t, box, k.Difference(box, k.HexPrism(5, 1)))
}

func TestNullKernelUnavailable(t *testing.T) {
	k := New()
	assert.Equal(t, "null", k.Name())
	assert.Empty(t, k.Formats())

	_, err := k.ToMesh(k.Box(1, 1, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, kernel.ErrUnavailable))

	for _, f := range kernel.AllFormats {
		err := k.Export(k.Box(1, 1, 1), "out"+f.Ext(), f)
		assert.ErrorIs(t, err, kernel.ErrUnavailable, "format %s", f)
	}
}
