package raster_test

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relief/internal/raster"
)

// TestGrid_CellCenter tests the cell-center coordinate mapping for a
// north-up grid
func TestGrid_CellCenter(t *testing.T) {
	g := raster.NewGrid(4, 4, 100, 200, 2, 2, raster.DefaultNoData)

	x, y := g.CellCenter(0, 0)
	assert.Equal(t, 101.0, x)
	assert.Equal(t, 199.0, y)

	x, y = g.CellCenter(3, 3)
	assert.Equal(t, 107.0, x)
	assert.Equal(t, 193.0, y)
}

// TestGrid_IsNoData tests sentinel comparison, including NaN sentinels
func TestGrid_IsNoData(t *testing.T) {
	g := raster.NewGrid(1, 1, 0, 1, 1, 1, raster.DefaultNoData)
	assert.True(t, g.IsNoData(raster.DefaultNoData))
	assert.False(t, g.IsNoData(0))

	nan := raster.NewGrid(1, 1, 0, 1, 1, 1, math.NaN())
	assert.True(t, nan.IsNoData(math.NaN()))
	assert.False(t, nan.IsNoData(0))
}

// TestGrid_SameGridAs tests the compositing precondition
func TestGrid_SameGridAs(t *testing.T) {
	a := raster.NewGrid(2, 2, 0, 2, 1, 1, raster.DefaultNoData)
	assert.True(t, a.SameGridAs(raster.NewGridLike(a)))

	shifted := raster.NewGrid(2, 2, 1, 2, 1, 1, raster.DefaultNoData)
	assert.False(t, a.SameGridAs(shifted))

	resized := raster.NewGrid(3, 2, 0, 2, 1, 1, raster.DefaultNoData)
	assert.False(t, a.SameGridAs(resized))
}

// TestGrid_Clip tests cropping to a polygon's bounds and masking cells whose
// center falls outside it
func TestGrid_Clip(t *testing.T) {
	g := raster.NewGrid(4, 4, 0, 4, 1, 1, raster.DefaultNoData)
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			g.Set(col, row, float64(row*4+col))
		}
	}

	// triangle over the lower-left corner, hypotenuse x+y = 2.5
	poly := orb.Polygon{{
		{0, 0}, {2.5, 0}, {0, 2.5}, {0, 0},
	}}
	out := g.Clip(poly)

	require.Equal(t, 3, out.Width)
	require.Equal(t, 3, out.Height)
	assert.Equal(t, 0.0, out.OriginX)
	assert.Equal(t, 3.0, out.OriginY)

	// centers below the hypotenuse keep their values, the rest are masked
	assert.False(t, out.IsNoData(out.At(0, 1)))
	assert.False(t, out.IsNoData(out.At(0, 2)))
	assert.False(t, out.IsNoData(out.At(1, 2)))
	assert.True(t, out.IsNoData(out.At(0, 0)))
	assert.True(t, out.IsNoData(out.At(1, 1)))
	assert.True(t, out.IsNoData(out.At(2, 2)))

	// source values survive at the right positions
	assert.Equal(t, g.At(0, 2), out.At(0, 1))
	assert.Equal(t, g.At(1, 3), out.At(1, 2))
}

// TestGrid_ClipOutsideExtent tests clipping against a polygon that does not
// intersect the grid
func TestGrid_ClipOutsideExtent(t *testing.T) {
	g := raster.NewGrid(2, 2, 0, 2, 1, 1, raster.DefaultNoData)
	poly := orb.Polygon{{
		{100, 100}, {101, 100}, {101, 101}, {100, 100},
	}}

	out := g.Clip(poly)
	assert.Zero(t, out.Width*out.Height)
}
