// Package raster provides the gridded-raster collaborator: an in-memory
// grid with a no-data sentinel, GeoTIFF read/write, and polygon clipping.
package raster

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// DefaultNoData is the sentinel used when a raster carries none
const DefaultNoData = -9999.0

// Grid is a regular, north-up raster. Data is row-major from the top-left
// corner; CellY is positive even though rows advance southward.
type Grid struct {
	Width, Height int
	OriginX       float64 // west edge of the top-left cell
	OriginY       float64 // north edge of the top-left cell
	CellX, CellY  float64
	NoData        float64
	Data          []float64
}

// NewGrid allocates a grid with every cell set to the no-data sentinel
func NewGrid(width, height int, originX, originY, cellX, cellY, nodata float64) *Grid {
	g := &Grid{
		Width:   width,
		Height:  height,
		OriginX: originX,
		OriginY: originY,
		CellX:   cellX,
		CellY:   cellY,
		NoData:  nodata,
		Data:    make([]float64, width*height),
	}
	for i := range g.Data {
		g.Data[i] = nodata
	}
	return g
}

// NewGridLike allocates an all-nodata grid sharing o's geometry
func NewGridLike(o *Grid) *Grid {
	return NewGrid(o.Width, o.Height, o.OriginX, o.OriginY, o.CellX, o.CellY, o.NoData)
}

// At returns the value at (col, row)
func (g *Grid) At(col, row int) float64 {
	return g.Data[row*g.Width+col]
}

// Set writes the value at (col, row)
func (g *Grid) Set(col, row int, v float64) {
	g.Data[row*g.Width+col] = v
}

// IsNoData reports whether v equals the grid's no-data sentinel. NaN
// sentinels compare by NaN-ness since NaN never compares equal to itself.
func (g *Grid) IsNoData(v float64) bool {
	if math.IsNaN(g.NoData) {
		return math.IsNaN(v)
	}
	return v == g.NoData
}

// CellCenter returns the map coordinates of a cell's center
func (g *Grid) CellCenter(col, row int) (float64, float64) {
	x := g.OriginX + (float64(col)+0.5)*g.CellX
	y := g.OriginY - (float64(row)+0.5)*g.CellY
	return x, y
}

// SameGridAs reports whether two grids share geometry and sentinel, the
// precondition for compositing them cell-by-cell
func (g *Grid) SameGridAs(o *Grid) bool {
	const eps = 1e-9
	return g.Width == o.Width &&
		g.Height == o.Height &&
		math.Abs(g.OriginX-o.OriginX) < eps &&
		math.Abs(g.OriginY-o.OriginY) < eps &&
		math.Abs(g.CellX-o.CellX) < eps &&
		math.Abs(g.CellY-o.CellY) < eps &&
		(g.NoData == o.NoData || (math.IsNaN(g.NoData) && math.IsNaN(o.NoData)))
}

// Clip crops the grid to the polygon's bounds, aligned to the existing cell
// lattice, and masks cells whose center falls outside the polygon. The
// receiver is not modified.
func (g *Grid) Clip(poly orb.Polygon) *Grid {
	bound := poly.Bound()

	col0 := int(math.Floor((bound.Min.X() - g.OriginX) / g.CellX))
	col1 := int(math.Ceil((bound.Max.X() - g.OriginX) / g.CellX))
	row0 := int(math.Floor((g.OriginY - bound.Max.Y()) / g.CellY))
	row1 := int(math.Ceil((g.OriginY - bound.Min.Y()) / g.CellY))

	col0 = clamp(col0, 0, g.Width)
	col1 = clamp(col1, 0, g.Width)
	row0 = clamp(row0, 0, g.Height)
	row1 = clamp(row1, 0, g.Height)

	width := col1 - col0
	height := row1 - row0
	if width <= 0 || height <= 0 {
		return NewGrid(0, 0, g.OriginX, g.OriginY, g.CellX, g.CellY, g.NoData)
	}

	out := NewGrid(width, height,
		g.OriginX+float64(col0)*g.CellX,
		g.OriginY-float64(row0)*g.CellY,
		g.CellX, g.CellY, g.NoData)

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			v := g.At(col0+col, row0+row)
			if g.IsNoData(v) {
				continue
			}
			x, y := out.CellCenter(col, row)
			if planar.PolygonContains(poly, orb.Point{x, y}) {
				out.Set(col, row, v)
			}
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
