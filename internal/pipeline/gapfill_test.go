package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relief/internal/interp"
	"relief/internal/lib"
	"relief/internal/pipeline"
	"relief/internal/raster"
	"relief/internal/vector"
)

func writeTestRaster(t *testing.T, path string, data []float64) {
	t.Helper()
	g := raster.NewGrid(2, 2, 0, 2, 1, 1, raster.DefaultNoData)
	copy(g.Data, data)
	require.NoError(t, raster.WriteGeoTIFF(path, g))
}

// TestGapFill_FinerRadiusWins tests stack precedence: a coarser raster only
// fills cells the finer rasters left as no-data
func TestGapFill_FinerRadiusWins(t *testing.T) {
	dir := t.TempDir()
	fine := filepath.Join(dir, "fine.tif")
	coarse := filepath.Join(dir, "coarse.tif")
	writeTestRaster(t, fine, []float64{1, raster.DefaultNoData, 3, raster.DefaultNoData})
	writeTestRaster(t, coarse, []float64{10, 20, 30, raster.DefaultNoData})

	fout := filepath.Join(dir, "filled.tif")
	// entries deliberately out of order; GapFill sorts by radius
	_, err := pipeline.GapFill([]pipeline.StackEntry{
		{Radius: 1.41, Path: coarse},
		{Radius: 0.56, Path: fine},
	}, fout, nil, interp.MethodNearest, nil)
	require.NoError(t, err)

	got, err := raster.ReadGeoTIFF(fout)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.At(0, 0))
	assert.Equal(t, 20.0, got.At(1, 0))
	assert.Equal(t, 3.0, got.At(0, 1))
}

// TestGapFill_InterpolatesRemainingHoles tests that cells no raster supplied
// are interpolated, leaving a gap-free result
func TestGapFill_InterpolatesRemainingHoles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.tif")
	writeTestRaster(t, in, []float64{5, 5, 5, raster.DefaultNoData})

	fout := filepath.Join(dir, "filled.tif")
	_, err := pipeline.GapFill([]pipeline.StackEntry{
		{Radius: 0.56, Path: in},
	}, fout, nil, interp.MethodNearest, nil)
	require.NoError(t, err)

	got, err := raster.ReadGeoTIFF(fout)
	require.NoError(t, err)
	for _, v := range got.Data {
		assert.False(t, got.IsNoData(v))
	}
	assert.Equal(t, 5.0, got.At(1, 1))
}

// TestGapFill_EmptyStack tests the empty-input guard
func TestGapFill_EmptyStack(t *testing.T) {
	_, err := pipeline.GapFill(nil, filepath.Join(t.TempDir(), "out.tif"), nil, interp.MethodNearest, nil)
	require.Error(t, err)
	assert.True(t, lib.IsCategory(err, lib.CategoryConfiguration))
}

// TestGapFill_GridMismatch tests that rasters on different grids are rejected
func TestGapFill_GridMismatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.tif")
	writeTestRaster(t, a, []float64{1, 2, 3, 4})

	other := raster.NewGrid(3, 3, 0, 3, 1, 1, raster.DefaultNoData)
	b := filepath.Join(dir, "b.tif")
	require.NoError(t, raster.WriteGeoTIFF(b, other))

	_, err := pipeline.GapFill([]pipeline.StackEntry{
		{Radius: 0.56, Path: a},
		{Radius: 1.41, Path: b},
	}, filepath.Join(dir, "out.tif"), nil, interp.MethodNearest, nil)
	require.Error(t, err)
	assert.True(t, lib.IsCategory(err, lib.CategoryConfiguration))
}

// TestGapFill_AllNoData tests that an all-nodata stack fails hard instead of
// writing a garbage raster
func TestGapFill_AllNoData(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.tif")
	writeTestRaster(t, in, []float64{
		raster.DefaultNoData, raster.DefaultNoData,
		raster.DefaultNoData, raster.DefaultNoData,
	})

	fout := filepath.Join(dir, "out.tif")
	_, err := pipeline.GapFill([]pipeline.StackEntry{
		{Radius: 0.56, Path: in},
	}, fout, nil, interp.MethodNearest, nil)
	require.Error(t, err)
	assert.True(t, lib.IsCategory(err, lib.CategoryInterpolation))
	assert.NoFileExists(t, fout)
}

// TestGapFill_ClipsToSite tests that the result is re-clipped to the site
// boundary after filling
func TestGapFill_ClipsToSite(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.tif")
	writeTestRaster(t, in, []float64{1, 2, 3, 4})

	// boundary covering only the western column of the 2x2 grid
	boundary := filepath.Join(dir, "site.geojson")
	require.NoError(t, writeBoundary(boundary, orb.Polygon{{
		{0, 0}, {1, 0}, {1, 2}, {0, 2}, {0, 0},
	}}))
	site, err := vector.LoadSite(boundary)
	require.NoError(t, err)

	fout := filepath.Join(dir, "filled.tif")
	_, err = pipeline.GapFill([]pipeline.StackEntry{
		{Radius: 0.56, Path: in},
	}, fout, site, interp.MethodNearest, nil)
	require.NoError(t, err)

	got, err := raster.ReadGeoTIFF(fout)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Width)
	assert.Equal(t, 2, got.Height)
	assert.Equal(t, 1.0, got.At(0, 0))
	assert.Equal(t, 3.0, got.At(0, 1))
}

func writeBoundary(path string, poly orb.Polygon) error {
	f := geojson.NewFeature(poly)
	fc := geojson.NewFeatureCollection()
	fc.Append(f)
	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
