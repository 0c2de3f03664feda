package pipeline_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relief/internal/lib"
	"relief/internal/pipeline"
	"relief/internal/raster"
)

// TestCreateCHM tests canopy height derivation: DSM minus DTM, with cells
// masked whenever either input lacks a measurement
func TestCreateCHM(t *testing.T) {
	dir := t.TempDir()
	dtm := filepath.Join(dir, "dtm.tif")
	dsm := filepath.Join(dir, "dsm.tif")
	writeTestRaster(t, dtm, []float64{10, 10, 10, raster.DefaultNoData})
	writeTestRaster(t, dsm, []float64{15, 12, 20, 8})

	out := filepath.Join(dir, "chm.tif")
	fout, err := pipeline.CreateCHM(dtm, dsm, out)
	require.NoError(t, err)
	assert.Equal(t, out, fout)

	chm, err := raster.ReadGeoTIFF(out)
	require.NoError(t, err)
	assert.Equal(t, 5.0, chm.At(0, 0))
	assert.Equal(t, 2.0, chm.At(1, 0))
	assert.Equal(t, 10.0, chm.At(0, 1))
	assert.True(t, chm.IsNoData(chm.At(1, 1)))
}

// TestCreateCHM_MasksMissingSurface tests that a no-data surface cell masks
// the result even where terrain is known
func TestCreateCHM_MasksMissingSurface(t *testing.T) {
	dir := t.TempDir()
	dtm := filepath.Join(dir, "dtm.tif")
	dsm := filepath.Join(dir, "dsm.tif")
	writeTestRaster(t, dtm, []float64{10, 10, 10, 10})
	writeTestRaster(t, dsm, []float64{15, raster.DefaultNoData, 20, 18})

	out := filepath.Join(dir, "chm.tif")
	_, err := pipeline.CreateCHM(dtm, dsm, out)
	require.NoError(t, err)

	chm, err := raster.ReadGeoTIFF(out)
	require.NoError(t, err)
	assert.True(t, chm.IsNoData(chm.At(1, 0)))
	assert.Equal(t, 8.0, chm.At(1, 1))
}

// TestCreateCHM_GridMismatch tests that inputs on different grids are rejected
func TestCreateCHM_GridMismatch(t *testing.T) {
	dir := t.TempDir()
	dtm := filepath.Join(dir, "dtm.tif")
	writeTestRaster(t, dtm, []float64{10, 10, 10, 10})

	other := raster.NewGrid(3, 3, 0, 3, 1, 1, raster.DefaultNoData)
	dsm := filepath.Join(dir, "dsm.tif")
	require.NoError(t, raster.WriteGeoTIFF(dsm, other))

	_, err := pipeline.CreateCHM(dtm, dsm, filepath.Join(dir, "chm.tif"))
	require.Error(t, err)
	assert.True(t, lib.IsCategory(err, lib.CategoryConfiguration))
}
