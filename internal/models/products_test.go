package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"relief/internal/models"
)

// TestClassifiedName tests the deterministic classified-output name, with
// and without a site prefix
func TestClassifiedName(t *testing.T) {
	assert.Equal(t, "classified_s1c3.las", models.ClassifiedName("", 1, 3, ""))
	assert.Equal(t, "parcel_classified_s0.5c2_v2.las", models.ClassifiedName("parcel", 0.5, 2, "_v2"))
}

// TestDemBaseName tests the per-radius output base with the radius kept
// verbatim
func TestDemBaseName(t *testing.T) {
	assert.Equal(t, "/out/dtm_r0.56", models.DemBaseName("/out", "", "dtm", "0.56", ""))
	assert.Equal(t, "/out/parcel_dsm_r1.0_v2", models.DemBaseName("/out", "parcel", "dsm", "1.0", "_v2"))
}

// TestGapFilledName tests the radius-free composite name
func TestGapFilledName(t *testing.T) {
	assert.Equal(t, "/out/dtm.idw.tif", models.GapFilledName("/out", "", "dtm", "", "idw"))
	assert.Equal(t, "/out/parcel_dsm_v2.max.tif", models.GapFilledName("/out", "parcel", "dsm", "_v2", "max"))
}

// TestProductPath tests the per-product extension
func TestProductPath(t *testing.T) {
	assert.Equal(t, "/out/dtm_r0.56.den.tif", models.ProductPath("/out/dtm_r0.56", "den"))
}

// TestFormatParam tests that numeric parameters render without trailing zeros
func TestFormatParam(t *testing.T) {
	assert.Equal(t, "1", models.FormatParam(1.0))
	assert.Equal(t, "0.56", models.FormatParam(0.56))
	assert.Equal(t, "2.5", models.FormatParam(2.5))
}

// TestDemProducts tests the default product set per DEM type
func TestDemProducts(t *testing.T) {
	assert.Equal(t, []string{"den"}, models.DemProducts("density"))
	assert.Equal(t, []string{"den", "max"}, models.DemProducts("dsm"))
	assert.Equal(t, []string{"den", "min", "max", "idw"}, models.DemProducts("dtm"))
}

// TestValidDemType tests DEM type validation
func TestValidDemType(t *testing.T) {
	assert.True(t, models.ValidDemType("density"))
	assert.True(t, models.ValidDemType("dsm"))
	assert.True(t, models.ValidDemType("dtm"))
	assert.False(t, models.ValidDemType("chm"))
	assert.False(t, models.ValidDemType(""))
}
