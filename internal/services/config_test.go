package services_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relief/internal/services"
)

// TestLoadConfig_Defaults tests that an empty config file yields the
// documented defaults
func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()

	path := filepath.Join(t.TempDir(), "relief.yaml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0644))

	config, err := services.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "pdal", config.PDAL.Path)
	assert.Equal(t, []string{"0.56"}, config.Radii)
	assert.Equal(t, "nearest", config.Interpolation)
}

// TestLoadConfig_File tests layering a YAML file over the defaults
func TestLoadConfig_File(t *testing.T) {
	viper.Reset()

	dir := t.TempDir()
	path := filepath.Join(dir, "relief.yaml")
	content := `
pdal:
  path: /opt/pdal/bin/pdal
radii:
  - "0.56"
  - "1.41"
interpolation: idw
terrain:
  default:
    slope: 2
    cellsize: 4
  classes:
    forest:
      slope: 0.5
      cellsize: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := services.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/pdal/bin/pdal", config.PDAL.Path)
	assert.Equal(t, []string{"0.56", "1.41"}, config.Radii)
	assert.Equal(t, "idw", config.Interpolation)
	assert.Equal(t, 2.0, config.Terrain.Default.Slope)
	assert.Equal(t, 4.0, config.Terrain.Default.CellSize)

	forest, ok := config.Terrain.Classes["forest"]
	require.True(t, ok)
	assert.Equal(t, 0.5, forest.Slope)
	assert.Equal(t, 2.0, forest.CellSize)

	// defaults untouched by the file survive
	assert.Equal(t, 20.0, config.Buffer)
}

// TestLoadConfig_InvalidValues tests that a contradictory file is rejected
func TestLoadConfig_InvalidValues(t *testing.T) {
	viper.Reset()

	path := filepath.Join(t.TempDir(), "relief.yaml")
	require.NoError(t, os.WriteFile(path, []byte("interpolation: cubic\n"), 0644))

	_, err := services.LoadConfig(path)
	assert.Error(t, err)
}

// TestLoadConfig_EnvOverride tests the RELIEF_ environment variable layer
func TestLoadConfig_EnvOverride(t *testing.T) {
	viper.Reset()
	t.Setenv("RELIEF_INTERPOLATION", "linear")

	path := filepath.Join(t.TempDir(), "relief.yaml")
	require.NoError(t, os.WriteFile(path, []byte("interpolation: idw\n"), 0644))

	config, err := services.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "linear", config.Interpolation)
}
