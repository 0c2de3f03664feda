package models

import "fmt"

// Config is the top-level configuration for the relief pipeline
type Config struct {
	PDAL          PDALConfig    `yaml:"pdal" json:"pdal"`
	Terrain       TerrainConfig `yaml:"terrain" json:"terrain"`
	Buffer        float64       `yaml:"buffer" json:"buffer"`               // crop buffer distance in linear units
	Radii         []string      `yaml:"radii" json:"radii"`                 // default gridding search radii
	Interpolation string        `yaml:"interpolation" json:"interpolation"` // default gap-fill method
	Verbose       bool          `yaml:"verbose" json:"verbose"`
}

// PDALConfig contains settings for the external point-cloud engine
type PDALConfig struct {
	Path string `yaml:"path" json:"path"` // engine binary, default "pdal"
}

// TerrainParams are ground-classification parameters for one terrain class
type TerrainParams struct {
	Slope    float64 `yaml:"slope" json:"slope"`
	CellSize float64 `yaml:"cellsize" json:"cellsize"`
}

// TerrainConfig maps a site's terrain class to classification defaults.
// The Default entry is used for sites without a class and for classless runs.
type TerrainConfig struct {
	Default TerrainParams            `yaml:"default" json:"default"`
	Classes map[string]TerrainParams `yaml:"classes" json:"classes"`
}

// Params returns the classification parameters for a terrain class,
// falling back to the defaults for unknown or empty classes
func (t *TerrainConfig) Params(class string) TerrainParams {
	if class != "" {
		if p, ok := t.Classes[class]; ok {
			return p
		}
	}
	return t.Default
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() Config {
	return Config{
		PDAL: PDALConfig{
			Path: "pdal",
		},
		Terrain: TerrainConfig{
			Default: TerrainParams{Slope: 1.0, CellSize: 3.0},
			Classes: map[string]TerrainParams{},
		},
		Buffer:        20.0,
		Radii:         []string{"0.56"},
		Interpolation: "nearest",
	}
}

// Validate checks the configuration for contradictions
func (c *Config) Validate() error {
	if c.PDAL.Path == "" {
		return fmt.Errorf("pdal.path must not be empty")
	}
	if c.Buffer < 0 {
		return fmt.Errorf("buffer must be >= 0, got %g", c.Buffer)
	}
	if len(c.Radii) == 0 {
		return fmt.Errorf("at least one default radius is required")
	}
	switch c.Interpolation {
	case "nearest", "idw", "linear":
	default:
		return fmt.Errorf("interpolation must be one of nearest, idw, linear; got %q", c.Interpolation)
	}
	if c.Terrain.Default.Slope <= 0 || c.Terrain.Default.CellSize <= 0 {
		return fmt.Errorf("terrain.default slope and cellsize must be > 0")
	}
	return nil
}
