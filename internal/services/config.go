package services

import (
	"fmt"

	"github.com/spf13/viper"

	"relief/internal/models"
)

// LoadConfig loads configuration from file and environment.
// Priority order (highest to lowest):
//  1. CLI flags (via viper bindings)
//  2. Environment variables
//  3. Configuration file
//  4. Default values
func LoadConfig(configFile string) (*models.Config, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Search for config in standard locations
		viper.SetConfigName("relief")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/relief")
		viper.AddConfigPath("/etc/relief")
	}

	// Enable environment variable override with RELIEF_ prefix
	viper.SetEnvPrefix("RELIEF")
	viper.AutomaticEnv()

	// Read config file (optional - don't fail if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Build config from viper values on top of the defaults
	config := models.DefaultConfig()
	if viper.IsSet("pdal.path") {
		config.PDAL.Path = viper.GetString("pdal.path")
	}
	if viper.IsSet("buffer") {
		config.Buffer = viper.GetFloat64("buffer")
	}
	if viper.IsSet("radii") {
		config.Radii = viper.GetStringSlice("radii")
	}
	if viper.IsSet("interpolation") {
		config.Interpolation = viper.GetString("interpolation")
	}
	if viper.IsSet("verbose") {
		config.Verbose = viper.GetBool("verbose")
	}
	if viper.IsSet("terrain.default.slope") {
		config.Terrain.Default.Slope = viper.GetFloat64("terrain.default.slope")
	}
	if viper.IsSet("terrain.default.cellsize") {
		config.Terrain.Default.CellSize = viper.GetFloat64("terrain.default.cellsize")
	}
	for class := range viper.GetStringMap("terrain.classes") {
		config.Terrain.Classes[class] = models.TerrainParams{
			Slope:    viper.GetFloat64("terrain.classes." + class + ".slope"),
			CellSize: viper.GetFloat64("terrain.classes." + class + ".cellsize"),
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetConfigFilePath returns the path to the config file that was loaded
func GetConfigFilePath() string {
	return viper.ConfigFileUsed()
}

// SetConfigValue allows runtime override of config values.
// Useful for CLI flag overrides.
func SetConfigValue(key string, value interface{}) {
	viper.Set(key, value)
}
