/*
Relief creates digital elevation models from aerial LiDAR point clouds.
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"relief/internal/lib"
	"relief/internal/models"
	"relief/internal/pdal"
	"relief/internal/services"
	"relief/internal/vector"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "relief",
	Short: "Relief - LiDAR to DEM pipeline CLI",
	Long: `Relief turns raw aerial LiDAR point clouds into ground-classified point
sets and derived elevation rasters (DTM, DSM, CHM).

Point-cloud processing is delegated to the external PDAL engine; relief
assembles the pipeline descriptions, names outputs deterministically so
finished work is never redone, and composites multi-radius raster runs
into gap-filled products.

Example:
  relief classify --outdir out *.las
  relief dem dtm --radius 0.56 --radius 1.41 --gapfill --outdir out out/classified_s1c3.las
  relief chm out/dtm.idw.tif out/dsm.max.tif out/chm.tif`,
	Version: "0.1.0",

	// errors are reported once by Execute, with guidance where available
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		var re *lib.ReliefError
		if errors.As(err, &re) {
			fmt.Fprint(os.Stderr, re.UserMessage())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./relief.yaml, ~/.config/relief/relief.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "echo pipeline descriptions and engine diagnostics")

	rootCmd.SetVersionTemplate("Relief version {{.Version}}\n")
}

// setup loads configuration and wires the logger and engine runner shared
// by every subcommand
func setup() (*models.Config, *lib.Logger, *pdal.Engine, error) {
	config, err := services.LoadConfig(cfgFile)
	if err != nil {
		return nil, nil, nil, err
	}
	if verbose {
		config.Verbose = true
	}

	level := lib.LogLevelInfo
	if config.Verbose {
		level = lib.LogLevelDebug
	}
	logger := lib.NewLogger(level)

	engine := pdal.NewEngine(config.PDAL.Path, config.Verbose, logger)
	return config, logger, engine, nil
}

// loadSite loads the optional site boundary shared by several subcommands
func loadSite(path string) (*vector.Site, error) {
	if path == "" {
		return nil, nil
	}
	return vector.LoadSite(path)
}
