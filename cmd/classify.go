package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"relief/internal/models"
	"relief/internal/pipeline"
)

var (
	classifySite       string
	classifyOutDir     string
	classifySuffix     string
	classifyBuffer     float64
	classifySlope      float64
	classifyCellSize   float64
	classifyDecimation int
)

var classifyCmd = &cobra.Command{
	Use:   "classify <las-file>...",
	Short: "Ground-classify point files into a single LAS file",
	Long: `Merge the input point files, optionally crop them to a buffered site
boundary, and run the engine's morphological ground filter over the
result. The output name encodes slope and cell size, so rerunning with
the same parameters reuses the existing file.

Slope and cell size fall back to the site's terrain class when not given
on the command line, then to the configured defaults.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, logger, engine, err := setup()
		if err != nil {
			return err
		}
		site, err := loadSite(classifySite)
		if err != nil {
			return err
		}

		classifier := pipeline.NewClassifier(engine, config, logger)
		fout, err := classifier.Classify(models.ClassifyOptions{
			Files:      args,
			Buffer:     classifyBuffer,
			Slope:      classifySlope,
			CellSize:   classifyCellSize,
			Decimation: classifyDecimation,
			OutDir:     classifyOutDir,
			Suffix:     classifySuffix,
		}, site)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), fout)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVarP(&classifySite, "site", "s", "", "site boundary GeoJSON (crop extent, terrain class, output naming)")
	classifyCmd.Flags().StringVarP(&classifyOutDir, "outdir", "o", ".", "output directory")
	classifyCmd.Flags().StringVar(&classifySuffix, "suffix", "", "suffix appended to the output name")
	classifyCmd.Flags().Float64Var(&classifyBuffer, "buffer", 0, "crop buffer distance around the site boundary (default from config)")
	classifyCmd.Flags().Float64Var(&classifySlope, "slope", 0, "ground filter slope (default from terrain class)")
	classifyCmd.Flags().Float64Var(&classifyCellSize, "cellsize", 0, "ground filter cell size (default from terrain class)")
	classifyCmd.Flags().IntVar(&classifyDecimation, "decimation", 0, "keep every Nth point (0 disables)")
}
