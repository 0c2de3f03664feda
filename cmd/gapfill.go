package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"relief/internal/interp"
	"relief/internal/pipeline"
)

var (
	gapfillOut           string
	gapfillSite          string
	gapfillInterpolation string
)

var gapfillCmd = &cobra.Command{
	Use:   "gapfill <raster.tif>...",
	Short: "Composite same-grid rasters and interpolate remaining holes",
	Long: `Fill no-data cells of the first raster from the following rasters in
the given order, then interpolate whatever none of them could supply.
Earlier arguments take precedence, so list rasters from finest to
coarsest. All inputs must share the same grid.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, logger, _, err := setup()
		if err != nil {
			return err
		}
		site, err := loadSite(gapfillSite)
		if err != nil {
			return err
		}

		methodName := gapfillInterpolation
		if methodName == "" {
			methodName = config.Interpolation
		}
		method, err := interp.ParseMethod(methodName)
		if err != nil {
			return err
		}

		// argument order is the priority order
		entries := make([]pipeline.StackEntry, len(args))
		for i, path := range args {
			entries[i] = pipeline.StackEntry{Radius: float64(i), Path: path}
		}

		fout, err := pipeline.GapFill(entries, gapfillOut, site, method, logger)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), fout)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(gapfillCmd)

	gapfillCmd.Flags().StringVarP(&gapfillOut, "out", "o", "", "output raster path")
	gapfillCmd.Flags().StringVarP(&gapfillSite, "site", "s", "", "site boundary GeoJSON to clip the result to")
	gapfillCmd.Flags().StringVar(&gapfillInterpolation, "interpolation", "", "interpolation method: nearest, idw or linear (default from config)")
	_ = gapfillCmd.MarkFlagRequired("out")
}
