package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"relief/internal/models"
	"relief/internal/pipeline"
)

var (
	demSite          string
	demOutDir        string
	demSuffix        string
	demRadii         []string
	demProducts      []string
	demDecimation    int
	demGapFill       bool
	demInterpolation string
	demNoProgress    bool

	demMaxZ          string
	demMaxScanAngle  string
	demReturnNum     string
	demOutlierMeanK  int
	demOutlierStdDev float64
)

var demCmd = &cobra.Command{
	Use:   "dem <density|dsm|dtm> <las-file>...",
	Short: "Grid point files into elevation raster products",
	Long: `Grid the input point files into one raster per product for each
requested search radius. The dem type selects the point filters and the
default product set:

  density  point density only (den)
  dsm      first returns, non-ground (den, max)
  dtm      ground returns only (den, min, max, idw)

With --gapfill the per-radius rasters are composited per product in
ascending radius order and remaining holes are interpolated; density is
never gap-filled. Without --gapfill only the first radius is reported.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		config, logger, engine, err := setup()
		if err != nil {
			return err
		}
		site, err := loadSite(demSite)
		if err != nil {
			return err
		}

		radii := demRadii
		if len(radii) == 0 {
			radii = config.Radii
		}

		generator := pipeline.NewGenerator(engine, config, logger)
		generator.NoProgress = demNoProgress
		results, err := generator.CreateDems(models.DemsOptions{
			Files:      args[1:],
			DemType:    args[0],
			Radii:      radii,
			Decimation: demDecimation,
			Filters: models.FilterOptions{
				OutlierMeanK:  demOutlierMeanK,
				OutlierStdDev: demOutlierStdDev,
				MaxZ:          demMaxZ,
				MaxScanAngle:  demMaxScanAngle,
				ReturnNum:     demReturnNum,
			},
			Products:      demProducts,
			GapFill:       demGapFill,
			Interpolation: demInterpolation,
			OutDir:        demOutDir,
			Suffix:        demSuffix,
		}, site)
		if err != nil {
			return err
		}

		products := make([]string, 0, len(results))
		for product := range results {
			products = append(products, product)
		}
		sort.Strings(products)
		for _, product := range products {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", product, results[product])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(demCmd)

	demCmd.Flags().StringVarP(&demSite, "site", "s", "", "site boundary GeoJSON (projection, clipping, output naming)")
	demCmd.Flags().StringVarP(&demOutDir, "outdir", "o", ".", "output directory")
	demCmd.Flags().StringVar(&demSuffix, "suffix", "", "suffix appended to output names")
	demCmd.Flags().StringArrayVarP(&demRadii, "radius", "r", nil, "gridding search radius, repeatable (default from config)")
	demCmd.Flags().StringArrayVar(&demProducts, "product", nil, "product subset, repeatable (default per dem type)")
	demCmd.Flags().IntVar(&demDecimation, "decimation", 0, "keep every Nth point (0 disables)")
	demCmd.Flags().BoolVar(&demGapFill, "gapfill", false, "composite radii and interpolate remaining holes")
	demCmd.Flags().StringVar(&demInterpolation, "interpolation", "", "gap-fill method: nearest, idw or linear (default from config)")
	demCmd.Flags().BoolVar(&demNoProgress, "no-progress", false, "disable the progress bar")

	demCmd.Flags().StringVar(&demMaxZ, "maxz", "", "drop returns above this elevation")
	demCmd.Flags().StringVar(&demMaxScanAngle, "maxangle", "", "drop returns beyond +/- this scan angle")
	demCmd.Flags().StringVar(&demReturnNum, "returnnum", "", "keep only this return number")
	demCmd.Flags().IntVar(&demOutlierMeanK, "outlier-meank", 0, "neighbors for statistical outlier removal (default 20)")
	demCmd.Flags().Float64Var(&demOutlierStdDev, "outlier-stddev", 0, "stddev threshold for outlier removal (0 disables)")
}
