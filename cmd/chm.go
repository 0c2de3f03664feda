package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"relief/internal/pipeline"
)

var chmCmd = &cobra.Command{
	Use:   "chm <dtm.tif> <dsm.tif> <out.tif>",
	Short: "Derive a canopy height model from a DTM and a DSM",
	Long: `Subtract the terrain model from the surface model cell by cell. The
inputs must share the same grid; cells where either input has no data
stay no-data in the result.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		fout, err := pipeline.CreateCHM(args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), fout)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chmCmd)
}
