package pipeline

import (
	"os"
	"sort"
	"time"

	"relief/internal/interp"
	"relief/internal/lib"
	"relief/internal/raster"
	"relief/internal/vector"
)

// StackEntry is one raster in a gap-fill stack, tagged with the gridding
// search radius that produced it
type StackEntry struct {
	Radius float64
	Path   string
}

// GapFill composites a stack of same-grid rasters into one gap-free raster.
// Smaller radii carry more detail and always win: the stack is walked in
// ascending radius order and each raster only fills cells that are still
// no-data. Cells no raster could supply are interpolated from the known
// cells; if a site is given, the result is re-clipped to its boundary at
// the written raster's native cell size.
func GapFill(entries []StackEntry, fout string, site *vector.Site, method interp.Method, logger *lib.Logger) (string, error) {
	if logger == nil {
		logger = lib.DefaultLogger
	}
	if len(entries) == 0 {
		return "", lib.ErrEmptyStack()
	}
	start := time.Now()
	pretty := lib.PrettyPath(fout)
	logger.Info("Gap-filling to create " + pretty)

	stack := make([]StackEntry, len(entries))
	copy(stack, entries)
	sort.Slice(stack, func(i, j int) bool { return stack[i].Radius < stack[j].Radius })

	work, err := raster.ReadGeoTIFF(stack[0].Path)
	if err != nil {
		return "", err
	}

	// progressive fill: each coarser raster only touches cells that are
	// still no-data, so earlier (smaller-radius) values always win
	for _, entry := range stack[1:] {
		g, err := raster.ReadGeoTIFF(entry.Path)
		if err != nil {
			return "", err
		}
		if !work.SameGridAs(g) {
			return "", lib.ErrGridMismatch(stack[0].Path, entry.Path)
		}
		for i, v := range work.Data {
			if work.IsNoData(v) {
				work.Data[i] = g.Data[i]
			}
		}
	}

	// interpolate whatever the stack could not supply
	var known []interp.Sample
	var targets [][2]float64
	var holes []int
	for row := 0; row < work.Height; row++ {
		for col := 0; col < work.Width; col++ {
			v := work.At(col, row)
			x, y := work.CellCenter(col, row)
			if work.IsNoData(v) {
				targets = append(targets, [2]float64{x, y})
				holes = append(holes, row*work.Width+col)
			} else {
				known = append(known, interp.Sample{X: x, Y: y, V: v})
			}
		}
	}
	if len(targets) > 0 {
		values, err := interp.Fill(known, targets, method)
		if err != nil {
			return "", err
		}
		for i, idx := range holes {
			work.Data[idx] = values[i]
		}
	}

	if err := raster.WriteGeoTIFF(fout, work); err != nil {
		return "", err
	}

	if site != nil {
		if err := clipToSite(fout, site); err != nil {
			return "", err
		}
	}

	lib.LogStageComplete(logger, "gap_fill", pretty, time.Since(start))
	return fout, nil
}

// clipToSite re-clips a written raster to the site boundary at the raster's
// native cell size, then atomically replaces the original with the clipped
// version
func clipToSite(fout string, site *vector.Site) error {
	// reopen rather than reuse the in-memory grid: the clip must align to
	// whatever cell size actually landed on disk
	written, err := raster.ReadGeoTIFF(fout)
	if err != nil {
		return err
	}
	clipped := written.Clip(site.Polygon())

	base, ext := lib.SplitExts(fout)
	tmp := base + "_clip" + ext
	if err := raster.WriteGeoTIFF(tmp, clipped); err != nil {
		return err
	}
	if err := os.Remove(fout); err != nil {
		return lib.ErrFileSystem("remove", fout, err)
	}
	if err := os.Rename(tmp, fout); err != nil {
		return lib.ErrFileSystem("rename", tmp, err)
	}
	return nil
}
