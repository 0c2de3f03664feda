package pipeline

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"relief/internal/interp"
	"relief/internal/lib"
	"relief/internal/models"
	"relief/internal/pdal"
	"relief/internal/services"
	"relief/internal/ui"
	"relief/internal/vector"
)

// Generator produces elevation raster products from classified point files
type Generator struct {
	Runner pdal.Runner
	Config *models.Config
	Logger *lib.Logger

	// NoProgress disables the terminal progress bar during fan-out runs
	NoProgress bool
}

// NewGenerator wires a DEM generator to an engine runner
func NewGenerator(runner pdal.Runner, config *models.Config, logger *lib.Logger) *Generator {
	if logger == nil {
		logger = lib.DefaultLogger
	}
	return &Generator{Runner: runner, Config: config, Logger: logger}
}

// CreateDem grids the input point files into one raster per product for a
// single search radius. Generation is skipped only when every expected
// product already exists under some extension; a partial product set forces
// a full re-run because the engine always writes the set together.
func (g *Generator) CreateDem(opt models.DemOptions, site *vector.Site) (map[string]string, error) {
	if err := opt.Validate(); err != nil {
		return nil, lib.ErrInvalidOptions("dem", err.Error())
	}
	start := time.Now()

	products := opt.Products
	if products == nil {
		products = models.DemProducts(opt.DemType)
	}

	outDir, err := filepath.Abs(opt.OutDir)
	if err != nil {
		return nil, lib.ErrFileSystem("resolve", opt.OutDir, err)
	}
	basename := ""
	if site != nil {
		basename = site.Basename()
	}
	base := models.DemBaseName(outDir, basename, opt.DemType, opt.Radius, opt.Suffix)

	fouts := make(map[string]string, len(products))
	for _, p := range products {
		fouts[p] = models.ProductPath(base, p)
	}
	pretty := fmt.Sprintf("%s [%s]", lib.PrettyPath(base), strings.Join(products, " "))

	err = services.WithOutputLock(base, g.Logger, func() error {
		run := false
		for _, f := range fouts {
			if !lib.ExistsAnyExt(f) {
				run = true
				break
			}
		}
		if !run {
			lib.LogCacheHit(g.Logger, "create_dem", pretty)
			return nil
		}
		g.Logger.Info(fmt.Sprintf("Creating %s from %d files", pretty, len(opt.Files)))

		writer := pdal.GridWriter{
			Path:        base,
			CellX:       1.0,
			CellY:       1.0,
			Radius:      opt.Radius,
			OutputTypes: products,
		}
		if site != nil {
			writer.SpatialRef = site.Projection()
		}

		stages := pdal.StageOptions{
			Decimation:     opt.Decimation,
			MaxZ:           opt.Filters.MaxZ,
			MaxScanAngle:   opt.Filters.MaxScanAngle,
			ReturnNum:      opt.Filters.ReturnNum,
			Classification: pdal.ClassificationFilter(opt.DemType),
		}
		if opt.Filters.OutlierStdDev > 0 {
			stages.Outlier = &pdal.StatisticalOutlier{
				MeanK:        opt.Filters.OutlierMeanK,
				StdDevThresh: opt.Filters.OutlierStdDev,
			}
		}

		if err := g.Runner.RunPipeline(pdal.NewGridPipeline(opt.Files, writer, stages)); err != nil {
			return err
		}
		for _, f := range fouts {
			if !lib.ExistsAnyExt(f) {
				return lib.ErrMissingOutput(g.Config.PDAL.Path, f)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	lib.LogStageComplete(g.Logger, "create_dem", pretty, time.Since(start))
	return fouts, nil
}

// CreateDems runs CreateDem once per requested radius, then reports one
// path per product: the gap-filled composite when gap-filling is requested,
// otherwise the first-radius result (later radii are computed as the
// fallback set and intentionally discarded from the report).
func (g *Generator) CreateDems(opt models.DemsOptions, site *vector.Site) (map[string]string, error) {
	if err := opt.Validate(); err != nil {
		return nil, lib.ErrInvalidOptions("dems", err.Error())
	}

	radii, err := parseRadii(opt.Radii)
	if err != nil {
		return nil, err
	}

	var bar *ui.ProgressBar
	if !g.NoProgress && len(opt.Radii) > 1 {
		bar = ui.NewProgressBar(int64(len(opt.Radii)), fmt.Sprintf("Gridding %s radii", opt.DemType))
	}

	perRadius := make([]map[string]string, 0, len(opt.Radii))
	for _, radius := range opt.Radii {
		fouts, err := g.CreateDem(models.DemOptions{
			Files:      opt.Files,
			DemType:    opt.DemType,
			Radius:     radius,
			Decimation: opt.Decimation,
			Filters:    opt.Filters,
			Products:   opt.Products,
			OutDir:     opt.OutDir,
			Suffix:     opt.Suffix,
		}, site)
		if err != nil {
			return nil, err
		}
		perRadius = append(perRadius, fouts)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	// transpose the per-radius product maps into per-product path lists
	products := make([]string, 0, len(perRadius[0]))
	for product := range perRadius[0] {
		products = append(products, product)
	}
	sort.Strings(products)

	byProduct := make(map[string][]string, len(products))
	for _, product := range products {
		for _, fouts := range perRadius {
			byProduct[product] = append(byProduct[product], fouts[product])
		}
	}

	results := make(map[string]string, len(products))
	if !opt.GapFill {
		for _, product := range products {
			results[product] = byProduct[product][0]
		}
		return results, nil
	}

	methodName := opt.Interpolation
	if methodName == "" {
		methodName = g.Config.Interpolation
	}
	method, err := interp.ParseMethod(methodName)
	if err != nil {
		return nil, err
	}

	basename := ""
	if site != nil {
		basename = site.Basename()
	}
	for _, product := range products {
		// density is a diagnostic layer; substituting values across radii
		// would fabricate measurements, so it reports the first radius only
		if product == models.ProductDensity {
			results[product] = byProduct[product][0]
			continue
		}
		fout := models.GapFilledName(opt.OutDir, basename, opt.DemType, opt.Suffix, product)
		if !lib.Exists(fout) {
			stack := make([]StackEntry, len(radii))
			for i, r := range radii {
				stack[i] = StackEntry{Radius: r, Path: byProduct[product][i]}
			}
			if _, err := GapFill(stack, fout, site, method, g.Logger); err != nil {
				return nil, err
			}
		}
		results[product] = fout
	}
	return results, nil
}

func parseRadii(radii []string) ([]float64, error) {
	out := make([]float64, len(radii))
	for i, r := range radii {
		v, err := strconv.ParseFloat(r, 64)
		if err != nil || v <= 0 {
			return nil, lib.ErrInvalidOptions("radius", fmt.Sprintf("radius %q is not a positive number", r))
		}
		out[i] = v
	}
	return out, nil
}
