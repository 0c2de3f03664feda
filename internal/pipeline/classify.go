// Package pipeline orchestrates the classification, DEM generation,
// gap-fill and CHM workflows on top of the engine runner and the raster
// and vector collaborators. Every operation is synchronous and
// attempt-once; deterministic output filenames double as the cache, so an
// operation whose output already exists is a no-op.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"relief/internal/lib"
	"relief/internal/models"
	"relief/internal/pdal"
	"relief/internal/services"
	"relief/internal/vector"
)

// Classifier produces ground-classified point files
type Classifier struct {
	Runner pdal.Runner
	Config *models.Config
	Logger *lib.Logger
}

// NewClassifier wires a classifier to an engine runner
func NewClassifier(runner pdal.Runner, config *models.Config, logger *lib.Logger) *Classifier {
	if logger == nil {
		logger = lib.DefaultLogger
	}
	return &Classifier{Runner: runner, Config: config, Logger: logger}
}

// Classify merges, optionally crops and decimates the input point files,
// then ground-classifies them into a single LAS file whose name encodes the
// classification parameters. If the output already exists the call returns
// it unchanged without invoking the engine.
//
// The work happens in two phases because the engine's in-pipeline
// morphological ground filter misbehaves: first a point-writer pipeline
// produces a merged temp file, then the engine's dedicated ground mode
// classifies it.
func (c *Classifier) Classify(opt models.ClassifyOptions, site *vector.Site) (string, error) {
	if err := opt.Validate(); err != nil {
		return "", lib.ErrInvalidOptions("classify", err.Error())
	}
	start := time.Now()

	slope, cellsize := c.classParams(opt, site)

	outDir, err := filepath.Abs(opt.OutDir)
	if err != nil {
		return "", lib.ErrFileSystem("resolve", opt.OutDir, err)
	}
	basename := ""
	if site != nil {
		basename = site.Basename()
	}
	fout := filepath.Join(outDir, models.ClassifiedName(basename, slope, cellsize, opt.Suffix))
	pretty := lib.PrettyPath(fout)

	err = services.WithOutputLock(fout, c.Logger, func() error {
		if lib.Exists(fout) {
			lib.LogCacheHit(c.Logger, "classify", pretty)
			return nil
		}
		c.Logger.Info(fmt.Sprintf("Classifying %d files into %s", len(opt.Files), pretty))

		buffer := opt.Buffer
		if buffer == 0 {
			buffer = c.Config.Buffer
		}
		stages := pdal.StageOptions{Decimation: opt.Decimation}
		if site != nil {
			stages.CropWKT = site.BufferedWKT(buffer)
		}

		ftmp := filepath.Join(outDir, uuid.New().String()+".las")
		if err := c.Runner.RunPipeline(pdal.NewPointsPipeline(opt.Files, ftmp, stages)); err != nil {
			return err
		}
		if !lib.Exists(ftmp) {
			return lib.ErrMissingOutput(c.Config.PDAL.Path, ftmp)
		}
		c.Logger.Info(fmt.Sprintf("Created temp merged las file %s", lib.PrettyPath(ftmp)),
			"elapsed", time.Since(start).Round(time.Millisecond))

		if err := c.Runner.RunGround(ftmp, fout, slope, cellsize); err != nil {
			return err
		}
		// temp removal is conditioned on the final output existing, so a
		// failed ground run leaves the merged file behind for diagnosis
		if !lib.Exists(fout) {
			return lib.ErrMissingOutput(c.Config.PDAL.Path, fout)
		}
		if err := os.Remove(ftmp); err != nil {
			c.Logger.Warn("Failed to remove temp merged file", "path", ftmp, "error", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	lib.LogStageComplete(c.Logger, "classify", pretty, time.Since(start))
	return fout, nil
}

// classParams resolves slope and cell size from caller overrides, then the
// site's terrain class, then the configured defaults
func (c *Classifier) classParams(opt models.ClassifyOptions, site *vector.Site) (float64, float64) {
	class := ""
	if site != nil {
		class = site.TerrainClass()
	}
	params := c.Config.Terrain.Params(class)

	slope := opt.Slope
	if slope == 0 {
		slope = params.Slope
	}
	cellsize := opt.CellSize
	if cellsize == 0 {
		cellsize = params.CellSize
	}
	return slope, cellsize
}
