package models

import "fmt"

// FilterOptions are the optional point filters applied before gridding.
// Zero values disable the corresponding filter stage.
type FilterOptions struct {
	OutlierMeanK  int     // neighbors for statistical outlier removal, default 20
	OutlierStdDev float64 // stddev multiplier threshold; 0 disables outlier removal
	MaxZ          string  // drop returns above this elevation; empty disables
	MaxScanAngle  string  // drop returns beyond +/- this scan angle; empty disables
	ReturnNum     string  // keep only this return number; empty disables
}

// ClassifyOptions enumerates every recognized parameter of the ground
// classification entry point. Unknown parameters are impossible by
// construction; zero values select the documented defaults.
type ClassifyOptions struct {
	Files      []string // source point files, at least one
	Buffer     float64  // site crop buffer distance; 0 selects the config default
	Slope      float64  // ground classification slope; 0 derives from the site terrain class
	CellSize   float64  // ground classification cell size; 0 derives from the site terrain class
	Decimation int      // decimation step; 0 disables decimation
	OutDir     string   // output directory
	Suffix     string   // user suffix appended to the deterministic name
}

// Validate fails fast on contradictions before any external invocation
func (o *ClassifyOptions) Validate() error {
	if len(o.Files) == 0 {
		return fmt.Errorf("at least one input point file is required")
	}
	if o.OutDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if o.Buffer < 0 {
		return fmt.Errorf("buffer must be >= 0, got %g", o.Buffer)
	}
	if o.Decimation < 0 {
		return fmt.Errorf("decimation must be >= 0, got %d", o.Decimation)
	}
	return nil
}

// DemOptions enumerates every recognized parameter of single-radius DEM
// generation
type DemOptions struct {
	Files      []string // classified point files, at least one
	DemType    string   // density, dsm or dtm
	Radius     string   // gridding search radius, kept verbatim in filenames
	Decimation int      // decimation step; 0 disables decimation
	Filters    FilterOptions
	Products   []string // product subset; nil selects the demtype defaults
	OutDir     string
	Suffix     string
}

// Validate fails fast on contradictions before any external invocation
func (o *DemOptions) Validate() error {
	if len(o.Files) == 0 {
		return fmt.Errorf("at least one input point file is required")
	}
	if !ValidDemType(o.DemType) {
		return fmt.Errorf("unknown dem type %q", o.DemType)
	}
	if o.Radius == "" {
		return fmt.Errorf("radius is required")
	}
	if o.OutDir == "" {
		return fmt.Errorf("output directory is required")
	}
	return nil
}

// DemsOptions enumerates every recognized parameter of the multi-radius
// fan-out entry point
type DemsOptions struct {
	Files         []string
	DemType       string
	Radii         []string // one CreateDem run per radius, in order
	Decimation    int
	Filters       FilterOptions
	Products      []string
	GapFill       bool   // composite all products except density across radii
	Interpolation string // gap-fill method; empty selects the config default
	OutDir        string
	Suffix        string
}

// Validate fails fast on contradictions before any external invocation
func (o *DemsOptions) Validate() error {
	if len(o.Radii) == 0 {
		return fmt.Errorf("at least one radius is required")
	}
	single := DemOptions{
		Files:   o.Files,
		DemType: o.DemType,
		Radius:  o.Radii[0],
		OutDir:  o.OutDir,
	}
	return single.Validate()
}
