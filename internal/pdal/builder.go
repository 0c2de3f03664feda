package pdal

// StageOptions are the optional filter stages of a pipeline. Zero values
// skip the corresponding stage. Stage order is fixed regardless of the
// order options are supplied in: crop, decimate, outlier removal, range
// filters, classification filter.
type StageOptions struct {
	CropWKT        string
	Decimation     int
	Outlier        *StatisticalOutlier
	MaxZ           string
	MaxScanAngle   string
	ReturnNum      string
	Classification *RangeFilter
}

// NewPointsPipeline builds a pipeline that merges the given point files into
// a single LAS file, applying any configured filter stages on the way.
// Construction is pure; callers must supply at least one file.
func NewPointsPipeline(files []string, out string, opt StageOptions) Pipeline {
	return Pipeline{
		Writer:  PointsWriter{Path: out},
		Filters: opt.filters(),
		Readers: readers(files),
	}
}

// NewGridPipeline builds a pipeline that grids the given point files into
// raster products through the configured filter stages
func NewGridPipeline(files []string, w GridWriter, opt StageOptions) Pipeline {
	return Pipeline{
		Writer:  w,
		Filters: opt.filters(),
		Readers: readers(files),
	}
}

// ClassificationFilter returns the terminal class-selection filter for a
// DEM type: surface models keep everything up to the unclassified class,
// terrain models keep exactly the ground class. Nil for types that grid
// all points.
func ClassificationFilter(demtype string) *RangeFilter {
	switch demtype {
	case "dsm":
		return &RangeFilter{
			Dimension: "Classification",
			Bounds:    []RangeBound{{Predicate: "max", Value: "1"}},
		}
	case "dtm":
		return &RangeFilter{
			Dimension: "Classification",
			Bounds:    []RangeBound{{Predicate: "equals", Value: "2"}},
		}
	}
	return nil
}

// filters assembles the stage chain in the fixed execution order
func (opt StageOptions) filters() []Stage {
	var stages []Stage
	if opt.CropWKT != "" {
		stages = append(stages, Crop{PolygonWKT: opt.CropWKT})
	}
	if opt.Decimation > 0 {
		stages = append(stages, Decimate{Step: opt.Decimation})
	}
	if opt.Outlier != nil {
		o := *opt.Outlier
		if o.MeanK == 0 {
			o.MeanK = 20
		}
		stages = append(stages, o)
	}
	if opt.MaxZ != "" {
		stages = append(stages, RangeFilter{
			Dimension: "Z",
			Bounds:    []RangeBound{{Predicate: "max", Value: opt.MaxZ}},
		})
	}
	if opt.MaxScanAngle != "" {
		stages = append(stages, scanAngleFilter(opt.MaxScanAngle))
	}
	if opt.ReturnNum != "" {
		stages = append(stages, RangeFilter{
			Dimension: "ReturnNum",
			Bounds:    []RangeBound{{Predicate: "equals", Value: opt.ReturnNum}},
		})
	}
	if opt.Classification != nil {
		stages = append(stages, *opt.Classification)
	}
	return stages
}

// scanAngleFilter bounds the absolute scan angle from both sides
func scanAngleFilter(maxAbs string) RangeFilter {
	return RangeFilter{
		Dimension: "ScanAngleRank",
		Bounds: []RangeBound{
			{Predicate: "max", Value: maxAbs},
			{Predicate: "min", Value: "-" + maxAbs},
		},
	}
}

func readers(files []string) []Reader {
	rs := make([]Reader, 0, len(files))
	for _, f := range files {
		rs = append(rs, Reader{Filename: f})
	}
	return rs
}
