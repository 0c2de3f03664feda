// Package pdal constructs and runs declarative pipelines for the external
// PDAL point-cloud engine. A pipeline is an immutable tree: one writer fed
// by a chain of filters, fed by one or more readers (merged when there is
// more than one). Construction is pure; all side effects (temp files,
// subprocess invocation) live in the runner.
package pdal

// Stage is a tagged variant over the pipeline stage kinds. Each stage
// carries only the parameters needed to serialize it.
type Stage interface {
	stage()
}

// Reader reads one LAS point file
type Reader struct {
	Filename string
}

// Crop drops points outside a polygon, given as well-known text
type Crop struct {
	PolygonWKT string
}

// Decimate keeps every Nth point
type Decimate struct {
	Step int
}

// RangeBound is one predicate on a range filter dimension
type RangeBound struct {
	Predicate string // equals, min or max
	Value     string
}

// RangeFilter keeps points whose dimension satisfies every bound
type RangeFilter struct {
	Dimension string
	Bounds    []RangeBound
}

// StatisticalOutlier removes outlier points via a PCL block. Serialized as
// a pclblock filter referencing a JSON fragment side file.
type StatisticalOutlier struct {
	MeanK        int
	StdDevThresh float64
}

// ProgressiveMorphology classifies ground via a PCL progressive
// morphological filter block. Present for completeness; the classification
// workflow invokes the engine's dedicated ground mode instead because the
// in-pipeline block misbehaves (see GroundClassifier).
type ProgressiveMorphology struct {
	Slope    float64
	CellSize float64
}

// GridWriter grids points into raster products, one file per output type
type GridWriter struct {
	Path        string // output base path; the engine appends .{type}.tif
	CellX       float64
	CellY       float64
	Radius      string // gridding search radius, kept verbatim
	OutputTypes []string
	SpatialRef  string // optional spatial reference stamped on outputs
}

// PointsWriter writes points to a single LAS file
type PointsWriter struct {
	Path string
}

func (Reader) stage()                {}
func (Crop) stage()                  {}
func (Decimate) stage()              {}
func (RangeFilter) stage()           {}
func (StatisticalOutlier) stage()    {}
func (ProgressiveMorphology) stage() {}
func (GridWriter) stage()            {}
func (PointsWriter) stage()          {}

// Pipeline is a rooted stage tree: exactly one writer, a chain of filters
// in execution order (first filter runs first), and the source readers.
// A merge stage is implied whenever more than one reader is present.
type Pipeline struct {
	Writer  Stage // GridWriter or PointsWriter
	Filters []Stage
	Readers []Reader
}
