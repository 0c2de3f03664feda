package pdal

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"relief/internal/lib"
)

// element is one node of the engine's XML input format. The XMLName of each
// value selects its tag, so one struct serves Pipeline, Writer, Filter and
// Reader elements alike.
type element struct {
	XMLName  xml.Name
	Type     string    `xml:"type,attr,omitempty"`
	Version  string    `xml:"version,attr,omitempty"`
	Options  []option  `xml:"Option"`
	Children []element `xml:",any"`
}

// option is a named string value; range filter dimensions nest a further
// Options block holding the predicates
type option struct {
	XMLName xml.Name `xml:"Option"`
	Name    string   `xml:"name,attr"`
	Text    string   `xml:",chardata"`
	Nested  *options `xml:"Options,omitempty"`
}

type options struct {
	Options []option `xml:"Option"`
}

// Serialize renders a pipeline to the engine's XML input format in a single
// pass over the stage tree. PCL block stages serialize to references to
// JSON fragment side files, which Serialize creates; the returned sidecar
// paths must be removed by the caller once the engine has run.
func Serialize(p Pipeline) ([]byte, []string, error) {
	var sidecars []string

	inner, err := readerTree(p.Readers)
	if err != nil {
		return nil, nil, err
	}

	// Fold the filter chain around the readers, first stage innermost
	for _, f := range p.Filters {
		el, side, err := filterElement(f)
		if err != nil {
			removeAll(sidecars)
			return nil, nil, err
		}
		if side != "" {
			sidecars = append(sidecars, side)
		}
		el.Children = inner
		inner = []element{el}
	}

	writer, err := writerElement(p.Writer)
	if err != nil {
		removeAll(sidecars)
		return nil, nil, err
	}
	writer.Children = inner

	root := element{
		XMLName:  xml.Name{Local: "Pipeline"},
		Version:  "1.0",
		Children: []element{writer},
	}

	out, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		removeAll(sidecars)
		return nil, nil, fmt.Errorf("failed to serialize pipeline: %w", err)
	}
	return out, sidecars, nil
}

// readerTree returns the innermost elements of the pipeline: the readers,
// wrapped in a merge filter if and only if there is more than one
func readerTree(readers []Reader) ([]element, error) {
	els := make([]element, 0, len(readers))
	for _, r := range readers {
		abs, err := filepath.Abs(r.Filename)
		if err != nil {
			return nil, lib.ErrFileSystem("resolve", r.Filename, err)
		}
		els = append(els, element{
			XMLName: xml.Name{Local: "Reader"},
			Type:    "readers.las",
			Options: []option{{Name: "filename", Text: abs}},
		})
	}
	if len(els) > 1 {
		return []element{{
			XMLName:  xml.Name{Local: "Filter"},
			Type:     "filters.merge",
			Children: els,
		}}, nil
	}
	return els, nil
}

func writerElement(w Stage) (element, error) {
	switch w := w.(type) {
	case PointsWriter:
		return element{
			XMLName: xml.Name{Local: "Writer"},
			Type:    "writers.las",
			Options: []option{{Name: "filename", Text: w.Path}},
		}, nil
	case GridWriter:
		opts := []option{
			{Name: "grid_dist_x", Text: formatFloat(w.CellX)},
			{Name: "grid_dist_y", Text: formatFloat(w.CellY)},
			{Name: "radius", Text: w.Radius},
			{Name: "output_format", Text: "tif"},
		}
		if w.SpatialRef != "" {
			opts = append(opts, option{Name: "spatialreference", Text: w.SpatialRef})
		}
		opts = append(opts, option{Name: "filename", Text: w.Path})
		for _, t := range w.OutputTypes {
			opts = append(opts, option{Name: "output_type", Text: t})
		}
		return element{
			XMLName: xml.Name{Local: "Writer"},
			Type:    "writers.p2g",
			Options: opts,
		}, nil
	default:
		return element{}, fmt.Errorf("pipeline writer must be a GridWriter or PointsWriter, got %T", w)
	}
}

// filterElement serializes one filter stage; the second return is a sidecar
// file path for stages that reference external JSON fragments
func filterElement(s Stage) (element, string, error) {
	switch s := s.(type) {
	case Crop:
		return element{
			XMLName: xml.Name{Local: "Filter"},
			Type:    "filters.crop",
			Options: []option{{Name: "polygon", Text: s.PolygonWKT}},
		}, "", nil
	case Decimate:
		return element{
			XMLName: xml.Name{Local: "Filter"},
			Type:    "filters.decimation",
			Options: []option{{Name: "step", Text: strconv.Itoa(s.Step)}},
		}, "", nil
	case RangeFilter:
		bounds := make([]option, 0, len(s.Bounds))
		for _, b := range s.Bounds {
			bounds = append(bounds, option{Name: b.Predicate, Text: b.Value})
		}
		return element{
			XMLName: xml.Name{Local: "Filter"},
			Type:    "filters.range",
			Options: []option{{
				Name:   "dimension",
				Text:   s.Dimension,
				Nested: &options{Options: bounds},
			}},
		}, "", nil
	case StatisticalOutlier:
		body := fmt.Sprintf(
			`{"pipeline": {"name": "Outlier Removal","version": 1.0,"filters":[{"name": "StatisticalOutlierRemoval","setMeanK": %d,"setStddevMulThresh": %s}]}}`,
			s.MeanK, formatFloat(s.StdDevThresh))
		return pclblockElement(body)
	case ProgressiveMorphology:
		body := fmt.Sprintf(
			`{"pipeline": {"name": "PMF","version": 1.0,"filters":[{"name": "ProgressiveMorphologicalFilter","setSlope": %s,"setCellSize": %s}]}}`,
			formatFloat(s.Slope), formatFloat(s.CellSize))
		return pclblockElement(body)
	default:
		return element{}, "", fmt.Errorf("stage %T cannot appear in the filter chain", s)
	}
}

// pclblockElement writes the JSON fragment to a side file and returns a
// pclblock filter referencing it
func pclblockElement(body string) (element, string, error) {
	f, err := os.CreateTemp("", "pclblock-*.json")
	if err != nil {
		return element{}, "", lib.ErrFileSystem("create", "pclblock fragment", err)
	}
	if _, err := f.WriteString(body); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return element{}, "", lib.ErrFileSystem("write", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return element{}, "", lib.ErrFileSystem("close", f.Name(), err)
	}
	return element{
		XMLName: xml.Name{Local: "Filter"},
		Type:    "filters.pclblock",
		Options: []option{{Name: "filename", Text: f.Name()}},
	}, f.Name(), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func removeAll(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
