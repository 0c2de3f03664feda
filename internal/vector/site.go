// Package vector provides the site boundary used to crop point clouds and
// clip rasters. A site is loaded from a GeoJSON boundary file and exposes
// the well-known-text, basename, projection and terrain-class capabilities
// the pipeline layers consume.
package vector

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"relief/internal/lib"
)

// Site is an immutable, caller-owned boundary. It outlives any single
// classify or DEM run.
type Site struct {
	path       string
	polygon    orb.Polygon
	projection string
	class      string
}

// LoadSite reads a site boundary from a GeoJSON file. The first polygon
// feature supplies the geometry; the optional "projection" and "class"
// properties supply the spatial reference and terrain class.
func LoadSite(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lib.ErrFileSystem("read", path, err)
	}

	features, err := siteFeatures(data)
	if err != nil {
		return nil, lib.ErrInvalidOptions("site", "boundary file is not valid GeoJSON: "+err.Error())
	}

	for _, f := range features {
		poly, ok := asPolygon(f.Geometry)
		if !ok {
			continue
		}
		return &Site{
			path:       path,
			polygon:    poly,
			projection: f.Properties.MustString("projection", ""),
			class:      f.Properties.MustString("class", ""),
		}, nil
	}
	return nil, lib.ErrInvalidOptions("site", "boundary file contains no polygon feature")
}

func siteFeatures(data []byte) ([]*geojson.Feature, error) {
	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil {
		return fc.Features, nil
	}
	f, err := geojson.UnmarshalFeature(data)
	if err != nil {
		return nil, err
	}
	return []*geojson.Feature{f}, nil
}

func asPolygon(g orb.Geometry) (orb.Polygon, bool) {
	switch g := g.(type) {
	case orb.Polygon:
		return g, true
	case orb.MultiPolygon:
		if len(g) > 0 {
			return g[0], true
		}
	}
	return orb.Polygon{}, false
}

// Polygon returns the site geometry
func (s *Site) Polygon() orb.Polygon {
	return s.polygon
}

// WKT returns the boundary polygon as well-known text
func (s *Site) WKT() string {
	return wkt.MarshalString(s.polygon)
}

// Basename returns the boundary filename without directory or extension,
// used as the prefix of every deterministic output name
func (s *Site) Basename() string {
	base := filepath.Base(s.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Projection returns the site's spatial reference string, empty if the
// boundary file does not carry one
func (s *Site) Projection() string {
	return s.projection
}

// TerrainClass returns the site's terrain class, empty if unset
func (s *Site) TerrainClass() string {
	return s.class
}

// BufferedWKT returns the boundary grown outward by dist linear units, as
// well-known text. Each exterior vertex moves away from the polygon
// centroid; interior rings are dropped since the buffer exists to push the
// crop edge past the area of interest, not to preserve holes.
func (s *Site) BufferedWKT(dist float64) string {
	if dist == 0 || len(s.polygon) == 0 {
		return s.WKT()
	}

	centroid, _ := planar.CentroidArea(s.polygon)
	ring := s.polygon[0]
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		out[i] = offsetPoint(p, centroid, dist)
	}
	// keep the ring closed even if offsets of first/last drifted
	if len(out) > 1 {
		out[len(out)-1] = out[0]
	}
	return wkt.MarshalString(orb.Polygon{out})
}

// offsetPoint moves p away from origin by dist; points coincident with the
// origin stay put
func offsetPoint(p, origin orb.Point, dist float64) orb.Point {
	dx := p.X() - origin.X()
	dy := p.Y() - origin.Y()
	norm := math.Hypot(dx, dy)
	if norm == 0 {
		return p
	}
	return orb.Point{
		p.X() + dx/norm*dist,
		p.Y() + dy/norm*dist,
	}
}
