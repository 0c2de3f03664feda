// Package interp fills values at scattered target coordinates from known
// sample points, for gap-filling raster cells the stacking pass could not
// resolve.
package interp

import (
	"math"

	"github.com/fogleman/delaunay"
	"gonum.org/v1/gonum/spatial/kdtree"

	"relief/internal/lib"
)

// Method selects the scattered-data interpolation algorithm
type Method string

const (
	MethodNearest Method = "nearest"
	MethodIDW     Method = "idw"
	MethodLinear  Method = "linear"
)

// ParseMethod validates a method name
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodNearest, MethodIDW, MethodLinear:
		return Method(s), nil
	}
	return "", lib.ErrInvalidOptions("interpolation", "unknown method "+s)
}

// Sample is a known value at a planar coordinate
type Sample struct {
	X, Y, V float64
}

// idwNeighbors is the neighbor count for inverse-distance weighting
const idwNeighbors = 8

// Fill evaluates the interpolant defined by the known samples at every
// target coordinate. Interpolation over zero known points is undefined and
// fails hard rather than producing garbage values.
func Fill(known []Sample, targets [][2]float64, m Method) ([]float64, error) {
	if len(known) == 0 {
		return nil, lib.ErrNoKnownCells()
	}
	if len(targets) == 0 {
		return nil, nil
	}

	switch m {
	case MethodNearest:
		return fillNearest(known, targets), nil
	case MethodIDW:
		return fillIDW(known, targets), nil
	case MethodLinear:
		return fillLinear(known, targets), nil
	default:
		return nil, lib.ErrInvalidOptions("interpolation", "unknown method "+string(m))
	}
}

func fillNearest(known []Sample, targets [][2]float64) []float64 {
	tree := newTree(known)
	out := make([]float64, len(targets))
	for i, t := range targets {
		c, _ := tree.Nearest(sampleComparable{Sample{X: t[0], Y: t[1]}})
		out[i] = c.(sampleComparable).V
	}
	return out
}

func fillIDW(known []Sample, targets [][2]float64) []float64 {
	tree := newTree(known)
	out := make([]float64, len(targets))
	for i, t := range targets {
		keep := kdtree.NewNKeeper(min(idwNeighbors, len(known)))
		tree.NearestSet(keep, sampleComparable{Sample{X: t[0], Y: t[1]}})

		var num, den float64
		exact := false
		for _, cd := range keep.Heap {
			if cd.Comparable == nil {
				continue
			}
			s := cd.Comparable.(sampleComparable)
			if cd.Dist == 0 {
				out[i] = s.V
				exact = true
				break
			}
			w := 1 / cd.Dist // squared distance, so this is 1/d^2
			num += w * s.V
			den += w
		}
		if !exact {
			out[i] = num / den
		}
	}
	return out
}

// fillLinear interpolates barycentrically over a Delaunay triangulation of
// the known points; targets outside the convex hull fall back to the
// nearest known value
func fillLinear(known []Sample, targets [][2]float64) []float64 {
	pts := make([]delaunay.Point, len(known))
	for i, s := range known {
		pts[i] = delaunay.Point{X: s.X, Y: s.Y}
	}
	tri, err := delaunay.Triangulate(pts)
	if err != nil || len(tri.Triangles) == 0 {
		// degenerate input (collinear or too few points)
		return fillNearest(known, targets)
	}

	tree := newTree(known)
	out := make([]float64, len(targets))
	for i, t := range targets {
		if v, ok := evalTriangulation(tri, known, t[0], t[1]); ok {
			out[i] = v
			continue
		}
		c, _ := tree.Nearest(sampleComparable{Sample{X: t[0], Y: t[1]}})
		out[i] = c.(sampleComparable).V
	}
	return out
}

// evalTriangulation locates the triangle containing (x, y) and evaluates
// the barycentric interpolant there.
// TODO: replace the linear scan with a halfedge walk when gap regions get
// large enough for this to show up in profiles.
func evalTriangulation(tri *delaunay.Triangulation, known []Sample, x, y float64) (float64, bool) {
	const eps = 1e-12
	for t := 0; t < len(tri.Triangles); t += 3 {
		ia, ib, ic := tri.Triangles[t], tri.Triangles[t+1], tri.Triangles[t+2]
		a, b, c := known[ia], known[ib], known[ic]

		det := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
		if math.Abs(det) < eps {
			continue
		}
		wa := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / det
		wb := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / det
		wc := 1 - wa - wb
		if wa < -eps || wb < -eps || wc < -eps {
			continue
		}
		return wa*a.V + wb*b.V + wc*c.V, true
	}
	return 0, false
}

// kd-tree plumbing over samples, 2 spatial dimensions with the value
// carried along

type sampleComparable struct {
	Sample
}

func (p sampleComparable) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(sampleComparable)
	switch d {
	case 0:
		return p.X - q.X
	default:
		return p.Y - q.Y
	}
}

func (p sampleComparable) Dims() int { return 2 }

func (p sampleComparable) Distance(c kdtree.Comparable) float64 {
	q := c.(sampleComparable)
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

type sampleCollection []sampleComparable

func (p sampleCollection) Index(i int) kdtree.Comparable { return p[i] }
func (p sampleCollection) Len() int                      { return len(p) }
func (p sampleCollection) Pivot(d kdtree.Dim) int {
	return samplePlane{sampleCollection: p, Dim: d}.Pivot()
}
func (p sampleCollection) Slice(start, end int) kdtree.Interface { return p[start:end] }

type samplePlane struct {
	kdtree.Dim
	sampleCollection
}

func (p samplePlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.sampleCollection[i].X < p.sampleCollection[j].X
	default:
		return p.sampleCollection[i].Y < p.sampleCollection[j].Y
	}
}
func (p samplePlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p samplePlane) Slice(start, end int) kdtree.SortSlicer {
	p.sampleCollection = p.sampleCollection[start:end]
	return p
}
func (p samplePlane) Swap(i, j int) {
	p.sampleCollection[i], p.sampleCollection[j] = p.sampleCollection[j], p.sampleCollection[i]
}

func newTree(known []Sample) *kdtree.Tree {
	coll := make(sampleCollection, len(known))
	for i, s := range known {
		coll[i] = sampleComparable{s}
	}
	return kdtree.New(coll, false)
}
