// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package delaunay builds Delaunay triangulations with neighbor and edge
// topology on top of the hull engine, and refines planar ones by edge flips.
package delaunay

import (
	"github.com/2dChan/ndhull/hull"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// None marks a missing neighbor at the boundary of the triangulation.
const None = -1

var (
	ErrInvalidInput              = hull.ErrInvalidInput
	ErrInconsistentTriangulation = hull.ErrInconsistentTriangulation
	ErrUnsupportedDimension      = errors.New("delaunay: unsupported dimension")
	ErrDimensionMismatch         = errors.New("delaunay: dimension mismatch")
)

type Triangulation struct {
	// Samples holds the input coordinates, one slice per dimension.
	Samples   [][]float64
	Simplexes [][]int
	Vertices  [][]int
	// NOTE: Neighbors[i][j] is across the facet starting at local vertex j.
	Neighbors [][]int
	Edges     [][]int
	NumEdges  int
}

// Dim returns the dimension of the sample space.
func (dt *Triangulation) Dim() int {
	return len(dt.Samples)
}

// NumSites returns the number of usable samples.
func (dt *Triangulation) NumSites() int {
	return hull.NumSamples(dt.Samples)
}

// Site returns the coordinates of site vIdx.
func (dt *Triangulation) Site(vIdx int) []float64 {
	if vIdx < 0 || vIdx >= dt.NumSites() {
		panic("Site: vIdx out of range")
	}
	p := make([]float64, dt.Dim())
	for d := range p {
		p[d] = dt.Samples[d][vIdx]
	}
	return p
}

func (dt *Triangulation) IncidentSimplices(vIdx int) []int {
	if vIdx < 0 || vIdx >= len(dt.Vertices) {
		panic("IncidentSimplices: vIdx out of range")
	}
	return dt.Vertices[vIdx]
}

func (dt *Triangulation) SimplexVertices(sIdx int) [][]float64 {
	if sIdx < 0 || sIdx >= len(dt.Simplexes) {
		panic("SimplexVertices: sIdx out of bounds")
	}
	s := dt.Simplexes[sIdx]
	pts := make([][]float64, len(s))
	for i, v := range s {
		pts[i] = dt.Site(v)
	}
	return pts
}

type TriangulationOptions struct {
	Logger        *zap.Logger
	ImprovePasses int
	Topology      bool
}

type TriangulationOption func(*TriangulationOptions) error

func WithLogger(l *zap.Logger) TriangulationOption {
	return func(o *TriangulationOptions) error {
		if l == nil {
			return errors.New("WithLogger: logger must not be nil")
		}
		o.Logger = l
		return nil
	}
}

// WithImprovePasses runs up to n edge-flip passes after construction.
// Only planar triangulations can be improved.
func WithImprovePasses(n int) TriangulationOption {
	return func(o *TriangulationOptions) error {
		if n < 0 {
			return errors.Errorf("WithImprovePasses: passes %d must be non-negative", n)
		}
		o.ImprovePasses = n
		return nil
	}
}

// WithoutTopology skips building Neighbors and Edges.
func WithoutTopology() TriangulationOption {
	return func(o *TriangulationOptions) error {
		o.Topology = false
		return nil
	}
}

// New computes the Delaunay triangulation of samples, given as one
// coordinate slice per dimension. Coordinates are multiplied by scale and
// snapped to integers before insertion; samples itself is not modified.
func New(samples [][]float64, scale float64, setters ...TriangulationOption) (*Triangulation, error) {
	opts := TriangulationOptions{
		Logger:   zap.NewNop(),
		Topology: true,
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}

	res, err := hull.Compute(samples, scale, hull.WithLogger(opts.Logger))
	if err != nil {
		return nil, err
	}
	dt := &Triangulation{
		Samples:   samples,
		Simplexes: res.Simplexes,
		Vertices:  res.Vertices,
	}

	if opts.Topology || opts.ImprovePasses > 0 {
		if err := dt.Finish(); err != nil {
			return nil, err
		}
	}
	if opts.ImprovePasses > 0 {
		flips, err := dt.Improve(opts.ImprovePasses)
		if err != nil {
			return nil, err
		}
		opts.Logger.Debug("triangulation improved", zap.Int("flips", flips))
	}
	return dt, nil
}

// PrevVertex returns the vertex preceding vIdx in the cyclic order of s.
func PrevVertex(s []int, vIdx int) int {
	for i, v := range s {
		if v == vIdx {
			return s[(i+len(s)-1)%len(s)]
		}
	}
	panic("PrevVertex: vIdx not in simplex")
}

// NextVertex returns the vertex following vIdx in the cyclic order of s.
func NextVertex(s []int, vIdx int) int {
	for i, v := range s {
		if v == vIdx {
			return s[(i+1)%len(s)]
		}
	}
	panic("NextVertex: vIdx not in simplex")
}
