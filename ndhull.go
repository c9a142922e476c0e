// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package ndhull implements Voronoi diagrams in the plane and in space as
// the dual of the Delaunay triangulations built by package delaunay.
package ndhull

import (
	"math"
	"slices"

	"github.com/2dChan/ndhull/delaunay"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

var ErrDegenerateSimplex = errors.New("ndhull: degenerate simplex")

type Diagram struct {
	// Samples holds the sites, one coordinate slice per dimension.
	Samples [][]float64
	// Vertices holds the circumcenter of every Delaunay simplex.
	Vertices [][]float64

	// NOTE: In 2D sorted counter-clockwise per cell.
	CellVertices []int
	CellOffsets  []int
	// NOTE: In 2D sorted counter-clockwise per cell, otherwise ascending.
	CellNeighbors   []int
	NeighborOffsets []int

	bounded []bool
}

func (d *Diagram) Dim() int {
	return len(d.Samples)
}

func (d *Diagram) NumCells() int {
	return len(d.CellOffsets) - 1
}

func (d *Diagram) Cell(i int) (Cell, error) {
	if i < 0 || i >= d.NumCells() {
		return Cell{}, errors.Errorf("Cell: index %d out of range [0 %d)", i, d.NumCells())
	}
	return Cell{idx: i, d: d}, nil
}

type DiagramOptions struct {
	Logger        *zap.Logger
	ImprovePasses int
}

type DiagramOption func(*DiagramOptions) error

func WithLogger(l *zap.Logger) DiagramOption {
	return func(o *DiagramOptions) error {
		if l == nil {
			return errors.New("WithLogger: logger must not be nil")
		}
		o.Logger = l
		return nil
	}
}

// WithImprovePasses refines planar triangulations with up to n edge-flip
// passes before the dual is taken.
func WithImprovePasses(n int) DiagramOption {
	return func(o *DiagramOptions) error {
		if n < 0 {
			return errors.Errorf("WithImprovePasses: passes %d must be non-negative", n)
		}
		o.ImprovePasses = n
		return nil
	}
}

// NewDiagram computes the Voronoi diagram of planar or spatial samples.
// See delaunay.New for the meaning of scale.
func NewDiagram(samples [][]float64, scale float64, setters ...DiagramOption) (*Diagram, error) {
	opts := DiagramOptions{
		Logger: zap.NewNop(),
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}
	if dim := len(samples); dim != 2 && dim != 3 {
		return nil, errors.Wrapf(delaunay.ErrUnsupportedDimension, "NewDiagram: dimension %d, want 2 or 3", dim)
	}

	dtOpts := []delaunay.TriangulationOption{delaunay.WithLogger(opts.Logger)}
	if opts.ImprovePasses > 0 && len(samples) == 2 {
		dtOpts = append(dtOpts, delaunay.WithImprovePasses(opts.ImprovePasses))
	}
	dt, err := delaunay.New(samples, scale, dtOpts...)
	if err != nil {
		return nil, err
	}
	return FromTriangulation(dt)
}

// FromTriangulation builds the dual of a planar or spatial triangulation.
// Missing topology is derived first.
func FromTriangulation(dt *delaunay.Triangulation) (*Diagram, error) {
	dim := dt.Dim()
	if dim != 2 && dim != 3 {
		return nil, errors.Wrapf(delaunay.ErrUnsupportedDimension, "FromTriangulation: dimension %d, want 2 or 3", dim)
	}
	if dt.Vertices == nil || dt.Neighbors == nil {
		if err := dt.Finish(); err != nil {
			return nil, err
		}
	}

	numSites := dt.NumSites()
	d := &Diagram{
		Samples:         dt.Samples,
		Vertices:        make([][]float64, len(dt.Simplexes)),
		CellOffsets:     make([]int, numSites+1),
		NeighborOffsets: make([]int, numSites+1),
		bounded:         make([]bool, numSites),
	}

	var flat []int
	for i := range dt.Simplexes {
		c, err := circumcenter(dt.SimplexVertices(i))
		if err != nil {
			flat = append(flat, i)
			continue
		}
		d.Vertices[i] = c
	}
	if err := shareCircumcenters(dt, d.Vertices, flat); err != nil {
		return nil, err
	}

	var neighbors []int
	for v := range numSites {
		site := dt.Site(v)
		incident := slices.Clone(dt.IncidentSimplices(v))
		neighbors = neighbors[:0]
		d.bounded[v] = len(incident) > 0
		for _, s := range incident {
			for j, u := range dt.Simplexes[s] {
				if u != v && !slices.Contains(neighbors, u) {
					neighbors = append(neighbors, u)
				}
				// A hull facet through v leaves its cell open.
				if dt.Neighbors[s][j] == delaunay.None && facetHas(dt.Simplexes[s], j, dim, v) {
					d.bounded[v] = false
				}
			}
		}

		if dim == 2 {
			sortByAngle(incident, site, func(s int) []float64 { return centroid(dt.SimplexVertices(s)) })
			sortByAngle(neighbors, site, dt.Site)
		} else {
			slices.Sort(incident)
			slices.Sort(neighbors)
		}
		d.CellVertices = append(d.CellVertices, incident...)
		d.CellNeighbors = append(d.CellNeighbors, neighbors...)
		d.CellOffsets[v+1] = len(d.CellVertices)
		d.NeighborOffsets[v+1] = len(d.CellNeighbors)
	}
	return d, nil
}

// facetHas reports whether local facet j of s, the dim vertices starting at
// local vertex j, contains v.
func facetHas(s []int, j, dim, v int) bool {
	for k := range dim {
		if s[(j+k)%len(s)] == v {
			return true
		}
	}
	return false
}

// shareCircumcenters gives every flat simplex the circumcenter of a
// neighbor that already has one. Cospherical sites are the only source of
// flat simplices, and the shared facet fixes the common sphere.
func shareCircumcenters(dt *delaunay.Triangulation, centers [][]float64, flat []int) error {
	for len(flat) > 0 {
		rest := flat[:0]
		for _, s := range flat {
			for _, n := range dt.Neighbors[s] {
				if n != delaunay.None && centers[n] != nil {
					centers[s] = slices.Clone(centers[n])
					break
				}
			}
			if centers[s] == nil {
				rest = append(rest, s)
			}
		}
		if len(rest) == len(flat) {
			return errors.Wrapf(ErrDegenerateSimplex, "simplex %d: no neighbor with a circumcenter", rest[0])
		}
		flat = rest
	}
	return nil
}

// circumcenter solves 2(p_i - p_0) . x = |p_i - p_0|^2 for the offset x of
// the circumcenter from p_0.
func circumcenter(pts [][]float64) ([]float64, error) {
	dim := len(pts[0])
	p0 := pts[0]
	a := mat.NewDense(dim, dim, nil)
	b := mat.NewVecDense(dim, nil)
	for i := range dim {
		sq := 0.0
		for k := range dim {
			x := pts[i+1][k] - p0[k]
			a.Set(i, k, 2*x)
			sq += x * x
		}
		b.SetVec(i, sq)
	}

	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return nil, errors.Wrap(ErrDegenerateSimplex, err.Error())
	}
	c := make([]float64, dim)
	for k := range dim {
		c[k] = p0[k] + x.AtVec(k)
	}
	return c, nil
}

func centroid(pts [][]float64) []float64 {
	c := make([]float64, len(pts[0]))
	for _, p := range pts {
		for k, x := range p {
			c[k] += x / float64(len(pts))
		}
	}
	return c
}

func sortByAngle(idx []int, center []float64, pos func(int) []float64) {
	angle := make(map[int]float64, len(idx))
	for _, i := range idx {
		p := pos(i)
		angle[i] = math.Atan2(p[1]-center[1], p[0]-center[0])
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case angle[a] < angle[b]:
			return -1
		case angle[a] > angle[b]:
			return 1
		}
		return 0
	})
}
