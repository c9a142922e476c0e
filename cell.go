// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package ndhull

import (
	"github.com/pkg/errors"
)

// Cell represents a Voronoi cell. It is a view structure for accessing a cell in a Diagram.
// The cell's index corresponds to the index of its site in the Diagram's Samples.
type Cell struct {
	idx int
	d   *Diagram
}

// SiteIndex returns the index of the site in the Diagram's Samples.
func (c Cell) SiteIndex() int {
	return c.idx
}

// Site returns the coordinates of the cell's site.
func (c Cell) Site() []float64 {
	p := make([]float64, c.d.Dim())
	for k := range p {
		p[k] = c.d.Samples[k][c.idx]
	}
	return p
}

// NumVertices returns the number of vertices in the cell.
func (c Cell) NumVertices() int {
	return c.d.CellOffsets[c.idx+1] - c.d.CellOffsets[c.idx]
}

// VertexIndices returns the indices of the cell's vertices in the Diagram's Vertices,
// which are also the indices of the Delaunay simplexes around the site.
func (c Cell) VertexIndices() []int {
	return c.d.CellVertices[c.d.CellOffsets[c.idx]:c.d.CellOffsets[c.idx+1]]
}

// Vertex returns the vertex at the specified index.
// It returns an error if the index is out of range.
func (c Cell) Vertex(i int) ([]float64, error) {
	start := c.d.CellOffsets[c.idx]
	end := c.d.CellOffsets[c.idx+1]
	if i < 0 || i >= end-start {
		return nil, errors.Errorf("Vertex: index %d out of range [0 %d)", i, end-start)
	}
	return c.d.Vertices[c.d.CellVertices[start+i]], nil
}

// NumNeighbors returns the number of neighboring cells.
// For a bounded planar cell this equals the number of vertices.
func (c Cell) NumNeighbors() int {
	return c.d.NeighborOffsets[c.idx+1] - c.d.NeighborOffsets[c.idx]
}

// NeighborIndices returns the indices of the neighboring cells in the Diagram.
func (c Cell) NeighborIndices() []int {
	return c.d.CellNeighbors[c.d.NeighborOffsets[c.idx]:c.d.NeighborOffsets[c.idx+1]]
}

// Neighbor returns the neighboring cell at the specified index.
// It returns an error if the index is out of range.
func (c Cell) Neighbor(i int) (Cell, error) {
	start := c.d.NeighborOffsets[c.idx]
	end := c.d.NeighborOffsets[c.idx+1]
	if i < 0 || i >= end-start {
		return Cell{}, errors.Errorf("Neighbor: index %d out of range [0 %d)", i, end-start)
	}
	return c.d.Cell(c.d.CellNeighbors[start+i])
}

// Bounded reports whether the cell is a closed polygon or polyhedron, that
// is, whether its site lies strictly inside the convex hull of all sites.
func (c Cell) Bounded() bool {
	return c.d.bounded[c.idx]
}
