// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package delaunay

import (
	"slices"

	"github.com/pkg/errors"
)

// maxTopologyDim is the highest dimension with neighbor and edge tables.
const maxTopologyDim = 3

// Local facet j of a simplex holds the dim vertices starting at local
// vertex j, cyclically.
var facetTables = [maxTopologyDim + 1][][]int{
	1: {{0}, {1}},
	2: {{0, 1}, {1, 2}, {2, 0}},
	3: {{0, 1, 2}, {1, 2, 3}, {2, 3, 0}, {3, 0, 1}},
}

// Local edges; in 2D edge j coincides with facet j.
var edgeTables = [maxTopologyDim + 1][][2]int{
	1: {{0, 1}},
	2: {{0, 1}, {1, 2}, {2, 0}},
	3: {{0, 1}, {1, 2}, {2, 3}, {3, 0}, {0, 2}, {1, 3}},
}

// Finish fills in whatever of Vertices, Neighbors and Edges is missing.
// Neighbors and Edges are only derived up to three dimensions.
func (dt *Triangulation) Finish() error {
	dim := dt.Dim()
	if dim < 1 {
		return errors.Wrap(ErrInvalidInput, "Finish: no coordinate dimensions")
	}
	for i, s := range dt.Simplexes {
		if len(s) != dim+1 {
			return errors.Wrapf(ErrDimensionMismatch, "Finish: simplex %d has %d vertices, want %d", i, len(s), dim+1)
		}
	}

	if dt.Vertices == nil {
		vertices, err := buildVertices(dt.Simplexes, dt.NumSites())
		if err != nil {
			return err
		}
		dt.Vertices = vertices
	}
	if dim > maxTopologyDim {
		return nil
	}
	if dt.Neighbors == nil {
		dt.Neighbors = dt.findNeighbors()
	}
	if dt.Edges == nil {
		return dt.numberEdges()
	}
	return nil
}

func buildVertices(simplexes [][]int, numSites int) ([][]int, error) {
	counts := make([]int, numSites)
	for i, s := range simplexes {
		for _, v := range s {
			if v < 0 || v >= numSites {
				return nil, errors.Wrapf(ErrInvalidInput, "simplex %d vertex %d out of range [0 %d)", i, v, numSites)
			}
			counts[v]++
		}
	}
	vertices := make([][]int, numSites)
	for v, cnt := range counts {
		vertices[v] = make([]int, 0, cnt)
	}
	for i, s := range simplexes {
		for _, v := range s {
			vertices[v] = append(vertices[v], i)
		}
	}
	return vertices, nil
}

// findNeighbors intersects the incidence lists of each facet's vertices.
func (dt *Triangulation) findNeighbors() [][]int {
	facets := facetTables[dt.Dim()]
	neighbors := make([][]int, len(dt.Simplexes))
	for i, s := range dt.Simplexes {
		row := make([]int, len(facets))
		for j, facet := range facets {
			row[j] = None
		candidates:
			for _, cand := range dt.Vertices[s[facet[0]]] {
				if cand == i {
					continue
				}
				for _, f := range facet[1:] {
					if !slices.Contains(dt.Vertices[s[f]], cand) {
						continue candidates
					}
				}
				row[j] = cand
				break
			}
		}
		neighbors[i] = row
	}
	return neighbors
}

// numberEdges gives every geometric edge a dense id. Each new id spreads
// from one simplex to all simplexes around the edge through the facets
// that contain it.
func (dt *Triangulation) numberEdges() error {
	dim := dt.Dim()
	facets, edges := facetTables[dim], edgeTables[dim]

	numbered := make([][]int, len(dt.Simplexes))
	for i := range numbered {
		row := make([]int, len(edges))
		for e := range row {
			row[e] = None
		}
		numbered[i] = row
	}
	mark := make([]int, len(dt.Simplexes))
	for i := range mark {
		mark[i] = None
	}

	numEdges := 0
	var queue []int
	for i, s := range dt.Simplexes {
		for e, pair := range edges {
			if numbered[i][e] != None {
				continue
			}
			id := numEdges
			numEdges++
			u, v := s[pair[0]], s[pair[1]]

			queue = append(queue[:0], i)
			mark[i] = id
			for len(queue) > 0 {
				t := queue[0]
				queue = queue[1:]
				ts := dt.Simplexes[t]

				k := localEdge(ts, edges, u, v)
				if k < 0 {
					return errors.Wrapf(ErrInconsistentTriangulation, "simplex %d does not contain edge (%d, %d)", t, u, v)
				}
				if numbered[t][k] != None && numbered[t][k] != id {
					return errors.Wrapf(ErrInconsistentTriangulation, "edge (%d, %d) numbered both %d and %d", u, v, numbered[t][k], id)
				}
				numbered[t][k] = id

				for f, facet := range facets {
					nb := dt.Neighbors[t][f]
					if nb == None || !facetHas(ts, facet, u) || !facetHas(ts, facet, v) {
						continue
					}
					if nb < 0 || nb >= len(dt.Simplexes) || !slices.Contains(dt.Neighbors[nb], t) {
						return errors.Wrapf(ErrInconsistentTriangulation, "simplex %d lists %d as a neighbor but not vice versa", t, nb)
					}
					if mark[nb] == id {
						continue
					}
					mark[nb] = id
					queue = append(queue, nb)
				}
			}
		}
	}

	dt.Edges = numbered
	dt.NumEdges = numEdges
	return nil
}

func localEdge(s []int, edges [][2]int, u, v int) int {
	for k, pair := range edges {
		a, b := s[pair[0]], s[pair[1]]
		if (a == u && b == v) || (a == v && b == u) {
			return k
		}
	}
	return None
}

func facetHas(s []int, facet []int, v int) bool {
	for _, f := range facet {
		if s[f] == v {
			return true
		}
	}
	return false
}
