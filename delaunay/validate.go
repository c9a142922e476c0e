// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package delaunay

import (
	"slices"

	"github.com/2dChan/ndhull/hull"
	"github.com/pkg/errors"
)

// Valid reports whether Validate finds no problem.
func (dt *Triangulation) Valid() bool {
	return dt.Validate() == nil
}

// Validate checks the triangulation arrays against each other: simplex
// arity and vertex range, absence of duplicate simplexes, coverage of
// every site, incidence lists, neighbor reciprocity and edge numbering.
// It is meant for tests and diagnostics.
func (dt *Triangulation) Validate() error {
	dim := dt.Dim()
	if dim < 1 || dim+1 > hull.MaxDim {
		return errors.Wrapf(ErrDimensionMismatch, "Validate: dimension %d out of range [1 %d]", dim, hull.MaxDim-1)
	}
	n := dt.NumSites()

	seen := make(map[[hull.MaxDim + 1]int]int, len(dt.Simplexes))
	covered := make([]bool, n)
	for i, s := range dt.Simplexes {
		if len(s) != dim+1 {
			return errors.Wrapf(ErrDimensionMismatch, "Validate: simplex %d has %d vertices, want %d", i, len(s), dim+1)
		}
		var key [hull.MaxDim + 1]int
		for k := range key {
			key[k] = None
		}
		for k, v := range s {
			if v < 0 || v >= n {
				return errors.Wrapf(ErrInconsistentTriangulation, "Validate: simplex %d vertex %d out of range [0 %d)", i, v, n)
			}
			key[k] = v
			covered[v] = true
		}
		slices.Sort(key[:dim+1])
		for k := 1; k <= dim; k++ {
			if key[k] == key[k-1] {
				return errors.Wrapf(ErrInconsistentTriangulation, "Validate: simplex %d repeats vertex %d", i, key[k])
			}
		}
		if j, ok := seen[key]; ok {
			return errors.Wrapf(ErrInconsistentTriangulation, "Validate: simplexes %d and %d have the same vertices", j, i)
		}
		seen[key] = i
	}
	for v, ok := range covered {
		if !ok {
			return errors.Wrapf(ErrInconsistentTriangulation, "Validate: site %d is not covered", v)
		}
	}

	if err := dt.validateVertices(); err != nil {
		return err
	}
	if err := dt.validateNeighbors(); err != nil {
		return err
	}
	return dt.validateEdges()
}

func (dt *Triangulation) validateVertices() error {
	if dt.Vertices == nil {
		return nil
	}
	if len(dt.Vertices) != dt.NumSites() {
		return errors.Wrapf(ErrDimensionMismatch, "Validate: %d incidence lists for %d sites", len(dt.Vertices), dt.NumSites())
	}
	incident := 0
	for v, list := range dt.Vertices {
		for _, s := range list {
			if s < 0 || s >= len(dt.Simplexes) || !slices.Contains(dt.Simplexes[s], v) {
				return errors.Wrapf(ErrInconsistentTriangulation, "Validate: site %d lists simplex %d which does not contain it", v, s)
			}
		}
		incident += len(list)
	}
	if want := len(dt.Simplexes) * (dt.Dim() + 1); incident != want {
		return errors.Wrapf(ErrInconsistentTriangulation, "Validate: %d incidences, want %d", incident, want)
	}
	return nil
}

func (dt *Triangulation) validateNeighbors() error {
	if dt.Neighbors == nil {
		return nil
	}
	dim := dt.Dim()
	if len(dt.Neighbors) != len(dt.Simplexes) {
		return errors.Wrapf(ErrDimensionMismatch, "Validate: %d neighbor rows for %d simplexes", len(dt.Neighbors), len(dt.Simplexes))
	}
	for i, row := range dt.Neighbors {
		if len(row) != dim+1 {
			return errors.Wrapf(ErrDimensionMismatch, "Validate: simplex %d has %d neighbors, want %d", i, len(row), dim+1)
		}
		for _, nb := range row {
			if nb == None {
				continue
			}
			if nb < 0 || nb >= len(dt.Simplexes) || nb == i {
				return errors.Wrapf(ErrInconsistentTriangulation, "Validate: simplex %d has invalid neighbor %d", i, nb)
			}
			if !slices.Contains(dt.Neighbors[nb], i) {
				return errors.Wrapf(ErrInconsistentTriangulation, "Validate: simplex %d lists %d as a neighbor but not vice versa", i, nb)
			}
			shared := 0
			for _, v := range dt.Simplexes[i] {
				if slices.Contains(dt.Simplexes[nb], v) {
					shared++
				}
			}
			if shared != dim {
				return errors.Wrapf(ErrInconsistentTriangulation, "Validate: neighbors %d and %d share %d vertices, want %d", i, nb, shared, dim)
			}
		}
	}
	return nil
}

func (dt *Triangulation) validateEdges() error {
	dim := dt.Dim()
	if dt.Edges == nil || dim > maxTopologyDim {
		return nil
	}
	table := edgeTables[dim]
	if len(dt.Edges) != len(dt.Simplexes) {
		return errors.Wrapf(ErrDimensionMismatch, "Validate: %d edge rows for %d simplexes", len(dt.Edges), len(dt.Simplexes))
	}

	byID := make([][2]int, dt.NumEdges)
	for e := range byID {
		byID[e] = [2]int{None, None}
	}
	byPair := make(map[[2]int]int)
	for i, row := range dt.Edges {
		if len(row) != len(table) {
			return errors.Wrapf(ErrDimensionMismatch, "Validate: simplex %d has %d edges, want %d", i, len(row), len(table))
		}
		for k, id := range row {
			if id < 0 || id >= dt.NumEdges {
				return errors.Wrapf(ErrInconsistentTriangulation, "Validate: simplex %d edge id %d out of range [0 %d)", i, id, dt.NumEdges)
			}
			u, v := dt.Simplexes[i][table[k][0]], dt.Simplexes[i][table[k][1]]
			pair := [2]int{min(u, v), max(u, v)}
			if byID[id][0] != None && byID[id] != pair {
				return errors.Wrapf(ErrInconsistentTriangulation, "Validate: edge id %d names both %v and %v", id, byID[id], pair)
			}
			byID[id] = pair
			if other, ok := byPair[pair]; ok && other != id {
				return errors.Wrapf(ErrInconsistentTriangulation, "Validate: edge %v has ids %d and %d", pair, other, id)
			}
			byPair[pair] = id
		}
	}
	if len(byPair) != dt.NumEdges {
		return errors.Wrapf(ErrInconsistentTriangulation, "Validate: %d distinct edges, NumEdges %d", len(byPair), dt.NumEdges)
	}
	return nil
}
