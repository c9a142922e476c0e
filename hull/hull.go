// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package hull computes convex hulls and Delaunay triangulations of point
// sets in up to seven dimensions.
//
// Sites are scaled and snapped to integers, then inserted one at a time in
// input order. Visibility is decided with adaptively rescaled basis
// reduction, so the result does not depend on a fixed epsilon.
package hull

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Result holds the output of Compute. It shares no state with the engine.
type Result struct {
	Dim  int
	Mode Mode
	// Simplexes lists site indices per simplex: dim+1 per Delaunay simplex,
	// dim per convex hull facet.
	Simplexes [][]int
	// Vertices lists, per site, the indices of the simplexes containing it.
	Vertices [][]int
	Stats    Stats
}

// Stats reports diagnostics of one computation.
type Stats struct {
	Sites int
	// Uncovered counts sites in no simplex, typically duplicates after
	// snapping to the integer grid.
	Uncovered          int
	ReduceFailures     int
	VisibilityFailures int
	Simplices          int
	Bases              int
}

// Compute builds the Delaunay triangulation (or, with WithMode(ConvexHull),
// the convex hull) of samples, given as one coordinate slice per dimension.
// Coordinates are multiplied by scale and rounded to integers first.
func Compute(samples [][]float64, scale float64, setters ...Option) (res *Result, err error) {
	opts := Options{
		Mode:   Delaunay,
		Logger: zap.NewNop(),
	}
	for _, set := range setters {
		if err := set(&opts); err != nil {
			return nil, err
		}
	}

	sites, err := scaleSites(samples, scale)
	if err != nil {
		return nil, err
	}

	c := newBuilder(sites, opts.Mode, opts.Logger)
	defer func() {
		if recoveredErr := handlePanicRecover(recover()); recoveredErr != nil {
			res = nil
			err = recoveredErr
			// Adjacency breaks down on sites that never reach full rank.
			if c.cdim < c.rdim && !errors.Is(err, ErrInvalidInput) {
				err = errors.Wrapf(ErrInvalidInput, "degenerate input: %v", recoveredErr)
			}
		}
	}()

	c.build()
	if c.cdim < c.rdim {
		return nil, errors.Wrapf(ErrInvalidInput, "degenerate input: sites span rank %d, need %d", c.cdim, c.rdim)
	}

	simplexes, vertices := c.extract()
	c.stats.Sites = len(sites)
	c.stats.Simplices = c.simps.live
	c.stats.Bases = c.bases.live
	return &Result{
		Dim:       len(samples),
		Mode:      opts.Mode,
		Simplexes: simplexes,
		Vertices:  vertices,
		Stats:     c.stats,
	}, nil
}
