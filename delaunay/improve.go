// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package delaunay

import (
	"slices"

	"github.com/pkg/errors"
)

// quad is the convex quadrilateral A B C D around the diagonal B D shared
// by triangles i (holding A) and t (holding C).
type quad struct {
	i, t       int
	a, b, c, d int
}

// Improve flips diagonals that violate the empty circumcircle condition
// until a pass makes no flip or passes are used up. It returns the number
// of flips done. Only planar triangulations are supported.
func (dt *Triangulation) Improve(passes int) (int, error) {
	if dt.Dim() != 2 {
		return 0, errors.Wrapf(ErrUnsupportedDimension, "Improve: dimension %d, want 2", dt.Dim())
	}
	for i, s := range dt.Simplexes {
		if len(s) != 3 {
			return 0, errors.Wrapf(ErrDimensionMismatch, "Improve: simplex %d has %d vertices, want 3", i, len(s))
		}
	}
	if dt.Vertices == nil || dt.Neighbors == nil || dt.Edges == nil {
		if err := dt.Finish(); err != nil {
			return 0, err
		}
	}

	checked := make([]int, dt.NumEdges)
	total := 0
	for pass := 1; pass <= passes; pass++ {
		flips := 0
		for i := range dt.Simplexes {
			for j := range 3 {
				e := dt.Edges[i][j]
				if checked[e] == pass {
					continue
				}
				checked[e] = pass

				q, ok, err := dt.quadAt(i, j)
				if err != nil {
					return total + flips, err
				}
				if !ok || !dt.violates(q) {
					continue
				}
				if err := dt.flip(q); err != nil {
					return total + flips, err
				}
				flips++
			}
		}
		total += flips
		if flips == 0 {
			break
		}
	}
	return total, nil
}

func (dt *Triangulation) quadAt(i, j int) (quad, bool, error) {
	t := dt.Neighbors[i][j]
	if t == None {
		return quad{}, false, nil
	}
	s := dt.Simplexes[i]
	q := quad{i: i, t: t, a: s[(j+2)%3], b: s[j], d: s[(j+1)%3], c: None}
	for _, v := range dt.Simplexes[t] {
		if v != q.b && v != q.d {
			q.c = v
		}
	}
	if q.c == None || q.c == q.a {
		return quad{}, false, errors.Wrapf(ErrInconsistentTriangulation, "simplexes %d and %d do not share edge (%d, %d)", i, t, q.b, q.d)
	}
	return q, true, nil
}

// violates reports whether the diagonal B D should be replaced by A C.
// Non-convex quadrilaterals are never flipped; otherwise the decision is
// the sign of sin(A+C), with the angles at A and C taken from the corner
// turns and dot products.
func (dt *Triangulation) violates(q quad) bool {
	ax, ay := dt.Samples[0][q.a], dt.Samples[1][q.a]
	bx, by := dt.Samples[0][q.b], dt.Samples[1][q.b]
	cx, cy := dt.Samples[0][q.c], dt.Samples[1][q.c]
	dx, dy := dt.Samples[0][q.d], dt.Samples[1][q.d]

	turnA := cross(bx-ax, by-ay, dx-ax, dy-ay)
	turnB := cross(cx-bx, cy-by, ax-bx, ay-by)
	turnC := cross(dx-cx, dy-cy, bx-cx, by-cy)
	turnD := cross(ax-dx, ay-dy, cx-dx, cy-dy)
	// All four turns must agree: a reflex or straight corner keeps B D.
	positive := turnA > 0 && turnB > 0 && turnC > 0 && turnD > 0
	negative := turnA < 0 && turnB < 0 && turnC < 0 && turnD < 0
	if !positive && !negative {
		return false
	}

	cosA := (bx-ax)*(dx-ax) + (by-ay)*(dy-ay)
	cosC := (bx-cx)*(dx-cx) + (by-cy)*(dy-cy)
	switch {
	case cosA >= 0 && cosC >= 0:
		return false
	case cosA < 0 && cosC < 0:
		return true
	}
	if negative {
		turnA, turnC = -turnA, -turnC
	}
	return turnA*cosC+cosA*turnC < 0
}

func cross(ux, uy, vx, vy float64) float64 {
	return ux*vy - uy*vx
}

// flip replaces triangles (.., B, D, A) and (.., D, B, C) with (A, B, C)
// and (C, D, A), keeping neighbors, edges and incidence lists in step.
func (dt *Triangulation) flip(q quad) error {
	fi := func(simp, x, y int) (int, error) {
		k := dt.localFacet(simp, x, y)
		if k < 0 {
			return None, errors.Wrapf(ErrInconsistentTriangulation, "simplex %d has no edge (%d, %d)", simp, x, y)
		}
		return k, nil
	}
	kAB, err := fi(q.i, q.a, q.b)
	if err != nil {
		return err
	}
	kDA, err := fi(q.i, q.d, q.a)
	if err != nil {
		return err
	}
	kDiag, err := fi(q.i, q.b, q.d)
	if err != nil {
		return err
	}
	kBC, err := fi(q.t, q.b, q.c)
	if err != nil {
		return err
	}
	kCD, err := fi(q.t, q.c, q.d)
	if err != nil {
		return err
	}

	nAB, nDA := dt.Neighbors[q.i][kAB], dt.Neighbors[q.i][kDA]
	nBC, nCD := dt.Neighbors[q.t][kBC], dt.Neighbors[q.t][kCD]
	eAB, eDA, eDiag := dt.Edges[q.i][kAB], dt.Edges[q.i][kDA], dt.Edges[q.i][kDiag]
	eBC, eCD := dt.Edges[q.t][kBC], dt.Edges[q.t][kCD]

	dt.Simplexes[q.i] = append(dt.Simplexes[q.i][:0], q.a, q.b, q.c)
	dt.Neighbors[q.i] = append(dt.Neighbors[q.i][:0], nAB, nBC, q.t)
	dt.Edges[q.i] = append(dt.Edges[q.i][:0], eAB, eBC, eDiag)

	dt.Simplexes[q.t] = append(dt.Simplexes[q.t][:0], q.c, q.d, q.a)
	dt.Neighbors[q.t] = append(dt.Neighbors[q.t][:0], nCD, nDA, q.i)
	dt.Edges[q.t] = append(dt.Edges[q.t][:0], eCD, eDA, eDiag)

	if err := dt.relink(nBC, q.t, q.i); err != nil {
		return err
	}
	if err := dt.relink(nDA, q.i, q.t); err != nil {
		return err
	}

	dt.Vertices[q.b] = slices.DeleteFunc(dt.Vertices[q.b], func(s int) bool { return s == q.t })
	dt.Vertices[q.d] = slices.DeleteFunc(dt.Vertices[q.d], func(s int) bool { return s == q.i })
	dt.Vertices[q.a] = append(dt.Vertices[q.a], q.t)
	dt.Vertices[q.c] = append(dt.Vertices[q.c], q.i)
	return nil
}

func (dt *Triangulation) relink(simp, from, to int) error {
	if simp == None {
		return nil
	}
	k := slices.Index(dt.Neighbors[simp], from)
	if k < 0 {
		return errors.Wrapf(ErrInconsistentTriangulation, "simplex %d does not list neighbor %d", simp, from)
	}
	dt.Neighbors[simp][k] = to
	return nil
}

// localFacet returns the local facet of simp joining x and y, or None.
func (dt *Triangulation) localFacet(simp, x, y int) int {
	s := dt.Simplexes[simp]
	for k := range s {
		u, v := s[k], s[(k+1)%len(s)]
		if (u == x && v == y) || (u == y && v == x) {
			return k
		}
	}
	return None
}
