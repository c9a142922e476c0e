// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package hull

import (
	"github.com/golang/geo/r3"
	"go.uber.org/zap"
)

const seesAttempts = 3

// ridgeBasis fills the ridge slots 1..cdim-1 of s with reduced basis
// vectors, recomputing only from the first missing one. Slot 0 gets the
// zero placeholder; in Delaunay mode the point at infinity is moved out of
// slot 0 first so that differences are taken from a finite site.
func (c *builder) ridgeBasis(sid simplexID) {
	s := c.simps.get(sid)
	k := 1
	switch {
	case c.vd && s.neigh[0].vert == infinitySite && c.cdim > 1:
		s.neigh[0], s.neigh[1] = s.neigh[1], s.neigh[0]
		c.bases.nullify(&s.neigh[0].basis)
		s.neigh[0].basis = c.zero
		c.bases.incRef(c.zero)
	case s.neigh[0].basis == 0:
		s.neigh[0].basis = c.zero
		c.bases.incRef(c.zero)
	default:
		for k < c.cdim && s.neigh[k].basis != 0 {
			k++
		}
	}
	for ; k < c.cdim; k++ {
		c.bases.nullify(&s.neigh[k].basis)
		c.must(c.reduce(&s.neigh[k].basis, s.neigh[k].vert, sid, k))
	}
}

// referenceSites returns the vertices of the root simplex, which span the
// hull and lie on its inner side of every facet they do not belong to.
func (c *builder) referenceSites() []int32 {
	root := c.simps.get(c.root)
	refs := c.refs[:0]
	for i := c.cdim - 1; i >= 0; i-- {
		refs = append(refs, root.neigh[i].vert)
	}
	refs = append(refs, root.peak.vert)
	c.refs = refs
	return refs
}

func (c *builder) hasVertex(s *simplex, v int32) bool {
	for i := range c.cdim {
		if s.neigh[i].vert == v {
			return true
		}
	}
	return false
}

// facetNormal computes the inward normal of s.
func (c *builder) facetNormal(sid simplexID) {
	c.ridgeBasis(sid)
	s := c.simps.get(sid)

	if c.rdim == 3 && c.cdim == 3 {
		a, b := c.vb(s.neigh[1].basis), c.vb(s.neigh[2].basis)
		n := r3.Vector{X: a[0], Y: a[1], Z: a[2]}.Cross(r3.Vector{X: b[0], Y: b[1], Z: b[2]})
		s.normal = c.bases.alloc()
		z := c.vb(s.normal)
		z[0], z[1], z[2] = n.X, n.Y, n.Z
		c.bases.get(s.normal).sqb = n.Norm2()

		for _, v := range c.referenceSites() {
			if c.hasVertex(s, v) {
				continue
			}
			if v == infinitySite {
				if z[2] > -c.bErrMin {
					continue
				}
			} else if !c.sees(v, sid) {
				continue
			}
			z[0], z[1], z[2] = -z[0], -z[1], -z[2]
			break
		}
		return
	}

	for _, v := range c.referenceSites() {
		if c.hasVertex(s, v) {
			continue
		}
		c.must(c.reduce(&s.normal, v, sid, c.cdim))
		if c.bases.get(s.normal).sqb != 0 {
			break
		}
	}
}

// sees reports whether site p lies strictly on the outer side of the
// hyperplane supporting s. Low-confidence answers are re-derived from a
// freshly reduced basis up to seesAttempts times.
func (c *builder) sees(p int32, sid simplexID) bool {
	if c.cdim == 0 {
		return false
	}
	s := c.simps.get(sid)
	if s.normal == 0 {
		c.facetNormal(sid)
		for i := range c.cdim {
			c.bases.nullify(&s.neigh[i].basis)
		}
	}

	b := c.bases.get(c.probe)
	b.lscale = 0
	if c.vd && p == infinitySite {
		c.bases.copyFrom(c.probe, c.infinity)
	} else {
		c.trans(b.vecs, p, s.neigh[0].vert)
		c.lift(b.vecs)
	}
	zz := b.vecs[:c.rdim]
	normal := c.bases.get(s.normal)

	var dd, dds float64
	for range seesAttempts {
		dd = dot(zz, normal.vecs[:c.rdim])
		if dd == 0 {
			return false
		}
		dds = dd * dd / normal.sqb / norm2(zz)
		if dds > c.bErrMinSq {
			return dd < 0
		}
		c.ridgeBasis(sid)
		c.must(c.reduceInner(c.probe, sid, c.cdim))
	}

	c.stats.VisibilityFailures++
	c.log.Warn("visibility test inconclusive",
		zap.Int32("site", p-2),
		zap.Float64("dot", dd),
		zap.Float64("confidence", dds))
	return false
}
