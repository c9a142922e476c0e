// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package hull

import "go.uber.org/zap"

// walk visits simplices depth-first from start, following neighbor links
// and, when viaPeak is set, peak links. It stops at the first simplex for
// which visit returns true and returns it. Traversals use negative stamps so
// they never collide with insertion stamps.
func (c *builder) walk(start simplexID, viaPeak bool, visit func(simplexID) bool) simplexID {
	c.stamp--
	st := append(c.stack[:0], start)
	defer func() { c.stack = st[:0] }()

	for len(st) > 0 {
		sid := st[len(st)-1]
		st = st[:len(st)-1]
		if sid == 0 {
			continue
		}
		s := c.simps.get(sid)
		if s.visit == c.stamp {
			continue
		}
		s.visit = c.stamp
		if visit(sid) {
			return sid
		}
		if viaPeak && s.peak.simp != 0 && c.simps.get(s.peak.simp).visit != c.stamp {
			st = append(st, s.peak.simp)
		}
		for i := range c.cdim {
			n := s.neigh[i].simp
			if n != 0 && c.simps.get(n).visit != c.stamp {
				st = append(st, n)
			}
		}
	}
	return 0
}

// extract lists the current hull facets that avoid the point at infinity,
// as 0-based site indices, together with the site to simplex incidence.
// Sites inside a convex hull are not counted as uncovered.
func (c *builder) extract() ([][]int, [][]int) {
	first := c.walk(c.root, true, func(sid simplexID) bool {
		return c.simps.get(sid).peak.vert == noSite
	})

	var simplexes [][]int
	c.walk(first, false, func(sid simplexID) bool {
		s := c.simps.get(sid)
		for i := range c.cdim {
			if s.neigh[i].vert <= infinitySite {
				return false
			}
		}
		verts := make([]int, c.cdim)
		for i := range c.cdim {
			verts[i] = int(s.neigh[i].vert - 2)
		}
		simplexes = append(simplexes, verts)
		return false
	})

	counts := make([]int, len(c.sites))
	for _, verts := range simplexes {
		for _, v := range verts {
			counts[v]++
		}
	}
	vertices := make([][]int, len(c.sites))
	for v, cnt := range counts {
		vertices[v] = make([]int, 0, cnt)
		if cnt == 0 && c.vd {
			c.stats.Uncovered++
		}
	}
	for i, verts := range simplexes {
		for _, v := range verts {
			vertices[v] = append(vertices[v], i)
		}
	}

	if c.stats.Uncovered > 0 {
		c.log.Warn("sites missing from output; duplicates after scaling?",
			zap.Int("uncovered", c.stats.Uncovered))
	}
	return simplexes, vertices
}
