// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package hull

import "go.uber.org/zap"

// MaxDim bounds the working dimension: dim+1 for Delaunay triangulations.
const MaxDim = 8

const (
	// deLift is the log2 factor by which lifted coordinates are scaled down.
	deLift = 0
	// bErrMinBound is the relative error below which a dot product with a
	// facet normal carries no sign information.
	bErrMinBound = 0x1p-52 * MaxDim * (1 << MaxDim) * MaxDim * 3.01
)

// Site handles. Handle i+2 is input site i; the handle of the site being
// inserted doubles as the visitation stamp of that insertion.
const (
	noSite       int32 = 0
	infinitySite int32 = 1
)

func siteHandle(i int) int32 {
	return int32(i + 2)
}

// builder holds the whole state of one hull computation. It is owned by a
// single Compute call and is not safe for concurrent use.
type builder struct {
	pdim, rdim, cdim int
	vd               bool
	sites            [][]float64

	bases *basisArena
	simps *simplexArena
	root  simplexID

	p     int32
	pnum  int64
	stamp int64
	facet simplexID

	// Shared bases: the zero placeholder of ridge slot 0, the lifting
	// direction, and scratch vectors for sees and outOfFlat.
	zero, infinity, probe, flat basisID

	exactBits          int
	bErrMin, bErrMinSq float64
	maxScale           float64
	ldetBound          float64
	ridgeNorm2         float64
	overshot           bool

	stack []simplexID
	refs  []int32
	stats Stats
	log   *zap.Logger
}

func newBuilder(sites [][]float64, mode Mode, log *zap.Logger) *builder {
	dim := len(sites[0])
	c := &builder{
		pdim:  dim,
		rdim:  dim,
		vd:    mode == Delaunay,
		sites: sites,
		log:   log,
	}
	if c.vd {
		c.rdim++
	}
	c.bases = newBasisArena(c.rdim)
	c.simps = newSimplexArena(c.rdim)

	c.exactBits = 53
	c.bErrMin = float64(float32(bErrMinBound))
	c.bErrMinSq = c.bErrMin * c.bErrMin

	c.zero = c.bases.alloc()
	c.bases.get(c.zero).lscale = -1
	c.probe = c.bases.alloc()
	c.flat = c.bases.alloc()
	if c.vd {
		c.infinity = c.bases.alloc()
		inf := c.bases.get(c.infinity)
		inf.vecs[c.rdim-1] = 1
		inf.vecs[2*c.rdim-1] = 1
		inf.sqa, inf.sqb = 1, 1
	}
	return c
}

func (c *builder) site(h int32) []float64 {
	if h < siteHandle(0) || int(h-2) >= len(c.sites) {
		fatalf(ErrInconsistentTriangulation, "site handle %d has no coordinates", h)
	}
	return c.sites[h-2]
}

// copySimplex duplicates src, taking references on the bases it shares.
func (c *builder) copySimplex(src simplexID) simplexID {
	id := c.simps.alloc()
	dst, s := c.simps.get(id), c.simps.get(src)
	neigh := dst.neigh
	*dst = *s
	dst.neigh = neigh
	copy(dst.neigh, s.neigh)
	dst.next = 0

	c.bases.incRef(s.peak.basis)
	for i := range c.cdim {
		c.bases.incRef(s.neigh[i].basis)
	}
	return id
}

func (c *builder) oppositeSimplex(a, b simplexID) *neighbor {
	s := c.simps.get(a)
	for i := range c.cdim {
		if s.neigh[i].simp == b {
			return &s.neigh[i]
		}
	}
	fatalf(ErrInconsistentTriangulation, "adjacency failure: simplex %d is not a neighbor of %d", b, a)
	return nil
}

func (c *builder) oppositeVertex(a simplexID, v int32) *neighbor {
	s := c.simps.get(a)
	for i := range c.cdim {
		if s.neigh[i].vert == v {
			return &s.neigh[i]
		}
	}
	fatalf(ErrInconsistentTriangulation, "adjacency failure: site %d is not a vertex of simplex %d", v-2, a)
	return nil
}

// build inserts every site in input order.
func (c *builder) build() {
	next := 0
	if c.vd {
		c.p = infinitySite
	} else {
		c.p = siteHandle(0)
		next = 1
	}

	c.root = c.simps.alloc()
	s := c.copySimplex(c.root)
	root := c.simps.get(c.root)
	root.peak.vert = c.p
	root.peak.simp = s
	c.simps.get(s).peak.simp = c.root

	for ; next < len(c.sites); next++ {
		c.p = siteHandle(next)
		c.pnum = int64(c.p)
		if c.cdim < c.rdim {
			if c.outOfFlat(c.root, c.p) {
				c.extendSimplices(c.root)
				continue
			}
			if c.cdim == c.pointRank() {
				// p coincides with the only site inserted so far.
				c.log.Debug("skipping coincident site", zap.Int32("site", c.p-2))
				continue
			}
		}
		c.facet = 0
		c.connect(c.makeFacets(c.search(c.root)))
	}

	c.log.Debug("hull built",
		zap.Int("sites", len(c.sites)),
		zap.Int("rank", c.cdim),
		zap.Int("simplices", c.simps.live),
		zap.Int("bases", c.bases.live))
}

// pointRank is the working rank while a single input site is inserted: the
// point at infinity adds one in Delaunay mode.
func (c *builder) pointRank() int {
	if c.vd {
		return 1
	}
	return 0
}

// outOfFlat reports whether p lies outside the affine span of the sites
// inserted so far. On success the working rank cdim grows by one.
func (c *builder) outOfFlat(rid simplexID, p int32) bool {
	root := c.simps.get(rid)
	c.cdim++
	root.neigh[c.cdim-1].vert = root.peak.vert
	c.bases.nullify(&root.neigh[c.cdim-1].basis)
	c.ridgeBasis(rid)
	if c.vd && root.neigh[0].vert == infinitySite {
		return true
	}
	c.must(c.reduce(&c.flat, p, rid, c.cdim))
	if c.bases.get(c.flat).sqa != 0 {
		return true
	}
	c.cdim--
	return false
}

// extendSimplices makes p a vertex of every simplex reachable from s, which
// raises each of them by one dimension, and caps the former retired
// simplices with new facets through their peak.
func (c *builder) extendSimplices(sid simplexID) simplexID {
	ocdim := c.cdim - 1
	s := c.simps.get(sid)
	if s.visit == c.pnum {
		if s.peak.vert != noSite {
			return s.neigh[ocdim].simp
		}
		return sid
	}
	s.visit = c.pnum
	s.neigh[ocdim].vert = c.p
	c.bases.nullify(&s.normal)
	c.bases.nullify(&s.neigh[0].basis)
	if s.peak.vert == noSite {
		s.neigh[ocdim].simp = c.extendSimplices(s.peak.simp)
		return sid
	}

	nid := c.copySimplex(sid)
	ns := c.simps.get(nid)
	s.neigh[ocdim].simp = nid
	ns.peak.vert = noSite
	ns.peak.simp = sid
	ns.neigh[ocdim] = s.peak
	c.bases.incRef(s.peak.basis)
	for i := range c.cdim {
		ns.neigh[i].simp = c.extendSimplices(ns.neigh[i].simp)
	}
	return nid
}

// search returns a current facet visible from the site being inserted, or
// 0 when the site is inside the hull. It walks the history from root,
// descending only through simplices the site sees.
func (c *builder) search(rid simplexID) simplexID {
	root := c.simps.get(rid)
	st := append(c.stack[:0], root.peak.simp)
	defer func() { c.stack = st[:0] }()

	root.visit = c.pnum
	if !c.sees(c.p, rid) {
		for i := range c.cdim {
			st = append(st, root.neigh[i].simp)
		}
	}
	for len(st) > 0 {
		sid := st[len(st)-1]
		st = st[:len(st)-1]
		if sid == 0 {
			continue
		}
		s := c.simps.get(sid)
		if s.visit == c.pnum {
			continue
		}
		s.visit = c.pnum
		if !c.sees(c.p, sid) {
			continue
		}
		if s.peak.vert == noSite {
			return sid
		}
		for i := range c.cdim {
			st = append(st, s.neigh[i].simp)
		}
	}
	return 0
}

// makeFacets retires every facet visible from p that is reachable from seen
// through visible facets, and makes one new facet with apex p for each
// ridge between a retired facet and a facet p does not see. It returns the
// last facet made.
func (c *builder) makeFacets(seen simplexID) simplexID {
	if seen == 0 {
		return 0
	}
	c.simps.get(seen).peak.vert = c.p

	for i := range c.cdim {
		bn := &c.simps.get(seen).neigh[i]
		n := bn.simp
		if ns := c.simps.get(n); ns.visit != c.pnum {
			ns.visit = c.pnum
			if c.sees(c.p, n) {
				c.makeFacets(n)
			}
		}
		if c.simps.get(n).peak.vert != noSite {
			continue
		}

		nid := c.copySimplex(seen)
		ns := c.simps.get(nid)
		ns.visit = 0
		ns.peak.vert = noSite
		ns.normal = 0
		ns.peak.simp = seen
		c.bases.nullify(&ns.neigh[i].basis)
		ns.neigh[i].vert = c.p
		c.oppositeSimplex(n, seen).simp = nid
		bn.simp = nid
		c.facet = nid
	}
	return c.facet
}

// connect links the new facets around p to each other, starting from s.
// Each ridge of s not containing p is matched by rotating around it through
// retired simplices until a new facet is reached.
func (c *builder) connect(sid simplexID) {
	if sid == 0 {
		return
	}
	s := c.simps.get(sid)
	if s.visit == c.pnum {
		return
	}
	s.visit = c.pnum
	seen := s.peak.simp
	xfi := c.oppositeSimplex(seen, sid).vert

	for i := range c.cdim {
		sn := &s.neigh[i]
		xb := sn.vert
		if xb == c.p {
			continue
		}
		sb := seen
		sf := sn.simp
		xf := xfi
		if c.simps.get(sf).peak.vert == noSite {
			sf = c.oppositeVertex(seen, xb).simp
			if c.simps.get(sf).peak.vert != noSite {
				continue
			}
		} else {
			for {
				xb = xf
				xf = c.oppositeSimplex(sf, sb).vert
				sb = sf
				sf = c.oppositeVertex(sb, xb).simp
				if c.simps.get(sf).peak.vert == noSite {
					break
				}
			}
		}
		sn.simp = sf
		c.oppositeVertex(sf, xf).simp = sid
		c.connect(sf)
	}
}
