// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package hull

import (
	"math"

	"go.uber.org/zap"
)

const (
	maxReduceIterations = 250
	// Number of failed reductions reported individually per compute call.
	maxReduceWarnings = 10
	// exactLimit is 2^53; integers beyond it are no longer exact in a float64.
	exactLimit = 9007199254740992.0
)

type reduceResult int

const (
	reduceOK reduceResult = iota
	// reduceDegenerate means the iteration budget ran out; the basis holds a
	// best-effort vector.
	reduceDegenerate
	// reduceFatal means the arithmetic left the finite range.
	reduceFatal
)

func dot(x, y []float64) float64 {
	sum := 0.0
	for i := range x {
		sum += x[i] * y[i]
	}
	return sum
}

func norm2(x []float64) float64 {
	return dot(x, x)
}

// axpy adds a*x to y.
func axpy(a float64, x, y []float64) {
	for i := range y {
		y[i] += a * x[i]
	}
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func twoTo(x int) float64 {
	if x < 20 {
		return float64(int(1) << x)
	}
	return math.Ldexp(1, x)
}

func (c *builder) vb(id basisID) []float64 {
	return c.bases.get(id).vecs[:c.rdim]
}

func (c *builder) va(id basisID) []float64 {
	return c.bases.get(id).vecs[c.rdim:]
}

// trans writes p-q into both halves of z.
func (c *builder) trans(z []float64, p, q int32) {
	pp, qq := c.site(p), c.site(q)
	for i := range c.pdim {
		d := pp[i] - qq[i]
		z[i] = d
		z[i+c.rdim] = d
	}
}

// lift sets the extra coordinate of a Delaunay difference vector to its
// squared length.
func (c *builder) lift(z []float64) {
	if !c.vd {
		return
	}
	l := math.Ldexp(dot(z[:c.pdim], z[:c.pdim]), -deLift)
	z[c.rdim-1] = l
	z[2*c.rdim-1] = l
}

func (c *builder) checkOvershoot(x float64) {
	if x > exactLimit || -x > exactLimit {
		c.warnOvershoot(x)
	}
}

// warnOvershoot logs once per computation that intermediate values left
// the exactly representable integer range.
func (c *builder) warnOvershoot(x float64) {
	if c.overshot {
		return
	}
	c.overshot = true
	c.log.Warn("overshot exact arithmetic", zap.Int32("site", c.p-2), zap.Float64("value", x))
}

func (c *builder) scaleVec(a float64, x []float64) {
	c.checkOvershoot(a)
	for i := range x {
		x[i] *= a
		c.checkOvershoot(x[i])
	}
}

func (c *builder) axpyChecked(a float64, x, y []float64) {
	for i := range y {
		c.checkOvershoot(y[i] + a*x[i])
		y[i] += a * x[i]
	}
}

// must aborts the computation on fatal reduction results.
func (c *builder) must(r reduceResult) reduceResult {
	if r == reduceFatal {
		fatalf(ErrInvalidInput, "non-finite arithmetic while inserting site %d; scale is too large", c.p-2)
	}
	return r
}

// reduce loads into *v the direction from the first vertex of s to site p
// (the lifting direction for the point at infinity) and reduces it against
// the first k ridge slots of s. A missing basis is allocated.
func (c *builder) reduce(v *basisID, p int32, s simplexID, k int) reduceResult {
	if *v == 0 {
		*v = c.bases.alloc()
	} else {
		c.bases.get(*v).lscale = 0
	}
	if c.vd && p == infinitySite {
		c.bases.copyFrom(*v, c.infinity)
	} else {
		b := c.bases.get(*v)
		c.trans(b.vecs, p, c.simps.get(s).neigh[0].vert)
		c.lift(b.vecs)
	}
	return c.reduceInner(*v, s, k)
}

// reduceInner projects the vector of v off the ridge bases in slots
// k-1..1 of s, rescaling the accumulating half by powers of two until the
// reduced part keeps at least half of its squared length.
func (c *builder) reduceInner(vid basisID, sid simplexID, k int) reduceResult {
	v := c.bases.get(vid)
	vb, va := v.vecs[:c.rdim], v.vecs[c.rdim:]
	s := c.simps.get(sid)

	v.sqb = norm2(vb)
	v.sqa = v.sqb
	if k <= 1 {
		copy(vb, va)
		return reduceOK
	}

	for j := range maxReduceIterations {
		copy(vb, va)
		for i := k - 1; i > 0; i-- {
			w := c.bases.get(s.neigh[i].basis)
			if w.sqb == 0 {
				continue
			}
			dd := -dot(w.vecs[:c.rdim], vb) / w.sqb
			axpy(dd, w.vecs[c.rdim:], vb)
		}
		v.sqb = norm2(vb)
		v.sqa = norm2(va)
		if !finite(v.sqa) || !finite(v.sqb) {
			return reduceFatal
		}
		if 2*v.sqb >= v.sqa {
			return reduceOK
		}

		c.scaleVec(c.scaleFactor(vid, sid, k, j), va)
		for i := k - 1; i > 0; i-- {
			w := c.bases.get(s.neigh[i].basis)
			if w.sqb == 0 {
				continue
			}
			dd := math.Floor(-dot(w.vecs[:c.rdim], va)/w.sqb + 0.5)
			c.axpyChecked(dd, w.vecs[c.rdim:], va)
		}
	}

	c.stats.ReduceFailures++
	if c.stats.ReduceFailures <= maxReduceWarnings {
		c.log.Warn("basis reduction failed",
			zap.Int32("site", c.p-2),
			zap.Int("rank", k),
			zap.Float64("sqa", v.sqa),
			zap.Float64("sqb", v.sqb))
	}
	return reduceDegenerate
}

// scaleFactor returns the power of two by which to scale up the
// accumulating vector of v on reduction round j, derived from the squared
// ridge norms and bErrMin, or 0 when the reduced vector is below the
// precision the ridge determinant guarantees, that is, when it is zero in
// exact arithmetic.
func (c *builder) scaleFactor(vid basisID, sid simplexID, k, j int) float64 {
	v := c.bases.get(vid)
	if j < 10 {
		labound := math.Logb(v.sqa) / 2
		c.maxScale = float64(c.exactBits) - labound - 0.66*float64(k-2) - 1 - deLift
		if c.maxScale < 1 {
			c.warnOvershoot(c.maxScale)
			c.maxScale = 1
		}
		if j == 0 {
			s := c.simps.get(sid)
			c.ldetBound = deLift
			c.ridgeNorm2 = 0
			for i := 1; i < k; i++ {
				w := c.bases.get(s.neigh[i].basis)
				if w.sqb == 0 {
					continue
				}
				c.ridgeNorm2 += w.sqb
				c.ldetBound += math.Logb(w.sqb)/2 + 1 - float64(w.lscale)
			}
		}
	}
	if c.ldetBound-float64(v.lscale)+math.Logb(v.sqb)/2+1 < 0 {
		return 0
	}
	// Scale so that the rounding error of the next projection stays below
	// the reduced length relative to the ridge norms.
	l := math.Logb(2*c.ridgeNorm2/(v.sqb+v.sqa*c.bErrMin)) / 2
	if l > c.maxScale {
		l = c.maxScale
	} else if l < 0 || math.IsNaN(l) {
		l = 0
	}
	lscale := int(l)
	v.lscale += lscale
	return twoTo(lscale)
}
