// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package hull

// slabSize is the number of records in one arena slab.
const slabSize = 4096

// Handles index records across slabs; handle 0 is reserved and means none.
type (
	basisID   int32
	simplexID int32
)

// basis is a reduced direction vector. vecs[:rdim] holds the reduced vector,
// vecs[rdim:] the accumulating one; vecs is a fixed view into slab storage.
type basis struct {
	next     basisID
	refCount int32
	lscale   int
	sqa, sqb float64
	vecs     []float64
}

type basisArena struct {
	width int
	slabs [][]basis
	free  basisID
	live  int
}

func newBasisArena(rdim int) *basisArena {
	a := &basisArena{width: 2 * rdim}
	a.grow()
	return a
}

func (a *basisArena) grow() {
	base := len(a.slabs) * slabSize
	recs := make([]basis, slabSize)
	store := make([]float64, slabSize*a.width)
	for i := range recs {
		recs[i].vecs = store[i*a.width : (i+1)*a.width : (i+1)*a.width]
	}
	a.slabs = append(a.slabs, recs)
	for i := slabSize - 1; i >= 0; i-- {
		if base+i == 0 {
			continue
		}
		recs[i].next = a.free
		a.free = basisID(base + i)
	}
}

func (a *basisArena) get(id basisID) *basis {
	return &a.slabs[id/slabSize][id%slabSize]
}

// alloc takes a cleared record off the free list with one reference.
func (a *basisArena) alloc() basisID {
	if a.free == 0 {
		a.grow()
	}
	id := a.free
	b := a.get(id)
	a.free = b.next
	b.next = 0
	b.refCount = 1
	a.live++
	return id
}

func (a *basisArena) incRef(id basisID) {
	if id != 0 {
		a.get(id).refCount++
	}
}

func (a *basisArena) decRef(id basisID) {
	if id == 0 {
		return
	}
	b := a.get(id)
	b.refCount--
	if b.refCount == 0 {
		a.release(id)
	}
}

// nullify drops the reference held in *id and clears the handle.
func (a *basisArena) nullify(id *basisID) {
	a.decRef(*id)
	*id = 0
}

func (a *basisArena) release(id basisID) {
	b := a.get(id)
	clear(b.vecs)
	b.refCount = 0
	b.lscale = 0
	b.sqa, b.sqb = 0, 0
	b.next = a.free
	a.free = id
	a.live--
}

// copyFrom copies the vectors and norms of src into dst, keeping dst's
// reference count.
func (a *basisArena) copyFrom(dst, src basisID) {
	d, s := a.get(dst), a.get(src)
	copy(d.vecs, s.vecs)
	d.lscale = s.lscale
	d.sqa, d.sqb = s.sqa, s.sqb
}

// neighbor is one vertex slot of a simplex: the vertex, the simplex sharing
// every other vertex, and the basis vector derived for the slot.
type neighbor struct {
	vert  int32
	simp  simplexID
	basis basisID
}

// simplex is a facet or retired cell of the hull history. A zero peak.vert
// marks a facet of the current hull.
type simplex struct {
	next   simplexID
	visit  int64
	normal basisID
	peak   neighbor
	neigh  []neighbor
}

type simplexArena struct {
	width int
	slabs [][]simplex
	free  simplexID
	live  int
}

func newSimplexArena(rdim int) *simplexArena {
	a := &simplexArena{width: rdim}
	a.grow()
	return a
}

func (a *simplexArena) grow() {
	base := len(a.slabs) * slabSize
	recs := make([]simplex, slabSize)
	store := make([]neighbor, slabSize*a.width)
	for i := range recs {
		recs[i].neigh = store[i*a.width : (i+1)*a.width : (i+1)*a.width]
	}
	a.slabs = append(a.slabs, recs)
	for i := slabSize - 1; i >= 0; i-- {
		if base+i == 0 {
			continue
		}
		recs[i].next = a.free
		a.free = simplexID(base + i)
	}
}

func (a *simplexArena) get(id simplexID) *simplex {
	return &a.slabs[id/slabSize][id%slabSize]
}

func (a *simplexArena) alloc() simplexID {
	if a.free == 0 {
		a.grow()
	}
	id := a.free
	s := a.get(id)
	a.free = s.next
	s.next = 0
	a.live++
	return id
}

// release clears the record and pushes it on the free list. References the
// record holds must have been dropped by the caller.
func (a *simplexArena) release(id simplexID) {
	s := a.get(id)
	clear(s.neigh)
	s.visit = 0
	s.normal = 0
	s.peak = neighbor{}
	s.next = a.free
	a.free = id
	a.live--
}
