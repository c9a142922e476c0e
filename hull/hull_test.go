// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package hull

import (
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/2dChan/ndhull/utils"
	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/markus-wa/quickhull-go/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// Options

func TestWithMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    Mode
		wantErr bool
	}{
		{"delaunay", Delaunay, false},
		{"convex hull", ConvexHull, false},
		{"unknown", Mode(7), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &Options{}
			err := WithMode(tt.mode)(opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("WithMode(%v) error = %v, want error %v", tt.mode, err, tt.wantErr)
			}
			if err == nil && opts.Mode != tt.mode {
				t.Errorf("WithMode(%v) opts.Mode = %v, want %v", tt.mode, opts.Mode, tt.mode)
			}
		})
	}
}

func TestWithLogger(t *testing.T) {
	opts := &Options{}
	if err := WithLogger(nil)(opts); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("WithLogger(nil) error = %v, want ErrInvalidInput", err)
	}
	l := zap.NewNop()
	if err := WithLogger(l)(opts); err != nil || opts.Logger != l {
		t.Errorf("WithLogger(l) = (%v, %p), want (nil, %p)", err, opts.Logger, l)
	}
}

func TestMode_String(t *testing.T) {
	for m, want := range map[Mode]string{Delaunay: "delaunay", ConvexHull: "convex-hull", Mode(9): "unknown"} {
		if got := m.String(); got != want {
			t.Errorf("Mode(%d).String() = %q, want %q", m, got, want)
		}
	}
}

// Compute

func TestCompute_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		samples [][]float64
		opts    []Option
	}{
		{"too few sites", [][]float64{{0, 1, 0}, {0, 0, 1}, {0, 0, 0}}, nil},
		{"dimension bound", utils.GenerateRandomSamples(MaxDim, 20, 0), nil},
		{"collinear", [][]float64{{0, 1, 2, 3}, {0, 1, 2, 3}}, nil},
		{"coplanar tetrahedron", [][]float64{{0, 1, 0, 1}, {0, 0, 1, 1}, {0, 0, 0, 0}}, nil},
		{"coplanar hull", [][]float64{{0, 1, 0, 1}, {0, 0, 1, 1}, {0, 0, 0, 0}}, []Option{WithMode(ConvexHull)}},
		{"repeated site", [][]float64{{0, 0, 0}, {1, 1, 1}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compute(tt.samples, 1, tt.opts...)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Compute(%v, 1) error = %v, want ErrInvalidInput", tt.samples, err)
			}
			if res != nil {
				t.Errorf("Compute(%v, 1) result = %v, want nil", tt.samples, res)
			}
		})
	}
}

func TestCompute_SquareWithCenter(t *testing.T) {
	samples := [][]float64{
		{0, 2, 2, 0, 1},
		{0, 0, 2, 2, 1},
	}
	res, err := Compute(samples, 1)
	if err != nil {
		t.Fatalf("Compute(...) error = %v, want nil", err)
	}
	want := [][]int{{0, 1, 4}, {0, 3, 4}, {1, 2, 4}, {2, 3, 4}}
	if diff := cmp.Diff(want, sortedSimplexes(res.Simplexes)); diff != "" {
		t.Errorf("Compute(...) simplexes mismatch (-want +got):\n%v", diff)
	}
	if got := len(res.Vertices[4]); got != 4 {
		t.Errorf("Compute(...) center incident simplexes = %d, want 4", got)
	}
	if res.Dim != 2 || res.Mode != Delaunay || res.Stats.Sites != 5 {
		t.Errorf("Compute(...) = {Dim: %d, Mode: %v, Sites: %d}, want {2, delaunay, 5}", res.Dim, res.Mode, res.Stats.Sites)
	}
}

func TestCompute_Tetrahedron(t *testing.T) {
	samples := [][]float64{
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
	res, err := Compute(samples, 1)
	if err != nil {
		t.Fatalf("Compute(...) error = %v, want nil", err)
	}
	if diff := cmp.Diff([][]int{{0, 1, 2, 3}}, sortedSimplexes(res.Simplexes)); diff != "" {
		t.Errorf("Compute(...) simplexes mismatch (-want +got):\n%v", diff)
	}
	for v, inc := range res.Vertices {
		if diff := cmp.Diff([]int{0}, inc); diff != "" {
			t.Errorf("Compute(...) Vertices[%d] mismatch (-want +got):\n%v", v, diff)
		}
	}
}

func TestCompute_EmptyCircumsphere(t *testing.T) {
	tests := []struct {
		dim, cnt int
		scale    float64
	}{
		{2, 60, 1024},
		{3, 30, 64},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("D%dN%d", tt.dim, tt.cnt), func(t *testing.T) {
			samples := utils.GenerateRandomSamples(tt.dim, tt.cnt, 1)
			res, err := Compute(samples, tt.scale)
			if err != nil {
				t.Fatalf("Compute(...) error = %v, want nil", err)
			}
			sites := snap(samples, tt.scale)
			for i, s := range res.Simplexes {
				if len(s) != tt.dim+1 {
					t.Fatalf("simplex %d = %v, want %d vertices", i, s, tt.dim+1)
				}
				orient := orientation(sites, s)
				if orient == 0 {
					t.Errorf("simplex %d = %v is flat", i, s)
					continue
				}
				for e := range sites {
					if slices.Contains(s, e) {
						continue
					}
					if orient*inSphere(sites, s, e) > 0 {
						t.Errorf("site %d inside circumsphere of simplex %d = %v", e, i, s)
					}
				}
			}
			for v, inc := range res.Vertices {
				if len(inc) == 0 {
					t.Errorf("site %d not covered", v)
				}
			}
			if res.Stats.Uncovered != 0 {
				t.Errorf("Stats.Uncovered = %d, want 0", res.Stats.Uncovered)
			}
		})
	}
}

func TestCompute_ConvexHullMatchesQuickHull(t *testing.T) {
	const scale = 1 << 16
	for _, n := range []int{10, 100, 500} {
		t.Run(fmt.Sprintf("N%d", n), func(t *testing.T) {
			samples := utils.SamplesFromPoints(utils.GenerateRandomPoints(n, 0))
			res, err := Compute(samples, scale, WithMode(ConvexHull))
			if err != nil {
				t.Fatalf("Compute(..., WithMode(ConvexHull)) error = %v, want nil", err)
			}
			if got, want := len(res.Simplexes), 2*n-4; got != want {
				t.Errorf("Compute(..., WithMode(ConvexHull)) facets = %d, want %d", got, want)
			}

			sites := snap(samples, scale)
			v3 := make([]r3.Vector, n)
			for i, p := range sites {
				v3[i] = r3.Vector{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
			}
			qh := new(quickhull.QuickHull)
			ch := qh.ConvexHull(v3, true, true, 0)
			want := make([][]int, 0, len(ch.Indices)/3)
			for i := 0; i+2 < len(ch.Indices); i += 3 {
				want = append(want, []int{ch.Indices[i], ch.Indices[i+1], ch.Indices[i+2]})
			}
			if diff := cmp.Diff(sortedSimplexes(want), sortedSimplexes(res.Simplexes)); diff != "" {
				t.Errorf("Compute(..., WithMode(ConvexHull)) facets mismatch (-want +got):\n%v", diff)
			}
		})
	}
}

func TestCompute_ConvexHullPlanar(t *testing.T) {
	samples := [][]float64{
		{1, 0, 2, 2, 0},
		{1, 0, 0, 2, 2},
	}
	res, err := Compute(samples, 1, WithMode(ConvexHull))
	if err != nil {
		t.Fatalf("Compute(..., WithMode(ConvexHull)) error = %v, want nil", err)
	}
	want := [][]int{{1, 2}, {1, 4}, {2, 3}, {3, 4}}
	if diff := cmp.Diff(want, sortedSimplexes(res.Simplexes)); diff != "" {
		t.Errorf("Compute(..., WithMode(ConvexHull)) edges mismatch (-want +got):\n%v", diff)
	}
	if len(res.Vertices[0]) != 0 || res.Stats.Uncovered != 0 {
		t.Errorf("interior site: incident = %v, Uncovered = %d, want none and 0", res.Vertices[0], res.Stats.Uncovered)
	}
}

func TestCompute_DuplicateSite(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	samples := [][]float64{
		{0, 4, 0, 4, 1, 1.1},
		{0, 0, 4, 4, 2, 2},
	}
	res, err := Compute(samples, 1, WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("Compute(...) error = %v, want nil", err)
	}
	if res.Stats.Uncovered != 1 {
		t.Errorf("Stats.Uncovered = %d, want 1", res.Stats.Uncovered)
	}
	if len(res.Vertices[5]) != 0 {
		t.Errorf("duplicate site incident simplexes = %v, want none", res.Vertices[5])
	}
	if logs.FilterMessageSnippet("sites missing").Len() != 1 {
		t.Errorf("missing sites warning not logged; got %v", logs.All())
	}
}

func TestCompute_DuplicateDuringBootstrap(t *testing.T) {
	for _, dim := range []int{2, 3} {
		for _, at := range []int{1, 2} {
			t.Run(fmt.Sprintf("D%dAt%d", dim, at), func(t *testing.T) {
				samples := utils.GenerateRandomSamples(dim, 100, int64(dim))
				for d := range samples {
					samples[d][at] = samples[d][0]
				}
				res, err := Compute(samples, AutoScale(samples))
				if err != nil {
					t.Fatalf("Compute(...) error = %v, want nil", err)
				}
				if res.Stats.Uncovered != 1 {
					t.Errorf("Stats.Uncovered = %d, want 1", res.Stats.Uncovered)
				}
				if len(res.Vertices[at]) != 0 {
					t.Errorf("duplicate site incident simplexes = %v, want none", res.Vertices[at])
				}
				if len(res.Vertices[0]) == 0 {
					t.Errorf("site 0 not covered")
				}
			})
		}
	}
}

func TestCompute_DuplicateDuringBootstrapConvexHull(t *testing.T) {
	const n = 100
	samples := utils.SamplesFromPoints(utils.GenerateRandomPoints(n, 0))
	for d := range samples {
		samples[d][1] = samples[d][0]
	}
	res, err := Compute(samples, 1<<16, WithMode(ConvexHull))
	if err != nil {
		t.Fatalf("Compute(..., WithMode(ConvexHull)) error = %v, want nil", err)
	}
	if got, want := len(res.Simplexes), 2*(n-1)-4; got != want {
		t.Errorf("Compute(..., WithMode(ConvexHull)) facets = %d, want %d", got, want)
	}
	if len(res.Vertices[1]) != 0 {
		t.Errorf("duplicate site incident facets = %v, want none", res.Vertices[1])
	}
}

func TestCompute_GenericInputStats(t *testing.T) {
	tests := []struct {
		dim, cnt int
	}{
		{2, 2000},
		{3, 1000},
		{4, 200},
		{5, 80},
		{6, 40},
		{7, 30},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("D%dN%d", tt.dim, tt.cnt), func(t *testing.T) {
			samples := utils.GenerateRandomSamples(tt.dim, tt.cnt, 0)
			res, err := Compute(samples, AutoScale(samples))
			if err != nil {
				t.Fatalf("Compute(...) error = %v, want nil", err)
			}
			if res.Stats.ReduceFailures != 0 || res.Stats.VisibilityFailures != 0 {
				t.Errorf("Stats = %+v, want no reduce or visibility failures", res.Stats)
			}
			if res.Stats.Uncovered != 0 {
				t.Errorf("Stats.Uncovered = %d, want 0", res.Stats.Uncovered)
			}
		})
	}
}

func TestCompute_CubeLattice(t *testing.T) {
	const k = 4
	samples := make([][]float64, 3)
	for x := range k {
		for y := range k {
			for z := range k {
				samples[0] = append(samples[0], float64(x))
				samples[1] = append(samples[1], float64(y))
				samples[2] = append(samples[2], float64(z))
			}
		}
	}
	res, err := Compute(samples, 1)
	if err != nil {
		t.Fatalf("Compute(...) error = %v, want nil", err)
	}
	if res.Stats.Uncovered != 0 {
		t.Errorf("Stats.Uncovered = %d, want 0", res.Stats.Uncovered)
	}

	sites := snap(samples, 1)
	var volume int64
	for i, s := range res.Simplexes {
		vol := simplexDet(sites, s)
		if vol < 0 {
			vol = -vol
		}
		volume += vol
		if vol == 0 {
			continue
		}
		orient := sign(simplexDet(sites, s))
		for e := range sites {
			if !slices.Contains(s, e) && orient*inSphere(sites, s, e) > 0 {
				t.Errorf("site %d inside circumsphere of simplex %d = %v", e, i, s)
			}
		}
	}
	// Six times the volume of the (k-1)^3 cube.
	if want := int64(6 * (k - 1) * (k - 1) * (k - 1)); volume != want {
		t.Errorf("total |det| = %d, want %d", volume, want)
	}
}

func TestCompute_Determinism(t *testing.T) {
	samples := utils.GenerateRandomSamples(3, 200, 3)
	a, err := Compute(samples, AutoScale(samples))
	if err != nil {
		t.Fatalf("Compute(...) error = %v, want nil", err)
	}
	b, err := Compute(samples, AutoScale(samples))
	if err != nil {
		t.Fatalf("Compute(...) error = %v, want nil", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("Compute(...) not deterministic (-first +second):\n%v", diff)
	}
}

func TestCompute_HigherDimensions(t *testing.T) {
	for dim := 4; dim < MaxDim; dim++ {
		t.Run(fmt.Sprintf("D%d", dim), func(t *testing.T) {
			samples := utils.GenerateRandomSamples(dim, 3*dim, int64(dim))
			res, err := Compute(samples, 256)
			if err != nil {
				t.Fatalf("Compute(...) error = %v, want nil", err)
			}
			if len(res.Simplexes) == 0 {
				t.Fatalf("Compute(...) returned no simplexes")
			}
			seen := make(map[string]bool)
			for i, s := range res.Simplexes {
				if len(s) != dim+1 {
					t.Errorf("simplex %d = %v, want %d vertices", i, s, dim+1)
				}
				key := fmt.Sprint(sortedCopy(s))
				if seen[key] {
					t.Errorf("simplex %d = %v listed twice", i, s)
				}
				seen[key] = true
			}
		})
	}
}

// Benchmarks

func BenchmarkCompute(b *testing.B) {
	for _, dim := range []int{2, 3} {
		for _, cnt := range []int{1e+2, 1e+3, 1e+4} {
			b.Run(fmt.Sprintf("D%dN%d", dim, cnt), func(b *testing.B) {
				samples := utils.GenerateRandomSamples(dim, cnt, 0)
				scale := AutoScale(samples)

				b.ReportAllocs()
				b.ResetTimer()
				for b.Loop() {
					if _, err := Compute(samples, scale); err != nil {
						b.Fatalf("Compute(...) error = %v, want nil", err)
					}
				}
			})
		}
	}
}

// Helpers

func sortedCopy(s []int) []int {
	c := slices.Clone(s)
	slices.Sort(c)
	return c
}

func sortedSimplexes(simplexes [][]int) [][]int {
	out := make([][]int, len(simplexes))
	for i, s := range simplexes {
		out[i] = sortedCopy(s)
	}
	slices.SortFunc(out, slices.Compare)
	return out
}

func snap(samples [][]float64, scale float64) [][]int64 {
	n := NumSamples(samples)
	sites := make([][]int64, n)
	for i := range n {
		sites[i] = make([]int64, len(samples))
		for d := range samples {
			sites[i][d] = int64(math.Floor(samples[d][i]*scale + 0.5))
		}
	}
	return sites
}

// orientation is the sign of simplexDet.
func orientation(sites [][]int64, s []int) int64 {
	return sign(simplexDet(sites, s))
}

// simplexDet is det[v_i - v_last] over the simplex s, dim! times its
// signed volume.
func simplexDet(sites [][]int64, s []int) int64 {
	last := sites[s[len(s)-1]]
	m := make([][]int64, len(s)-1)
	for i := range m {
		m[i] = make([]int64, len(last))
		for d := range last {
			m[i][d] = sites[s[i]][d] - last[d]
		}
	}
	return det(m)
}

// inSphere is positive when e lies inside the circumsphere of a positively
// oriented simplex s.
func inSphere(sites [][]int64, s []int, e int) int64 {
	pe := sites[e]
	m := make([][]int64, len(s))
	for i, v := range s {
		row := make([]int64, len(pe)+1)
		for d := range pe {
			x := sites[v][d] - pe[d]
			row[d] = x
			row[len(pe)] += x * x
		}
		m[i] = row
	}
	return sign(det(m))
}

func det(m [][]int64) int64 {
	if len(m) == 1 {
		return m[0][0]
	}
	var sum int64
	minor := make([][]int64, len(m)-1)
	for c := range m {
		for r := range minor {
			row := make([]int64, 0, len(m)-1)
			row = append(row, m[r+1][:c]...)
			minor[r] = append(row, m[r+1][c+1:]...)
		}
		term := m[0][c] * det(minor)
		if c%2 == 1 {
			term = -term
		}
		sum += term
	}
	return sum
}

func sign(x int64) int64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
