// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package hull

import (
	"math"

	"github.com/pkg/errors"
)

// autoScaleBits bounds the magnitude of auto-scaled coordinates, leaving
// headroom in the 53-bit mantissa for lifted squares and basis products.
const autoScaleBits = 20

// NumSamples returns the number of usable sites in samples: the shortest
// coordinate column.
func NumSamples(samples [][]float64) int {
	if len(samples) == 0 {
		return 0
	}
	n := len(samples[0])
	for _, col := range samples[1:] {
		n = min(n, len(col))
	}
	return n
}

// scaleSites multiplies every coordinate by scale and snaps it to the
// nearest integer. The result holds one slice of dim coordinates per site.
func scaleSites(samples [][]float64, scale float64) ([][]float64, error) {
	dim := len(samples)
	if dim < 1 {
		return nil, errors.Wrap(ErrInvalidInput, "no coordinate dimensions")
	}
	if dim+1 > MaxDim {
		return nil, errors.Wrapf(ErrInvalidInput, "dimension bound exceeded; dim=%d, max=%d", dim, MaxDim-1)
	}
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "scale %v must be positive and finite", scale)
	}
	n := NumSamples(samples)
	if n <= dim {
		return nil, errors.Wrapf(ErrInvalidInput, "not enough samples; got %d, need more than %d", n, dim)
	}

	buf := make([]float64, n*dim)
	sites := make([][]float64, n)
	for i := range n {
		site := buf[i*dim : (i+1)*dim : (i+1)*dim]
		for d := range dim {
			v := math.Floor(samples[d][i]*scale + 0.5)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.Wrapf(ErrInvalidInput, "sample %d coordinate %d is not finite after scaling", i, d)
			}
			site[d] = v
		}
		sites[i] = site
	}
	return sites, nil
}

// AutoScale returns a power of two that maps the largest absolute coordinate
// of samples below 2^20. It returns 1 for empty or non-finite input.
func AutoScale(samples [][]float64) float64 {
	maxAbs := 0.0
	for _, col := range samples {
		for _, v := range col {
			maxAbs = max(maxAbs, math.Abs(v))
		}
	}
	if maxAbs == 0 || math.IsNaN(maxAbs) || math.IsInf(maxAbs, 0) {
		return 1
	}
	_, exp := math.Frexp(maxAbs)
	return math.Ldexp(1, autoScaleBits-exp)
}
