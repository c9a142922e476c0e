// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package hull

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumSamples(t *testing.T) {
	assert.Equal(t, 0, NumSamples(nil))
	assert.Equal(t, 3, NumSamples([][]float64{{1, 2, 3}}))
	assert.Equal(t, 2, NumSamples([][]float64{{1, 2, 3}, {4, 5}}))
}

func TestScaleSites(t *testing.T) {
	samples := [][]float64{
		{0.24, 1.26, -0.5, 2},
		{0, -1.74, 0.49, 3, 99},
	}
	sites, err := scaleSites(samples, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 0}, {3, -3}, {-1, 1}, {4, 6}}, sites)
	assert.Equal(t, 0.24, samples[0][0], "input modified")
}

func TestScaleSites_Errors(t *testing.T) {
	tests := []struct {
		name    string
		samples [][]float64
		scale   float64
	}{
		{"no dimensions", nil, 1},
		{"too few sites", [][]float64{{0, 1}, {0, 1}}, 1},
		{"dimension bound", make([][]float64, MaxDim), 1},
		{"zero scale", [][]float64{{0, 1, 2}, {0, 1, 0}}, 0},
		{"negative scale", [][]float64{{0, 1, 2}, {0, 1, 0}}, -1},
		{"NaN scale", [][]float64{{0, 1, 2}, {0, 1, 0}}, math.NaN()},
		{"infinite coordinate", [][]float64{{0, 1, math.Inf(1)}, {0, 1, 0}}, 1},
		{"overflow", [][]float64{{0, 1, math.MaxFloat64}, {0, 1, 0}}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := scaleSites(tt.samples, tt.scale)
			assert.True(t, errors.Is(err, ErrInvalidInput), "error = %v, want ErrInvalidInput", err)
		})
	}
}

func TestAutoScale(t *testing.T) {
	tests := []struct {
		name    string
		samples [][]float64
		want    float64
	}{
		{"empty", nil, 1},
		{"zeros", [][]float64{{0, 0}}, 1},
		{"unit", [][]float64{{0.5, -1}}, math.Ldexp(1, 19)},
		{"large", [][]float64{{-3e6, 1}}, math.Ldexp(1, -2)},
		{"infinite", [][]float64{{math.Inf(-1)}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AutoScale(tt.samples)
			assert.Equal(t, tt.want, got)
			for _, col := range tt.samples {
				for _, v := range col {
					if !math.IsInf(v, 0) {
						assert.Less(t, math.Abs(v*got), math.Ldexp(1, autoScaleBits))
					}
				}
			}
		})
	}
}
