// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package utils generates and reshapes sample sets for triangulations.

package utils

import (
	"math"
	"math/rand"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// GenerateRandomPoints generates a vector of random points on the S2 sphere.
// The seed parameter ensures reproducibility.
func GenerateRandomPoints(cnt int, seed int64) s2.PointVector {
	//nolint:gosec
	random := rand.New(rand.NewSource(seed))
	sites := make(s2.PointVector, cnt)

	for i := range cnt {
		sites[i] = s2.PointFromLatLng(s2.LatLng{
			Lat: s1.Angle((random.Float64() - 0.5) * math.Pi),
			Lng: s1.Angle((random.Float64()*2 - 1) * math.Pi),
		})
	}

	return sites
}

// GenerateRandomSamples generates cnt points uniformly distributed in the
// cube [-1, 1)^dim, laid out as one coordinate slice per dimension.
func GenerateRandomSamples(dim, cnt int, seed int64) [][]float64 {
	//nolint:gosec
	random := rand.New(rand.NewSource(seed))
	samples := make([][]float64, dim)
	for d := range dim {
		samples[d] = make([]float64, cnt)
	}
	for i := range cnt {
		for d := range dim {
			samples[d][i] = random.Float64()*2 - 1
		}
	}
	return samples
}

// SamplesFromPoints lays out points as x, y and z coordinate slices.
func SamplesFromPoints(points s2.PointVector) [][]float64 {
	samples := [][]float64{
		make([]float64, len(points)),
		make([]float64, len(points)),
		make([]float64, len(points)),
	}
	for i, p := range points {
		samples[0][i] = p.X
		samples[1][i] = p.Y
		samples[2][i] = p.Z
	}
	return samples
}

// Transpose converts between point-major and dimension-major layouts. Rows
// shorter than the first are padded with zeros.
func Transpose(rows [][]float64) [][]float64 {
	if len(rows) == 0 {
		return nil
	}
	cols := make([][]float64, len(rows[0]))
	for c := range cols {
		cols[c] = make([]float64, len(rows))
		for r, row := range rows {
			if c < len(row) {
				cols[c][r] = row[c]
			}
		}
	}
	return cols
}
