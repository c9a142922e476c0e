// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSamples(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]float64
	}{
		{"yaml points", "points:\n  - [0, 0]\n  - [2, 0]\n  - [1, 3]\n", [][]float64{{0, 2, 1}, {0, 0, 3}}},
		{"json points", `{"points": [[0, 0, 1], [1, 1, 0]]}`, [][]float64{{0, 1}, {0, 1}, {1, 0}}},
		{"json samples", `{"samples": [[0, 2, 1], [0, 0, 3]]}`, [][]float64{{0, 2, 1}, {0, 0, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readSamples(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadSamples_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"ragged points", "points: [[0, 0], [1]]"},
		{"both layouts", "points: [[0, 0]]\nsamples: [[0], [0]]"},
		{"not numbers", "points: [[a, b]]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readSamples(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}
