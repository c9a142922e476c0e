// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package main

import (
	"io"

	"github.com/2dChan/ndhull/utils"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// inputFile is the YAML (or JSON) input document. Points lists one
// coordinate row per point; Samples lists one row per dimension.
type inputFile struct {
	Points  [][]float64 `yaml:"points"`
	Samples [][]float64 `yaml:"samples"`
}

func readSamples(r io.Reader) ([][]float64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading input")
	}
	var in inputFile
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, errors.Wrap(err, "parsing input")
	}

	switch {
	case len(in.Points) > 0 && len(in.Samples) > 0:
		return nil, errors.New("input has both points and samples")
	case len(in.Samples) > 0:
		return in.Samples, nil
	case len(in.Points) > 0:
		dim := len(in.Points[0])
		for i, p := range in.Points {
			if len(p) != dim {
				return nil, errors.Errorf("point %d has %d coordinates, want %d", i, len(p), dim)
			}
		}
		return utils.Transpose(in.Points), nil
	}
	return nil, errors.New("input has no points")
}
