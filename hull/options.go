// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package hull

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Mode selects what Compute builds.
type Mode int

const (
	// Delaunay lifts the sites onto a paraboloid and keeps the lower hull.
	Delaunay Mode = iota
	// ConvexHull keeps the facets of the convex hull of the sites.
	ConvexHull
)

func (m Mode) String() string {
	switch m {
	case Delaunay:
		return "delaunay"
	case ConvexHull:
		return "convex-hull"
	}
	return "unknown"
}

type Options struct {
	Mode   Mode
	Logger *zap.Logger
}

type Option func(*Options) error

func WithMode(m Mode) Option {
	return func(o *Options) error {
		if m != Delaunay && m != ConvexHull {
			return errors.Wrapf(ErrInvalidInput, "WithMode: unknown mode %d", m)
		}
		o.Mode = m
		return nil
	}
}

// WithLogger sets the logger receiving degeneracy warnings.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) error {
		if l == nil {
			return errors.Wrap(ErrInvalidInput, "WithLogger: logger must not be nil")
		}
		o.Logger = l
		return nil
	}
}
