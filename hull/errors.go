// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package hull

import "github.com/pkg/errors"

var (
	// ErrInvalidInput reports samples the engine cannot triangulate: too few
	// sites, too many dimensions, non-finite coordinates or sites spanning a
	// lower-dimensional flat.
	ErrInvalidInput = errors.New("hull: invalid input")
	// ErrInconsistentTriangulation reports a violated topology invariant.
	ErrInconsistentTriangulation = errors.New("hull: inconsistent triangulation")
)

// The walker recurses through make-facets and connect; threading errors
// through every frame would obscure it, so invariant failures panic with a
// hullError and Compute recovers them.
type hullError struct {
	err error
}

func fatalf(kind error, format string, args ...interface{}) {
	panic(hullError{errors.Wrapf(kind, format, args...)})
}

func handlePanicRecover(r interface{}) error {
	if r == nil {
		return nil
	}
	if he, ok := r.(hullError); ok {
		return he.err
	}
	panic(r)
}
