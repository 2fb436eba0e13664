// seehuhn.de/go/conformal - grid images of conformal maps
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package conformal

import "math"

// An Evaluator computes image points of the conformal map.  Implementations
// typically close over precomputed map parameters; the refiner treats them
// as read-only and calls Evaluate with batches of domain points.
//
// A point the map cannot resolve (numerical failure, branch ambiguity, a
// point mapping through infinity) is reported with a NaN or infinite
// component; the refiner records it as undefined and never feeds the value
// into any arithmetic.
type Evaluator interface {
	// Evaluate appends the images of the given domain points to dst and
	// returns the extended slice, one output per input, in order.
	Evaluate(dst, points []complex128) []complex128
}

// EvaluatorFunc adapts a pointwise map to the Evaluator interface.
type EvaluatorFunc func(z complex128) complex128

// Evaluate implements [Evaluator].
func (f EvaluatorFunc) Evaluate(dst, points []complex128) []complex128 {
	for _, z := range points {
		dst = append(dst, f(z))
	}
	return dst
}

// isUndefined reports whether w cannot be used as a finite image point.
func isUndefined(w complex128) bool {
	return math.IsNaN(real(w)) || math.IsNaN(imag(w)) ||
		math.IsInf(real(w), 0) || math.IsInf(imag(w), 0)
}
