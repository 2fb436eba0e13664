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

// Package testmaps provides named conformal maps together with the polygon
// data and viewing windows used when plotting them.  The fixtures are
// shared by the unit tests and benchmarks of the other packages.
package testmaps

import (
	"math"
	"math/cmplx"

	"seehuhn.de/go/geom/rect"
)

// A Case bundles a pointwise conformal map with its plotting data.  The
// types are kept plain so that this package does not depend on any of the
// packages it serves.
type Case struct {
	Name string

	// F evaluates the map at one domain point.
	F func(z complex128) complex128

	// Vertices and Angles describe the target polygon.
	Vertices []complex128
	Angles   []float64

	// View is the image-space viewing window.
	View rect.Rect

	// Ends holds the limiting images of the two strip ends, NaN when the
	// map has no finite limit there.
	Ends [2]complex128
}

var noEnd = complex(math.NaN(), math.NaN())

// All contains all fixtures, keyed by name.
var All = map[string]Case{
	"identity": {
		Name:     "identity",
		F:        func(z complex128) complex128 { return z },
		Vertices: []complex128{-1, 1, 1 + 1i, -1 + 1i},
		Angles:   []float64{0.5, 0.5, 0.5, 0.5},
		View:     rect.Rect{LLx: -10, LLy: -10, URx: 10, URy: 10},
		Ends:     [2]complex128{noEnd, noEnd},
	},

	// The reciprocal map has a pole at the origin; lines passing nearby
	// exercise refinement around high curvature and view clipping.
	"reciprocal": {
		Name:     "reciprocal",
		F:        func(z complex128) complex128 { return 1 / z },
		Vertices: []complex128{-1, 1, 1 + 1i, -1 + 1i},
		Angles:   []float64{0.5, 0.5, 0.5, 0.5},
		View:     rect.Rect{LLx: -10, LLy: -10, URx: 10, URy: 10},
		Ends:     [2]complex128{noEnd, noEnd},
	},

	// tanh(πz/2) maps the unit strip onto the upper half-plane, sending
	// the strip ends to -1 and +1.  Both improper endpoints have finite
	// images, so horizontal lines render end to end.
	"halfplane": {
		Name: "halfplane",
		F: func(z complex128) complex128 {
			return cmplx.Tanh(z * complex(math.Pi/2, 0))
		},
		Vertices: []complex128{-1, 1, cmplx.Inf()},
		Angles:   []float64{0.5, 0.5, 1},
		View:     rect.Rect{LLx: -3, LLy: -1, URx: 3, URy: 3},
		Ends:     [2]complex128{-1, 1},
	},
}
