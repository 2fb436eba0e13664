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

// seedCount is the number of evenly spaced samples a line starts with.
const seedCount = 15

// NewVerticalLine returns the initial parametrization of the vertical grid
// line at real part x, spanning the canonical strip from x to x+i.
// All samples are pending.
func NewVerticalLine(x float64) *Line {
	l := &Line{
		Samples:  make([]Sample, seedCount),
		Vertical: true,
		Pos:      x,
	}
	for i := range l.Samples {
		t := float64(i) / (seedCount - 1)
		l.Samples[i].Z = complex(x, t)
	}
	return l
}

// NewHorizontalLine returns the initial parametrization of the horizontal
// grid line at imaginary part y.  The line conceptually runs from -∞ to +∞;
// the two improper endpoints carry the caller-supplied limiting images left
// and right, and the finite part is seeded with evenly spaced samples on
// [x1, x2].  The improper endpoints are never evaluated or refined.
func NewHorizontalLine(y, x1, x2 float64, left, right complex128) *Line {
	l := &Line{
		Samples: make([]Sample, seedCount+2),
		Pos:     y,
	}
	l.Samples[0] = Sample{
		Z:     complex(math.Inf(-1), y),
		W:     left,
		State: StateImproper,
	}
	for i := range seedCount {
		x := x1 + (x2-x1)*float64(i)/(seedCount-1)
		l.Samples[i+1].Z = complex(x, y)
	}
	l.Samples[seedCount+1] = Sample{
		Z:     complex(math.Inf(+1), y),
		W:     right,
		State: StateImproper,
	}
	return l
}
