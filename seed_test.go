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

import (
	"math"
	"testing"
)

func TestVerticalSeed(t *testing.T) {
	const x = 0.25
	l := NewVerticalLine(x)

	if !l.Vertical || l.Pos != x {
		t.Errorf("got orientation %v at %g, want vertical at %g", l.Vertical, l.Pos, x)
	}
	if len(l.Samples) != seedCount {
		t.Fatalf("got %d samples, want %d", len(l.Samples), seedCount)
	}
	for i, s := range l.Samples {
		if s.State != StatePending {
			t.Errorf("sample %d: state %d, want pending", i, s.State)
		}
		if real(s.Z) != x {
			t.Errorf("sample %d: real part %g, want %g", i, real(s.Z), x)
		}
		want := float64(i) / (seedCount - 1)
		if math.Abs(imag(s.Z)-want) > 1e-12 {
			t.Errorf("sample %d: imag part %g, want %g", i, imag(s.Z), want)
		}
		if i > 0 && imag(s.Z) <= imag(l.Samples[i-1].Z) {
			t.Errorf("sample %d: parametrization not increasing", i)
		}
	}
}

func TestHorizontalSeed(t *testing.T) {
	const y = 0.5
	left, right := complex(-1, 0), complex(1, 0)
	l := NewHorizontalLine(y, -5, 7, left, right)

	if l.Vertical || l.Pos != y {
		t.Errorf("got orientation %v at %g, want horizontal at %g", l.Vertical, l.Pos, y)
	}
	if len(l.Samples) != seedCount+2 {
		t.Fatalf("got %d samples, want %d", len(l.Samples), seedCount+2)
	}

	first := l.Samples[0]
	last := l.Samples[len(l.Samples)-1]
	if first.State != StateImproper || !math.IsInf(real(first.Z), -1) || first.W != left {
		t.Errorf("left endpoint: got state %d, Z %v, W %v", first.State, first.Z, first.W)
	}
	if last.State != StateImproper || !math.IsInf(real(last.Z), +1) || last.W != right {
		t.Errorf("right endpoint: got state %d, Z %v, W %v", last.State, last.Z, last.W)
	}

	interior := l.Samples[1 : len(l.Samples)-1]
	for i, s := range interior {
		if s.State != StatePending {
			t.Errorf("interior sample %d: state %d, want pending", i, s.State)
		}
		if imag(s.Z) != y {
			t.Errorf("interior sample %d: imag part %g, want %g", i, imag(s.Z), y)
		}
	}
	if real(interior[0].Z) != -5 || real(interior[len(interior)-1].Z) != 7 {
		t.Errorf("interior span [%g, %g], want [-5, 7]",
			real(interior[0].Z), real(interior[len(interior)-1].Z))
	}
	for i := 1; i < len(interior); i++ {
		if real(interior[i].Z) <= real(interior[i-1].Z) {
			t.Errorf("interior sample %d: parametrization not increasing", i)
		}
	}
}
