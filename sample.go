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
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// SampleState describes how far a sample has progressed through evaluation.
type SampleState uint8

const (
	// StatePending marks a sample whose image has not been computed yet.
	StatePending SampleState = iota

	// StateResolved marks a sample with a finite image value.
	StateResolved

	// StateUndefined marks a sample the map evaluator could not resolve.
	StateUndefined

	// StateImproper marks a line endpoint at infinity in the domain.  The
	// image value is supplied by the caller and is never recomputed.
	StateImproper
)

// A Sample pairs a domain point with its image under the map.
// W is only meaningful in states StateResolved and StateImproper.
type Sample struct {
	Z     complex128 // domain point
	W     complex128 // image point
	State SampleState
}

// A Line is one grid line together with its samples, ordered by position
// along the line.  Samples are inserted during refinement but never removed
// or reordered; once a sample is resolved its image value is final.
type Line struct {
	Samples []Sample

	// Vertical reports the orientation: true for a vertical line (fixed
	// real part), false for a horizontal line (fixed imaginary part).
	Vertical bool

	// Pos is the fixed coordinate identifying the line.
	Pos float64
}

// ImagePath returns the image-space polyline for the line.  The polyline
// breaks at undefined samples, so a line with evaluation gaps becomes
// several subpaths.  Improper endpoints contribute their limiting image
// value when it is finite and are skipped otherwise.
func (l *Line) ImagePath() *path.Data {
	p := &path.Data{}
	pen := false
	for i := range l.Samples {
		s := &l.Samples[i]
		drawable := s.State == StateResolved ||
			s.State == StateImproper && !isUndefined(s.W)
		if !drawable {
			pen = false
			continue
		}
		v := vec.Vec2{X: real(s.W), Y: imag(s.W)}
		if pen {
			p.LineTo(v)
		} else {
			p.MoveTo(v)
			pen = true
		}
	}
	return p
}

// DomainPath returns the domain-space polyline for the line, mirroring the
// gaps of ImagePath so that both views show the same sample set.  Improper
// endpoints have no finite domain point and are always skipped.
func (l *Line) DomainPath() *path.Data {
	p := &path.Data{}
	pen := false
	for i := range l.Samples {
		s := &l.Samples[i]
		if s.State != StateResolved {
			pen = false
			continue
		}
		v := vec.Vec2{X: real(s.Z), Y: imag(s.Z)}
		if pen {
			p.LineTo(v)
		} else {
			p.MoveTo(v)
			pen = true
		}
	}
	return p
}
