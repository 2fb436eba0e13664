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

// Package conformal plots images of a cartesian reference grid under a
// numerically defined conformal map from the unit strip to a polygon.
// Straight grid lines in the canonical domain become curved arcs in the
// image; samples are inserted adaptively until the resulting polylines
// approximate the true curves at a requested image-space resolution, with
// refinement clipped against a viewing window so that true singularities
// of the map cannot drive it into unbounded work.
package conformal

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"slices"

	"seehuhn.de/go/geom/rect"
)

// ErrInvalidGrid reports a malformed grid specification.  It is the only
// error surfaced before refinement begins; all per-sample conditions are
// absorbed into the shape of the output lines.
var ErrInvalidGrid = errors.New("invalid grid specification")

// A Polygon describes the target polygon of the map.  Only the finite real
// extent of the vertices is used here, for default grid-line placement;
// the vertices and turning angles otherwise pass through unchanged from
// the parameter solver that produced them.
type Polygon struct {
	Vertices []complex128 // infinite values mark unbounded vertices
	Angles   []float64    // exterior turning angles at the vertices
}

// RealExtent returns the smallest interval covering the real parts of the
// finite vertices.  A polygon with no finite vertex yields [-1, 1].
func (p *Polygon) RealExtent() (lo, hi float64) {
	first := true
	for _, v := range p.Vertices {
		if cmplx.IsInf(v) || cmplx.IsNaN(v) {
			continue
		}
		x := real(v)
		if first {
			lo, hi = x, x
			first = false
			continue
		}
		lo = min(lo, x)
		hi = max(hi, x)
	}
	if first {
		return -1, 1
	}
	return lo, hi
}

// A GridSpec selects the grid lines to draw, either by count or by
// explicit coordinate lists.  Non-nil Real/Imag lists take precedence over
// the corresponding counts.
type GridSpec struct {
	// NumReal and NumImag request this many evenly spaced vertical and
	// horizontal lines.  Zero means none; one collapses to the midpoint
	// of the bracketing interval.
	NumReal, NumImag int

	// Real lists explicit real parts for vertical lines; Imag lists
	// explicit imaginary parts for horizontal lines.  Imaginary parts
	// must lie in the canonical strip, i.e. in [0, 1].
	Real, Imag []float64
}

// resolve expands the spec into the concrete coordinate lists, validating
// it against the canonical domain.
func (g GridSpec) resolve(poly *Polygon) (re, im []float64, err error) {
	if g.Real != nil {
		for _, x := range g.Real {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, nil, fmt.Errorf("%w: real part %v", ErrInvalidGrid, x)
			}
		}
		re = slices.Clone(g.Real)
	} else {
		if g.NumReal < 0 {
			return nil, nil, fmt.Errorf("%w: %d vertical lines", ErrInvalidGrid, g.NumReal)
		}
		lo, hi := poly.RealExtent()
		re = spaced(lo, hi, g.NumReal)
	}

	if g.Imag != nil {
		for _, y := range g.Imag {
			if !(y >= 0 && y <= 1) { // also rejects NaN
				return nil, nil, fmt.Errorf("%w: imaginary part %v outside [0,1]", ErrInvalidGrid, y)
			}
		}
		im = slices.Clone(g.Imag)
	} else {
		if g.NumImag < 0 {
			return nil, nil, fmt.Errorf("%w: %d horizontal lines", ErrInvalidGrid, g.NumImag)
		}
		im = spaced(0, 1, g.NumImag)
	}
	return re, im, nil
}

// spaced returns n evenly spaced interior points of (lo, hi).
func spaced(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	for k := range out {
		out[k] = lo + (hi-lo)*float64(k+1)/float64(n+1)
	}
	return out
}

// A Grid holds the finished lines of one plot, and the coordinate lists
// actually used after default-count expansion, for reuse on a second panel.
type Grid struct {
	Vertical   []*Line
	Horizontal []*Line
	Real, Imag []float64
}

// Default rendering options.
const (
	// defaultMinLenFraction and defaultMaxLenFraction are the resolution
	// contract as fractions of the view diagonal.
	defaultMinLenFraction = 0.02
	defaultMaxLenFraction = 0.08

	// defaultMaxIterations bounds the refinement passes per line.
	defaultMaxIterations = 10
)

// A Plotter generates adaptively sampled grids.  Create one with
// [NewPlotter] and reuse it; the refinement buffers are shared across
// calls.  A Plotter is not safe for concurrent use.
type Plotter struct {
	// MinLenFraction and MaxLenFraction give the resolution contract as
	// fractions of the view diagonal.  See [Refiner].
	MinLenFraction float64
	MaxLenFraction float64

	// MaxIterations bounds the refinement passes per line.
	MaxIterations int

	// View is the current viewing window in image space.
	View rect.Rect

	// Ends holds the limiting images of the left and right end of the
	// strip, shared by all horizontal lines.  Leave NaN for maps without
	// finite limits; the improper endpoints are then dropped from the
	// rendered polylines.
	Ends [2]complex128

	// Sink, if non-nil, receives every line after each refinement pass.
	Sink Sink

	refiner Refiner
}

// NewPlotter returns a Plotter for the given viewing window with default
// resolution settings.
func NewPlotter(view rect.Rect) *Plotter {
	nan := complex(math.NaN(), math.NaN())
	return &Plotter{
		MinLenFraction: defaultMinLenFraction,
		MaxLenFraction: defaultMaxLenFraction,
		MaxIterations:  defaultMaxIterations,
		View:           view,
		Ends:           [2]complex128{nan, nan},
	}
}

// Plot seeds and refines the requested grid lines, vertical lines first.
// The spec is validated before any evaluator call; a malformed spec is
// reported as [ErrInvalidGrid].
//
// If the Sink cancels, Plot stops and returns the partial grid together
// with the sink's error, so callers can keep whatever was finished.
func (pl *Plotter) Plot(eval Evaluator, poly *Polygon, spec GridSpec) (*Grid, error) {
	re, im, err := spec.resolve(poly)
	if err != nil {
		return nil, err
	}

	diag := math.Hypot(pl.View.URx-pl.View.LLx, pl.View.URy-pl.View.LLy)
	r := &pl.refiner
	r.MinLen = pl.MinLenFraction * diag
	r.MaxLen = pl.MaxLenFraction * diag
	r.MaxIterations = pl.MaxIterations
	r.View = pl.View
	r.Sink = pl.Sink

	g := &Grid{Real: re, Imag: im}
	for _, x := range re {
		l := NewVerticalLine(x)
		g.Vertical = append(g.Vertical, l)
		if err := r.Refine(l, eval); err != nil {
			return g, err
		}
	}

	lo, hi := poly.RealExtent()
	x1 := min(-5, lo)
	x2 := max(5, hi)
	for _, y := range im {
		l := NewHorizontalLine(y, x1, x2, pl.Ends[0], pl.Ends[1])
		g.Horizontal = append(g.Horizontal, l)
		if err := r.Refine(l, eval); err != nil {
			return g, err
		}
	}
	return g, nil
}
