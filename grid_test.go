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
	"errors"
	"fmt"
	"math"
	"testing"

	"seehuhn.de/go/conformal/testmaps"
)

var testPoly = &Polygon{
	Vertices: []complex128{-1 - 1i, 1 - 1i, 1 + 1i, -1 + 1i},
	Angles:   []float64{0.5, 0.5, 0.5, 0.5},
}

func TestGridSpecDefaults(t *testing.T) {
	type testCase struct {
		spec GridSpec
		re   []float64
		im   []float64
	}
	cases := []testCase{
		{
			spec: GridSpec{NumReal: 1, NumImag: 1},
			re:   []float64{0},
			im:   []float64{0.5},
		},
		{
			spec: GridSpec{NumReal: 3, NumImag: 3},
			re:   []float64{-0.5, 0, 0.5},
			im:   []float64{0.25, 0.5, 0.75},
		},
		{
			spec: GridSpec{},
			re:   []float64{},
			im:   []float64{},
		},
		{
			spec: GridSpec{Real: []float64{-7, 2}, Imag: []float64{0, 1}},
			re:   []float64{-7, 2},
			im:   []float64{0, 1},
		},
	}
	for i, c := range cases {
		re, im, err := c.spec.resolve(testPoly)
		if err != nil {
			t.Errorf("case %d: unexpected error %v", i, err)
			continue
		}
		if !almostEqualSlices(re, c.re) {
			t.Errorf("case %d: real coordinates %v, want %v", i, re, c.re)
		}
		if !almostEqualSlices(im, c.im) {
			t.Errorf("case %d: imaginary coordinates %v, want %v", i, im, c.im)
		}
	}
}

func almostEqualSlices(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-12 {
			return false
		}
	}
	return true
}

// failingEvaluator fails the test if it is ever called.
type failingEvaluator struct {
	t *testing.T
}

func (f failingEvaluator) Evaluate(dst, points []complex128) []complex128 {
	f.t.Error("evaluator called for an invalid grid specification")
	for range points {
		dst = append(dst, 0)
	}
	return dst
}

func TestInvalidGridSpec(t *testing.T) {
	specs := []GridSpec{
		{NumReal: -1},
		{NumImag: -3},
		{Imag: []float64{0.5, 1.5}},
		{Imag: []float64{-0.1}},
		{Real: []float64{math.NaN()}},
		{Real: []float64{math.Inf(1)}},
	}
	pl := NewPlotter(testView)
	for i, spec := range specs {
		g, err := pl.Plot(failingEvaluator{t}, testPoly, spec)
		if !errors.Is(err, ErrInvalidGrid) {
			t.Errorf("spec %d: error %v, want ErrInvalidGrid", i, err)
		}
		if g != nil {
			t.Errorf("spec %d: got a grid despite invalid spec", i)
		}
	}
}

// orderSink records the identity and orientation of every line it sees.
type orderSink struct {
	seen   []*Line
	failAt int // cancel when this many final updates were delivered, -1 for never
	finals int
}

func (s *orderSink) Update(line *Line, final bool) error {
	if !final {
		return nil
	}
	s.seen = append(s.seen, line)
	s.finals++
	if s.failAt >= 0 && s.finals >= s.failAt {
		return fmt.Errorf("stop after %d lines", s.failAt)
	}
	return nil
}

func TestPlotOrder(t *testing.T) {
	tc := testmaps.All["identity"]
	sink := &orderSink{failAt: -1}
	pl := NewPlotter(tc.View)
	pl.Sink = sink

	g, err := pl.Plot(EvaluatorFunc(tc.F), testPoly, GridSpec{NumReal: 3, NumImag: 2})
	if err != nil {
		t.Fatal(err)
	}

	if len(g.Vertical) != 3 || len(g.Horizontal) != 2 {
		t.Fatalf("got %d vertical and %d horizontal lines, want 3 and 2",
			len(g.Vertical), len(g.Horizontal))
	}
	if len(sink.seen) != 5 {
		t.Fatalf("sink saw %d finished lines, want 5", len(sink.seen))
	}
	for i, l := range sink.seen {
		wantVertical := i < 3
		if l.Vertical != wantVertical {
			t.Errorf("line %d: vertical=%v, want %v", i, l.Vertical, wantVertical)
		}
	}
	for i, l := range g.Vertical {
		if l != sink.seen[i] {
			t.Errorf("vertical line %d missing from sink updates", i)
		}
	}
}

func TestPlotCancellation(t *testing.T) {
	tc := testmaps.All["identity"]
	sink := &orderSink{failAt: 2}
	pl := NewPlotter(tc.View)
	pl.Sink = sink

	g, err := pl.Plot(EvaluatorFunc(tc.F), testPoly, GridSpec{NumReal: 4, NumImag: 2})
	if err == nil {
		t.Fatal("expected the sink's error")
	}
	if g == nil {
		t.Fatal("cancellation must return the partial grid")
	}
	if len(g.Vertical) != 2 {
		t.Errorf("got %d vertical lines, want 2", len(g.Vertical))
	}
	if len(g.Horizontal) != 0 {
		t.Errorf("got %d horizontal lines, want none", len(g.Horizontal))
	}
	// the finished first line is intact and usable
	for i, s := range g.Vertical[0].Samples {
		if s.State != StateResolved {
			t.Errorf("sample %d of finished line: state %d, want resolved", i, s.State)
		}
	}
}

func TestPlotHalfPlane(t *testing.T) {
	tc := testmaps.All["halfplane"]
	poly := &Polygon{Vertices: tc.Vertices, Angles: tc.Angles}

	pl := NewPlotter(tc.View)
	pl.Ends = tc.Ends
	g, err := pl.Plot(EvaluatorFunc(tc.F), poly, GridSpec{NumReal: 5, NumImag: 5})
	if err != nil {
		t.Fatal(err)
	}

	// tanh(πz/2) maps the strip onto the upper half-plane, so no
	// resolved image may dip below the real axis
	for _, l := range g.Vertical {
		for i, s := range l.Samples {
			if s.State != StateResolved {
				continue
			}
			if imag(s.W) < -1e-9 {
				t.Errorf("vertical line at %g, sample %d: w = %v below the real axis",
					l.Pos, i, s.W)
			}
		}
	}

	// horizontal lines carry the strip ends as improper samples
	for _, l := range g.Horizontal {
		n := len(l.Samples)
		first, last := l.Samples[0], l.Samples[n-1]
		if first.State != StateImproper || first.W != tc.Ends[0] {
			t.Errorf("line at %g: left end state %d image %v", l.Pos, first.State, first.W)
		}
		if last.State != StateImproper || last.W != tc.Ends[1] {
			t.Errorf("line at %g: right end state %d image %v", l.Pos, last.State, last.W)
		}
	}
}

func BenchmarkPlot(b *testing.B) {
	for name, tc := range testmaps.All {
		b.Run(name, func(b *testing.B) {
			poly := &Polygon{Vertices: tc.Vertices, Angles: tc.Angles}
			if poly.Vertices == nil {
				poly = testPoly
			}
			pl := NewPlotter(tc.View)
			pl.Ends = tc.Ends
			eval := EvaluatorFunc(tc.F)
			spec := GridSpec{NumReal: 9, NumImag: 9}
			for b.Loop() {
				_, err := pl.Plot(eval, poly, spec)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
