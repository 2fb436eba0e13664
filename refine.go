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
	"slices"

	"seehuhn.de/go/geom/rect"
)

// A Refiner inserts samples into a grid line until the image polyline meets
// the resolution contract or the iteration budget runs out.  Create one
// instance and reuse it for multiple lines.  Internal buffers grow as
// needed but never shrink.
//
// A Refiner is not safe for concurrent use, but distinct Refiners may
// process distinct lines in parallel against the same Evaluator.
type Refiner struct {
	// MaxLen is the maximum acceptable image-space segment length, in
	// absolute units.  Segments longer than that are bisected.
	// Must be positive.
	MaxLen float64

	// MinLen stops insertion into segments that are already fine.
	// Segments at or below this length are never bisected, independent of
	// MaxLen.  Must be non-negative.
	MinLen float64

	// MaxIterations bounds the number of refinement passes.  Reaching the
	// budget is not an error; the line is returned as-is with any
	// over-long segments left in place.
	MaxIterations int

	// View is the current viewing window in image space.  Segments with
	// an endpoint outside the view always satisfy the resolution
	// contract, so refinement never chases singularities that are
	// invisible or outside the window.  Must be a non-empty rectangle.
	View rect.Rect

	// Sink, if non-nil, receives the line after every refinement pass.
	// A non-nil error return abandons the refinement.
	Sink Sink

	// Buffers reused across calls.
	pending    []complex128
	pendingIdx []int
	images     []complex128
	splits     []int
}

// Refine drives the line from its seeded state to its resolved state: each
// pass evaluates all pending samples in one batch and bisects every
// measured segment whose clipped image length exceeds MaxLen.  Refine
// returns once a pass inserts nothing, or after MaxIterations passes.
//
// On return the line contains no pending samples.  The only possible error
// is one returned by the Sink, in which case the line is left in its
// current partially refined state.
func (r *Refiner) Refine(line *Line, eval Evaluator) error {
	for iter := 0; ; iter++ {
		r.resolve(line, eval)

		final := iter >= r.MaxIterations || !r.bisect(line)
		if r.Sink != nil {
			if err := r.Sink.Update(line, final); err != nil {
				return err
			}
		}
		if final {
			return nil
		}
	}
}

// resolve evaluates all pending samples of the line in a single batch.
func (r *Refiner) resolve(line *Line, eval Evaluator) {
	r.pending = r.pending[:0]
	r.pendingIdx = r.pendingIdx[:0]
	for i := range line.Samples {
		if line.Samples[i].State == StatePending {
			r.pending = append(r.pending, line.Samples[i].Z)
			r.pendingIdx = append(r.pendingIdx, i)
		}
	}
	if len(r.pending) == 0 {
		return
	}

	r.images = eval.Evaluate(r.images[:0], r.pending)

	for k, i := range r.pendingIdx {
		s := &line.Samples[i]
		if w := r.images[k]; isUndefined(w) {
			s.State = StateUndefined
		} else {
			s.W = w
			s.State = StateResolved
		}
	}
}

// bisect inserts a pending midpoint sample into every segment that fails
// the resolution contract and reports whether anything was inserted.
// Segments touching an undefined or improper sample are never measured:
// the map has either declared failure there or the neighbour is a point at
// infinity, and in both cases the adjacent resolved sample stands as the
// curve's terminus.
func (r *Refiner) bisect(line *Line) bool {
	r.splits = r.splits[:0]
	samples := line.Samples
	for i := 0; i+1 < len(samples); i++ {
		a, b := &samples[i], &samples[i+1]
		if a.State != StateResolved || b.State != StateResolved {
			continue
		}
		if !r.contains(a.W) || !r.contains(b.W) {
			// clipped: anything leaving the window passes
			continue
		}
		d := math.Hypot(real(b.W)-real(a.W), imag(b.W)-imag(a.W))
		if d <= r.MaxLen || d <= r.MinLen {
			continue
		}
		r.splits = append(r.splits, i)
	}
	if len(r.splits) == 0 {
		return false
	}

	// Splice back to front so earlier indices stay valid.
	samples = slices.Grow(samples, len(r.splits))
	for k := len(r.splits) - 1; k >= 0; k-- {
		i := r.splits[k]
		mid := (samples[i].Z + samples[i+1].Z) / 2
		samples = slices.Insert(samples, i+1, Sample{Z: mid})
	}
	line.Samples = samples
	return true
}

// contains reports whether the image point w lies inside the view window.
func (r *Refiner) contains(w complex128) bool {
	return real(w) >= r.View.LLx && real(w) <= r.View.URx &&
		imag(w) >= r.View.LLy && imag(w) <= r.View.URy
}
