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

// A Sink consumes grid lines as they are refined.  Update is called after
// every refinement pass with the line's current samples, and a last time
// with the final set.  The line may be shown incrementally via
// [Line.DomainPath] and [Line.ImagePath]; the sample slice is mutated
// between calls, so sinks must copy anything they keep.
//
// Returning a non-nil error abandons the current line and all lines not
// yet started; partial results remain valid.  This is the cancellation
// hook for interactive use and is not treated as a refinement failure.
type Sink interface {
	Update(line *Line, final bool) error
}
