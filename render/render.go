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

// Package render draws plotted grids into images.  The output is a
// two-panel picture: the canonical domain with its straight grid on the
// left, and the physical domain with the curved image grid and the target
// polygon on the right.  The polygon is painted by wrapping rasterx; the
// grid curves use the scanline stroke rasterizer from conformal/raster.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math/cmplx"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/conformal"
	"seehuhn.de/go/conformal/raster"
)

// Options configures the rendered image.  The zero value selects defaults.
type Options struct {
	// Width and Height are the pixel dimensions of one panel; the image
	// is twice as wide.  Defaults are 420×420.
	Width, Height int

	// LineWidth is the grid stroke width in device pixels. Default 1.
	LineWidth float64

	// Grid, Outline, Fill and Background select the colors for the grid
	// curves, the polygon outline, the polygon interior and the page.
	Grid, Outline, Fill, Background color.Color
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 420
	}
	if o.Height <= 0 {
		o.Height = 420
	}
	if o.LineWidth <= 0 {
		o.LineWidth = 1
	}
	if o.Grid == nil {
		o.Grid = color.RGBA{R: 0x20, G: 0x20, B: 0x80, A: 0xff}
	}
	if o.Outline == nil {
		o.Outline = color.RGBA{A: 0xff}
	}
	if o.Fill == nil {
		o.Fill = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	}
	if o.Background == nil {
		o.Background = color.White
	}
	return o
}

// Image renders the grid and polygon into a new two-panel RGBA image.
// view is the physical viewing window the grid was refined against; the
// canonical panel is framed by the same bracketing rule the planner uses
// for horizontal lines, so every seeded sample is visible.
func Image(g *conformal.Grid, poly *conformal.Polygon, view rect.Rect, opt Options) *image.RGBA {
	opt = opt.withDefaults()
	w, h := opt.Width, opt.Height

	img := image.NewRGBA(image.Rect(0, 0, 2*w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(opt.Background), image.Point{}, draw.Src)

	lo, hi := poly.RealExtent()
	domain := rect.Rect{LLx: min(-5, lo), LLy: 0, URx: max(5, hi), URy: 1}
	left := fitMatrix(domain, 0, w, h)
	right := fitMatrix(view, w, w, h)

	drawPolygon(img, poly, right, opt)

	rast := raster.New(rect.Rect{URx: float64(w), URy: float64(h)})
	rast.Width = opt.LineWidth
	rast.Cap = graphics.LineCapRound
	rast.Join = graphics.LineJoinRound
	grid := color.RGBAModel.Convert(opt.Grid).(color.RGBA)
	emit := func(y, xMin int, cov []float32) {
		blendRow(img, y, xMin, cov, grid)
	}

	for _, lines := range [][]*conformal.Line{g.Vertical, g.Horizontal} {
		for _, l := range lines {
			rast.Clip = rect.Rect{URx: float64(w), URy: float64(h)}
			rast.CTM = left
			rast.Stroke(l.DomainPath(), emit)

			rast.Clip = rect.Rect{LLx: float64(w), URx: float64(2 * w), URy: float64(h)}
			rast.CTM = right
			rast.Stroke(l.ImagePath(), emit)
		}
	}
	return img
}

// fitMatrix maps the rectangle src onto the panel starting at device
// x-offset xoff, flipping the y axis so that larger imaginary parts are
// higher up in the image.
func fitMatrix(src rect.Rect, xoff, w, h int) matrix.Matrix {
	sx := float64(w) / (src.URx - src.LLx)
	sy := float64(h) / (src.URy - src.LLy)
	return matrix.Matrix{
		sx, 0,
		0, -sy,
		float64(xoff) - src.LLx*sx,
		src.LLy*sy + float64(h),
	}
}

// drawPolygon paints the target polygon into the physical panel.  The
// interior is only filled when all vertices are finite; unbounded edges
// are left open and only the finite vertex runs are outlined.
func drawPolygon(img *image.RGBA, poly *conformal.Polygon, m matrix.Matrix, opt Options) {
	verts := poly.Vertices
	if len(verts) == 0 {
		return
	}
	finite := make([]bool, len(verts))
	allFinite := true
	for i, v := range verts {
		finite[i] = !isInfVertex(v)
		allFinite = allFinite && finite[i]
	}

	b := img.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), img, b)

	dev := func(v complex128) fixed.Point26_6 {
		x := m[0]*real(v) + m[2]*imag(v) + m[4]
		y := m[1]*real(v) + m[3]*imag(v) + m[5]
		return fixed.Point26_6{
			X: fixed.Int26_6(x * 64),
			Y: fixed.Int26_6(y * 64),
		}
	}

	if allFinite && len(verts) >= 3 {
		filler := rasterx.NewFiller(b.Dx(), b.Dy(), scanner)
		scanner.SetColor(opt.Fill)
		filler.Start(dev(verts[0]))
		for _, v := range verts[1:] {
			filler.Line(dev(v))
		}
		filler.Stop(true)
		filler.Draw()
		filler.Clear()
	}

	dasher := rasterx.NewDasher(b.Dx(), b.Dy(), scanner)
	dasher.SetStroke(fixed.Int26_6(opt.LineWidth*64), fixed.Int26_6(4*64),
		rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap,
		rasterx.Round, nil, 0)
	scanner.SetColor(opt.Outline)

	if allFinite {
		dasher.Start(dev(verts[0]))
		for _, v := range verts[1:] {
			dasher.Line(dev(v))
		}
		dasher.Stop(true)
	} else {
		// stroke each maximal run of finite vertices, cyclically
		start := 0
		for i, ok := range finite {
			if !ok {
				start = i
				break
			}
		}
		n := len(verts)
		var run []complex128
		flush := func() {
			if len(run) >= 2 {
				dasher.Start(dev(run[0]))
				for _, v := range run[1:] {
					dasher.Line(dev(v))
				}
				dasher.Stop(false)
			}
			run = run[:0]
		}
		for k := 1; k <= n; k++ {
			i := (start + k) % n
			if finite[i] {
				run = append(run, verts[i])
			} else {
				flush()
			}
		}
		flush()
	}
	dasher.Draw()
	dasher.Clear()
}

func isInfVertex(v complex128) bool {
	return cmplx.IsInf(v) || cmplx.IsNaN(v)
}

// blendRow composites one coverage row over the image with the grid color.
func blendRow(img *image.RGBA, y, xMin int, cov []float32, c color.RGBA) {
	for i, a := range cov {
		if a <= 0 {
			continue
		}
		if a > 1 {
			a = 1
		}
		o := img.PixOffset(xMin+i, y)
		p := img.Pix[o : o+4 : o+4]
		p[0] = uint8(float32(c.R)*a + float32(p[0])*(1-a))
		p[1] = uint8(float32(c.G)*a + float32(p[1])*(1-a))
		p[2] = uint8(float32(c.B)*a + float32(p[2])*(1-a))
		p[3] = uint8(float32(c.A)*a + float32(p[3])*(1-a))
	}
}
