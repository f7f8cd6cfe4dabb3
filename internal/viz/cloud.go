// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package viz

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Cloud canvas: 800x400 px at 100 dpi.
const (
	cloudWidth  = 8 * vg.Inch
	cloudHeight = 4 * vg.Inch
	cloudDPI    = 100

	minFontSize = 10
	maxFontSize = 60
	fontStep    = 2

	// relativeScaling mixes frequency (1) and rank (0) when sizing words.
	relativeScaling = 0.5

	titleBand  = 24
	spiralStep = 0.1
	spiralGrow = 1.5
	maxSpiral  = 4000
)

// viridis is a sampled viridis colormap, dark to light.
var viridis = []color.RGBA{
	{R: 0x44, G: 0x01, B: 0x54, A: 0xff},
	{R: 0x48, G: 0x28, B: 0x78, A: 0xff},
	{R: 0x3e, G: 0x4a, B: 0x89, A: 0xff},
	{R: 0x31, G: 0x68, B: 0x8e, A: 0xff},
	{R: 0x26, G: 0x82, B: 0x8e, A: 0xff},
	{R: 0x1f, G: 0x9e, B: 0x89, A: 0xff},
	{R: 0x35, G: 0xb7, B: 0x79, A: 0xff},
	{R: 0x6d, G: 0xcd, B: 0x59, A: 0xff},
	{R: 0xb4, G: 0xde, B: 0x2c, A: 0xff},
	{R: 0xfd, G: 0xe7, B: 0x25, A: 0xff},
}

// Placement is a word positioned on the cloud canvas. Center is in canvas
// points with the origin at the bottom left.
type Placement struct {
	Term   Term
	Size   vg.Length
	Center vg.Point
	Box    vg.Rectangle
	Color  color.Color
}

func wordStyle(size vg.Length) text.Style {
	return text.Style{
		Font:    font.Font{Typeface: "Liberation", Variant: "Sans", Size: size},
		Handler: plot.DefaultTextHandler,
		XAlign:  draw.XCenter,
		YAlign:  draw.YCenter,
	}
}

// fontSize scales a term between minFontSize and maxFontSize from its
// frequency relative to the top term and its rank.
func fontSize(t Term, rank, n, top int) vg.Length {
	freq := float64(t.Count) / float64(top)
	byRank := 1.0
	if n > 1 {
		byRank = 1 - float64(rank)/float64(n-1)
	}
	w := relativeScaling*freq + (1-relativeScaling)*byRank
	return vg.Length(minFontSize + (maxFontSize-minFontSize)*w)
}

// Layout places terms along an Archimedean spiral from the canvas center,
// largest first, so that no two boxes overlap and every box lies inside
// area. A term that does not fit is retried at smaller sizes down to
// minFontSize and dropped if it still does not fit.
func Layout(terms []Term, area vg.Rectangle) []Placement {
	if len(terms) == 0 {
		return nil
	}
	top := terms[0].Count
	center := vg.Point{
		X: (area.Min.X + area.Max.X) / 2,
		Y: (area.Min.Y + area.Max.Y) / 2,
	}

	var placed []Placement
	for rank, t := range terms {
		for size := fontSize(t, rank, len(terms), top); size >= minFontSize; size -= fontStep {
			sty := wordStyle(size)
			w, h := sty.Width(t.Text), sty.Height(t.Text)
			pt, ok := findSpot(center, w, h, area, placed)
			if !ok {
				continue
			}
			placed = append(placed, Placement{
				Term:   t,
				Size:   size,
				Center: pt,
				Box:    box(pt, w, h),
				Color:  viridis[(rank*3)%len(viridis)],
			})
			break
		}
	}
	return placed
}

func findSpot(center vg.Point, w, h vg.Length, area vg.Rectangle, placed []Placement) (vg.Point, bool) {
	for i := 0; i < maxSpiral; i++ {
		theta := float64(i) * spiralStep
		r := spiralGrow * theta
		pt := vg.Point{
			X: center.X + vg.Length(r*math.Cos(theta)),
			Y: center.Y + vg.Length(r*math.Sin(theta)),
		}
		b := box(pt, w, h)
		if !inside(b, area) {
			continue
		}
		if !collides(b, placed) {
			return pt, true
		}
	}
	return vg.Point{}, false
}

func box(c vg.Point, w, h vg.Length) vg.Rectangle {
	return vg.Rectangle{
		Min: vg.Point{X: c.X - w/2, Y: c.Y - h/2},
		Max: vg.Point{X: c.X + w/2, Y: c.Y + h/2},
	}
}

func inside(b, area vg.Rectangle) bool {
	return b.Min.X >= area.Min.X && b.Min.Y >= area.Min.Y &&
		b.Max.X <= area.Max.X && b.Max.Y <= area.Max.Y
}

func overlaps(a, b vg.Rectangle) bool {
	return a.Min.X < b.Max.X && b.Min.X < a.Max.X &&
		a.Min.Y < b.Max.Y && b.Min.Y < a.Max.Y
}

func collides(b vg.Rectangle, placed []Placement) bool {
	for _, p := range placed {
		if overlaps(b, p.Box) {
			return true
		}
	}
	return false
}

// RenderCloud lays out c's terms on a white canvas under a paper_id caption
// and encodes it as PNG.
func RenderCloud(c Cloud) ([]byte, error) {
	img := vgimg.NewWith(vgimg.UseWH(cloudWidth, cloudHeight), vgimg.UseDPI(cloudDPI))
	dc := draw.New(img)

	caption := wordStyle(14)
	caption.Color = color.Black
	dc.FillText(caption, vg.Point{X: cloudWidth / 2, Y: cloudHeight - titleBand/2}, c.PaperID)

	area := vg.Rectangle{Max: vg.Point{X: cloudWidth, Y: cloudHeight - titleBand}}
	for _, p := range Layout(c.Terms, area) {
		sty := wordStyle(p.Size)
		sty.Color = p.Color
		dc.FillText(sty, p.Center, p.Term.Text)
	}

	return encodeCanvas(img)
}

func encodeCanvas(img *vgimg.Canvas) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}
