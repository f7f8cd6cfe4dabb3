// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package viz

import (
	"image/color"

	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// NoLinks fills the link cell of a record without links.
const NoLinks = "No links"

const (
	tableWidth     = 8 * vg.Inch
	tableMinHeight = 2 * vg.Inch
	rowHeight      = 0.4 * vg.Inch
	tableMargin    = 0.5 * vg.Inch
	idColumnShare  = 0.25
	cellPadding    = 6
)

var (
	headerFill = color.RGBA{R: 0x44, G: 0x72, B: 0xc4, A: 0xff}
	gridColor  = color.Gray{Y: 0xbf}
)

// Table is the data for the links table.
type Table struct {
	Title  string
	Header [2]string
	Rows   [][2]string
}

// LinksTable builds the rows [paper_id, first link], then ["", link] for
// each further link. Records without links get one [paper_id, NoLinks] row.
func LinksTable(records []types.PaperRecord) Table {
	t := Table{
		Title:  "Paper Links",
		Header: [2]string{"Paper ID", "Links"},
		Rows:   [][2]string{},
	}
	for _, r := range records {
		if len(r.Links) == 0 {
			t.Rows = append(t.Rows, [2]string{r.PaperID, NoLinks})
			continue
		}
		for i, link := range r.Links {
			id := ""
			if i == 0 {
				id = r.PaperID
			}
			t.Rows = append(t.Rows, [2]string{id, link})
		}
	}
	return t
}

// TableHeight returns the canvas height for a table of n rows.
func TableHeight(n int) vg.Length {
	h := vg.Length(n)*rowHeight + vg.Inch
	if h < tableMinHeight {
		return tableMinHeight
	}
	return h
}

// RenderTable draws t as a PNG with a titled, colored header row.
func RenderTable(t Table) ([]byte, error) {
	height := TableHeight(len(t.Rows))
	img := vgimg.NewWith(vgimg.UseWH(tableWidth, height), vgimg.UseDPI(cloudDPI))
	dc := draw.New(img)

	title := wordStyle(14)
	title.Color = color.Black
	dc.FillText(title, vg.Point{X: tableWidth / 2, Y: height - tableMargin/2}, t.Title)

	left := tableMargin / 2
	right := tableWidth - tableMargin/2
	split := left + (right-left)*idColumnShare
	cellH := rowHeight * 0.75

	top := height - tableMargin
	header := vg.Rectangle{
		Min: vg.Point{X: left, Y: top - cellH},
		Max: vg.Point{X: right, Y: top},
	}
	dc.FillPolygon(headerFill, corners(header))

	headStyle := cellStyle()
	headStyle.Color = color.White
	drawRow(&dc, headStyle, header, split, t.Header)

	body := cellStyle()
	body.Color = color.Black
	line := draw.LineStyle{Color: gridColor, Width: vg.Points(0.5)}
	for i, row := range t.Rows {
		y := top - cellH*vg.Length(i+1)
		r := vg.Rectangle{
			Min: vg.Point{X: left, Y: y - cellH},
			Max: vg.Point{X: right, Y: y},
		}
		drawRow(&dc, body, r, split, row)
		dc.StrokeLine2(line, left, r.Min.Y, right, r.Min.Y)
	}

	bottom := top - cellH*vg.Length(len(t.Rows)+1)
	dc.StrokeLine2(line, split, bottom, split, top)

	return encodeCanvas(img)
}

func cellStyle() text.Style {
	sty := wordStyle(10)
	sty.XAlign = draw.XLeft
	return sty
}

func drawRow(dc *draw.Canvas, sty text.Style, r vg.Rectangle, split vg.Length, cells [2]string) {
	midY := (r.Min.Y + r.Max.Y) / 2
	idWidth := split - r.Min.X - 2*cellPadding
	linkWidth := r.Max.X - split - 2*cellPadding
	dc.FillText(sty, vg.Point{X: r.Min.X + cellPadding, Y: midY}, fit(sty, cells[0], idWidth))
	dc.FillText(sty, vg.Point{X: split + cellPadding, Y: midY}, fit(sty, cells[1], linkWidth))
}

// fit shortens s with a trailing ellipsis until it is at most width wide.
func fit(sty text.Style, s string, width vg.Length) string {
	if sty.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if c := string(runes) + "…"; sty.Width(c) <= width {
			return c
		}
	}
	return ""
}

func corners(r vg.Rectangle) []vg.Point {
	return []vg.Point{
		r.Min,
		{X: r.Max.X, Y: r.Min.Y},
		r.Max,
		{X: r.Min.X, Y: r.Max.Y},
	}
}
