// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package viz

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/pdiddy/paper-digest/pkg/types"
)

const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 6 * vg.Inch
	barWidth    = 24 * vg.Length(1)
)

var barColor = color.RGBA{R: 0x87, G: 0xce, B: 0xeb, A: 0xff}

// BarChart is the data for the figure-count chart.
type BarChart struct {
	Title  string
	XLabel string
	YLabel string
	// Labels holds one paper_id per bar, in record order.
	Labels []string
	// Values holds the figure count per bar.
	Values []int
}

// FigureChart builds one bar per record, in input order.
func FigureChart(records []types.PaperRecord) BarChart {
	c := BarChart{
		Title:  "Number of Figures per Article",
		XLabel: "Paper ID",
		YLabel: "Number of Figures",
		Labels: make([]string, len(records)),
		Values: make([]int, len(records)),
	}
	for i, r := range records {
		c.Labels[i] = r.PaperID
		c.Values[i] = r.FiguresCount
	}
	return c
}

// RenderBarChart draws c as a PNG. Each bar carries its value above it. A
// chart with no bars renders as empty axes.
func RenderBarChart(c BarChart) ([]byte, error) {
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Y.Min = 0

	if len(c.Values) > 0 {
		values := make(plotter.Values, len(c.Values))
		xys := make(plotter.XYs, len(c.Values))
		labels := make([]string, len(c.Values))
		for i, v := range c.Values {
			values[i] = float64(v)
			xys[i] = plotter.XY{X: float64(i), Y: float64(v)}
			labels[i] = strconv.Itoa(v)
		}

		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return nil, fmt.Errorf("building bars: %w", err)
		}
		bars.Color = barColor
		bars.LineStyle.Width = 0

		annotations, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return nil, fmt.Errorf("building bar labels: %w", err)
		}
		for i := range annotations.TextStyle {
			annotations.TextStyle[i].XAlign = draw.XCenter
		}
		annotations.Offset = vg.Point{Y: 3}

		p.Add(bars, annotations)
		p.NominalX(c.Labels...)
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter

		// Headroom for the value labels.
		p.Y.Max = math.Max(1, float64(maxInt(c.Values))*1.15)
	}

	return encodePlot(p, chartWidth, chartHeight)
}

func encodePlot(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func maxInt(vs []int) int {
	m := 0
	for _, v := range vs {
		if v > m {
			m = v
		}
	}
	return m
}
