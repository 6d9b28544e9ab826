// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package barchart renders a series as a log-scale bar chart.
package barchart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/wkun-upenn/ffpa-playground/cmd/nvbwplot/internal/series"
)

// Options control the chart.
type Options struct {
	// Path is the PNG file to write. Its directory is created if
	// needed and an existing file is overwritten.
	Path string

	Title, XLabel, YLabel string

	// Seed seeds the bar colors, so a given series always gets the
	// same colors.
	Seed int64

	// Width and Height are the figure size. DPI is the raster
	// resolution.
	Width, Height vg.Length
	DPI           int
}

// DefaultOptions returns the options for the memory subsystem chart.
func DefaultOptions() Options {
	return Options{
		Path:   filepath.Join("graphs", "memory_subsystems_bar_log.png"),
		Title:  "H100 Memory & Link Throughput (nvbandwidth + SMEM kernel)",
		XLabel: "Subsystem / Path",
		YLabel: "Throughput (GB/s, log scale)",
		Seed:   0,
		Width:  16 * vg.Inch,
		Height: 9 * vg.Inch,
		DPI:    300,
	}
}

const (
	barWidth = 0.8 // in x data units

	minFloor    = 0.1
	minFactor   = 0.5
	maxFactor   = 2.0
	labelFactor = 1.05
)

var errEmpty = errors.New("empty series")

// Limits returns the y axis range for values: half the smallest value,
// but no less than 0.1, up to twice the largest. If no value is above
// that floor, the range spans one decade from it.
func Limits(s series.Series) (min, max float64) {
	lo, hi := s.Bounds()
	min, max = math.Max(lo*minFactor, minFloor), hi*maxFactor
	if max <= min {
		max = min * 10
	}
	return min, max
}

// Draw builds the chart for s. s must not be empty. Values at or below
// the y axis minimum, including zero and negative ones, get neither a
// visible bar nor a value label.
func Draw(s series.Series, opts Options) (*plot.Plot, error) {
	if len(s) == 0 {
		return nil, errEmpty
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	bold(&p.Title.TextStyle, 16)
	bold(&p.X.Label.TextStyle, 15)
	bold(&p.Y.Label.TextStyle, 15)

	// Bars sit at integer x positions 0..n-1, labeled by ticks.
	ticks := make([]plot.Tick, len(s))
	for i, label := range s.Labels() {
		ticks[i] = plot.Tick{Value: float64(i), Label: label}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Tick.Length = 0
	p.X.Tick.Label.Rotation = 15 * math.Pi / 180
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YTop
	bold(&p.X.Tick.Label, 12)

	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Y.Tick.Label.Font.Size = vg.Points(12)

	for _, b := range newBars(s, opts.Seed) {
		p.Add(b)
	}
	// Grid lines go over the bars.
	p.Add(newYGrid())

	labels, err := valueLabels(s)
	if err != nil {
		return nil, err
	}
	if labels != nil {
		p.Add(labels)
	}

	// Set the axis ranges after adding plotters, which widen them
	// to fit their data.
	p.X.Min, p.X.Max = -0.5, float64(len(s))-0.5
	p.Y.Min, p.Y.Max = Limits(s)
	return p, nil
}

// Render draws s and writes it as a PNG to opts.Path.
func Render(s series.Series, opts Options) error {
	p, err := Draw(s, opts)
	if err != nil {
		return err
	}

	c := vgimg.NewWith(vgimg.UseWH(opts.Width, opts.Height), vgimg.UseDPI(opts.DPI))
	p.Draw(draw.New(c))

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0777); err != nil {
		return err
	}
	f, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", opts.Path, err)
	}
	return f.Close()
}

func bold(sty *text.Style, size float64) {
	sty.Font.Size = vg.Points(size)
	sty.Font.Weight = xfont.WeightBold
}

// newBars returns a bar for each point of s, each with its own random
// color drawn from a generator seeded with seed.
func newBars(s series.Series, seed int64) []*bar {
	rng := rand.New(rand.NewSource(seed))
	bars := make([]*bar, len(s))
	for i, pt := range s {
		bars[i] = &bar{x: float64(i), y: pt.Value, color: randomColor(rng)}
	}
	return bars
}

func randomColor(rng *rand.Rand) color.Color {
	c := func() uint8 { return uint8(rng.Float64()*255 + 0.5) }
	return color.NRGBA{R: c(), G: c(), B: c(), A: 255}
}

// valueLabels annotates each bar just above its top with its value,
// written bottom to top. Non-positive values have no place on a log
// axis and are not labeled. valueLabels returns nil if no value is
// labeled.
func valueLabels(s series.Series) (*plotter.Labels, error) {
	var xys plotter.XYs
	var strs []string
	for i, pt := range s {
		if !(pt.Value > 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(i), Y: pt.Value * labelFactor})
		strs = append(strs, fmt.Sprintf("%.1f", pt.Value))
	}
	if len(xys) == 0 {
		return nil, nil
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: strs})
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		sty := &labels.TextStyle[i]
		sty.Rotation = math.Pi / 2
		// Alignment applies before rotation: the text starts at
		// the anchor and is centered across the bar.
		sty.XAlign = text.XLeft
		sty.YAlign = text.YCenter
		bold(sty, 12)
	}
	return labels, nil
}

// A bar is a single filled bar. Bars are drawn up from the bottom of
// the plot area rather than from zero, which a log axis cannot show.
type bar struct {
	x, y  float64
	color color.Color
}

// Plot implements plot.Plotter.
func (b *bar) Plot(c draw.Canvas, p *plot.Plot) {
	if !(b.y > p.Y.Min) {
		// Entirely below the axis, and possibly not on it at all.
		return
	}
	trX, trY := p.Transforms(&c)
	x0 := trX(b.x - barWidth/2)
	x1 := trX(b.x + barWidth/2)
	top := trY(b.y)
	pts := []vg.Point{
		{X: x0, Y: c.Min.Y},
		{X: x0, Y: top},
		{X: x1, Y: top},
		{X: x1, Y: c.Min.Y},
	}
	c.FillPolygon(b.color, c.ClipPolygonXY(pts))
}

// DataRange implements plot.DataRanger.
func (b *bar) DataRange() (xmin, xmax, ymin, ymax float64) {
	return b.x - barWidth/2, b.x + barWidth/2, b.y, b.y
}

// A yGrid draws dashed horizontal lines at every y tick, minor ones
// included. plotter.Grid only draws at major ticks.
type yGrid struct {
	draw.LineStyle
}

func newYGrid() *yGrid {
	return &yGrid{draw.LineStyle{
		Color:  color.NRGBA{A: 102},
		Width:  vg.Points(0.5),
		Dashes: []vg.Length{vg.Points(4), vg.Points(2)},
	}}
}

// values returns the y values of the grid lines of p.
func (g *yGrid) values(p *plot.Plot) []float64 {
	var vs []float64
	for _, tk := range p.Y.Tick.Marker.Ticks(p.Y.Min, p.Y.Max) {
		if tk.Value < p.Y.Min || tk.Value > p.Y.Max {
			continue
		}
		// LogTicks repeats each labeled decade as a minor tick.
		if n := len(vs); n > 0 && vs[n-1] == tk.Value {
			continue
		}
		vs = append(vs, tk.Value)
	}
	return vs
}

// Plot implements plot.Plotter.
func (g *yGrid) Plot(c draw.Canvas, p *plot.Plot) {
	_, trY := p.Transforms(&c)
	for _, v := range g.values(p) {
		y := trY(v)
		c.StrokeLine2(g.LineStyle, c.Min.X, y, c.Max.X, y)
	}
}
