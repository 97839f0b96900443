// Package chart draws the dashboard's bar charts with gonum/plot.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/medcombo/internal/combo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no data to chart")

// Format is an image encoding.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".svg":
		return SVG, nil
	}
	return "", fmt.Errorf("unsupported chart extension %q (use .png or .svg)", filepath.Ext(path))
}

// Fixed palette; outcome colors are stable across charts.
var (
	usageColor = color.RGBA{R: 0x4c, G: 0x72, B: 0xb0, A: 0xff}
	upColor    = color.RGBA{R: 0xdd, G: 0x84, B: 0x52, A: 0xff}
	downColor  = color.RGBA{R: 0xc4, G: 0x4e, B: 0x52, A: 0xff}
	noColor    = color.RGBA{R: 0x55, G: 0xa8, B: 0x68, A: 0xff}
)

const barWidth = 18

// Usage draws the value counts of one column as a bar chart.
func Usage(u *combo.UsageDistribution) (*plot.Plot, error) {
	if len(u.Values) == 0 {
		return nil, fmt.Errorf("usage of %s: %w", u.Column, ErrNoData)
	}
	vals := make(plotter.Values, len(u.Values))
	names := make([]string, len(u.Values))
	for i, v := range u.Values {
		vals[i] = float64(v.Count)
		names[i] = v.Value
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s usage", u.Column)
	p.Y.Label.Text = "Encounters"
	p.Y.Min = 0

	bars, err := plotter.NewBarChart(vals, vg.Points(barWidth))
	if err != nil {
		return nil, fmt.Errorf("usage bars: %w", err)
	}
	bars.Color = usageColor
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)
	return p, nil
}

// Outcomes draws one stacked bar per combination, split by readmission percentage.
func Outcomes(agg *combo.Aggregation) (*plot.Plot, error) {
	rows := agg.Rows()
	if len(rows) == 0 {
		return nil, fmt.Errorf("outcomes of %s x %s: %w", agg.Col1, agg.Col2, ErrNoData)
	}
	up := make(plotter.Values, len(rows))
	down := make(plotter.Values, len(rows))
	no := make(plotter.Values, len(rows))
	names := make([]string, len(rows))
	for i, r := range rows {
		up[i], down[i], no[i] = r.Up, r.Down, r.No
		names[i] = r.Key()
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Readmission by %s x %s", agg.Col1, agg.Col2)
	p.Y.Label.Text = "Percent of labeled encounters"
	p.Y.Min = 0
	p.Y.Max = 100
	p.Legend.Top = true

	var prev *plotter.BarChart
	for _, s := range []struct {
		label string
		vals  plotter.Values
		c     color.Color
	}{
		{"Up", up, upColor},
		{"Down", down, downColor},
		{"No", no, noColor},
	} {
		bars, err := plotter.NewBarChart(s.vals, vg.Points(barWidth))
		if err != nil {
			return nil, fmt.Errorf("%s bars: %w", s.label, err)
		}
		bars.Color = s.c
		bars.LineStyle.Width = 0
		if prev != nil {
			bars.StackOn(prev)
		}
		p.Add(bars)
		p.Legend.Add(s.label, bars)
		prev = bars
	}
	p.NominalX(names...)
	return p, nil
}

// Size returns a canvas size that widens with the number of categories.
func Size(categories int) (vg.Length, vg.Length) {
	w := vg.Points(float64(120 + 40*categories))
	if floor := 6 * vg.Inch; w < floor {
		w = floor
	}
	return w, 4 * vg.Inch
}

// Write encodes p to w.
func Write(w io.Writer, p *plot.Plot, f Format, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, string(f))
	if err != nil {
		return fmt.Errorf("chart writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}
