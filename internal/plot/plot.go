// Package plot draws logged runs as image charts.
package plot

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/series"
)

const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 4 * vg.Inch
)

var palette = []color.Color{
	color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	color.RGBA{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
}

// DefaultColumns are displacement, velocity and total energy.
var DefaultColumns = []int{dynamo.ColDisplacement, dynamo.ColVelocity, dynamo.ColTotal}

// ColumnName is the export header name of a value column.
func ColumnName(col int) string {
	if col < 0 || col+1 >= len(dynamo.Header) {
		return fmt.Sprintf("col%d", col)
	}
	return dynamo.Header[col+1]
}

// ParseColumn maps a header name other than "t" back to its column index.
func ParseColumn(name string) (int, error) {
	for i, h := range dynamo.Header[1:] {
		if h == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("plot: unknown column %q", name)
}

// TimeSeries builds a chart of the given columns of l against time.
func TimeSeries(l *series.Log, cols []int, title string) (*plot.Plot, error) {
	if l.Count() == 0 {
		return nil, fmt.Errorf("plot: empty log")
	}
	if len(cols) == 0 {
		cols = DefaultColumns
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t (s)"
	p.Add(plotter.NewGrid())

	times := l.Times()
	for i, col := range cols {
		values := l.Column(col)
		pts := make(plotter.XYs, len(times))
		for j := range times {
			pts[j].X = times[j]
			pts[j].Y = values[j]
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("plot: %s: %w", ColumnName(col), err)
		}
		line.Color = palette[i%len(palette)]
		line.Width = vg.Points(1.2)
		p.Add(line)
		p.Legend.Add(ColumnName(col), line)
	}
	p.Legend.Top = true
	return p, nil
}

// Phase builds the displacement-velocity portrait of l.
func Phase(l *series.Log, title string) (*plot.Plot, error) {
	if l.Count() == 0 {
		return nil, fmt.Errorf("plot: empty log")
	}
	xs := l.Column(dynamo.ColDisplacement)
	vs := l.Column(dynamo.ColVelocity)
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = vs[i]
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "v (m/s)"
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("plot: phase: %w", err)
	}
	line.Color = palette[0]
	p.Add(line)
	return p, nil
}

// Save writes p to path; the extension picks the format (png, svg, pdf, ...).
func Save(p *plot.Plot, path string) error {
	return p.Save(DefaultWidth, DefaultHeight, path)
}

// WritePNG encodes p as PNG to w.
func WritePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(DefaultWidth, DefaultHeight, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
