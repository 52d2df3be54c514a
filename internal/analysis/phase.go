package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/series"
)

// Point is one phase-space coordinate.
type Point struct{ X, Y float64 }

// PhasePortrait holds two log columns plotted against each other.
type PhasePortrait struct {
	XColumn, YColumn int
	Points           []Point
}

// NewPhasePortrait extracts columns xCol and yCol of every logged sample.
func NewPhasePortrait(l *series.Log, xCol, yCol int) *PhasePortrait {
	xs := l.Column(xCol)
	ys := l.Column(yCol)

	portrait := &PhasePortrait{
		XColumn: xCol,
		YColumn: yCol,
		Points:  make([]Point, len(xs)),
	}
	for i := range xs {
		portrait.Points[i] = Point{X: xs[i], Y: ys[i]}
	}
	return portrait
}

// DisplacementVelocity is the usual (x, v) phase portrait.
func DisplacementVelocity(l *series.Log) *PhasePortrait {
	return NewPhasePortrait(l, dynamo.ColDisplacement, dynamo.ColVelocity)
}

// ASCII renders the portrait into a width x height character grid with axes.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y

	for _, pt := range p.Points {
		minX = math.Min(minX, pt.X)
		maxX = math.Max(maxX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxY = math.Max(maxY, pt.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

// Crossings returns the interpolated times at which values crosses threshold
// going upwards.
func Crossings(times, values []float64, threshold float64) []float64 {
	n := len(times)
	if len(values) < n {
		n = len(values)
	}
	if n < 2 {
		return nil
	}

	out := make([]float64, 0)
	prev := values[0]
	for i := 1; i < n; i++ {
		curr := values[i]
		if prev < threshold && curr >= threshold {
			frac := (threshold - prev) / (curr - prev)
			if math.IsNaN(frac) || math.IsInf(frac, 0) {
				frac = 0.5
			}
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
		prev = curr
	}
	return out
}

// MeasuredPeriod is the mean spacing of upward zero crossings of the
// displacement, or 0 with fewer than two crossings.
func MeasuredPeriod(l *series.Log) float64 {
	c := Crossings(l.Times(), l.Column(dynamo.ColDisplacement), 0)
	if len(c) < 2 {
		return 0
	}
	return (c[len(c)-1] - c[0]) / float64(len(c)-1)
}
