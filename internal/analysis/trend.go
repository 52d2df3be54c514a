package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/series"
)

// WindowMeans averages consecutive non-overlapping windows of data. A
// trailing partial window is dropped.
func WindowMeans(data []float64, window int) []float64 {
	if window < 1 {
		return nil
	}
	means := make([]float64, 0, len(data)/window)
	for start := 0; start+window <= len(data); start += window {
		means = append(means, floats.Sum(data[start:start+window])/float64(window))
	}
	return means
}

// Decreasing reports whether every window mean is strictly below the one before.
func Decreasing(means []float64) bool {
	for i := 1; i < len(means); i++ {
		if means[i] >= means[i-1] {
			return false
		}
	}
	return true
}

// EnergyTrend returns the windowed mean of the total energy column.
func EnergyTrend(l *series.Log, window int) []float64 {
	return WindowMeans(l.Column(dynamo.ColTotal), window)
}

// Summary is a one-shot characterisation of a logged run.
type Summary struct {
	Samples           int
	Duration          float64
	DominantFrequency float64
	MeasuredPeriod    float64
	InitialEnergy     float64
	FinalEnergy       float64
	MaxDisplacement   float64
}

// Summarize characterises l, assuming samples are dt apart.
func Summarize(l *series.Log, dt float64) Summary {
	s := Summary{Samples: l.Count()}
	if l.Count() == 0 {
		return s
	}

	times := l.Times()
	s.Duration = times[len(times)-1] - times[0]

	xs := l.Column(dynamo.ColDisplacement)
	s.DominantFrequency = DominantFrequency(xs, dt)
	s.MeasuredPeriod = MeasuredPeriod(l)

	energy := l.Column(dynamo.ColTotal)
	s.InitialEnergy = energy[0]
	s.FinalEnergy = energy[len(energy)-1]

	s.MaxDisplacement = floats.Norm(xs, math.Inf(1))
	return s
}
