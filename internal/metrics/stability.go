package metrics

import (
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
)

// Stability is the fraction of samples whose displacement stayed within
// threshold and whose state was finite.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) OnSample(snap dynamo.Snapshot) {
	s.samples++
	if !snap.IsValid() || math.Abs(snap.Displacement) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Defaults returns the metrics recorded for every run.
func Defaults(threshold float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewMeanEnergy(),
		NewEnergyDrift(),
		NewEnergyDecay(100),
		NewStability(threshold),
	}
}

// Collect returns the current value of every metric by name.
func Collect(ms []dynamo.Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
