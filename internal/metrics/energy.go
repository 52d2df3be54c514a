package metrics

import (
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
)

// MeanEnergy is the average total energy over every observed sample.
type MeanEnergy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewMeanEnergy() *MeanEnergy {
	return &MeanEnergy{name: "mean_energy"}
}

func (e *MeanEnergy) Name() string { return e.name }

func (e *MeanEnergy) OnSample(s dynamo.Snapshot) {
	e.totalEnergy += s.Total
	e.samples++
}

func (e *MeanEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *MeanEnergy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative deviation |E-E0|/E0 seen since reset.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) OnSample(s dynamo.Snapshot) {
	if e.samples == 0 {
		e.initialEnergy = s.Total
	}

	e.currentEnergy = s.Total
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(s.Total-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// EnergyDecay compares the mean energy of the latest window of samples with
// the first one. Values below 1 mean energy is being dissipated.
type EnergyDecay struct {
	name    string
	window  int
	first   float64
	firstN  int
	recent  []float64
	next    int
	filled  bool
	samples int
}

func NewEnergyDecay(window int) *EnergyDecay {
	if window < 1 {
		window = 1
	}
	return &EnergyDecay{
		name:   "energy_decay",
		window: window,
		recent: make([]float64, window),
	}
}

func (e *EnergyDecay) Name() string { return e.name }

func (e *EnergyDecay) OnSample(s dynamo.Snapshot) {
	if e.firstN < e.window {
		e.first += s.Total
		e.firstN++
	}
	e.recent[e.next] = s.Total
	e.next = (e.next + 1) % e.window
	if e.next == 0 {
		e.filled = true
	}
	e.samples++
}

func (e *EnergyDecay) Value() float64 {
	if e.firstN == 0 {
		return 1
	}
	firstMean := e.first / float64(e.firstN)
	if firstMean == 0 {
		return 1
	}

	n := e.next
	if e.filled {
		n = e.window
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += e.recent[i]
	}
	return (sum / float64(n)) / firstMean
}

func (e *EnergyDecay) Reset() {
	e.first = 0
	e.firstN = 0
	e.next = 0
	e.filled = false
	e.samples = 0
	for i := range e.recent {
		e.recent[i] = 0
	}
}
