package dynamo

import (
	"fmt"
	"math"
)

// Params is the numeric parameter map handed to Model.Reset.
// Keys: m, k, c, x0, v0, dt.
type Params map[string]float64

func (p Params) Clone() Params {
	c := make(Params, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// Get returns the value for key, or def when the key is absent.
func (p Params) Get(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Header is the column order of an exported log, time first.
var Header = []string{"t", "x", "v", "a", "KE", "PE", "E"}

// Column indices of Snapshot.Values.
const (
	ColDisplacement = iota
	ColVelocity
	ColAcceleration
	ColKinetic
	ColPotential
	ColTotal
)

// Snapshot is a derived view of the physical state plus energetics.
type Snapshot struct {
	Time         float64
	Displacement float64
	Velocity     float64
	Acceleration float64
	Kinetic      float64
	Potential    float64
	Total        float64
}

// Values returns every field except the time, in Header order.
func (s Snapshot) Values() []float64 {
	return []float64{s.Displacement, s.Velocity, s.Acceleration, s.Kinetic, s.Potential, s.Total}
}

// IsValid reports whether all fields are finite.
func (s Snapshot) IsValid() bool {
	if math.IsNaN(s.Time) || math.IsInf(s.Time, 0) {
		return false
	}
	for _, v := range s.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s Snapshot) String() string {
	return fmt.Sprintf("t=%.2fs  x=%.3fm  v=%.3fm/s", s.Time, s.Displacement, s.Velocity)
}

// Viewport is the size of the drawing area in surface pixels.
type Viewport struct {
	Width, Height int
}

// Surface is a raster target a model can project itself onto.
type Surface interface {
	Clear()
	Set(x, y int)
	DrawLine(x0, y0, x1, y1 int)
	FillRect(x, y, w, h int)
	Text(x, y int, s string)
}

// Model is a physical system the engine can drive.
//
// Reset must be atomic: on failure the previous state is left untouched.
// Render must not mutate the simulation state.
type Model interface {
	Reset(p Params) error
	Step(dt float64)
	Snapshot() Snapshot
	Render(s Surface, vp Viewport)
}

// Observer receives every sample written to the log.
type Observer interface {
	OnSample(s Snapshot)
}

// Metric summarises a run from the samples it observes.
type Metric interface {
	Observer
	Name() string
	Value() float64
	Reset()
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(s Snapshot)

func (f ObserverFunc) OnSample(s Snapshot) { f(s) }
