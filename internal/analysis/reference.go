package analysis

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/series"
)

// Reference is the closed-form damped oscillator with the same natural
// frequency and damping ratio, used to measure integration error.
type Reference struct {
	spring harmonica.Spring
	x, v   float64
}

// NewReference starts the analytic oscillator at (x0, v0). omega is the
// natural angular frequency, zeta the damping ratio, dt the sample spacing.
func NewReference(x0, v0, omega, zeta, dt float64) *Reference {
	return &Reference{
		spring: harmonica.NewSpring(dt, omega, zeta),
		x:      x0,
		v:      v0,
	}
}

// Next advances one sample towards the rest position and returns the
// displacement.
func (r *Reference) Next() float64 {
	r.x, r.v = r.spring.Update(r.x, r.v, 0)
	return r.x
}

// ReferenceError is the largest displacement difference between l and the
// analytic solution started from l's first sample. l must be sampled every dt.
func ReferenceError(l *series.Log, omega, zeta, dt float64) float64 {
	if l.Count() == 0 {
		return 0
	}
	_, first := l.At(0)
	ref := NewReference(first[dynamo.ColDisplacement], first[dynamo.ColVelocity], omega, zeta, dt)

	xs := l.Column(dynamo.ColDisplacement)
	worst := 0.0
	for _, x := range xs[1:] {
		worst = math.Max(worst, math.Abs(x-ref.Next()))
	}
	return worst
}
