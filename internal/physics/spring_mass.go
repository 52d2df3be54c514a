package physics

import (
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
)

const (
	DefaultMass         = 1.0
	DefaultStiffness    = 20.0
	DefaultDamping      = 0.0
	DefaultDisplacement = 0.1
	DefaultVelocity     = 0.0
)

// Layout of the drawing in reference pixels (an 800x400 viewport).
const (
	referenceWidth  = 800.0
	referenceHeight = 400.0
	pixelsPerMeter  = 200.0
	leftMargin      = 80.0
	anchorX         = 40.0
	anchorWidth     = 20.0
	anchorHeight    = 60.0
	blockWidth      = 60.0
	blockHeight     = 40.0
	coils           = 8
	coilAmplitude   = 12.0
)

// MassSpringDamper is a single mass on a linear spring with viscous damping,
// advanced with semi-implicit Euler.
type MassSpringDamper struct {
	mass      float64
	stiffness float64
	damping   float64

	x0, v0 float64

	x, v, t float64
}

// NewMassSpringDamper returns a model initialised with the default parameters.
func NewMassSpringDamper() *MassSpringDamper {
	return &MassSpringDamper{
		mass:      DefaultMass,
		stiffness: DefaultStiffness,
		damping:   DefaultDamping,
		x0:        DefaultDisplacement,
		v0:        DefaultVelocity,
		x:         DefaultDisplacement,
		v:         DefaultVelocity,
	}
}

// Reset validates p and reinitialises the state at t=0. Nothing is written
// unless every parameter is valid.
func (s *MassSpringDamper) Reset(p dynamo.Params) error {
	m, err := dynamo.RequirePositive(p, "m")
	if err != nil {
		return err
	}
	k, err := dynamo.RequirePositive(p, "k")
	if err != nil {
		return err
	}

	c, err := dynamo.OptionalFinite(p, "c", DefaultDamping)
	if err != nil {
		return err
	}
	x0, err := dynamo.OptionalFinite(p, "x0", DefaultDisplacement)
	if err != nil {
		return err
	}
	v0, err := dynamo.OptionalFinite(p, "v0", DefaultVelocity)
	if err != nil {
		return err
	}

	s.mass = m
	s.stiffness = k
	s.damping = math.Max(0, c)
	s.x0 = x0
	s.v0 = v0

	s.x = s.x0
	s.v = s.v0
	s.t = 0
	return nil
}

func (s *MassSpringDamper) acceleration() float64 {
	return -(s.damping/s.mass)*s.v - (s.stiffness/s.mass)*s.x
}

// Step advances the state by dt. Velocity is updated first and the new
// velocity drives the position update.
func (s *MassSpringDamper) Step(dt float64) {
	a := s.acceleration()
	s.v += a * dt
	s.x += s.v * dt
	s.t += dt
}

func (s *MassSpringDamper) Snapshot() dynamo.Snapshot {
	ke := 0.5 * s.mass * s.v * s.v
	pe := 0.5 * s.stiffness * s.x * s.x
	return dynamo.Snapshot{
		Time:         s.t,
		Displacement: s.x,
		Velocity:     s.v,
		Acceleration: s.acceleration(),
		Kinetic:      ke,
		Potential:    pe,
		Total:        ke + pe,
	}
}

// Params returns the parameters the model was last reset with.
func (s *MassSpringDamper) Params() dynamo.Params {
	return dynamo.Params{
		"m":  s.mass,
		"k":  s.stiffness,
		"c":  s.damping,
		"x0": s.x0,
		"v0": s.v0,
	}
}

// NaturalFrequency is the undamped angular frequency sqrt(k/m) in rad/s.
func (s *MassSpringDamper) NaturalFrequency() float64 {
	return math.Sqrt(s.stiffness / s.mass)
}

// DampingRatio is c / (2 sqrt(k m)); below 1 the system oscillates.
func (s *MassSpringDamper) DampingRatio() float64 {
	return s.damping / (2 * math.Sqrt(s.stiffness*s.mass))
}

// DampedFrequency is the angular frequency of the decaying oscillation, or
// zero for a critically or over-damped system.
func (s *MassSpringDamper) DampedFrequency() float64 {
	zeta := s.DampingRatio()
	if zeta >= 1 {
		return 0
	}
	return s.NaturalFrequency() * math.Sqrt(1-zeta*zeta)
}

// Period of the damped oscillation in seconds, +Inf when it does not oscillate.
func (s *MassSpringDamper) Period() float64 {
	wd := s.DampedFrequency()
	if wd == 0 {
		return math.Inf(1)
	}
	return 2 * math.Pi / wd
}

// Render draws the anchor, a zig-zag spring and the block. It only reads state.
func (s *MassSpringDamper) Render(surf dynamo.Surface, vp dynamo.Viewport) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return
	}
	sx := float64(vp.Width) / referenceWidth
	sy := float64(vp.Height) / referenceHeight
	px := func(v float64) int { return int(v * sx) }
	py := func(v float64) int { return int(v * sy) }

	surf.Clear()

	cy := vp.Height / 2
	surf.DrawLine(0, cy, vp.Width-1, cy)

	ax := px(anchorX)
	surf.FillRect(px(anchorX-anchorWidth), cy-py(anchorHeight/2), px(anchorWidth), py(anchorHeight))

	blockX := px(anchorX + leftMargin + s.x*pixelsPerMeter)
	span := blockX - ax
	if minSpan := px(10); span < minSpan {
		span = minSpan
	}

	amp := py(coilAmplitude)
	prevX, prevY := ax, cy
	for i := 1; i <= coils*2; i++ {
		xi := ax + (i*span)/(coils*2)
		yi := cy + amp
		if i%2 == 0 {
			yi = cy - amp
		}
		surf.DrawLine(prevX, prevY, xi, yi)
		prevX, prevY = xi, yi
	}
	surf.DrawLine(prevX, prevY, blockX, cy)

	bw, bh := px(blockWidth), py(blockHeight)
	by := cy - bh/2
	surf.DrawLine(blockX, by, blockX+bw, by)
	surf.DrawLine(blockX+bw, by, blockX+bw, by+bh)
	surf.DrawLine(blockX+bw, by+bh, blockX, by+bh)
	surf.DrawLine(blockX, by+bh, blockX, by)

	surf.Text(0, 0, s.Snapshot().String())
}
