package engine

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/series"
)

const (
	// MinStepSize is the smallest step size the engine accepts.
	MinStepSize = 1e-6
	// DefaultStepSize is roughly one display frame at 60 Hz.
	DefaultStepSize = 0.016
	// DefaultCadence is the wall-clock period between scheduled ticks.
	DefaultCadence = 16 * time.Millisecond
)

// State is the run state of an engine.
type State int

const (
	Paused State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Paused:
		return "paused"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Resetter is implemented by observers that keep per-run state.
type Resetter interface {
	Reset()
}

// Engine advances one model by a fixed step and logs every advanced state.
// It is the only writer of its model and its log.
type Engine struct {
	mu        sync.Mutex
	model     dynamo.Model
	samples   *series.Log
	sched     Scheduler
	state     State
	dt        float64
	observers []dynamo.Observer
	logger    *log.Logger
	diverged  bool
	limit     int

	snapMu sync.RWMutex
	snap   dynamo.Snapshot
}

// New wires an engine to model and samples. A nil scheduler means a Manual one.
// The engine starts Paused with DefaultStepSize.
func New(model dynamo.Model, samples *series.Log, sched Scheduler) *Engine {
	if sched == nil {
		sched = NewManual()
	}
	return &Engine{
		model:   model,
		samples: samples,
		sched:   sched,
		state:   Paused,
		dt:      DefaultStepSize,
		logger:  log.New(io.Discard),
		snap:    model.Snapshot(),
	}
}

func (e *Engine) SetLogger(l *log.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if l == nil {
		l = log.New(io.Discard)
	}
	e.logger = l
}

func (e *Engine) AddObserver(o dynamo.Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// Reset reinitialises the model, clears the log and records the t=0 sample.
// A model error is returned unchanged and leaves the model and log untouched.
// The run state is not changed.
func (e *Engine) Reset(p dynamo.Params) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.model.Reset(p); err != nil {
		e.logger.Debug("reset rejected", "err", err)
		return err
	}

	e.samples.Clear()
	e.diverged = false
	for _, o := range e.observers {
		if r, ok := o.(Resetter); ok {
			r.Reset()
		}
	}
	e.record()
	e.logger.Debug("reset", "state", e.state)
	return nil
}

// SetStepSize sets the step used by ticks and manual steps, clamped to MinStepSize.
func (e *Engine) SetStepSize(dt float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !(dt > MinStepSize) {
		dt = MinStepSize
	}
	e.dt = dt
	e.logger.Debug("step size", "dt", dt)
}

// Start switches to Running and starts the scheduler. No-op if already running.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Running {
		return
	}
	e.state = Running
	e.sched.Start(e.tick)
	e.logger.Debug("started", "dt", e.dt)
}

// Pause stops the scheduler and switches to Paused. No-op if already paused.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Paused {
		return
	}
	e.sched.Stop()
	e.state = Paused
	e.logger.Debug("paused", "t", e.snap.Time, "samples", e.samples.Count())
}

// StepOnce performs exactly one tick while paused and reports whether it did.
// It does nothing while running.
func (e *Engine) StepOnce() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Running {
		return false
	}
	e.advance()
	return true
}

// SetStepLimit makes a running engine pause itself once n steps have been
// logged since the last reset. Zero removes the limit. Manual steps are not
// limited.
func (e *Engine) SetStepLimit(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n < 0 {
		n = 0
	}
	e.limit = n
}

// tick is the scheduler callback. Ticks that arrive after Pause are dropped.
func (e *Engine) tick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Running {
		return
	}
	if !e.limitReached() {
		e.advance()
	}
	if e.limitReached() {
		e.sched.Stop()
		e.state = Paused
		e.logger.Debug("step limit reached", "steps", e.limit, "t", e.snap.Time)
	}
}

func (e *Engine) limitReached() bool {
	return e.limit > 0 && e.samples.Count()-1 >= e.limit
}

func (e *Engine) advance() {
	e.model.Step(e.dt)
	e.record()
}

func (e *Engine) record() {
	s := e.model.Snapshot()
	e.samples.Append(s.Time, s.Values())

	e.snapMu.Lock()
	e.snap = s
	e.snapMu.Unlock()

	if !e.diverged && !s.IsValid() {
		e.diverged = true
		e.logger.Warn("state is no longer finite", "t", s.Time, "dt", e.dt)
	}

	for _, o := range e.observers {
		o.OnSample(s)
	}
}

// Snapshot returns the most recently logged sample. It never waits for a tick.
func (e *Engine) Snapshot() dynamo.Snapshot {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()
	return e.snap
}

// Render projects the current model state onto s.
func (e *Engine) Render(s dynamo.Surface, vp dynamo.Viewport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.model.Render(s, vp)
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Running() bool { return e.State() == Running }

func (e *Engine) StepSize() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dt
}

// Diverged reports whether a non-finite sample was logged since the last reset.
func (e *Engine) Diverged() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.diverged
}

// Count returns the number of logged samples.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.samples.Count()
}

// ExportRows formats the log for a CSV writer, see series.Log.ExportRows.
func (e *Engine) ExportRows(header []string) [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.samples.ExportRows(header)
}

// Samples returns a copy of the log that is safe to read while ticking.
func (e *Engine) Samples() *series.Log {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.samples.Clone()
}
