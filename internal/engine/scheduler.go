package engine

import (
	"sync"
	"time"
)

// Scheduler periodically invokes the engine's tick while started.
// Stop must not wait for an in-flight tick to finish.
type Scheduler interface {
	Start(tick func())
	Stop()
}

// Manual fires ticks only when its owner calls Fire. Tests and the terminal
// UI drive the engine through it.
type Manual struct {
	mu     sync.Mutex
	tick   func()
	active bool
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Start(tick func()) {
	m.mu.Lock()
	m.tick = tick
	m.active = true
	m.mu.Unlock()
}

func (m *Manual) Stop() {
	m.mu.Lock()
	m.active = false
	m.mu.Unlock()
}

// Active reports whether the scheduler has been started and not stopped.
func (m *Manual) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Fire runs one tick if started. It reports whether a tick ran.
func (m *Manual) Fire() bool {
	m.mu.Lock()
	tick, active := m.tick, m.active
	m.mu.Unlock()

	if !active || tick == nil {
		return false
	}
	tick()
	return true
}

// FireN runs up to n ticks and returns how many ran.
func (m *Manual) FireN(n int) int {
	fired := 0
	for i := 0; i < n; i++ {
		if !m.Fire() {
			break
		}
		fired++
	}
	return fired
}

// Ticker fires ticks from a background goroutine at a fixed wall-clock period.
type Ticker struct {
	period time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

func NewTicker(period time.Duration) *Ticker {
	if period <= 0 {
		period = DefaultCadence
	}
	return &Ticker{period: period}
}

func (t *Ticker) Period() time.Duration { return t.period }

func (t *Ticker) Start(tick func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return
	}
	stop := make(chan struct{})
	t.stop = stop

	go func() {
		tk := time.NewTicker(t.period)
		defer tk.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tk.C:
				tick()
			}
		}
	}()
}

func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}
