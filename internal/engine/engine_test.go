package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/series"
)

func newTestEngine(t *testing.T) (*Engine, *Manual, *series.Log) {
	t.Helper()
	sched := NewManual()
	samples := series.New()
	e := New(physics.NewMassSpringDamper(), samples, sched)
	if err := e.Reset(dynamo.Params{"m": 1, "k": 20, "c": 0, "x0": 0.2, "v0": 0}); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	return e, sched, samples
}

func TestEngineResetLogsInitialSample(t *testing.T) {
	params := []dynamo.Params{
		{"m": 1, "k": 20},
		{"m": 0.5, "k": 3, "c": 2, "x0": -1, "v0": 4},
		{"m": 1e-3, "k": 1e3},
	}

	for _, p := range params {
		e := New(physics.NewMassSpringDamper(), series.New(), nil)
		if err := e.Reset(p); err != nil {
			t.Fatalf("reset %v failed: %v", p, err)
		}
		if e.Snapshot().Time != 0 {
			t.Errorf("expected t=0 after reset, got %f", e.Snapshot().Time)
		}
		if e.Count() != 1 {
			t.Errorf("expected 1 sample after reset, got %d", e.Count())
		}
	}
}

func TestEngineTickTimes(t *testing.T) {
	e, sched, samples := newTestEngine(t)
	const dt = 0.01
	const n = 500
	e.SetStepSize(dt)
	e.Start()

	if fired := sched.FireN(n); fired != n {
		t.Fatalf("expected %d ticks, fired %d", n, fired)
	}
	e.Pause()

	if samples.Count() != n+1 {
		t.Fatalf("expected %d samples, got %d", n+1, samples.Count())
	}

	prev := -1.0
	for i := 0; i < samples.Count(); i++ {
		tm, _ := samples.At(i)
		if math.Abs(tm-float64(i)*dt) > 1e-9 {
			t.Errorf("sample %d time %v, want %v", i, tm, float64(i)*dt)
		}
		if tm <= prev {
			t.Errorf("sample %d time %v not increasing after %v", i, tm, prev)
		}
		prev = tm
	}
}

func TestEngineResetFailureLeavesState(t *testing.T) {
	e, _, samples := newTestEngine(t)
	for i := 0; i < 3; i++ {
		e.StepOnce()
	}
	before := e.Snapshot()
	count := samples.Count()

	err := e.Reset(dynamo.Params{"m": 0, "k": 20})
	var pe *dynamo.ParameterError
	if !errors.As(err, &pe) || pe.Key != "m" {
		t.Fatalf("expected parameter error on m, got %v", err)
	}

	if samples.Count() != count {
		t.Errorf("log changed on failed reset: %d -> %d", count, samples.Count())
	}
	if e.Snapshot() != before {
		t.Errorf("snapshot changed on failed reset")
	}

	e.StepOnce()
	if got := e.Snapshot().Time; math.Abs(got-before.Time-DefaultStepSize) > 1e-12 {
		t.Errorf("model state changed on failed reset: t=%v", got)
	}
}

func TestEngineStepOnceWhileRunning(t *testing.T) {
	e, _, samples := newTestEngine(t)
	e.Start()

	before := e.Snapshot()
	if e.StepOnce() {
		t.Error("StepOnce reported a step while running")
	}
	if samples.Count() != 1 {
		t.Errorf("expected log unchanged, got %d samples", samples.Count())
	}
	if e.Snapshot() != before {
		t.Error("model advanced by StepOnce while running")
	}
}

func TestEngineStepSizeClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.01, 0.01},
		{0, MinStepSize},
		{-1, MinStepSize},
		{1e-9, MinStepSize},
		{math.NaN(), MinStepSize},
	}

	e, _, _ := newTestEngine(t)
	for _, tt := range tests {
		e.SetStepSize(tt.in)
		if got := e.StepSize(); got != tt.want {
			t.Errorf("SetStepSize(%v) stored %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEnginePausedIgnoresTicks(t *testing.T) {
	e, sched, samples := newTestEngine(t)

	if sched.Fire() {
		t.Error("scheduler fired before start")
	}

	e.Start()
	e.Start()
	sched.FireN(3)
	e.Pause()
	e.Pause()

	if sched.Fire() {
		t.Error("scheduler fired after pause")
	}
	if samples.Count() != 4 {
		t.Errorf("expected 4 samples, got %d", samples.Count())
	}

	// A tick delivered late by a scheduler must not advance a paused engine.
	e.tick()
	if samples.Count() != 4 {
		t.Errorf("late tick advanced paused engine")
	}
}

func TestEngineResetKeepsRunState(t *testing.T) {
	e, sched, samples := newTestEngine(t)
	e.Start()
	sched.FireN(10)

	if err := e.Reset(dynamo.Params{"m": 2, "k": 2}); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if !e.Running() {
		t.Error("reset changed run state")
	}
	if samples.Count() != 1 {
		t.Errorf("expected log restarted at 1 sample, got %d", samples.Count())
	}

	sched.Fire()
	if tm, _ := samples.At(1); math.Abs(tm-DefaultStepSize) > 1e-12 {
		t.Errorf("expected time to restart from zero, got %v", tm)
	}
}

type countingObserver struct {
	samples int
	resets  int
	last    dynamo.Snapshot
}

func (c *countingObserver) OnSample(s dynamo.Snapshot) { c.samples++; c.last = s }
func (c *countingObserver) Reset()                     { c.resets++; c.samples = 0 }

func TestEngineObservers(t *testing.T) {
	e := New(physics.NewMassSpringDamper(), series.New(), nil)
	obs := &countingObserver{}
	e.AddObserver(obs)

	if err := e.Reset(dynamo.Params{"m": 1, "k": 1}); err != nil {
		t.Fatal(err)
	}
	e.StepOnce()
	e.StepOnce()

	if obs.resets != 1 {
		t.Errorf("expected 1 reset, got %d", obs.resets)
	}
	if obs.samples != 3 {
		t.Errorf("expected 3 samples, got %d", obs.samples)
	}
	if obs.last != e.Snapshot() {
		t.Error("observer saw a different sample than the engine")
	}
}

func TestEngineExportRows(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.StepOnce()
	e.StepOnce()

	rows := e.ExportRows(dynamo.Header)
	if len(rows) != 4 {
		t.Fatalf("expected 4 records, got %d", len(rows))
	}
	if rows[1][0] != "0" {
		t.Errorf("expected first sample time 0, got %q", rows[1][0])
	}

	copyLog := e.Samples()
	e.StepOnce()
	if copyLog.Count() != 3 {
		t.Error("Samples copy tracks the live log")
	}
}

func TestEngineDiverged(t *testing.T) {
	e := New(physics.NewMassSpringDamper(), series.New(), nil)
	if err := e.Reset(dynamo.Params{"m": 1e-6, "k": 1e6, "x0": 1}); err != nil {
		t.Fatal(err)
	}
	e.SetStepSize(1)
	for i := 0; i < 400 && !e.Diverged(); i++ {
		e.StepOnce()
	}
	if !e.Diverged() {
		t.Error("expected divergence with dt far above the stability limit")
	}

	if err := e.Reset(dynamo.Params{"m": 1, "k": 1}); err != nil {
		t.Fatal(err)
	}
	if e.Diverged() {
		t.Error("reset did not clear divergence flag")
	}
}

func TestEngineStepLimit(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		fire      int
		wantFired int
		wantState State
	}{
		{"pauses at the limit", 5, 10, 5, Paused},
		{"below the limit", 5, 3, 3, Running},
		{"no limit", 0, 10, 10, Running},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, sched, samples := newTestEngine(t)
			e.SetStepLimit(tt.limit)
			e.Start()

			if fired := sched.FireN(tt.fire); fired != tt.wantFired {
				t.Errorf("expected %d ticks, fired %d", tt.wantFired, fired)
			}
			if samples.Count() != tt.wantFired+1 {
				t.Errorf("expected %d samples, got %d", tt.wantFired+1, samples.Count())
			}
			if e.State() != tt.wantState {
				t.Errorf("expected state %s, got %s", tt.wantState, e.State())
			}
			e.Pause()
		})
	}
}

func TestEngineStepLimitAlreadyReached(t *testing.T) {
	e, sched, samples := newTestEngine(t)
	for i := 0; i < 3; i++ {
		e.StepOnce()
	}
	e.SetStepLimit(2)
	e.Start()

	if !sched.Fire() {
		t.Fatal("expected the first tick to run")
	}
	if samples.Count() != 4 {
		t.Errorf("expected no step past the limit, got %d samples", samples.Count())
	}
	if e.State() != Paused || sched.Active() {
		t.Error("expected the engine to pause itself")
	}
}
