package scenario

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
)

func springFactory() dynamo.Model { return physics.NewMassSpringDamper() }

func TestRunSweep(t *testing.T) {
	sweep := &ParameterSweep{
		Param:  "c",
		Min:    0,
		Max:    2,
		Points: 3,
		Steps:  2000,
		Dt:     0.005,
		Base:   dynamo.Params{"m": 1, "k": 20, "x0": 0.2},
	}

	results, err := RunSweep(context.Background(), sweep, springFactory)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	wantValues := []float64{0, 1, 2}
	for i, r := range results {
		if r.Value != wantValues[i] {
			t.Errorf("point %d: expected value %f, got %f", i, wantValues[i], r.Value)
		}
		if r.MinEnergy > r.MaxEnergy {
			t.Errorf("point %d: min energy above max", i)
		}
	}

	for i := 1; i < len(results); i++ {
		if results[i].Final.Total >= results[i-1].Final.Total {
			t.Errorf("final energy should fall with damping: %g >= %g",
				results[i].Final.Total, results[i-1].Final.Total)
		}
	}

	if results[0].Period <= 0 {
		t.Error("expected a measured period for the undamped run")
	}
	if _, ok := sweep.Base["c"]; ok {
		t.Error("sweep mutated base params")
	}
}

func TestRunSweepInvalid(t *testing.T) {
	sweep := &ParameterSweep{
		Param: "m", Min: -1, Max: 1, Points: 2, Steps: 10, Dt: 0.01,
		Base: dynamo.Params{"k": 20},
	}
	if _, err := RunSweep(context.Background(), sweep, springFactory); err == nil {
		t.Error("expected error for non-positive mass")
	}

	if _, err := RunSweep(context.Background(), &ParameterSweep{Param: "c"}, springFactory); err == nil {
		t.Error("expected error for zero points")
	}
}

func TestRunSweepUnknownParam(t *testing.T) {
	for _, param := range []string{"mass", "", "t"} {
		sweep := &ParameterSweep{
			Param: param, Min: 1, Max: 2, Points: 2, Steps: 10, Dt: 0.01,
			Base: dynamo.Params{"m": 1, "k": 20},
		}
		results, err := RunSweep(context.Background(), sweep, springFactory)
		if err == nil {
			t.Errorf("param %q: expected error", param)
		}
		if len(results) != 0 {
			t.Errorf("param %q: expected no results, got %d", param, len(results))
		}
	}
}

func TestRunSweepPointsDiffer(t *testing.T) {
	tests := []struct {
		param    string
		min, max float64
	}{
		{"m", 0.5, 2},
		{"k", 10, 40},
		{"c", 0, 2},
		{"x0", 0.1, 0.3},
		{"v0", -1, 1},
		{"dt", 0.001, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			sweep := &ParameterSweep{
				Param: tt.param, Min: tt.min, Max: tt.max, Points: 3, Steps: 200, Dt: 0.01,
				Base: dynamo.Params{"m": 1, "k": 20, "x0": 0.2},
			}
			results, err := RunSweep(context.Background(), sweep, springFactory)
			if err != nil {
				t.Fatalf("sweep failed: %v", err)
			}
			for i := 1; i < len(results); i++ {
				if results[i].Final == results[i-1].Final {
					t.Errorf("points %d and %d ended in the same state %+v", i-1, i, results[i].Final)
				}
			}
		})
	}
}

func TestRunSweepStepSize(t *testing.T) {
	sweep := &ParameterSweep{
		Param: "dt", Min: 0.001, Max: 0.004, Points: 2, Steps: 100, Dt: 0.01,
		Base: dynamo.Params{"m": 1, "k": 20, "x0": 0.2},
	}
	results, err := RunSweep(context.Background(), sweep, springFactory)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	want := []float64{0.1, 0.4}
	for i, r := range results {
		if math.Abs(r.Final.Time-want[i]) > 1e-9 {
			t.Errorf("point %d: expected final t=%g, got %g", i, want[i], r.Final.Time)
		}
	}
}

func TestRunMonteCarlo(t *testing.T) {
	cfg := &MonteCarloConfig{
		Base:         dynamo.Params{"m": 1, "k": 20, "c": 0.5, "x0": 0.2},
		Perturbation: 0.05,
		Trials:       8,
		Steps:        500,
		Dt:           0.005,
		Threshold:    1.0,
		Seed:         42,
	}

	results, err := RunMonteCarlo(context.Background(), cfg, springFactory)
	if err != nil {
		t.Fatalf("monte carlo failed: %v", err)
	}
	if len(results) != 8 {
		t.Fatalf("expected 8 trials, got %d", len(results))
	}

	stable, unstable := MonteCarloStats(results)
	if stable != 8 || unstable != 0 {
		t.Errorf("expected all trials stable, got %d/%d", stable, unstable)
	}

	again, _ := RunMonteCarlo(context.Background(), cfg, springFactory)
	for i := range results {
		if results[i].X0 != again[i].X0 {
			t.Error("same seed produced different perturbations")
			break
		}
	}
}
