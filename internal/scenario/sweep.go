package scenario

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/san-kum/springsim/internal/analysis"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/engine"
	"github.com/san-kum/springsim/internal/metrics"
	"github.com/san-kum/springsim/internal/series"
)

// ModelFactory builds a fresh model for each run.
type ModelFactory func() dynamo.Model

// ParameterSweep runs headless simulations across a range of one parameter.
type ParameterSweep struct {
	Param    string
	Min, Max float64
	Points   int
	Steps    int
	Dt       float64
	Base     dynamo.Params
}

// SweepResult holds results from one point of a sweep.
type SweepResult struct {
	Value     float64
	Final     dynamo.Snapshot
	MaxEnergy float64
	MinEnergy float64
	Period    float64
}

// headless resets a fresh engine with p and advances it steps times.
func headless(newModel ModelFactory, p dynamo.Params, dt float64, steps int, obs ...dynamo.Observer) (*engine.Engine, error) {
	eng := engine.New(newModel(), series.New(), nil)
	for _, o := range obs {
		eng.AddObserver(o)
	}
	if err := eng.Reset(p); err != nil {
		return nil, err
	}
	eng.SetStepSize(dt)
	for i := 0; i < steps; i++ {
		eng.StepOnce()
	}
	return eng, nil
}

// SweepParams lists the keys a sweep may vary. "dt" sets the step size.
var SweepParams = []string{"m", "k", "c", "x0", "v0", "dt"}

func sweepable(key string) bool {
	for _, k := range SweepParams {
		if k == key {
			return true
		}
	}
	return false
}

// RunSweep executes a parameter sweep.
func RunSweep(ctx context.Context, sweep *ParameterSweep, newModel ModelFactory) ([]SweepResult, error) {
	if !sweepable(sweep.Param) {
		return nil, fmt.Errorf("scenario: cannot sweep %q (want one of %s)", sweep.Param, strings.Join(SweepParams, ", "))
	}
	if sweep.Points < 1 {
		return nil, fmt.Errorf("scenario: sweep needs at least one point")
	}
	results := make([]SweepResult, 0, sweep.Points)

	step := 0.0
	if sweep.Points > 1 {
		step = (sweep.Max - sweep.Min) / float64(sweep.Points-1)
	}

	for i := 0; i < sweep.Points; i++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		val := sweep.Min + float64(i)*step
		p := sweep.Base.Clone()
		dt := sweep.Dt
		if sweep.Param == "dt" {
			dt = val
		} else {
			p[sweep.Param] = val
		}

		eng, err := headless(newModel, p, dt, sweep.Steps)
		if err != nil {
			return results, fmt.Errorf("scenario: sweep %s=%g: %w", sweep.Param, val, err)
		}

		samples := eng.Samples()
		energy := samples.Column(dynamo.ColTotal)
		minE, maxE := math.Inf(1), math.Inf(-1)
		for _, e := range energy {
			minE = math.Min(minE, e)
			maxE = math.Max(maxE, e)
		}

		results = append(results, SweepResult{
			Value:     val,
			Final:     eng.Snapshot(),
			MaxEnergy: maxE,
			MinEnergy: minE,
			Period:    analysis.MeasuredPeriod(samples),
		})
	}

	return results, nil
}

// MonteCarloConfig perturbs the initial displacement and velocity of a base
// parameter set.
type MonteCarloConfig struct {
	Base         dynamo.Params
	Perturbation float64
	Trials       int
	Steps        int
	Dt           float64
	Threshold    float64
	Seed         int64
}

type MonteCarloResult struct {
	Trial  int
	X0, V0 float64
	Final  dynamo.Snapshot
	Stable bool
}

// RunMonteCarlo executes trials with random initial conditions.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, newModel ModelFactory) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, cfg.Trials)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	for trial := 0; trial < cfg.Trials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		p := cfg.Base.Clone()
		p["x0"] = p.Get("x0", 0) + (rng.Float64()-0.5)*2*cfg.Perturbation
		p["v0"] = p.Get("v0", 0) + (rng.Float64()-0.5)*2*cfg.Perturbation

		stab := metrics.NewStability(cfg.Threshold)
		eng, err := headless(newModel, p, cfg.Dt, cfg.Steps, stab)
		if err != nil {
			return results, fmt.Errorf("scenario: trial %d: %w", trial, err)
		}

		results = append(results, MonteCarloResult{
			Trial:  trial,
			X0:     p["x0"],
			V0:     p["v0"],
			Final:  eng.Snapshot(),
			Stable: stab.Value() == 1,
		})
	}

	return results, nil
}

// MonteCarloStats counts stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stable, unstable int) {
	for _, r := range results {
		if r.Stable {
			stable++
		} else {
			unstable++
		}
	}
	return
}
