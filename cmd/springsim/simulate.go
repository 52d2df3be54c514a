package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/engine"
	"github.com/san-kum/springsim/internal/metrics"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/scenario"
	"github.com/san-kum/springsim/internal/series"
	"github.com/san-kum/springsim/internal/storage"
	"github.com/san-kum/springsim/internal/viz"
)

func newModel() dynamo.Model { return physics.NewMassSpringDamper() }

// newEngine builds an engine over a fresh model, resets it with cfg and
// attaches ms as observers.
func newEngine(cfg *config.Config, sched engine.Scheduler, ms []dynamo.Metric) (*engine.Engine, error) {
	eng := engine.New(newModel(), series.New(), sched)
	eng.SetLogger(logger)
	for _, m := range ms {
		eng.AddObserver(m)
	}
	if err := eng.Reset(cfg.Params()); err != nil {
		return nil, err
	}
	eng.SetStepSize(cfg.Dt)
	return eng, nil
}

func saveEngineRun(name string, cfg *config.Config, eng *engine.Engine, ms []dynamo.Metric) (storage.RunMetadata, error) {
	st, err := storage.Open(cfg.DataDir)
	if err != nil {
		return storage.RunMetadata{}, err
	}
	defer st.Close()

	samples := eng.Samples()
	return st.Save(storage.RunMetadata{
		Name:    name,
		Dt:      eng.StepSize(),
		Steps:   samples.Count() - 1,
		Params:  cfg.Params(),
		Metrics: metrics.Collect(ms),
	}, samples)
}

func printMetrics(values map[string]float64) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, values[name])
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var sched engine.Scheduler
	if realtime {
		sched = engine.NewTicker(cfg.Cadence())
	}
	ms := metrics.Defaults(threshold)
	eng, err := newEngine(cfg, sched, ms)
	if err != nil {
		return err
	}

	progress := 0
	eng.AddObserver(dynamo.ObserverFunc(func(s dynamo.Snapshot) {
		if progress++; progress%500 == 0 {
			logger.Debug("progress", "t", s.Time, "x", s.Displacement, "E", s.Total)
		}
	}))

	logger.Info("running", "m", cfg.Mass, "k", cfg.Stiffness, "c", cfg.Damping, "dt", cfg.Dt, "steps", cfg.Steps)
	start := time.Now()

	if realtime {
		waitSteps(cmd.Context(), eng, cfg.Steps, cfg.Cadence())
	} else {
		for i := 0; i < cfg.Steps; i++ {
			eng.StepOnce()
		}
	}

	meta, err := saveEngineRun(runName, cfg, eng, ms)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("run id: %s\n", meta.ID)
	fmt.Printf("steps: %d\n", meta.Steps)
	fmt.Printf("final: %s\n", eng.Snapshot())
	fmt.Println("\nmetrics:")
	printMetrics(meta.Metrics)

	if eng.Diverged() {
		return fmt.Errorf("run %s with dt=%g: %w", meta.ID, cfg.Dt, dynamo.ErrDiverged)
	}
	return nil
}

// waitSteps runs eng on its own scheduler until it has advanced n times or
// ctx is done. The engine pauses itself at n.
func waitSteps(ctx context.Context, eng *engine.Engine, n int, poll time.Duration) {
	eng.SetStepLimit(n)
	defer eng.Pause()
	if n <= 0 {
		return
	}
	eng.Start()

	tk := time.NewTicker(poll)
	defer tk.Stop()
	for eng.Running() {
		select {
		case <-ctx.Done():
			logger.Warn("interrupted", "steps", eng.Count()-1)
			return
		case <-tk.C:
		}
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sched := engine.NewManual()
	ms := metrics.Defaults(1.0)
	eng, err := newEngine(cfg, sched, ms)
	if err != nil {
		return err
	}
	// The terminal belongs to the view while it runs.
	eng.SetLogger(nil)

	exportDir, err := os.Getwd()
	if err != nil {
		return err
	}

	m := viz.NewLive(eng, sched, cfg.Params(), cfg.Cadence(), exportDir)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return err
	}

	if saveRun {
		meta, err := saveEngineRun(runName, cfg, eng, ms)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", meta.ID)
	}
	return nil
}

func runScript(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sched := engine.NewManual()
	ms := metrics.Defaults(1.0)
	eng, err := newEngine(cfg, sched, ms)
	if err != nil {
		return err
	}

	runner := scenario.NewRunner(eng, sched, filepath.Dir(args[0]))
	runner.SetBase(cfg.Params())
	runner.SetLogger(logger)

	logger.Info("scenario", "name", sc.Name, "actions", len(sc.Actions))
	res, err := runner.Run(cmd.Context(), sc)
	if err != nil {
		return err
	}

	fmt.Printf("ticks: %d  steps: %d\n", res.Ticks, res.Steps)
	fmt.Printf("final: %s\n", res.Final)
	for _, path := range res.Exports {
		fmt.Printf("exported: %s\n", path)
	}

	if saveRun {
		name := sc.Name
		if name == "" {
			name = filepath.Base(args[0])
		}
		meta, err := saveEngineRun(name, cfg, eng, ms)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", meta.ID)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sweep := &scenario.ParameterSweep{
		Param:  sweepParam,
		Min:    sweepMin,
		Max:    sweepMax,
		Points: sweepPoints,
		Steps:  cfg.Steps,
		Dt:     cfg.Dt,
		Base:   cfg.Params(),
	}
	results, err := scenario.RunSweep(cmd.Context(), sweep, newModel)
	if err != nil {
		return err
	}

	fmt.Printf("%-10s %-12s %-12s %-12s %-10s\n", sweepParam, "E_min", "E_max", "E_final", "period")
	for _, r := range results {
		period := "-"
		if r.Period > 0 {
			period = fmt.Sprintf("%.4fs", r.Period)
		}
		fmt.Printf("%-10.4g %-12.6g %-12.6g %-12.6g %-10s\n", r.Value, r.MinEnergy, r.MaxEnergy, r.Final.Total, period)
	}
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	results, err := scenario.RunMonteCarlo(cmd.Context(), &scenario.MonteCarloConfig{
		Base:         cfg.Params(),
		Perturbation: perturbation,
		Trials:       trials,
		Steps:        cfg.Steps,
		Dt:           cfg.Dt,
		Threshold:    threshold,
		Seed:         seed,
	}, newModel)
	if err != nil {
		return err
	}

	stable, unstable := scenario.MonteCarloStats(results)
	fmt.Printf("trials: %d  stable: %d  unstable: %d\n", len(results), stable, unstable)
	return nil
}

func renderFrame(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	eng, err := newEngine(cfg, nil, nil)
	if err != nil {
		return err
	}
	for i := 0; i < cfg.Steps; i++ {
		eng.StepOnce()
	}

	canvas := viz.NewCanvas(frameWidth, frameHeight)
	eng.Render(canvas, canvas.Viewport())

	if output == "" {
		fmt.Print(canvas.String())
		return nil
	}
	if err := os.WriteFile(output, []byte(viz.CanvasToSVG(canvas, frameScale)), 0644); err != nil {
		return err
	}
	fmt.Printf("frame written to %s\n", output)
	return nil
}
