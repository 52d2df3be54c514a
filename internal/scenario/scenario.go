package scenario

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/engine"
	"github.com/san-kum/springsim/internal/storage"
)

// Action kinds understood by the runner.
const (
	ActionReset  = "reset"
	ActionSetDt  = "set_dt"
	ActionStart  = "start"
	ActionTick   = "tick"
	ActionPause  = "pause"
	ActionStep   = "step"
	ActionExport = "export"
)

// Scenario is a scripted sequence of engine controls.
type Scenario struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Actions     []Action `yaml:"actions"`
}

// Action is one control applied to the engine. Only the fields relevant to
// Do are read.
type Action struct {
	Do     string             `yaml:"do"`
	Params map[string]float64 `yaml:"params,omitempty"`
	Dt     float64            `yaml:"dt,omitempty"`
	N      int                `yaml:"n,omitempty"`
	Path   string             `yaml:"path,omitempty"`
}

// Load reads a scenario from a YAML file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("scenario: parse: %w", err)
	}
	for i, a := range sc.Actions {
		if err := a.validate(); err != nil {
			return nil, fmt.Errorf("scenario: action %d: %w", i+1, err)
		}
	}
	return &sc, nil
}

func (a Action) validate() error {
	switch a.Do {
	case ActionReset, ActionStart, ActionPause:
	case ActionSetDt:
		if a.Dt == 0 {
			return fmt.Errorf("%s requires dt", a.Do)
		}
	case ActionTick, ActionStep:
		if a.N < 0 {
			return fmt.Errorf("%s count must be non-negative", a.Do)
		}
	case ActionExport:
		if a.Path == "" {
			return fmt.Errorf("%s requires path", a.Do)
		}
	default:
		return fmt.Errorf("unknown action %q", a.Do)
	}
	return nil
}

// Result summarises a scenario run.
type Result struct {
	Ticks   int
	Steps   int
	Exports []string
	Final   dynamo.Snapshot
}

// Runner drives an engine whose scheduler is the given Manual.
type Runner struct {
	eng    *engine.Engine
	sched  *engine.Manual
	outDir string
	base   dynamo.Params
	logger *log.Logger
}

// NewRunner returns a runner writing exports relative to outDir.
func NewRunner(eng *engine.Engine, sched *engine.Manual, outDir string) *Runner {
	return &Runner{
		eng:    eng,
		sched:  sched,
		outDir: outDir,
		logger: log.New(io.Discard),
	}
}

// SetBase sets the parameters a reset action starts from. Keys given in the
// action override them.
func (r *Runner) SetBase(p dynamo.Params) {
	r.base = p.Clone()
}

func (r *Runner) SetLogger(l *log.Logger) {
	if l != nil {
		r.logger = l
	}
}

// Run executes every action in order and stops at the first error.
// A reset leaves the engine paused.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (Result, error) {
	var res Result
	for i, a := range sc.Actions {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		r.logger.Debug("action", "n", i+1, "do", a.Do)
		if err := r.apply(a, &res); err != nil {
			return res, fmt.Errorf("scenario: action %d (%s): %w", i+1, a.Do, err)
		}
	}
	res.Final = r.eng.Snapshot()
	return res, nil
}

func (r *Runner) apply(a Action, res *Result) error {
	switch a.Do {
	case ActionReset:
		p := r.base.Clone()
		for k, v := range a.Params {
			p[k] = v
		}
		if err := r.eng.Reset(p); err != nil {
			return err
		}
		r.eng.Pause()
	case ActionSetDt:
		r.eng.SetStepSize(a.Dt)
	case ActionStart:
		r.eng.Start()
	case ActionPause:
		r.eng.Pause()
	case ActionTick:
		res.Ticks += r.sched.FireN(count(a.N))
	case ActionStep:
		for i := 0; i < count(a.N); i++ {
			if r.eng.StepOnce() {
				res.Steps++
			}
		}
	case ActionExport:
		path := a.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.outDir, path)
		}
		if err := storage.SaveCSV(path, r.eng.ExportRows(dynamo.Header)); err != nil {
			return err
		}
		res.Exports = append(res.Exports, path)
	default:
		return fmt.Errorf("unknown action %q", a.Do)
	}
	return nil
}

func count(n int) int {
	if n == 0 {
		return 1
	}
	return n
}
