package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/storage"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string

	mass      float64
	stiffness float64
	damping   float64
	x0        float64
	v0        float64
	dt        float64
	steps     int
	cadenceMs int

	runName   string
	realtime  bool
	threshold float64
	output    string
	columns   string
	phase     bool
	saveRun   bool

	sweepParam  string
	sweepMin    float64
	sweepMax    float64
	sweepPoints int

	trials       int
	perturbation float64
	seed         int64

	frameWidth  int
	frameHeight int
	frameScale  float64

	logger *log.Logger
)

// main registers every command and flag and executes the root command.
// It exits with status 1 if the command returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "springsim",
		Short:         "mass-spring-damper simulation lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default from config or .springsim)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addParamFlags(runCmd)
	runCmd.Flags().StringVar(&runName, "name", "", "run name")
	runCmd.Flags().BoolVar(&realtime, "realtime", false, "tick on the wall clock instead of as fast as possible")
	runCmd.Flags().Float64Var(&threshold, "threshold", 1.0, "displacement bound for the stability metric")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addParamFlags(liveCmd)
	liveCmd.Flags().BoolVar(&saveRun, "save", false, "store the session when quitting")
	liveCmd.Flags().StringVar(&runName, "name", "live", "run name when saving")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&columns, "cols", "x,v,E", "comma separated columns")
	plotCmd.Flags().BoolVar(&phase, "phase", false, "draw the x-v phase portrait instead")
	plotCmd.Flags().StringVarP(&output, "output", "o", "", "with --phase, write the portrait as svg to this file")

	pngCmd := &cobra.Command{
		Use:   "png [run_id]",
		Short: "render a run as an image chart",
		Args:  cobra.ExactArgs(1),
		RunE:  pngRun,
	}
	pngCmd.Flags().StringVarP(&output, "output", "o", "", "output file; extension picks the format (default <run_id>.png)")
	pngCmd.Flags().StringVar(&columns, "cols", "x,v,E", "comma separated columns")
	pngCmd.Flags().BoolVar(&phase, "phase", false, "draw the x-v phase portrait instead")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&output, "output", "o", "", "output file, '-' for stdout, empty for a timestamped name")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and samples to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency, energy and accuracy analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-10s m=%g k=%g c=%g x0=%g v0=%g\n",
					name, p.Mass, p.Stiffness, p.Damping, p.Displacement, p.Velocity)
			}
			return nil
		},
	}

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "run a yaml scenario of engine actions",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}
	addParamFlags(scriptCmd)
	scriptCmd.Flags().BoolVar(&saveRun, "save", false, "store the resulting log")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep one parameter across a range",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addParamFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "c", "parameter to sweep (m, k, c, x0, v0, dt)")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 5, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 6, "number of values")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run trials with perturbed initial conditions",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addParamFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturbation", 0.05, "max perturbation of x0 and v0")
	monteCarloCmd.Flags().Float64Var(&threshold, "threshold", 1.0, "displacement bound for stability")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")

	frameCmd := &cobra.Command{
		Use:   "frame",
		Short: "render one frame after n steps",
		Args:  cobra.NoArgs,
		RunE:  renderFrame,
	}
	addParamFlags(frameCmd)
	frameCmd.Flags().IntVar(&frameWidth, "width", 80, "frame width in characters")
	frameCmd.Flags().IntVar(&frameHeight, "height", 20, "frame height in characters")
	frameCmd.Flags().Float64Var(&frameScale, "scale", 4, "svg pixels per dot")
	frameCmd.Flags().StringVarP(&output, "output", "o", "", "svg output file (default: print to terminal)")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, pngCmd, exportCSVCmd, exportJSONCmd,
		analyzeCmd, deleteCmd, presetsCmd, scriptCmd, sweepCmd, monteCarloCmd, frameCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if logger != nil {
			logger.Error(err)
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "start from a preset ("+strings.Join(config.ListPresets(), ", ")+")")
	cmd.Flags().Float64VarP(&mass, "mass", "m", config.DefaultMass, "mass (kg)")
	cmd.Flags().Float64VarP(&stiffness, "stiffness", "k", config.DefaultStiffness, "spring constant (N/m)")
	cmd.Flags().Float64VarP(&damping, "damping", "c", config.DefaultDamping, "damping coefficient (N*s/m)")
	cmd.Flags().Float64Var(&x0, "x0", config.DefaultDisplacement, "initial displacement (m)")
	cmd.Flags().Float64Var(&v0, "v0", config.DefaultVelocity, "initial velocity (m/s)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "step size (s)")
	cmd.Flags().IntVarP(&steps, "steps", "n", config.DefaultSteps, "number of steps")
	cmd.Flags().IntVar(&cadenceMs, "cadence", config.DefaultCadenceMs, "wall-clock tick period (ms)")
}

// loadConfig layers defaults, preset, config file and explicitly set flags,
// in that order, and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("mass") {
		cfg.Mass = mass
	}
	if flags.Changed("stiffness") {
		cfg.Stiffness = stiffness
	}
	if flags.Changed("damping") {
		cfg.Damping = damping
	}
	if flags.Changed("x0") {
		cfg.Displacement = x0
	}
	if flags.Changed("v0") {
		cfg.Velocity = v0
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("cadence") {
		cfg.CadenceMs = cadenceMs
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogger() error {
	level := logLevel
	if level == "" && configFile != "" {
		if cfg, err := config.Load(configFile); err == nil {
			level = cfg.LogLevel
		}
	}
	if level == "" {
		level = config.DefaultLogLevel
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "springsim",
		Level:           lvl,
	})
	return nil
}

func storeDir() string {
	if dataDir != "" {
		return dataDir
	}
	if configFile != "" {
		if cfg, err := config.Load(configFile); err == nil && cfg.DataDir != "" {
			return cfg.DataDir
		}
	}
	return config.DefaultDataDir
}

func openStore() (*storage.Store, error) {
	return storage.Open(storeDir())
}
