package config

import "sort"

// Presets are the named damping regimes available from the CLI.
var Presets = map[string]*Config{
	"undamped": {
		Mass: 1, Stiffness: 20, Damping: 0, Displacement: 0.2, Velocity: 0,
		Dt: DefaultDt, CadenceMs: DefaultCadenceMs, Steps: DefaultSteps,
	},
	"light": {
		Mass: 1, Stiffness: 20, Damping: 0.8, Displacement: 0.2, Velocity: 0,
		Dt: DefaultDt, CadenceMs: DefaultCadenceMs, Steps: DefaultSteps,
	},
	"heavy": {
		Mass: 1, Stiffness: 20, Damping: 5.0, Displacement: 0.2, Velocity: 0,
		Dt: DefaultDt, CadenceMs: DefaultCadenceMs, Steps: DefaultSteps,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.DataDir = DefaultDataDir
	cfg.LogLevel = DefaultLogLevel
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
