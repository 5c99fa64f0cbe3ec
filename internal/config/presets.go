package config

import "sort"

var Presets = map[string]*Config{
	"default": {
		Low: 0, High: 3, MaxIterations: 10, DelaySeconds: 1.0,
	},
	"negative": {
		Low: -3, High: 0, MaxIterations: 10, DelaySeconds: 1.0,
	},
	"converge": {
		Low: 0, High: 3, MaxIterations: 50, DelaySeconds: 0.25,
	},
	"wide": {
		Low: 0, High: 100, MaxIterations: 40, DelaySeconds: 0.2,
	},
	"tight": {
		Low: 1.9, High: 2.1, MaxIterations: 30, DelaySeconds: 0.5,
	},
	"stepper": {
		Low: -5, High: -1, MaxIterations: 25, DelaySeconds: 1.0, StepMode: true,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := cfg.Clone()
	if cp.Theme == "" {
		cp.Theme = DefaultTheme
	}
	return cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
