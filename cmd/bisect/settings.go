package main

import (
	"github.com/spf13/cobra"

	"github.com/san-kum/bisect/internal/config"
)

// settingsFlags are the run settings shared by run and tui.
type settingsFlags struct {
	low        float64
	high       float64
	iterations int
	delay      float64
	step       bool
	preset     string
	configFile string
}

func (f *settingsFlags) register(cmd *cobra.Command) {
	d := config.DefaultConfig()
	cmd.Flags().Float64Var(&f.low, "low", d.Low, "left endpoint of the interval")
	cmd.Flags().Float64Var(&f.high, "high", d.High, "right endpoint of the interval")
	cmd.Flags().IntVar(&f.iterations, "iterations", d.MaxIterations, "maximum number of iterations")
	cmd.Flags().Float64Var(&f.delay, "delay", d.DelaySeconds, "seconds between automatic steps")
	cmd.Flags().BoolVar(&f.step, "step", d.StepMode, "advance one step at a time")
	cmd.Flags().StringVar(&f.preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&f.configFile, "config", "", "config file path (yaml)")
}

// resolve layers the defaults, a preset, a config file, BISECT_* variables
// and finally any flag set on the command line. Each layer only overrides
// the keys it sets.
func (f *settingsFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if f.preset != "" {
		cfg = config.GetPreset(f.preset)
		if cfg == nil {
			return nil, newConfigError("unknown preset: %s (available: %v)", f.preset, config.ListPresets())
		}
	}

	if f.configFile != "" {
		loaded, err := config.LoadOver(f.configFile, cfg)
		if err != nil {
			return nil, newConfigError("config: %w", err)
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, newConfigError("environment: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("low") {
		cfg.Low = f.low
	}
	if flags.Changed("high") {
		cfg.High = f.high
	}
	if flags.Changed("iterations") {
		cfg.MaxIterations = f.iterations
	}
	if flags.Changed("delay") {
		cfg.DelaySeconds = f.delay
	}
	if flags.Changed("step") {
		cfg.StepMode = f.step
	}
	return cfg, nil
}
