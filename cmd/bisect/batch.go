package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/bisect/internal/automation"
	"github.com/san-kum/bisect/internal/config"
	"github.com/san-kum/bisect/internal/function"
	"github.com/san-kum/bisect/internal/logging"
	"github.com/san-kum/bisect/internal/metrics"
	"github.com/san-kum/bisect/internal/storage"
)

func (a *app) batchCmd() *cobra.Command {
	var (
		parallel int
		delay    float64
		save     bool
	)

	cmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run every entry of a scenario file concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := automation.LoadScenario(args[0])
			if err != nil {
				return newConfigError("scenario: %w", err)
			}

			opts := automation.Options{Parallel: parallel, Logger: a.logger}
			if delay > 0 {
				opts.Delay = time.Duration(delay * float64(time.Second))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "scenario: %s (%d runs)\n", scenario.Name, len(scenario.Runs))
			if scenario.Description != "" {
				fmt.Fprintf(out, "%s\n", scenario.Description)
			}

			outcomes, err := automation.RunScenario(cmd.Context(), scenario, opts)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tINTERVAL\tITERS\tOUTCOME\tROOT\tERROR\tID")
			for _, o := range outcomes {
				id := "-"
				if save {
					id, err = a.saveRun(storage.Run{
						Function: function.NewQuadratic().String(),
						Config:   o.Config,
						Outcome:  o.State,
						Steps:    o.Steps,
						Metrics:  metrics.Summarize(o.Steps),
					})
					if err != nil {
						return err
					}
					a.logger.Debug("run saved", logging.String("run", o.Name), logging.String("id", id))
				}
				fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\t%.6f\t%.3g\t%s\n",
					o.Name, o.Config.Interval(), o.Iterations(), o.Config.MaxIterations,
					outcomeLabel(o.State), o.Root(), o.Error(), id)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&parallel, "parallel", 0, "maximum concurrent runs (0 = all)")
	cmd.Flags().Float64Var(&delay, "delay", 0, "override every run's delay in seconds")
	cmd.Flags().BoolVar(&save, "save", false, "save each run to the data directory")
	return cmd
}

func presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLOW\tHIGH\tITERATIONS\tDELAY\tMODE")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				mode := "auto"
				if p.StepMode {
					mode = "step"
				}
				fmt.Fprintf(w, "%s\t%g\t%g\t%d\t%gs\t%s\n", name, p.Low, p.High, p.MaxIterations, p.DelaySeconds, mode)
			}
			return w.Flush()
		},
	}
}
