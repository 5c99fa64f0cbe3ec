package main

import (
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/bisect/internal/bisect"
	"github.com/san-kum/bisect/internal/export"
	"github.com/san-kum/bisect/internal/function"
	"github.com/san-kum/bisect/internal/storage"
)

// runID returns the run named on the command line or the latest one.
func (a *app) runID(st *storage.Store, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return st.Latest()
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(a.dataDir).List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				cmd.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tINTERVAL\tITERS\tOUTCOME\tROOT")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t[%g, %g]\t%d/%d\t%s\t%.6f\n",
					run.ID,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Low, run.High,
					run.Iterations, run.MaxIterations,
					run.Outcome,
					run.Root,
				)
			}
			return w.Flush()
		},
	}
}

func (a *app) plotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot error and midpoint of a run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(a.dataDir)
			id, err := a.runID(st, args)
			if err != nil {
				return err
			}
			meta, err := st.Load(id)
			if err != nil {
				return err
			}
			steps, err := st.LoadSteps(id)
			if err != nil {
				return err
			}
			if len(steps) == 0 {
				return fmt.Errorf("no data to plot")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run: %s\n", meta.ID)
			fmt.Fprintf(out, "function: %s\n", meta.Function)
			fmt.Fprintf(out, "outcome: %s after %d iterations\n\n", meta.Outcome, meta.Iterations)

			errs := make([]float64, len(steps))
			mids := make([]float64, len(steps))
			for i, s := range steps {
				errs[i] = math.Log10(s.Error)
				mids[i] = s.Midpoint
			}
			fmt.Fprintln(out, asciigraph.Plot(errs, asciigraph.Height(10), asciigraph.Width(60), asciigraph.Caption("log10 error vs iteration")))
			fmt.Fprintln(out)
			fmt.Fprintln(out, asciigraph.Plot(mids, asciigraph.Height(10), asciigraph.Width(60), asciigraph.Caption("midpoint vs iteration")))
			return nil
		},
	}
}

func (a *app) exportJSONCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(a.dataDir)
			id, err := a.runID(st, args)
			if err != nil {
				return err
			}
			return st.WriteJSON(cmd.OutOrStdout(), id)
		},
	}
}

func (a *app) exportCSVCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run steps to CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(a.dataDir)
			id, err := a.runID(st, args)
			if err != nil {
				return err
			}
			steps, err := st.LoadSteps(id)
			if err != nil {
				return err
			}
			return storage.WriteStepsCSV(cmd.OutOrStdout(), steps)
		},
	}
}

func (a *app) exportSVGCmd() *cobra.Command {
	var outPath string
	opts := export.DefaultSVGOptions()

	cmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a run as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(a.dataDir)
			id, err := a.runID(st, args)
			if err != nil {
				return err
			}
			steps, err := st.LoadSteps(id)
			if err != nil {
				return err
			}

			path := outPath
			if path == "" {
				path = id + ".svg"
			}
			if path == "-" {
				return export.WriteSVG(cmd.OutOrStdout(), function.NewQuadratic(), steps, opts)
			}
			if err := export.SaveSVG(path, function.NewQuadratic(), steps, opts); err != nil {
				return err
			}
			cmd.Printf("wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.svg, - for stdout)")
	cmd.Flags().IntVar(&opts.Width, "width", opts.Width, "image width")
	cmd.Flags().IntVar(&opts.Height, "height", opts.Height, "image height")
	return cmd
}

// outcomeLabel names a terminal state the way list and batch print it.
func outcomeLabel(s bisect.State) string {
	if s == bisect.Exhausted {
		return "exhausted (limit)"
	}
	return s.String()
}
