package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/san-kum/bisect/internal/bisect"
	"github.com/san-kum/bisect/internal/logging"
	"github.com/san-kum/bisect/internal/metrics"
	"github.com/san-kum/bisect/internal/storage"
)

type runOptions struct {
	settingsFlags
	metricsAddr string
	save        bool
}

func (a *app) runCmd() *cobra.Command {
	o := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run bisection in the terminal without the visualizer",
		Long: `Run bisection headless. In auto mode a step is taken every --delay
seconds. With --step each line read from stdin takes one step; a line
starting with q stops the run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHeadless(cmd, o)
		},
	}
	o.settingsFlags.register(cmd)
	cmd.Flags().StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")
	cmd.Flags().BoolVar(&o.save, "save", true, "save the run to the data directory")
	return cmd
}

func (a *app) runHeadless(cmd *cobra.Command, o *runOptions) error {
	cfg, err := o.resolve(cmd)
	if err != nil {
		return err
	}
	rc := cfg.RunConfig()

	e := bisect.New(nil)
	e.SetLogger(a.logger)
	rec := storage.NewRecorder(e.Function().String(), rc)
	e.AddObserver(rec)

	if o.metricsAddr != "" {
		collector := metrics.NewCollector()
		e.AddObserver(collector)
		shutdown := a.serveMetrics(o.metricsAddr, collector)
		defer shutdown()
	}

	if err := e.Configure(rc); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s on %s, at most %d iterations\n", e.Function(), rc.Interval(), rc.MaxIterations)

	ctx := cmd.Context()
	if rc.StepMode {
		err = runManual(ctx, e, cmd.InOrStdin(), out)
	} else {
		err = runAuto(ctx, e, cmd.ErrOrStderr())
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	run := rec.Run()
	run.Outcome = e.State()
	run.Metrics = metrics.Summarize(run.Steps)
	if !rc.StepMode {
		printSteps(out, run.Steps)
	}
	printOutcome(out, run)

	if o.save {
		id, serr := a.saveRun(run)
		if serr != nil {
			return serr
		}
		a.logger.Info("run saved", logging.String("id", id))
		fmt.Fprintf(out, "saved: %s\n", id)
	}
	return err
}

// runAuto starts the timed loop and follows its events, showing progress on
// a spinner.
func runAuto(ctx context.Context, e *bisect.Engine, status io.Writer) error {
	events := e.Events()
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(status))
	s.Suffix = " starting"
	s.Start()
	defer s.Stop()

	if err := e.Start(bisect.Auto); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			e.Stop()
			return ctx.Err()
		case ev := <-events:
			if ev.Kind != bisect.EventStep {
				return nil
			}
			s.Lock()
			s.Suffix = fmt.Sprintf(" iteration %d  error %.3g", ev.Result.Iteration, ev.Result.Error)
			s.Unlock()
		}
	}
}

// runManual takes one step per input line until the run ends, the input is
// exhausted or a line starts with q.
func runManual(ctx context.Context, e *bisect.Engine, in io.Reader, out io.Writer) error {
	if err := e.Start(bisect.Manual); err != nil {
		return err
	}
	fmt.Fprintln(out, "press enter to step, q to stop")
	printStepHeader(out)

	lines := make(chan string)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-quit:
				return
			}
		}
	}()

	for !e.State().Terminal() {
		select {
		case <-ctx.Done():
			e.Stop()
			return ctx.Err()
		case line, ok := <-lines:
			if !ok || strings.HasPrefix(strings.TrimSpace(strings.ToLower(line)), "q") {
				e.Stop()
				return nil
			}
			r, err := e.Step()
			if err != nil {
				return err
			}
			printStepRow(out, r)
		}
	}
	return nil
}

const stepRowFormat = "%4d  %14.9f  %14.9f  %14.9f  %12.4e  %10.3e\n"

func printStepHeader(w io.Writer) {
	fmt.Fprintf(w, "%4s  %14s  %14s  %14s  %12s  %10s\n", "ITER", "LOW", "HIGH", "MIDPOINT", "F(MID)", "ERROR")
}

func printStepRow(w io.Writer, r bisect.StepResult) {
	fmt.Fprintf(w, stepRowFormat, r.Iteration, r.Low, r.High, r.Midpoint, r.FMid, r.Error)
}

func printSteps(w io.Writer, steps []bisect.StepResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ITER\tLOW\tHIGH\tMIDPOINT\tF(MID)\tERROR\t")
	for _, r := range steps {
		fmt.Fprintf(tw, "%d\t%.9f\t%.9f\t%.9f\t%.4e\t%.3e\t\n", r.Iteration, r.Low, r.High, r.Midpoint, r.FMid, r.Error)
	}
	tw.Flush()
}

func printOutcome(w io.Writer, run storage.Run) {
	n := len(run.Steps)
	switch run.Outcome {
	case bisect.Converged:
		last := run.Steps[n-1]
		fmt.Fprintf(w, "converged after %d iterations: root ≈ %.6f (error %.3g)\n", n, last.Root(), last.Error)
	case bisect.Exhausted:
		last := run.Steps[n-1]
		fmt.Fprintf(w, "iteration limit reached after %d iterations: root ≈ %.6f (error %.3g)\n", n, last.Root(), last.Error)
	default:
		fmt.Fprintf(w, "%s after %d iterations\n", run.Outcome, n)
	}
}

// serveMetrics exposes the collector until the returned function is called.
func (a *app) serveMetrics(addr string, c *metrics.Collector) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("metrics server failed", logging.String("addr", addr), logging.Err(err))
		}
	}()
	a.logger.Info("serving metrics", logging.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
