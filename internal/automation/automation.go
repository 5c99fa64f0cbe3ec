package automation

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/bisect/internal/bisect"
	"github.com/san-kum/bisect/internal/config"
	"github.com/san-kum/bisect/internal/logging"
)

// Scenario is a named batch of runs loaded from YAML.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun starts from a preset (or the defaults) and overrides any field
// that is set.
type ScenarioRun struct {
	Name          string   `yaml:"name"`
	Preset        string   `yaml:"preset"`
	Low           *float64 `yaml:"low"`
	High          *float64 `yaml:"high"`
	MaxIterations *int     `yaml:"max_iterations"`
	DelaySeconds  *float64 `yaml:"delay_seconds"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %q has no runs", scenario.Name)
	}
	return &scenario, nil
}

// Config resolves the run's effective configuration. Runs always execute in
// auto mode.
func (r ScenarioRun) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if r.Preset != "" {
		cfg = config.GetPreset(r.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", r.Preset)
		}
	}
	if r.Low != nil {
		cfg.Low = *r.Low
	}
	if r.High != nil {
		cfg.High = *r.High
	}
	if r.MaxIterations != nil {
		cfg.MaxIterations = *r.MaxIterations
	}
	if r.DelaySeconds != nil {
		cfg.DelaySeconds = *r.DelaySeconds
	}
	cfg.StepMode = false
	return cfg, nil
}

// Options tune how a scenario is executed.
type Options struct {
	// Parallel bounds concurrent runs; zero or less means one per run.
	Parallel int
	// Delay replaces every run's step delay when positive.
	Delay time.Duration
	// Observers is called once per run to attach extra observers.
	Observers func(name string) []bisect.Observer
	Logger    logging.Logger
}

// Outcome is the result of one scenario run.
type Outcome struct {
	Name   string
	Config bisect.RunConfig
	State  bisect.State
	Steps  []bisect.StepResult
}

func (o Outcome) Iterations() int { return len(o.Steps) }

// Root is the midpoint of the final bracket, or zero when the run took no
// steps.
func (o Outcome) Root() float64 {
	if len(o.Steps) == 0 {
		return 0
	}
	return o.Steps[len(o.Steps)-1].Root()
}

func (o Outcome) Error() float64 {
	if len(o.Steps) == 0 {
		return o.Config.Interval().HalfWidth()
	}
	return o.Steps[len(o.Steps)-1].Error
}

// RunScenario executes every run concurrently, each on its own engine, and
// returns outcomes in scenario order. The first failing run cancels the rest.
func RunScenario(ctx context.Context, scenario *Scenario, opts Options) ([]Outcome, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	outcomes := make([]Outcome, len(scenario.Runs))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Parallel > 0 {
		g.SetLimit(opts.Parallel)
	}

	names := make([]string, len(scenario.Runs))
	configs := make([]bisect.RunConfig, len(scenario.Runs))
	for i, run := range scenario.Runs {
		names[i] = run.Name
		if names[i] == "" {
			names[i] = fmt.Sprintf("run-%d", i+1)
		}
		cfg, err := run.Config()
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", names[i], err)
		}
		configs[i] = cfg.RunConfig()
		if opts.Delay > 0 {
			configs[i].Delay = opts.Delay
		}
	}

	for i, rc := range configs {
		i, rc := i, rc
		name := names[i]
		g.Go(func() error {
			var extra []bisect.Observer
			if opts.Observers != nil {
				extra = opts.Observers(name)
			}
			out, err := runOne(gctx, name, rc, extra, logger)
			if err != nil {
				return fmt.Errorf("run %s: %w", name, err)
			}
			outcomes[i] = out
			logger.Info("scenario run finished",
				logging.String("run", name),
				logging.String("outcome", out.State.String()),
				logging.Int("iterations", out.Iterations()),
				logging.Float64("root", out.Root()),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// runOne drives a single auto run, collecting steps from the engine's event
// queue until the terminal event arrives.
func runOne(ctx context.Context, name string, rc bisect.RunConfig, observers []bisect.Observer, logger logging.Logger) (Outcome, error) {
	e := bisect.New(nil)
	e.SetLogger(logger)
	for _, o := range observers {
		e.AddObserver(o)
	}
	events := e.Events()

	if err := e.Configure(rc); err != nil {
		return Outcome{}, err
	}
	if err := e.Start(bisect.Auto); err != nil {
		return Outcome{}, err
	}

	out := Outcome{Name: name, Config: rc}
	for {
		select {
		case <-ctx.Done():
			e.Stop()
			return Outcome{}, ctx.Err()
		case ev := <-events:
			switch ev.Kind {
			case bisect.EventStep:
				out.Steps = append(out.Steps, ev.Result)
			case bisect.EventConverged, bisect.EventExhausted, bisect.EventStopped:
				out.State = ev.State
				return out, nil
			}
		}
	}
}
