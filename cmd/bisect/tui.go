package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/bisect/internal/bisect"
	"github.com/san-kum/bisect/internal/logging"
	"github.com/san-kum/bisect/internal/metrics"
	"github.com/san-kum/bisect/internal/storage"
	"github.com/san-kum/bisect/internal/viz"
)

type tuiOptions struct {
	settingsFlags
	theme string
	save  bool
}

func (o *tuiOptions) register(cmd *cobra.Command) {
	o.settingsFlags.register(cmd)
	cmd.Flags().StringVar(&o.theme, "theme", "", "color theme "+themeList())
	cmd.Flags().BoolVar(&o.save, "save", false, "save the last finished run on exit")
}

func themeList() string {
	return "(" + strings.Join(viz.ThemeNames(), ", ") + ")"
}

func (a *app) runTUI(cmd *cobra.Command, o *tuiOptions) error {
	cfg, err := o.resolve(cmd)
	if err != nil {
		return err
	}
	if o.theme != "" {
		if viz.GetTheme(o.theme).Name != o.theme {
			return newConfigError("unknown theme: %s %s", o.theme, themeList())
		}
		cfg.Theme = o.theme
	}

	e := bisect.New(nil)
	e.SetLogger(a.logger)
	rec := storage.NewRecorder(e.Function().String(), cfg.RunConfig())
	e.AddObserver(rec)

	final, err := viz.Run(cmd.Context(), e, cfg)
	if err != nil {
		return err
	}
	if !o.save || !rec.Finished() {
		return nil
	}

	// Settings may have been edited in the UI since the recorder was built.
	run := rec.Run()
	run.Config = e.Config()
	run.Metrics = metrics.Summarize(run.Steps)
	id, err := a.saveRun(run)
	if err != nil {
		return err
	}
	a.logger.Info("run saved", logging.String("id", id), logging.String("theme", final.Theme))
	cmd.Printf("saved: %s\n", id)
	return nil
}

func (a *app) saveRun(run storage.Run) (string, error) {
	st := storage.New(a.dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	return st.Save(run)
}
