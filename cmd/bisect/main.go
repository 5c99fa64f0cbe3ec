package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/bisect/internal/logging"
)

// app holds the global flags and the logger built from them.
type app struct {
	dataDir  string
	logLevel string
	logJSON  bool
	logger   logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: logging.NewNopLogger()}
	tui := &tuiOptions{}

	rootCmd := &cobra.Command{
		Use:           "bisect",
		Short:         "bisection method visualizer for f(x) = x² - 4",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = logging.New(cmd.ErrOrStderr(), a.logLevel, a.logJSON)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd, tui)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.dataDir, "data", ".bisect", "data directory")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "log as JSON")
	tui.register(rootCmd)

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive visualizer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd, tui)
		},
	}
	tui.register(tuiCmd)

	rootCmd.AddCommand(
		tuiCmd,
		a.runCmd(),
		a.listCmd(),
		a.plotCmd(),
		a.exportJSONCmd(),
		a.exportCSVCmd(),
		a.exportSVGCmd(),
		presetsCmd(),
		a.batchCmd(),
	)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		rootCmd.PrintErrln("error:", err)
	}
	os.Exit(exitCode(err))
}
