package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/lagrange/internal/experiment"
	"github.com/san-kum/lagrange/internal/logging"
	"github.com/san-kum/lagrange/internal/metrics"
	"github.com/san-kum/lagrange/internal/storage"
	"github.com/san-kum/lagrange/internal/viz"
)

var (
	dataDir     string
	logLevel    string
	logFormat   string
	metricsFile string
	configFile  string
	preset      string

	registry  = experiment.NewRegistry()
	collector *metrics.Collector
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "lagrange",
		Short:         "simulate and render classical-mechanics systems",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			base := logging.NewFromEnv(logLevel, logFormat)
			ctx, _ := logging.WithRunLogger(cmd.Context(), base)
			cmd.SetContext(ctx)

			var err error
			collector, err = metrics.NewCollector(nil)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if metricsFile == "" || collector == nil {
				return nil
			}
			return collector.WriteTextfile(metricsFile)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".lagrange", "run storage directory")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	pf.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	rootCmd.AddCommand(
		simulationCommands()...,
	)
	rootCmd.AddCommand(
		runCommands()...,
	)
	rootCmd.AddCommand(
		presetsCmd(),
		scenarioCmd(),
		systemsCmd(),
		sweepCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, viz.ErrorText.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func logger(cmd *cobra.Command) logging.Logger {
	return logging.FromContext(cmd.Context())
}
