package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/systmms/confsecrets/cmd/confsecrets/commands"
	"github.com/systmms/confsecrets/internal/config"
	cserrors "github.com/systmms/confsecrets/internal/errors"
	"github.com/systmms/confsecrets/internal/logging"
	"github.com/systmms/confsecrets/internal/metrics"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", cserrors.SimplifyError(err))
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	var (
		noColor         bool
		debug           bool
		metricsTextfile string
	)

	cfg := &config.Config{Logger: logging.New(false, false)}
	rt := commands.NewRuntime(cfg)

	rootCmd := &cobra.Command{
		Use:   "confsecrets",
		Short: "Resolve configuration values from the environment, keychains and 1Password",
		Long: `confsecrets resolves the values of a configuration file. Values are either
literals or references to environment variables, OS keychain entries,
1Password items, or answers typed at a prompt.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg.Logger = logging.New(debug, noColor)
			if metricsTextfile != "" {
				rt.Metrics = metrics.New()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfg.Path, "config", config.DefaultPath, "Config file path")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&cfg.NonInteractive, "non-interactive", false, "Never prompt; fail ASK references and 1Password signin")
	rootCmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file on exit")

	rootCmd.AddCommand(
		commands.NewResolveCommand(rt),
		commands.NewGetItemCommand(rt),
		commands.NewSigninCommand(rt),
		commands.NewDoctorCommand(rt),
		commands.NewCompletionCommand(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if rt.Metrics != nil {
		if werr := rt.Metrics.WriteTextfile(metricsTextfile); werr != nil {
			cfg.Logger.Warn("Failed to write metrics to %s: %v", metricsTextfile, werr)
		}
	}
	return err
}
