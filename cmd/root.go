// Package cmd defines and implements the CLI commands for the walkthroughs executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/twir-walkthroughs/internal/app"
	"github.com/JakeFAU/twir-walkthroughs/internal/config"
	"github.com/JakeFAU/twir-walkthroughs/internal/logging"
	"github.com/JakeFAU/twir-walkthroughs/internal/walkthrough"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the services commands use. Tests inject a fake through newApp.
type App interface {
	Close()
	Config() config.Config
	GetLogger() *zap.Logger
	GetStore() walkthrough.ArchiveStore
	GetFetcher() walkthrough.Fetcher
}

// newApp is the application factory, replaceable in tests.
var newApp = func(ctx context.Context, cfgPath string) (App, error) {
	return app.NewApp(ctx, cfgPath)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "walkthroughs",
		Short: "Collects the Rust Walkthroughs articles from This Week in Rust.",
		Long: `walkthroughs reads the This Week in Rust archive, extracts every
article listed under "Rust Walkthroughs" in each issue, and caches the
result. The cache can be printed, exported to plain text, or served over HTTP.`,
		SilenceUsage: true,

		// Builds the application services before any subcommand runs.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cmd.Context(), cfgFile)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or $HOME/.twir-walkthroughs/config.yaml)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logger, lerr := logging.New(logging.Config{})
		if lerr != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		logger.Fatal("Command execution failed", zap.Error(err))
	}
}
