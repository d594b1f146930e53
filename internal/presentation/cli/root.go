// Package cli implements the fraudctl command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bibbank/fraudml/internal/infrastructure/config"
	"github.com/bibbank/fraudml/pkg/observability"
)

// app carries the state shared by every subcommand once the root pre-run has
// loaded configuration.
type app struct {
	configPath string
	logLevel   string
	dataDir    string

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand builds the fraudctl command tree.
func NewRootCommand(version string) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "fraudctl",
		Short: "fraudctl - fraud detection model pipeline",
		Long: `fraudctl runs the fraud detection pipeline stages: synthesize a labelled
transaction dataset, build features, train and evaluate the classifier, and
validate a deployed inference service against the held-out partition.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", os.Getenv("FRAUDML_CONFIG"), "pipeline config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "directory for dataset and feature files")

	rootCmd.AddCommand(a.synthesizeCmd())
	rootCmd.AddCommand(a.featuresCmd())
	rootCmd.AddCommand(a.trainCmd())
	rootCmd.AddCommand(a.evaluateCmd())
	rootCmd.AddCommand(a.validateCmd())
	rootCmd.AddCommand(a.migrateCmd())
	rootCmd.AddCommand(a.historyCmd())
	rootCmd.AddCommand(a.eventsCmd())
	rootCmd.AddCommand(a.configCmd())

	return rootCmd
}

// Execute runs fraudctl and prints any error to stderr. The caller maps a
// non-nil error to exit status 1.
func Execute(ctx context.Context, version string, args []string) error {
	rootCmd := NewRootCommand(version)
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFile(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}

	a.cfg = cfg
	a.logger = observability.InitLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
	return nil
}

func (a *app) out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
