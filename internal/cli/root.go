// Package cli defines the gradeconsolidator command tree.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"GradeConsolidator/internal/app"
	"GradeConsolidator/internal/config"
	"GradeConsolidator/internal/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "gradeconsolidator",
	Short: "Consolidate spreadsheet grade exports and report on them",
	Long: `gradeconsolidator merges per-class grade exports (.ods, .xlsx, .csv) into one table
and publishes it through a web dashboard, PDF reports and charts.

Configuration is read from --config (or GRADES_CONFIG), then .env and GRADES_* variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML configuration file")
}

// Main runs the command tree and returns the process exit code. Failures are
// logged through logger.
func Main(ctx context.Context, logger *slog.Logger) int {
	if err := Execute(ctx); err != nil {
		logger.Error("command failed", "error", err)
		return 1
	}
	return 0
}

// bootstrap loads the configuration and builds the application graph.
func bootstrap() (*app.Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	return app.New(cfg, logger), nil
}
