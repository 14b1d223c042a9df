package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/forgeplan/forgeplan/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "forgeplan",
	Short: "Dependency-aware phase planning and execution",
	Long: `forgeplan turns a decomposed feature list into a dependency-respecting,
capacity-bounded phase plan and executes it phase by phase with validation
gates and rollback support.

Use 'forgeplan plan' to analyze a feature file and render the phase plan.
Use 'forgeplan build' to execute the plan with the configured generator.`,
	SilenceUsage: true,
}

var (
	logLevel  string
	logFormat string
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg := log.DefaultConfig()
		cfg.Level = log.ParseLevel(logLevel)
		if logFormat == "json" {
			cfg.Format = log.FormatJSON
		} else {
			cfg.Format = log.FormatText
		}
		log.SetDefaultLogger(log.New(cfg))
		return nil
	}
}
