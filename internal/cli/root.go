// Package cli contains the articlegate commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ArticleGate/internal/config"
	"ArticleGate/internal/logging"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
	logger  *slog.Logger
)

// rootCmd serves the API when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "articlegate",
	Short: "Points-gated article access service",
	Long: `articlegate serves scientific articles whose visibility depends on the
points a reader has earned in each scientific domain.

Example usage:
  articlegate                       # Same as "articlegate serve"
  articlegate serve                 # Start the HTTP API
  articlegate migrate up            # Apply database migrations
  articlegate token --user <uuid>   # Print a signed access token`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: runServe,
}

// ExecuteContext runs the root command with ctx available to every subcommand.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (default from "+config.PathEnv+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func initConfig() error {
	if cfgFile != "" {
		if err := os.Setenv(config.PathEnv, cfgFile); err != nil {
			return fmt.Errorf("set config path: %w", err)
		}
	}
	cfg = config.Load()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	logger = logging.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	logger.Debug("configuration loaded",
		"driver", cfg.Database.Driver,
		"addr", cfg.Server.Addr,
	)
	return nil
}
