package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dmikhr/upstream-sync/internal/config"
	"github.com/dmikhr/upstream-sync/internal/logger"
	"github.com/dmikhr/upstream-sync/internal/service/sync"
	"github.com/dmikhr/upstream-sync/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// logLevel is the minimum level for console output.
	logLevel string

	// rootCmd represents the base command that runs one synchronization pass.
	rootCmd = &cobra.Command{
		Use:   "upstream-sync",
		Short: "Synchronize deployment descriptors with the latest upstream release",
		Long: "Fetch the latest release of the tracked upstream project, compare it with " +
			"the version stored in the package descriptors and, when it moved, bump every " +
			"descriptor pair in scope and report the result for the calling pipeline. " +
			"Re-running against a current upstream performs no writes.",
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Credentials may live in a local .env during development.
			_ = godotenv.Load()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &sync.Options{
				ConfigPath: configPath,
			}

			_, err := sync.Run(ctx, options)

			return err
		},
	}
)

// Execute runs the upstream-sync CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "minimum log level (debug|info|warn|error)")
}
