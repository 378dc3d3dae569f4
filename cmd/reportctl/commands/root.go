// Package commands implements the reportctl subcommands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"assetdesk/internal/config"
	"assetdesk/pkg/logger"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	verbose bool
	envFile string

	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "reportctl",
	Short: "Command line access to assetdesk reports",
	Long: `reportctl runs the assetdesk report pipeline outside the HTTP server.

It reads the same environment (and .env file) as the server, lists the
report catalog, exports reports straight from the asset backend, mints
development tokens and flushes the shared domain cache.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		var err error
		log, err = logger.New(logger.Config{Level: level, Development: true, OutputPaths: []string{"stderr"}})
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger.SetDefault(log)

		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		cfg, err = config.Load(files...)
		return err
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "read settings from this file instead of .env")
}
