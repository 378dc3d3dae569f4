package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"assetdesk/internal/infrastructure/cache"
	"assetdesk/internal/infrastructure/storage/postgres"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the filter domain cache",
}

var cacheFlushCmd = &cobra.Command{
	Use:   "flush [namespace]",
	Short: "Ask every server instance to flush a cache namespace",
	Long: `Publish a flush request on the invalidation channel. Servers with an
in-memory cache drop the matching keys. Without a namespace every key is
dropped.

Examples:
  reportctl cache flush
  reportctl cache flush domains
  reportctl cache flush domains:lookup`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCacheFlush,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheFlushCmd)
}

func runCacheFlush(cmd *cobra.Command, args []string) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	namespace := ""
	if len(args) == 1 {
		namespace = args[0]
	}

	ctx := cmd.Context()
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MinConns = 0
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := cache.Notify(ctx, pool.Unwrap(), namespace); err != nil {
		return err
	}

	if namespace == "" {
		namespace = "*"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "flush requested for %s\n", namespace)
	return nil
}
