package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"invoiceparser/internal/cache"
	"invoiceparser/internal/config"
	"invoiceparser/internal/extract"
	"invoiceparser/internal/logger"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the extraction result cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [document]",
	Short: "Clear cached extraction results",
	Long: `Clear cached extraction results. With a document argument, only that
document's entries (across all methods) are removed; without one, the whole
cache is cleared.`,
	Example: `  # Forget one document's cached results
  invoiceparser cache clear invoice.pdf

  # Clear everything
  invoiceparser cache clear`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("cache-cmd")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	resultCache := cache.New(cfg.CacheDir, extract.MethodNames())

	if len(args) == 1 {
		if err := resultCache.Invalidate(args[0]); err != nil {
			return err
		}
		log.Info().Str("document", args[0]).Msg("Cleared cached results for document")
		fmt.Printf("Cleared cached results for %s\n", args[0])
		return nil
	}

	if err := resultCache.InvalidateAll(); err != nil {
		return err
	}
	log.Info().Str("dir", resultCache.Dir()).Msg("Cleared result cache")
	fmt.Println("Cleared result cache")
	return nil
}
