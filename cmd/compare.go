package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"invoiceparser/internal/config"
	"invoiceparser/internal/logger"
	"invoiceparser/internal/normalize"
)

var compareCmd = &cobra.Command{
	Use:   "compare [document]",
	Short: "Run every extraction method against one document",
	Long: `Run every extraction method against the same document sequentially and
collect the per-method results into one JSON array. A method that fails (for
example because its backend is not configured) contributes an error entry and
does not stop the remaining methods.

This is the evaluation mode: because every method emits the same canonical
invoice schema, the rows are directly comparable field by field.`,
	Example: `  # Compare all methods, JSON to stdout
  invoiceparser compare invoice.pdf

  # Save the comparison for later analysis
  invoiceparser compare invoice.pdf -o comparison.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	compareCmd.Flags().Bool("no-cache", false, "Bypass the result cache")
	compareCmd.Flags().Int("timeout", 1800, "Overall timeout in seconds")
}

func runCompare(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("compare-cmd")

	outputPath, _ := cmd.Flags().GetString("output")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	docPath := args[0]

	if err := validateDocument(docPath, log); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := signalContext(timeoutSecs, log)
	defer cancel()

	log.Info().
		Str("file", docPath).
		Bool("no_cache", noCache).
		Msg("Starting method comparison")

	orchestrator := newOrchestrator(cfg, !noCache)

	startTime := time.Now()
	results := orchestrator.ExtractAll(ctx, docPath)

	succeeded := 0
	for i := range results {
		if results[i].Invoice != nil {
			normalize.InferTaxDetails(results[i].Invoice)
			succeeded++
		}
	}

	log.Info().
		Int("methods", len(results)).
		Int("succeeded", succeeded).
		Dur("duration", time.Since(startTime)).
		Msg("Comparison completed")

	return writeJSON(results, outputPath, log)
}
