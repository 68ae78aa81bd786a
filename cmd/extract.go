package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"invoiceparser/internal/cache"
	"invoiceparser/internal/config"
	"invoiceparser/internal/extract"
	"invoiceparser/internal/logger"
	"invoiceparser/internal/normalize"
	"invoiceparser/internal/preparer"
)

var extractCmd = &cobra.Command{
	Use:   "extract [document]",
	Short: "Extract structured invoice data from a PDF or image",
	Long: `Extract structured invoice data from a document using one of the
backend pipelines. Every pipeline produces the same canonical invoice JSON.

Available methods:
  di_gpt_image        Document AI layout + GPT with page image (default)
  di_gpt_no_image     Document AI layout + GPT, text only
  gpt_only            GPT with page image only
  di_small_llm        Document AI layout + small instruction model
  vision_gpt          Google Vision OCR + GPT with page image
  claude_vision       Bedrock Claude with page image only
  textract_claude     AWS Textract OCR + Bedrock Claude with page image
  bedrock_automation  Bedrock Data Automation + Bedrock Claude

Required environment variables depend on the method:
  OPENAI_ENDPOINT, OPENAI_KEY             - Azure OpenAI methods
  GOOGLE_CLOUD_PROJECT, LAYOUT_PROCESSOR_ID,
  GOOGLE_APPLICATION_CREDENTIALS          - Document AI / Vision methods
  AWS_REGION (plus the AWS credential chain) - Claude / Textract methods
  AWS_BUCKET_NAME, AWS_PROJECT_ID         - bedrock_automation

PDF inputs additionally need poppler's pdftoppm on PATH.`,
	Example: `  # Extract with the default method, JSON to stdout
  invoiceparser extract invoice.pdf

  # Pick a method and save the result
  invoiceparser extract invoice.pdf --method claude_vision -o result.json

  # Bypass the result cache
  invoiceparser extract invoice.pdf --no-cache`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("method", "m", string(extract.MethodDIGPTImage),
		fmt.Sprintf("Extraction method (%s)", strings.Join(extract.MethodNames(), ", ")))
	extractCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().Bool("no-cache", false, "Bypass the result cache")
	extractCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract-cmd")

	methodName, _ := cmd.Flags().GetString("method")
	outputPath, _ := cmd.Flags().GetString("output")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	docPath := args[0]

	method, err := extract.ParseMethod(methodName)
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(extract.MethodNames(), ", "))
	}

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
		Str("method", string(method)).
		Bool("no_cache", noCache).
		Msg("Starting invoice extraction")

	orchestrator := newOrchestrator(cfg, !noCache)

	startTime := time.Now()
	invoice, err := orchestrator.Extract(ctx, docPath, method)
	if err != nil {
		log.Error().Err(err).Msg("Extraction failed")
		return err
	}
	normalize.InferTaxDetails(invoice)

	log.Info().
		Str("method", string(method)).
		Dur("duration", time.Since(startTime)).
		Msg("Extraction completed successfully")

	return writeJSON(invoice, outputPath, log)
}

// newOrchestrator wires the orchestrator from the application configuration.
func newOrchestrator(cfg *config.Config, useCache bool) *extract.Orchestrator {
	var resultCache *cache.Cache
	if useCache {
		resultCache = cache.New(cfg.CacheDir, extract.MethodNames())
	}
	return extract.NewOrchestrator(extract.NewFactory(cfg), preparer.NewPopplerPreparer(cfg), resultCache)
}

// validateDocument checks that the input exists and is a non-empty regular file.
func validateDocument(path string, log zerolog.Logger) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().Str("file", path).Msg("Document not found")
			return fmt.Errorf("document not found: %s", path)
		}
		return fmt.Errorf("error accessing document: %w", err)
	}
	if !info.Mode().IsRegular() {
		log.Error().Str("file", path).Msg("Path is not a regular file")
		return fmt.Errorf("path is not a regular file: %s", path)
	}
	if info.Size() == 0 {
		log.Error().Str("file", path).Msg("Document is empty")
		return fmt.Errorf("document is empty: %s", path)
	}
	return nil
}

// signalContext creates a context with a timeout that is also canceled on
// SIGINT/SIGTERM.
func signalContext(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// writeJSON pretty-prints v to the output file, or stdout when no path is set.
func writeJSON(v any, outputPath string, log zerolog.Logger) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal output to JSON")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0o644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(jsonData)).
			Msg("Result written to file")
		return nil
	}

	if _, err := os.Stdout.Write(jsonData); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Println()
	return nil
}
