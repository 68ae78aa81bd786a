package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invoiceparser/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "invoiceparser",
	Short: "Invoice extraction CLI - multiple backends, one canonical schema",
	Long: `invoiceparser extracts structured data from invoice documents (PDF or
image) using interchangeable backend pipelines: Google Document AI layout
analysis, Azure OpenAI chat deployments, Google Vision and AWS Textract OCR,
Bedrock-hosted Claude, and Bedrock Data Automation.

Every pipeline produces the same canonical invoice JSON, which makes the
backends directly comparable on the same document. Results are cached per
(document, method) pair so repeated runs do not re-bill the backends.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("invoiceparser executed")

		fmt.Println("invoiceparser - invoice extraction with interchangeable backends")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
