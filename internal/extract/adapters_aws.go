package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"invoiceparser/internal/llm"
	"invoiceparser/internal/logger"
	"invoiceparser/internal/ocr"
	"invoiceparser/internal/preparer"
)

// ClaudeVisionAdapter implements claude_vision: the page image alone goes to
// the Bedrock-hosted Claude model.
type ClaudeVisionAdapter struct {
	claude claudeBackend
	log    zerolog.Logger
}

// NewClaudeVisionAdapter creates the claude_vision adapter.
func NewClaudeVisionAdapter(claude claudeBackend) *ClaudeVisionAdapter {
	return &ClaudeVisionAdapter{
		claude: claude,
		log:    logger.WithMethod(string(MethodClaudeVision)),
	}
}

// Method returns the pipeline this adapter implements.
func (a *ClaudeVisionAdapter) Method() Method { return MethodClaudeVision }

// Extract sends the page image to Claude.
func (a *ClaudeVisionAdapter) Extract(ctx context.Context, doc *preparer.Document) (*RawResponse, error) {
	imageData, err := os.ReadFile(doc.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("read page image: %w", err)
	}

	text, err := a.claude.ExtractInvoiceJSON(ctx, imageData, llm.ImageMediaType(doc.ImagePath), "")
	if err != nil {
		return nil, err
	}
	return NewFreeform(text), nil
}

// TextractClaudeAdapter implements textract_claude: Textract OCR text plus
// the page image go to Claude. An OCR failure degrades the request to
// image-only instead of failing the method.
type TextractClaudeAdapter struct {
	ocr    ocr.Service
	claude claudeBackend
	log    zerolog.Logger
}

// NewTextractClaudeAdapter creates the textract_claude adapter.
func NewTextractClaudeAdapter(ocrSvc ocr.Service, claude claudeBackend) *TextractClaudeAdapter {
	return &TextractClaudeAdapter{
		ocr:    ocrSvc,
		claude: claude,
		log:    logger.WithMethod(string(MethodTextractClaude)),
	}
}

// Method returns the pipeline this adapter implements.
func (a *TextractClaudeAdapter) Method() Method { return MethodTextractClaude }

// Extract runs OCR and the Claude call.
func (a *TextractClaudeAdapter) Extract(ctx context.Context, doc *preparer.Document) (*RawResponse, error) {
	imageData, err := os.ReadFile(doc.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("read page image: %w", err)
	}

	supplemental := ""
	text, err := a.ocr.DetectText(ctx, imageData)
	if err != nil {
		a.log.Warn().Err(err).Msg("OCR failed, degrading to image-only request")
	} else {
		supplemental = text
	}

	reply, err := a.claude.ExtractInvoiceJSON(ctx, imageData, llm.ImageMediaType(doc.ImagePath), supplemental)
	if err != nil {
		return nil, err
	}
	return NewFreeform(reply), nil
}

// AutomationAdapter implements bedrock_automation: the source document runs
// through the Data Automation pipeline and its markdown, together with the
// page image, goes to Claude.
type AutomationAdapter struct {
	automation automationBackend
	claude     claudeBackend
	log        zerolog.Logger
}

// NewAutomationAdapter creates the bedrock_automation adapter.
func NewAutomationAdapter(automationSvc automationBackend, claude claudeBackend) *AutomationAdapter {
	return &AutomationAdapter{
		automation: automationSvc,
		claude:     claude,
		log:        logger.WithMethod(string(MethodBedrockAutomation)),
	}
}

// Method returns the pipeline this adapter implements.
func (a *AutomationAdapter) Method() Method { return MethodBedrockAutomation }

// Extract runs the automation pipeline and the Claude call.
func (a *AutomationAdapter) Extract(ctx context.Context, doc *preparer.Document) (*RawResponse, error) {
	markdown, err := a.automation.ProcessDocument(ctx, doc.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("data automation: %w", err)
	}

	imageData, err := os.ReadFile(doc.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("read page image: %w", err)
	}

	text, err := a.claude.ExtractInvoiceJSON(ctx, imageData, llm.ImageMediaType(doc.ImagePath), markdown)
	if err != nil {
		return nil, err
	}
	return NewFreeform(text), nil
}
