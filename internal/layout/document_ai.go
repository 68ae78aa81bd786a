// Package layout extracts the textual layout of a document as markdown-style
// text using Google Document AI's layout parser.
//
// The layout pass is the first stage of the hybrid extraction methods: its
// output is handed to a language model together with (or instead of) the page
// image. Required environment: GOOGLE_APPLICATION_CREDENTIALS or
// GOOGLE_CREDENTIALS, plus the project/location/processor settings in Config.
package layout

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"invoiceparser/internal/config"
	"invoiceparser/internal/logger"
)

const (
	// MaxDocumentSizeBytes is the maximum document size for synchronous
	// processing (20MB).
	MaxDocumentSizeBytes = 20 * 1024 * 1024

	defaultTimeout = 60 * time.Second
)

// Service analyzes a document and returns its content as layout-ordered text.
type Service interface {
	// AnalyzeLayout runs the layout pass over raw document bytes and returns
	// the extracted content in reading order.
	AnalyzeLayout(ctx context.Context, data []byte, mimeType string) (string, error)
}

// DocumentAIService implements Service using Google Document AI.
type DocumentAIService struct {
	client    *documentai.DocumentProcessorClient
	projectID string
	location  string
	processor string
	timeout   time.Duration
	log       zerolog.Logger
}

// NewDocumentAIService creates a layout service from the application
// configuration, reading Google credentials from the environment.
func NewDocumentAIService(ctx context.Context, cfg *config.Config) (*DocumentAIService, error) {
	const op = "NewDocumentAIService"

	if cfg.GoogleCloudProject == "" {
		return nil, WrapLayoutError(op, ErrInvalidConfiguration, "GOOGLE_CLOUD_PROJECT is required")
	}
	if cfg.LayoutProcessorID == "" {
		return nil, WrapLayoutError(op, ErrInvalidConfiguration, "LAYOUT_PROCESSOR_ID is required")
	}

	location := cfg.GoogleCloudLocation
	if location == "" {
		location = "us"
	}

	var clientOptions []option.ClientOption
	if location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if len(clientOptions) == 0 {
			return nil, WrapLayoutError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapLayoutError(op, err, fmt.Sprintf("failed to create Document AI client for location: %s", location))
	}

	return &DocumentAIService{
		client:    client,
		projectID: cfg.GoogleCloudProject,
		location:  location,
		processor: cfg.LayoutProcessorID,
		timeout:   defaultTimeout,
		log:       logger.WithComponent("layout"),
	}, nil
}

// NewDocumentAIServiceWithClient creates a layout service with an explicit
// client (for testing).
func NewDocumentAIServiceWithClient(client *documentai.DocumentProcessorClient, projectID, location, processor string) *DocumentAIService {
	return &DocumentAIService{
		client:    client,
		projectID: projectID,
		location:  location,
		processor: processor,
		timeout:   defaultTimeout,
		log:       logger.WithComponent("layout"),
	}
}

// AnalyzeLayout runs the layout processor and returns its content.
func (s *DocumentAIService) AnalyzeLayout(ctx context.Context, data []byte, mimeType string) (string, error) {
	const op = "AnalyzeLayout"
	start := time.Now()

	if len(data) > MaxDocumentSizeBytes {
		return "", WrapLayoutError(op, ErrDocumentTooLarge, fmt.Sprintf("file size: %d bytes", len(data)))
	}
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	processCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: s.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mimeType,
			},
		},
	}

	resp, err := s.client.ProcessDocument(processCtx, req)
	if err != nil {
		return "", s.handleProcessingError(op, err)
	}
	if resp.Document == nil {
		return "", WrapLayoutError(op, ErrAnalysisFailed, "no document in response")
	}

	content := extractContent(resp.Document)
	if strings.TrimSpace(content) == "" {
		return "", WrapLayoutError(op, ErrEmptyContent, "")
	}

	s.log.Debug().
		Int("content_length", len(content)).
		Dur("duration", time.Since(start)).
		Msg("Layout analysis completed")

	return content, nil
}

// extractContent prefers the chunked layout output (which preserves reading
// order and block structure) and falls back to the flat document text.
func extractContent(doc *documentaipb.Document) string {
	if cd := doc.GetChunkedDocument(); cd != nil && len(cd.GetChunks()) > 0 {
		var b strings.Builder
		for i, chunk := range cd.GetChunks() {
			if i > 0 {
				b.WriteString("\n\n")
			}
			b.WriteString(chunk.GetContent())
		}
		return b.String()
	}
	return doc.GetText()
}

// processorName constructs the full processor resource name.
func (s *DocumentAIService) processorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		s.projectID, s.location, s.processor)
}

// handleProcessingError converts Document AI errors to layout errors.
func (s *DocumentAIService) handleProcessingError(op string, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "PERMISSION_DENIED"):
		return WrapLayoutError(op, ErrMissingCredentials, "insufficient permissions for Document AI")
	case strings.Contains(errStr, "NOT_FOUND"):
		return WrapLayoutError(op, ErrInvalidConfiguration, fmt.Sprintf("processor not found: %s", s.processor))
	case strings.Contains(errStr, "DeadlineExceeded") || strings.Contains(errStr, "context deadline exceeded"):
		return WrapLayoutError(op, context.DeadlineExceeded, "layout analysis timeout")
	default:
		return WrapLayoutError(op, ErrAnalysisFailed, fmt.Sprintf("Document AI error: %v", err))
	}
}

// Close closes the underlying Document AI client.
func (s *DocumentAIService) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
