package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// TextractService implements Service using AWS Textract synchronous text
// detection. Textract returns typed blocks; the LINE blocks are concatenated
// in the order the service reports them, which follows document order.
type TextractService struct {
	client *textract.Client
}

// NewTextractService creates a Textract OCR service using the default AWS
// credential chain for the given region.
func NewTextractService(ctx context.Context, region string) (*TextractService, error) {
	const op = "NewTextractService"

	if region == "" {
		return nil, WrapOCRError(op, ErrMissingCredentials, "AWS_REGION is required")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to load AWS config")
	}

	return &TextractService{client: textract.NewFromConfig(cfg)}, nil
}

// NewTextractServiceWithClient creates a Textract OCR service with an
// explicit client (for testing).
func NewTextractServiceWithClient(client *textract.Client) *TextractService {
	return &TextractService{client: client}
}

// DetectText runs synchronous text detection and concatenates LINE blocks.
// Only image formats are supported; PDFs must be rasterized first.
func (t *TextractService) DetectText(ctx context.Context, imageData []byte) (string, error) {
	const op = "DetectText"

	if len(imageData) == 0 {
		return "", WrapOCRError(op, ErrInvalidImage, "empty image data")
	}
	if len(imageData) > MaxImageSizeBytes {
		return "", WrapOCRError(op, ErrImageTooLarge, fmt.Sprintf("image size: %d bytes", len(imageData)))
	}

	out, err := t.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: imageData},
	})
	if err != nil {
		return "", WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Textract call failed: %v", err))
	}

	var lines strings.Builder
	for _, block := range out.Blocks {
		if block.BlockType != types.BlockTypeLine {
			continue
		}
		if text := aws.ToString(block.Text); text != "" {
			if lines.Len() > 0 {
				lines.WriteString("\n")
			}
			lines.WriteString(text)
		}
	}

	text := lines.String()
	if strings.TrimSpace(text) == "" {
		return "", WrapOCRError(op, ErrEmptyDocument, "")
	}

	return text, nil
}
