package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// GoogleVisionService implements Service using Google Cloud Vision
// document text detection.
type GoogleVisionService struct {
	client *vision.ImageAnnotatorClient
}

// NewGoogleVisionService creates an OCR service with credentials from the
// environment. It expects either GOOGLE_APPLICATION_CREDENTIALS path or
// GOOGLE_CREDENTIALS JSON in env.
func NewGoogleVisionService(ctx context.Context) (*GoogleVisionService, error) {
	const op = "NewGoogleVisionService"

	var client *vision.ImageAnnotatorClient
	var err error

	// Check for inline credentials first
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		// Try default credentials as fallback
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &GoogleVisionService{client: client}, nil
}

// NewGoogleVisionServiceWithClient creates an OCR service with an explicit
// client (for testing).
func NewGoogleVisionServiceWithClient(client *vision.ImageAnnotatorClient) *GoogleVisionService {
	return &GoogleVisionService{client: client}
}

// DetectText extracts text from a document image.
func (g *GoogleVisionService) DetectText(ctx context.Context, imageData []byte) (string, error) {
	const op = "DetectText"

	if len(imageData) == 0 {
		return "", WrapOCRError(op, ErrInvalidImage, "empty image data")
	}
	if len(imageData) > MaxImageSizeBytes {
		return "", WrapOCRError(op, ErrImageTooLarge, fmt.Sprintf("image size: %d bytes", len(imageData)))
	}

	annotation, err := g.client.DetectDocumentText(ctx, &visionpb.Image{Content: imageData}, nil)
	if err != nil {
		return "", WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if annotation == nil || strings.TrimSpace(annotation.GetText()) == "" {
		return "", WrapOCRError(op, ErrEmptyDocument, "")
	}

	return annotation.GetText(), nil
}

// Close closes the underlying Vision client.
func (g *GoogleVisionService) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
