// Package ocr provides plain-text OCR over rasterized document images.
//
// Two implementations exist: Google Cloud Vision document text detection and
// AWS Textract synchronous text detection. Both consume a single-page image
// (the preparer's raster output — PDFs must be rasterized first) and return
// the detected text in document order.
//
// OCR output is auxiliary context for the language-model backends; an OCR
// failure degrades the calling adapter to image-only analysis instead of
// aborting the extraction.
package ocr

import "context"

// MaxImageSizeBytes is the maximum image size accepted for synchronous
// processing (both providers cap near 10MB; Vision's hard limit is 20MB).
const MaxImageSizeBytes = 10 * 1024 * 1024

// Service detects text in a document image.
type Service interface {
	// DetectText returns the text detected in the image, concatenated in
	// document order. Returns ErrEmptyDocument if nothing was detected.
	DetectText(ctx context.Context, imageData []byte) (string, error)
}
