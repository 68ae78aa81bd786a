package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"invoiceparser/internal/layout"
	"invoiceparser/internal/llm"
	"invoiceparser/internal/logger"
	"invoiceparser/internal/ocr"
	"invoiceparser/internal/preparer"
	"invoiceparser/pkg/models"
)

// Adapter runs one method's backend pipeline against a prepared document and
// returns the backend's raw output shape. Adapters do not normalize or cache;
// that is the orchestrator's job.
type Adapter interface {
	// Method returns the pipeline this adapter implements.
	Method() Method

	// Extract runs the pipeline.
	Extract(ctx context.Context, doc *preparer.Document) (*RawResponse, error)
}

// chatBackend is the slice of llm.ChatService the chat adapters consume.
type chatBackend interface {
	ExtractStructured(ctx context.Context, req llm.ChatRequest) (*models.Invoice, error)
	ExtractFreeform(ctx context.Context, layoutText string) (string, error)
}

// claudeBackend is the slice of llm.ClaudeService the Claude adapters consume.
type claudeBackend interface {
	ExtractInvoiceJSON(ctx context.Context, imageData []byte, mediaType, supplementalText string) (string, error)
}

// automationBackend is the slice of automation.Service the automation adapter
// consumes.
type automationBackend interface {
	ProcessDocument(ctx context.Context, path string) (string, error)
}

// sourceMIME returns the MIME type of the original document for the layout
// engine, which accepts PDFs directly.
func sourceMIME(doc *preparer.Document) string {
	if doc.IsPDF() {
		return "application/pdf"
	}
	return llm.ImageMediaType(doc.SourcePath)
}

// LayoutChatAdapter implements the layout-then-chat pipelines: the source
// document goes through the Document AI layout pass, and its markdown (plus
// the page image when withImage is set) goes to the multimodal deployment.
type LayoutChatAdapter struct {
	method    Method
	layout    layout.Service
	chat      chatBackend
	withImage bool
	log       zerolog.Logger
}

// NewLayoutChatAdapter creates an adapter for di_gpt_image (withImage true)
// or di_gpt_no_image (withImage false).
func NewLayoutChatAdapter(method Method, layoutSvc layout.Service, chat chatBackend, withImage bool) *LayoutChatAdapter {
	return &LayoutChatAdapter{
		method:    method,
		layout:    layoutSvc,
		chat:      chat,
		withImage: withImage,
		log:       logger.WithMethod(string(method)),
	}
}

// Method returns the pipeline this adapter implements.
func (a *LayoutChatAdapter) Method() Method { return a.method }

// Extract runs the layout pass and the structured chat call.
func (a *LayoutChatAdapter) Extract(ctx context.Context, doc *preparer.Document) (*RawResponse, error) {
	data, err := os.ReadFile(doc.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}

	layoutText, err := a.layout.AnalyzeLayout(ctx, data, sourceMIME(doc))
	if err != nil {
		return nil, fmt.Errorf("layout analysis: %w", err)
	}

	req := llm.ChatRequest{LayoutText: layoutText}
	if a.withImage {
		dataURL, err := llm.ImageDataURL(doc.ImagePath)
		if err != nil {
			return nil, fmt.Errorf("encode page image: %w", err)
		}
		req.ImageDataURL = dataURL
	}

	invoice, err := a.chat.ExtractStructured(ctx, req)
	if err != nil {
		return nil, err
	}
	return NewStructured(invoice), nil
}

// ImageChatAdapter implements gpt_only: the page image alone goes to the
// multimodal deployment.
type ImageChatAdapter struct {
	chat chatBackend
	log  zerolog.Logger
}

// NewImageChatAdapter creates the gpt_only adapter.
func NewImageChatAdapter(chat chatBackend) *ImageChatAdapter {
	return &ImageChatAdapter{
		chat: chat,
		log:  logger.WithMethod(string(MethodGPTOnly)),
	}
}

// Method returns the pipeline this adapter implements.
func (a *ImageChatAdapter) Method() Method { return MethodGPTOnly }

// Extract sends the page image to the multimodal deployment.
func (a *ImageChatAdapter) Extract(ctx context.Context, doc *preparer.Document) (*RawResponse, error) {
	dataURL, err := llm.ImageDataURL(doc.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("encode page image: %w", err)
	}

	invoice, err := a.chat.ExtractStructured(ctx, llm.ChatRequest{ImageDataURL: dataURL})
	if err != nil {
		return nil, err
	}
	return NewStructured(invoice), nil
}

// SmallLLMAdapter implements di_small_llm: the layout markdown goes to the
// small instruction deployment, whose free-form reply the normalizer parses.
type SmallLLMAdapter struct {
	layout layout.Service
	chat   chatBackend
	log    zerolog.Logger
}

// NewSmallLLMAdapter creates the di_small_llm adapter.
func NewSmallLLMAdapter(layoutSvc layout.Service, chat chatBackend) *SmallLLMAdapter {
	return &SmallLLMAdapter{
		layout: layoutSvc,
		chat:   chat,
		log:    logger.WithMethod(string(MethodDISmallLLM)),
	}
}

// Method returns the pipeline this adapter implements.
func (a *SmallLLMAdapter) Method() Method { return MethodDISmallLLM }

// Extract runs the layout pass and the free-form chat call.
func (a *SmallLLMAdapter) Extract(ctx context.Context, doc *preparer.Document) (*RawResponse, error) {
	data, err := os.ReadFile(doc.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}

	layoutText, err := a.layout.AnalyzeLayout(ctx, data, sourceMIME(doc))
	if err != nil {
		return nil, fmt.Errorf("layout analysis: %w", err)
	}

	text, err := a.chat.ExtractFreeform(ctx, layoutText)
	if err != nil {
		return nil, err
	}
	return NewFreeform(text), nil
}

// VisionChatAdapter implements vision_gpt: Google Vision OCR text plus the
// page image go to the multimodal deployment. An OCR failure degrades the
// request to image-only instead of failing the method.
type VisionChatAdapter struct {
	ocr  ocr.Service
	chat chatBackend
	log  zerolog.Logger
}

// NewVisionChatAdapter creates the vision_gpt adapter.
func NewVisionChatAdapter(ocrSvc ocr.Service, chat chatBackend) *VisionChatAdapter {
	return &VisionChatAdapter{
		ocr:  ocrSvc,
		chat: chat,
		log:  logger.WithMethod(string(MethodVisionGPT)),
	}
}

// Method returns the pipeline this adapter implements.
func (a *VisionChatAdapter) Method() Method { return MethodVisionGPT }

// Extract runs OCR and the structured chat call.
func (a *VisionChatAdapter) Extract(ctx context.Context, doc *preparer.Document) (*RawResponse, error) {
	imageData, err := os.ReadFile(doc.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("read page image: %w", err)
	}

	req := llm.ChatRequest{}
	text, err := a.ocr.DetectText(ctx, imageData)
	if err != nil {
		a.log.Warn().Err(err).Msg("OCR failed, degrading to image-only request")
	} else {
		req.LayoutText = text
	}

	dataURL, err := llm.ImageDataURL(doc.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("encode page image: %w", err)
	}
	req.ImageDataURL = dataURL

	invoice, err := a.chat.ExtractStructured(ctx, req)
	if err != nil {
		return nil, err
	}
	return NewStructured(invoice), nil
}
