package extract

import (
	"context"
	"fmt"

	"invoiceparser/internal/automation"
	"invoiceparser/internal/config"
	"invoiceparser/internal/layout"
	"invoiceparser/internal/llm"
	"invoiceparser/internal/ocr"
	"invoiceparser/internal/storage"
)

// AdapterFactory resolves a method identifier to a ready adapter.
// Construction can fail per method (missing credentials for one cloud do not
// block the others), which is what lets comparison mode report a
// misconfigured backend as one failed row instead of aborting.
type AdapterFactory interface {
	Adapter(ctx context.Context, method Method) (Adapter, error)
}

// Factory builds adapters on demand from the application configuration,
// constructing each backing service at most once. It is not safe for
// concurrent use; the orchestrator drives methods sequentially.
type Factory struct {
	cfg *config.Config

	chat       *llm.ChatService
	claude     *llm.ClaudeService
	layoutSvc  layout.Service
	vision     ocr.Service
	textract   ocr.Service
	store      *storage.S3Store
	automation *automation.Service
}

// NewFactory creates an adapter factory.
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{cfg: cfg}
}

// Adapter constructs the adapter for the given method, along with whichever
// backing services it needs.
func (f *Factory) Adapter(ctx context.Context, method Method) (Adapter, error) {
	switch method {
	case MethodDIGPTImage, MethodDIGPTNoImage:
		layoutSvc, err := f.layoutService(ctx)
		if err != nil {
			return nil, err
		}
		chat, err := f.chatService()
		if err != nil {
			return nil, err
		}
		return NewLayoutChatAdapter(method, layoutSvc, chat, method == MethodDIGPTImage), nil

	case MethodGPTOnly:
		chat, err := f.chatService()
		if err != nil {
			return nil, err
		}
		return NewImageChatAdapter(chat), nil

	case MethodDISmallLLM:
		layoutSvc, err := f.layoutService(ctx)
		if err != nil {
			return nil, err
		}
		chat, err := f.chatService()
		if err != nil {
			return nil, err
		}
		return NewSmallLLMAdapter(layoutSvc, chat), nil

	case MethodVisionGPT:
		vision, err := f.visionService(ctx)
		if err != nil {
			return nil, err
		}
		chat, err := f.chatService()
		if err != nil {
			return nil, err
		}
		return NewVisionChatAdapter(vision, chat), nil

	case MethodClaudeVision:
		claude, err := f.claudeService(ctx)
		if err != nil {
			return nil, err
		}
		return NewClaudeVisionAdapter(claude), nil

	case MethodTextractClaude:
		textractSvc, err := f.textractService(ctx)
		if err != nil {
			return nil, err
		}
		claude, err := f.claudeService(ctx)
		if err != nil {
			return nil, err
		}
		return NewTextractClaudeAdapter(textractSvc, claude), nil

	case MethodBedrockAutomation:
		automationSvc, err := f.automationService(ctx)
		if err != nil {
			return nil, err
		}
		claude, err := f.claudeService(ctx)
		if err != nil {
			return nil, err
		}
		return NewAutomationAdapter(automationSvc, claude), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
}

func (f *Factory) chatService() (*llm.ChatService, error) {
	if f.chat == nil {
		svc, err := llm.NewChatService(f.cfg)
		if err != nil {
			return nil, err
		}
		f.chat = svc
	}
	return f.chat, nil
}

func (f *Factory) claudeService(ctx context.Context) (*llm.ClaudeService, error) {
	if f.claude == nil {
		svc, err := llm.NewClaudeService(ctx, f.cfg)
		if err != nil {
			return nil, err
		}
		f.claude = svc
	}
	return f.claude, nil
}

func (f *Factory) layoutService(ctx context.Context) (layout.Service, error) {
	if f.layoutSvc == nil {
		svc, err := layout.NewDocumentAIService(ctx, f.cfg)
		if err != nil {
			return nil, err
		}
		f.layoutSvc = svc
	}
	return f.layoutSvc, nil
}

func (f *Factory) visionService(ctx context.Context) (ocr.Service, error) {
	if f.vision == nil {
		svc, err := ocr.NewGoogleVisionService(ctx)
		if err != nil {
			return nil, err
		}
		f.vision = svc
	}
	return f.vision, nil
}

func (f *Factory) textractService(ctx context.Context) (ocr.Service, error) {
	if f.textract == nil {
		svc, err := ocr.NewTextractService(ctx, f.cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		f.textract = svc
	}
	return f.textract, nil
}

func (f *Factory) automationService(ctx context.Context) (*automation.Service, error) {
	if f.automation == nil {
		if f.store == nil {
			store, err := storage.NewS3Store(ctx, f.cfg)
			if err != nil {
				return nil, err
			}
			f.store = store
		}
		svc, err := automation.NewService(ctx, f.cfg, f.store)
		if err != nil {
			return nil, err
		}
		f.automation = svc
	}
	return f.automation, nil
}
