package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"invoiceparser/internal/cache"
	"invoiceparser/internal/preparer"
	"invoiceparser/pkg/models"
)

// fakeAdapter returns a canned response and counts invocations.
type fakeAdapter struct {
	method Method
	raw    *RawResponse
	err    error
	calls  int
}

func (f *fakeAdapter) Method() Method { return f.method }

func (f *fakeAdapter) Extract(ctx context.Context, doc *preparer.Document) (*RawResponse, error) {
	f.calls++
	return f.raw, f.err
}

// fakeFactory serves adapters from a fixed map; unknown methods fail the way
// an unconfigured backend would.
type fakeFactory struct {
	adapters map[Method]Adapter
}

func (f *fakeFactory) Adapter(ctx context.Context, method Method) (Adapter, error) {
	adapter, ok := f.adapters[method]
	if !ok {
		return nil, fmt.Errorf("backend not configured for %s", method)
	}
	return adapter, nil
}

// fakePreparer passes the source path through without touching the filesystem.
type fakePreparer struct {
	calls int
}

func (p *fakePreparer) Prepare(ctx context.Context, path string) (*preparer.Document, func(), error) {
	p.calls++
	return &preparer.Document{SourcePath: path, ImagePath: path}, func() {}, nil
}

func singleAdapterOrchestrator(adapter *fakeAdapter, resultCache *cache.Cache) *Orchestrator {
	factory := &fakeFactory{adapters: map[Method]Adapter{adapter.method: adapter}}
	return NewOrchestrator(factory, &fakePreparer{}, resultCache)
}

func TestExtractStructuredPath(t *testing.T) {
	adapter := &fakeAdapter{
		method: MethodGPTOnly,
		raw: NewStructured(&models.Invoice{
			InvoiceNumber: models.String("INV-1"),
		}),
	}
	o := singleAdapterOrchestrator(adapter, nil)

	invoice, err := o.Extract(context.Background(), "doc.pdf", MethodGPTOnly)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if invoice.InvoiceNumber == nil || *invoice.InvoiceNumber != "INV-1" {
		t.Errorf("expected invoice_number INV-1, got %v", invoice.InvoiceNumber)
	}
	if invoice.Items == nil || invoice.TaxDetails == nil {
		t.Error("expected normalization to default the slices")
	}
	if adapter.calls != 1 {
		t.Errorf("expected one backend call, got %d", adapter.calls)
	}
}

func TestExtractFreeformPath(t *testing.T) {
	adapter := &fakeAdapter{
		method: MethodClaudeVision,
		raw:    NewFreeform(`{"invoice_number": "INV-7", "total_amount": 1,050.00}`),
	}
	o := singleAdapterOrchestrator(adapter, nil)

	invoice, err := o.Extract(context.Background(), "doc.pdf", MethodClaudeVision)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if invoice.InvoiceNumber == nil || *invoice.InvoiceNumber != "INV-7" {
		t.Errorf("expected invoice_number INV-7, got %v", invoice.InvoiceNumber)
	}
	if invoice.TotalAmount == nil || *invoice.TotalAmount != 1050 {
		t.Errorf("expected repaired total_amount 1050, got %v", invoice.TotalAmount)
	}
}

func TestExtractCacheHitSkipsBackend(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "invoice.pdf")
	if err := os.WriteFile(doc, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("failed to write test document: %v", err)
	}

	adapter := &fakeAdapter{
		method: MethodGPTOnly,
		raw:    NewStructured(&models.Invoice{InvoiceNumber: models.String("INV-2")}),
	}
	resultCache := cache.New(filepath.Join(dir, "cache"), MethodNames())
	o := singleAdapterOrchestrator(adapter, resultCache)

	if _, err := o.Extract(context.Background(), doc, MethodGPTOnly); err != nil {
		t.Fatalf("first Extract failed: %v", err)
	}
	invoice, err := o.Extract(context.Background(), doc, MethodGPTOnly)
	if err != nil {
		t.Fatalf("second Extract failed: %v", err)
	}

	if adapter.calls != 1 {
		t.Errorf("expected cached second run, backend was called %d times", adapter.calls)
	}
	if invoice.InvoiceNumber == nil || *invoice.InvoiceNumber != "INV-2" {
		t.Errorf("cached result does not match: %v", invoice.InvoiceNumber)
	}
}

func TestExtractBackendFailureWrapped(t *testing.T) {
	backendErr := errors.New("throttled")
	adapter := &fakeAdapter{method: MethodGPTOnly, err: backendErr}
	o := singleAdapterOrchestrator(adapter, nil)

	_, err := o.Extract(context.Background(), "doc.pdf", MethodGPTOnly)
	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if be.Method != MethodGPTOnly {
		t.Errorf("expected method %s on error, got %s", MethodGPTOnly, be.Method)
	}
	if !errors.Is(err, backendErr) {
		t.Error("underlying backend error was lost")
	}
}

func TestExtractNormalizationFailureWrapped(t *testing.T) {
	adapter := &fakeAdapter{
		method: MethodClaudeVision,
		raw:    NewFreeform("the page is illegible"),
	}
	o := singleAdapterOrchestrator(adapter, nil)

	_, err := o.Extract(context.Background(), "doc.pdf", MethodClaudeVision)
	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError, got %v", err)
	}
}

func TestExtractAllToleratesFailures(t *testing.T) {
	adapter := &fakeAdapter{
		method: MethodGPTOnly,
		raw:    NewStructured(&models.Invoice{InvoiceNumber: models.String("INV-3")}),
	}
	o := singleAdapterOrchestrator(adapter, nil)

	results := o.ExtractAll(context.Background(), "doc.pdf")

	if len(results) != len(Methods()) {
		t.Fatalf("expected %d rows, got %d", len(Methods()), len(results))
	}
	for _, result := range results {
		if result.Method == MethodGPTOnly {
			if result.Invoice == nil || result.Error != "" {
				t.Errorf("configured method should succeed: %+v", result)
			}
			continue
		}
		if result.Error == "" || result.Invoice != nil {
			t.Errorf("unconfigured method %s should contribute an error row: %+v", result.Method, result)
		}
	}
}
