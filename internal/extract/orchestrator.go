package extract

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"invoiceparser/internal/cache"
	"invoiceparser/internal/logger"
	"invoiceparser/internal/normalize"
	"invoiceparser/internal/preparer"
	"invoiceparser/pkg/models"
)

// normalizers dispatches a raw response to the normalization path matching
// its shape.
var normalizers = map[RawKind]func(*RawResponse) (*models.Invoice, error){
	RawStructured: func(r *RawResponse) (*models.Invoice, error) { return normalize.Structured(r.Invoice) },
	RawFreeform:   func(r *RawResponse) (*models.Invoice, error) { return normalize.Freeform(r.Text) },
}

// MethodResult is one row of a comparison run: either a normalized invoice or
// the error that stopped that method.
type MethodResult struct {
	Method  Method          `json:"method"`
	Invoice *models.Invoice `json:"invoice,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Orchestrator runs the extraction state machine: cache lookup, document
// preparation, backend call, normalization, cache store.
type Orchestrator struct {
	factory  AdapterFactory
	preparer preparer.Preparer
	cache    *cache.Cache
	log      zerolog.Logger
}

// NewOrchestrator creates an orchestrator. A nil cache disables caching.
func NewOrchestrator(factory AdapterFactory, prep preparer.Preparer, resultCache *cache.Cache) *Orchestrator {
	return &Orchestrator{
		factory:  factory,
		preparer: prep,
		cache:    resultCache,
		log:      logger.WithComponent("orchestrator"),
	}
}

// Extract runs one method against one document and returns the normalized
// invoice. A fresh cached result short-circuits the backend call entirely.
func (o *Orchestrator) Extract(ctx context.Context, path string, method Method) (*models.Invoice, error) {
	log := o.log.With().Str("method", string(method)).Str("document", path).Logger()

	if o.cache != nil {
		invoice, ok, err := o.cache.Get(path, string(method))
		if err != nil {
			log.Warn().Err(err).Msg("Cache lookup failed, extracting fresh")
		} else if ok {
			log.Info().Msg("Cache hit")
			return invoice, nil
		}
	}

	adapter, err := o.factory.Adapter(ctx, method)
	if err != nil {
		return nil, WrapBackendError(method, err, "backend unavailable")
	}

	doc, cleanup, err := o.preparer.Prepare(ctx, path)
	defer cleanup()
	if err != nil {
		return nil, err
	}

	log.Info().Msg("Extracting invoice")
	raw, err := adapter.Extract(ctx, doc)
	if err != nil {
		return nil, WrapBackendError(method, err, "")
	}
	if raw == nil {
		return nil, WrapBackendError(method, ErrEmptyResponse, "")
	}

	normalizer, ok := normalizers[raw.Kind]
	if !ok {
		return nil, WrapBackendError(method, fmt.Errorf("unhandled response kind %d", raw.Kind), "")
	}
	invoice, err := normalizer(raw)
	if err != nil {
		return nil, WrapBackendError(method, err, "normalization failed")
	}

	if o.cache != nil {
		if err := o.cache.Put(path, string(method), invoice); err != nil {
			// A write failure costs a future cache hit, not this result.
			log.Warn().Err(err).Msg("Cache store failed")
		}
	}

	return invoice, nil
}

// ExtractAll runs every registered method against the document sequentially
// and collects per-method outcomes. A failing method contributes an error row
// and does not stop the remaining methods.
func (o *Orchestrator) ExtractAll(ctx context.Context, path string) []MethodResult {
	methods := Methods()
	results := make([]MethodResult, 0, len(methods))

	for _, method := range methods {
		invoice, err := o.Extract(ctx, path, method)
		result := MethodResult{Method: method}
		if err != nil {
			o.log.Error().
				Err(err).
				Str("method", string(method)).
				Msg("Method failed")
			result.Error = err.Error()
		} else {
			result.Invoice = invoice
		}
		results = append(results, result)
	}

	return results
}
