package extract

import "invoiceparser/pkg/models"

// RawKind discriminates the two shapes a backend can produce.
type RawKind int

const (
	// RawStructured marks a response already decoded into the invoice schema
	// by a typed response contract.
	RawStructured RawKind = iota

	// RawFreeform marks a response that is text expected to contain a JSON
	// invoice object, with no format guarantee.
	RawFreeform
)

// RawResponse is the tagged union of backend output shapes. Exactly one of
// Invoice and Text is meaningful, selected by Kind; the normalizer dispatches
// on Kind rather than sniffing the payload.
type RawResponse struct {
	Kind    RawKind
	Invoice *models.Invoice
	Text    string
}

// NewStructured wraps a schema-decoded invoice.
func NewStructured(invoice *models.Invoice) *RawResponse {
	return &RawResponse{Kind: RawStructured, Invoice: invoice}
}

// NewFreeform wraps raw backend text.
func NewFreeform(text string) *RawResponse {
	return &RawResponse{Kind: RawFreeform, Text: text}
}
