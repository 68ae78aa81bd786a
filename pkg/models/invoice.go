// Package models defines the canonical invoice schema that every extraction
// backend's output is normalized into.
//
// All scalar fields are pointers: a nil field means "not found in the
// document", which is distinct from a zero value. Monetary fields are plain
// numbers; the currency lives in its own field. The JSON encoding omits nil
// fields, so persisted records contain only what was actually extracted.
package models

// SellerInfo describes the seller/vendor party on an invoice.
type SellerInfo struct {
	Name           *string `json:"name,omitempty"`
	Address        *string `json:"address,omitempty"`
	GSTIN          *string `json:"gstin,omitempty"`
	PAN            *string `json:"pan,omitempty"`
	ContactDetails *string `json:"contact_details,omitempty"`
}

// BuyerInfo describes the buyer/customer party on an invoice.
type BuyerInfo struct {
	Name           *string `json:"name,omitempty"`
	Address        *string `json:"address,omitempty"`
	GSTIN          *string `json:"gstin,omitempty"`
	PAN            *string `json:"pan,omitempty"`
	ContactDetails *string `json:"contact_details,omitempty"`
}

// LineItem is a single billed line on the invoice.
type LineItem struct {
	Description   *string  `json:"description,omitempty"`
	HSNSAC        *string  `json:"hsn_sac,omitempty"`
	Quantity      *float64 `json:"quantity,omitempty"`
	Unit          *string  `json:"unit,omitempty"`
	UnitPrice     *float64 `json:"unit_price,omitempty"`
	TaxPercentage *float64 `json:"tax_percentage,omitempty"`
	TaxAmount     *float64 `json:"tax_amount,omitempty"`
	Amount        *float64 `json:"amount,omitempty"`
}

// TaxDetail is one component of the invoice's tax breakdown
// (e.g. CGST, SGST, IGST).
type TaxDetail struct {
	TaxType *string  `json:"tax_type,omitempty"`
	Rate    *float64 `json:"rate,omitempty"`
	Amount  *float64 `json:"amount,omitempty"`
}

// BankDetails holds banking information for payment.
type BankDetails struct {
	BankName      *string `json:"bank_name,omitempty"`
	AccountNumber *string `json:"account_number,omitempty"`
	IFSCCode      *string `json:"ifsc_code,omitempty"`
	Branch        *string `json:"branch,omitempty"`
}

// ShippingDetails holds shipping or delivery information.
type ShippingDetails struct {
	ShippedTo     *string `json:"shipped_to,omitempty"`
	ShipToAddress *string `json:"ship_to_address,omitempty"`
	PlaceOfSupply *string `json:"place_of_supply,omitempty"`
	Transporter   *string `json:"transporter,omitempty"`
	VehicleNumber *string `json:"vehicle_number,omitempty"`
	DispatchDate  *string `json:"dispatch_date,omitempty"`
}

// Invoice is the canonical invoice data model.
//
// Backends disagree on field names (seller vs seller_info, items vs
// line_items); the normalizer maps every variant onto the names declared here.
// Items and TaxDetails deliberately lack omitempty: once normalized they are
// always present, defaulting to empty slices.
type Invoice struct {
	// Basic invoice information
	InvoiceNumber *string `json:"invoice_number,omitempty"`
	InvoiceDate   *string `json:"invoice_date,omitempty"`
	DueDate       *string `json:"due_date,omitempty"`
	PaymentTerms  *string `json:"payment_terms,omitempty"`
	Currency      *string `json:"currency,omitempty"`

	// Parties
	Seller *SellerInfo `json:"seller,omitempty"`
	Buyer  *BuyerInfo  `json:"buyer,omitempty"`

	// Line items and totals
	Items          []LineItem  `json:"items"`
	Subtotal       *float64    `json:"subtotal,omitempty"`
	TaxDetails     []TaxDetail `json:"tax_details"`
	TotalTaxAmount *float64    `json:"total_tax_amount,omitempty"`
	TotalAmount    *float64    `json:"total_amount,omitempty"`
	AmountInWords  *string     `json:"amount_in_words,omitempty"`

	// References
	PONumber        *string          `json:"po_number,omitempty"`
	ShippingDetails *ShippingDetails `json:"shipping_details,omitempty"`
	BankDetails     *BankDetails     `json:"bank_details,omitempty"`

	// E-invoicing / GST
	IRN           *string `json:"irn,omitempty"`
	AckNumber     *string `json:"ack_number,omitempty"`
	PlaceOfSupply *string `json:"place_of_supply,omitempty"`
	ReverseCharge *bool   `json:"reverse_charge,omitempty"`

	Notes *string `json:"notes,omitempty"`
}

// String returns a pointer to s. Convenience for building test fixtures and
// literal invoices.
func String(s string) *string { return &s }

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }
