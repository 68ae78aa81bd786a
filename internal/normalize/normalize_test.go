package normalize

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"invoiceparser/pkg/models"
)

func TestFreeformRepairsThousandsSeparators(t *testing.T) {
	inv, err := Freeform(`{"invoice_number": "INV-1", "total_amount": 169,050.28}`)
	if err != nil {
		t.Fatalf("Freeform failed: %v", err)
	}
	if inv.TotalAmount == nil || *inv.TotalAmount != 169050.28 {
		t.Errorf("expected total_amount 169050.28, got %v", inv.TotalAmount)
	}
	if inv.InvoiceNumber == nil || *inv.InvoiceNumber != "INV-1" {
		t.Errorf("expected invoice_number INV-1, got %v", inv.InvoiceNumber)
	}
}

func TestFreeformAggressiveRepair(t *testing.T) {
	// Two separator groups: the narrow pass alone cannot fix the second one.
	inv, err := Freeform(`{"total_amount": 1,234,567.89}`)
	if err != nil {
		t.Fatalf("Freeform failed: %v", err)
	}
	if inv.TotalAmount == nil || *inv.TotalAmount != 1234567.89 {
		t.Errorf("expected total_amount 1234567.89, got %v", inv.TotalAmount)
	}
}

func TestFreeformKeyVariants(t *testing.T) {
	inv, err := Freeform(`{
		"seller_info": {"name": "Acme Ltd"},
		"buyer_info": {"name": "Globex"},
		"line_items": [{"description": "Widget", "amount": 100}]
	}`)
	if err != nil {
		t.Fatalf("Freeform failed: %v", err)
	}
	if inv.Seller == nil || inv.Seller.Name == nil || *inv.Seller.Name != "Acme Ltd" {
		t.Errorf("seller_info was not mapped to seller: %+v", inv.Seller)
	}
	if inv.Buyer == nil || inv.Buyer.Name == nil || *inv.Buyer.Name != "Globex" {
		t.Errorf("buyer_info was not mapped to buyer: %+v", inv.Buyer)
	}
	if len(inv.Items) != 1 {
		t.Fatalf("line_items was not mapped to items: %+v", inv.Items)
	}
}

func TestFreeformVariantDoesNotOverwriteCanonical(t *testing.T) {
	inv, err := Freeform(`{
		"seller": {"name": "Canonical"},
		"seller_info": {"name": "Variant"}
	}`)
	if err != nil {
		t.Fatalf("Freeform failed: %v", err)
	}
	if inv.Seller == nil || inv.Seller.Name == nil || *inv.Seller.Name != "Canonical" {
		t.Errorf("variant overwrote canonical seller: %+v", inv.Seller)
	}
}

func TestFreeformReverseChargeSentinels(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  *bool
	}{
		{"sentinel dropped", `"Not provided"`, nil},
		{"n/a dropped", `"N/A"`, nil},
		{"yes coerced", `"yes"`, models.Bool(true)},
		{"no coerced", `"No"`, models.Bool(false)},
		{"real boolean kept", `true`, models.Bool(true)},
		{"unrecognized string dropped", `"maybe"`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := Freeform(fmt.Sprintf(`{"reverse_charge": %s}`, tt.value))
			if err != nil {
				t.Fatalf("Freeform failed: %v", err)
			}
			switch {
			case tt.want == nil && inv.ReverseCharge != nil:
				t.Errorf("expected reverse_charge nil, got %v", *inv.ReverseCharge)
			case tt.want != nil && (inv.ReverseCharge == nil || *inv.ReverseCharge != *tt.want):
				t.Errorf("expected reverse_charge %v, got %v", *tt.want, inv.ReverseCharge)
			}
		})
	}
}

func TestFreeformStripsCodeFence(t *testing.T) {
	inv, err := Freeform("Here is the result:\n```json\n{\"invoice_number\": \"INV-9\"}\n```\nLet me know if you need more.")
	if err != nil {
		t.Fatalf("Freeform failed: %v", err)
	}
	if inv.InvoiceNumber == nil || *inv.InvoiceNumber != "INV-9" {
		t.Errorf("expected invoice_number INV-9, got %v", inv.InvoiceNumber)
	}
}

func TestFreeformParseError(t *testing.T) {
	_, err := Freeform("the document appears to be blank")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestFreeformValidationError(t *testing.T) {
	_, err := Freeform(`{"total_amount": {"value": 100}}`)
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestStructuredTaxAmountBackfill(t *testing.T) {
	inv, err := Structured(&models.Invoice{
		Items: []models.LineItem{{
			Amount:        models.Float(1000),
			TaxPercentage: models.Float(18),
		}},
	})
	if err != nil {
		t.Fatalf("Structured failed: %v", err)
	}
	if inv.Items[0].TaxAmount == nil || *inv.Items[0].TaxAmount != 180 {
		t.Errorf("expected backfilled tax_amount 180, got %v", inv.Items[0].TaxAmount)
	}
}

func TestStructuredTaxAmountNotOverwritten(t *testing.T) {
	inv, err := Structured(&models.Invoice{
		Items: []models.LineItem{{
			Amount:        models.Float(1000),
			TaxPercentage: models.Float(18),
			TaxAmount:     models.Float(175),
		}},
	})
	if err != nil {
		t.Fatalf("Structured failed: %v", err)
	}
	if *inv.Items[0].TaxAmount != 175 {
		t.Errorf("extracted tax_amount was overwritten: got %v", *inv.Items[0].TaxAmount)
	}
}

func TestStructuredCurrencyInference(t *testing.T) {
	inv, err := Structured(&models.Invoice{
		AmountInWords: models.String("Rupees One Thousand Only"),
	})
	if err != nil {
		t.Fatalf("Structured failed: %v", err)
	}
	if inv.Currency == nil || *inv.Currency != "INR" {
		t.Errorf("expected inferred currency INR, got %v", inv.Currency)
	}
}

func TestStructuredSellerNameFromAddress(t *testing.T) {
	inv, err := Structured(&models.Invoice{
		Seller: &models.SellerInfo{
			Address: models.String("Registered Office: Acme Industries Ltd, 12 Park Street, Kolkata"),
		},
	})
	if err != nil {
		t.Fatalf("Structured failed: %v", err)
	}
	if inv.Seller.Name == nil || *inv.Seller.Name != "Acme Industries Ltd" {
		t.Errorf("expected inferred seller name, got %v", inv.Seller.Name)
	}
}

func TestStructuredDefaultsSlices(t *testing.T) {
	inv, err := Structured(&models.Invoice{})
	if err != nil {
		t.Fatalf("Structured failed: %v", err)
	}
	if inv.Items == nil || inv.TaxDetails == nil {
		t.Errorf("expected empty slices, got items=%v tax_details=%v", inv.Items, inv.TaxDetails)
	}
}

func TestStructuredIdempotent(t *testing.T) {
	first, err := Structured(&models.Invoice{
		InvoiceNumber: models.String("INV-3"),
		AmountInWords: models.String("Dollars Fifty Only"),
		Items: []models.LineItem{{
			Amount:        models.Float(50),
			TaxPercentage: models.Float(10),
		}},
	})
	if err != nil {
		t.Fatalf("first Structured failed: %v", err)
	}
	second, err := Structured(first)
	if err != nil {
		t.Fatalf("second Structured failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalization is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestStructuredDoesNotMutateInput(t *testing.T) {
	input := &models.Invoice{
		AmountInWords: models.String("Rupees Ten Only"),
	}
	if _, err := Structured(input); err != nil {
		t.Fatalf("Structured failed: %v", err)
	}
	if input.Currency != nil {
		t.Errorf("input invoice was mutated: currency=%v", *input.Currency)
	}
	if input.Items != nil {
		t.Errorf("input invoice was mutated: items=%v", input.Items)
	}
}

func TestStructuredNilInvoice(t *testing.T) {
	_, err := Structured(nil)
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError for nil invoice, got %v", err)
	}
}

func ExampleFreeform() {
	inv, _ := Freeform("```json\n{\"invoice_number\": \"INV-42\", \"total_amount\": 1,250.75}\n```")
	fmt.Println(*inv.InvoiceNumber, *inv.TotalAmount)
	// Output: INV-42 1250.75
}
