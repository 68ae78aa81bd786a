package normalize

import (
	"testing"

	"invoiceparser/pkg/models"
)

func TestInferTaxDetailsSynthesizesIGST(t *testing.T) {
	inv := &models.Invoice{
		AmountInWords:  models.String("Rupees One Thousand One Hundred Eighty Only (incl. IGST 18%)"),
		TotalTaxAmount: models.Float(180),
		TaxDetails:     []models.TaxDetail{},
	}

	InferTaxDetails(inv)

	if len(inv.TaxDetails) != 1 {
		t.Fatalf("expected one synthesized tax detail, got %d", len(inv.TaxDetails))
	}
	detail := inv.TaxDetails[0]
	if detail.TaxType == nil || *detail.TaxType != "IGST" {
		t.Errorf("expected tax_type IGST, got %v", detail.TaxType)
	}
	if detail.Rate == nil || *detail.Rate != 18 {
		t.Errorf("expected rate 18, got %v", detail.Rate)
	}
	if detail.Amount == nil || *detail.Amount != 180 {
		t.Errorf("expected amount 180, got %v", detail.Amount)
	}
}

func TestInferTaxDetailsKeepsExistingBreakdown(t *testing.T) {
	inv := &models.Invoice{
		Notes: models.String("IGST 18% applied"),
		TaxDetails: []models.TaxDetail{{
			TaxType: models.String("CGST"),
			Rate:    models.Float(9),
		}},
	}

	InferTaxDetails(inv)

	if len(inv.TaxDetails) != 1 || *inv.TaxDetails[0].TaxType != "CGST" {
		t.Errorf("existing tax details were replaced: %+v", inv.TaxDetails)
	}
}

func TestInferTaxDetailsNoSignal(t *testing.T) {
	inv := &models.Invoice{
		Notes:      models.String("Thank you for your business"),
		TaxDetails: []models.TaxDetail{},
	}

	InferTaxDetails(inv)

	if len(inv.TaxDetails) != 0 {
		t.Errorf("expected no synthesized details, got %+v", inv.TaxDetails)
	}
}
