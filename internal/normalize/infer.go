package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"invoiceparser/pkg/models"
)

var (
	igstRatePattern = regexp.MustCompile(`IGST\s*\(?(\d+(\.\d+)?)%?\)?`)
	anyRatePattern  = regexp.MustCompile(`(\d+(\.\d+)?)\s*%`)
)

// InferTaxDetails is a best-effort enrichment for invoices whose tax
// breakdown came back empty: when the free-text fields reference IGST (or a
// total tax amount exists with no breakdown), a single IGST entry is
// synthesized from whatever rate and amount can be recovered from the text.
//
// This runs in the presentation path, after normalization; it is not part of
// the normalizer's contract and never overwrites extracted tax details.
func InferTaxDetails(inv *models.Invoice) {
	if inv == nil || len(inv.TaxDetails) > 0 {
		return
	}

	sources := textSources(inv)

	hasIGSTReference := inv.TotalTaxAmount != nil
	if !hasIGSTReference {
		for _, source := range sources {
			if strings.Contains(source, "IGST") {
				hasIGSTReference = true
				break
			}
		}
	}
	if !hasIGSTReference {
		return
	}

	var rate *float64
	for _, source := range sources {
		if m := igstRatePattern.FindStringSubmatch(source); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				rate = models.Float(v)
				break
			}
		}
		if m := anyRatePattern.FindStringSubmatch(source); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				rate = models.Float(v)
				break
			}
		}
	}

	amount := inv.TotalTaxAmount

	if rate == nil && amount == nil {
		return
	}

	inv.TaxDetails = []models.TaxDetail{{
		TaxType: models.String("IGST"),
		Rate:    rate,
		Amount:  amount,
	}}
}

func textSources(inv *models.Invoice) []string {
	var sources []string
	for _, field := range []*string{inv.AmountInWords, inv.Notes, inv.PaymentTerms} {
		if field != nil && *field != "" {
			sources = append(sources, *field)
		}
	}
	return sources
}
