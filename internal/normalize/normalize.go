// Package normalize reconciles raw backend output into the canonical invoice
// schema.
//
// Schema-typed backends produce an already-decoded invoice and only receive
// the canonical passes (slice defaults, derived fields, name inference).
// Freeform backends produce text that is expected — but not guaranteed — to
// be a JSON object: it is parsed defensively with escalating numeric repairs,
// its field-name variants are mapped onto the canonical names, and sentinel
// placeholder values are coerced to true absence.
//
// Normalization is idempotent: applying Structured to an already-normalized
// invoice returns an equal invoice.
package normalize

import (
	"encoding/json"
	"errors"
	"math"
	"strings"

	"invoiceparser/pkg/models"
)

// keyVariants maps backend field-name variants onto canonical names. A
// variant never overwrites an existing canonical key.
var keyVariants = map[string]string{
	"seller_info": "seller",
	"buyer_info":  "buyer",
	"line_items":  "items",
}

// booleanSentinels are textual placeholders some backends emit in boolean
// positions; they mean "not found", not true.
var booleanSentinels = map[string]bool{
	"":             true,
	"not provided": true,
	"n/a":          true,
	"none":         true,
	"null":         true,
}

// registeredOfficePrefixes are tokens stripped from the head of an address
// segment before it is promoted to a party name.
var registeredOfficePrefixes = []string{
	"registered office:",
	"registered office",
	"regd. office:",
	"regd. office",
	"regd office:",
	"regd office",
}

// currencyTokens maps words found in "amount in words" text to ISO codes.
var currencyTokens = map[string]string{
	"INR":     "INR",
	"RUPEES":  "INR",
	"RUPEE":   "INR",
	"USD":     "USD",
	"DOLLARS": "USD",
	"DOLLAR":  "USD",
	"EUR":     "EUR",
	"EUROS":   "EUR",
	"EURO":    "EUR",
	"GBP":     "GBP",
	"POUNDS":  "GBP",
	"POUND":   "GBP",
}

// Structured normalizes an invoice produced by a schema-typed backend. The
// input is not mutated.
func Structured(inv *models.Invoice) (*models.Invoice, error) {
	if inv == nil {
		return nil, &ValidationError{Err: errors.New("nil invoice")}
	}

	out := clone(inv)
	canonicalize(out)
	return out, nil
}

// Freeform parses backend output text into a canonical invoice, repairing
// malformed numeric literals and reconciling field-name variants along the way.
func Freeform(text string) (*models.Invoice, error) {
	raw, err := parseObject(extractJSON(text))
	if err != nil {
		return nil, &ParseError{RawText: text, Err: err}
	}

	reconcileKeys(raw)
	cleanSentinels(raw)

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, &ValidationError{RawText: text, Err: err}
	}

	var inv models.Invoice
	if err := json.Unmarshal(encoded, &inv); err != nil {
		return nil, &ValidationError{RawText: text, Err: err}
	}

	canonicalize(&inv)
	return &inv, nil
}

// extractJSON trims markdown code fences and surrounding prose, keeping the
// outermost brace-delimited object if one exists.
func extractJSON(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	if start := strings.Index(s, "{"); start >= 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			return s[start : end+1]
		}
	}
	return s
}

// parseObject decodes text as a JSON object, escalating through the numeric
// repair passes on failure. The error from the final attempt is returned.
func parseObject(text string) (map[string]any, error) {
	var raw map[string]any
	err := json.Unmarshal([]byte(text), &raw)
	if err == nil {
		return raw, nil
	}

	repaired := repairNarrow(text)
	if err = json.Unmarshal([]byte(repaired), &raw); err == nil {
		return raw, nil
	}

	repaired = repairAggressive(text)
	if err = json.Unmarshal([]byte(repaired), &raw); err == nil {
		return raw, nil
	}

	return nil, err
}

// reconcileKeys maps top-level field-name variants onto canonical names.
func reconcileKeys(raw map[string]any) {
	for variant, canonical := range keyVariants {
		value, ok := raw[variant]
		if !ok {
			continue
		}
		if _, exists := raw[canonical]; !exists {
			raw[canonical] = value
		}
		delete(raw, variant)
	}
}

// cleanSentinels coerces textual placeholders in boolean positions to true
// absence, and string booleans to booleans.
func cleanSentinels(raw map[string]any) {
	value, ok := raw["reverse_charge"]
	if !ok {
		return
	}
	s, isString := value.(string)
	if !isString {
		return
	}

	switch {
	case booleanSentinels[strings.ToLower(strings.TrimSpace(s))]:
		delete(raw, "reverse_charge")
	case strings.EqualFold(s, "true") || strings.EqualFold(s, "yes"):
		raw["reverse_charge"] = true
	case strings.EqualFold(s, "false") || strings.EqualFold(s, "no"):
		raw["reverse_charge"] = false
	default:
		delete(raw, "reverse_charge")
	}
}

// canonicalize applies the passes shared by every backend variant: slice
// defaults, derived-field backfill, currency inference and party-name
// inference. All passes are stable, which is what makes normalization
// idempotent.
func canonicalize(inv *models.Invoice) {
	if inv.Items == nil {
		inv.Items = []models.LineItem{}
	}
	if inv.TaxDetails == nil {
		inv.TaxDetails = []models.TaxDetail{}
	}

	for i := range inv.Items {
		item := &inv.Items[i]
		if item.TaxAmount == nil && item.TaxPercentage != nil && item.Amount != nil {
			item.TaxAmount = models.Float(round2(*item.Amount * *item.TaxPercentage / 100))
		}
	}

	if inv.Currency == nil && inv.AmountInWords != nil {
		if code := inferCurrency(*inv.AmountInWords); code != "" {
			inv.Currency = models.String(code)
		}
	}

	if inv.Seller != nil && inv.Seller.Name == nil && inv.Seller.Address != nil {
		if name := nameFromAddress(*inv.Seller.Address); name != "" {
			inv.Seller.Name = models.String(name)
		}
	}
}

// inferCurrency scans free text (typically "amount in words") for a currency
// token and returns its ISO code, or "".
func inferCurrency(text string) string {
	tokens := strings.FieldsFunc(strings.ToUpper(text), func(r rune) bool {
		return !('A' <= r && r <= 'Z')
	})
	for _, token := range tokens {
		if code, ok := currencyTokens[token]; ok {
			return code
		}
	}
	return ""
}

// nameFromAddress derives a party name from the first comma-delimited
// segment of an address, stripping a registered-office prefix if present.
func nameFromAddress(address string) string {
	segment, _, _ := strings.Cut(address, ",")
	segment = strings.TrimSpace(segment)

	lower := strings.ToLower(segment)
	for _, prefix := range registeredOfficePrefixes {
		if strings.HasPrefix(lower, prefix) {
			segment = strings.TrimSpace(segment[len(prefix):])
			break
		}
	}
	return segment
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// clone deep-copies an invoice through its JSON encoding.
func clone(inv *models.Invoice) *models.Invoice {
	encoded, err := json.Marshal(inv)
	if err != nil {
		// The model is plain data; marshaling cannot fail in practice.
		out := *inv
		return &out
	}
	var out models.Invoice
	if err := json.Unmarshal(encoded, &out); err != nil {
		copied := *inv
		return &copied
	}
	return &out
}
