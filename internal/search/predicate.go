// Package search turns one opaque query token into a disjunction of typed
// predicates. Each parse attempt is independent and side-effect free; a token
// that reads as both a number and a date contributes both predicates, since
// they target disjoint fields.
package search

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// AmountTolerance is the relative band applied around a numeric token.
const AmountTolerance = 0.05

// TextField names a searchable text column.
type TextField string

const (
	FieldInvoiceCode TextField = "invoice_code"
	FieldVendorName  TextField = "vendor_name"
)

// Predicate is one independently evaluable search condition. The variants
// are combined with logical OR by the query layer.
type Predicate interface {
	predicate()
}

// TextMatch is a case-insensitive substring match on one text field.
type TextMatch struct {
	Field   TextField
	Pattern string
}

// AmountRange matches totals inside [Low, High], both inclusive.
type AmountRange struct {
	Center float64
	Low    float64
	High   float64
}

// DateRange matches invoice dates inside [Start, End), a half-open UTC
// calendar day.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (TextMatch) predicate()   {}
func (AmountRange) predicate() {}
func (DateRange) predicate()   {}

// Synthesize builds the predicate set for one token. An empty token yields an
// empty set, which callers must treat as "no filter", not "match nothing".
func Synthesize(token string) []Predicate {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}

	preds := []Predicate{
		TextMatch{Field: FieldInvoiceCode, Pattern: token},
		TextMatch{Field: FieldVendorName, Pattern: token},
	}
	if amount, ok := parseAmount(token); ok {
		preds = append(preds, AmountRange{
			Center: amount,
			Low:    amount * (1 - AmountTolerance),
			High:   amount * (1 + AmountTolerance),
		})
	}
	if day, ok := parseDay(token); ok {
		preds = append(preds, DateRange{
			Start: day,
			End:   day.AddDate(0, 0, 1),
		})
	}
	return preds
}

// parseAmount strips currency symbols and thousands separators, then requires
// the remainder to be one finite number.
func parseAmount(token string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '€', '$', '£', ',', ' ':
			return -1
		}
		return r
	}, token)
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

var dayLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006/01/02",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// parseDay resolves the token to the UTC midnight of its calendar day.
func parseDay(token string) (time.Time, bool) {
	for _, layout := range dayLayouts {
		t, err := time.ParseInLocation(layout, token, time.UTC)
		if err != nil {
			continue
		}
		t = t.UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}
