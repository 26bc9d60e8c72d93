package normalizer

import (
	"regexp"
	"strings"

	"github.com/username/comissio/backend/src/models"
)

// invalidSalespersonKeywords mark footer and subtotal rows that spreadsheet
// exports append after the data. They are indistinguishable from real rows
// except by content; letting them through corrupts every downstream sum.
var invalidSalespersonKeywords = []string{"ENCERRAMENTO", "TOTAL", "DESCONTOS", "R$"}

// numericTokenRe matches pure-numeric tokens, optionally with thousands or
// decimal separators. Guards against stray numeric cells misaligned into
// the name column.
var numericTokenRe = regexp.MustCompile(`^\s*\d+[\d.,]*\s*$`)

// ValidSalesperson reports whether a salesperson value looks like a real
// agent name rather than a footer artifact.
func ValidSalesperson(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	upper := strings.ToUpper(trimmed)
	for _, kw := range invalidSalespersonKeywords {
		if strings.Contains(upper, kw) {
			return false
		}
	}
	return !numericTokenRe.MatchString(trimmed)
}

// Sanitize drops non-data rows from a canonical frame. Only applies to
// frames that actually carry the salesperson field; anything else passes
// through untouched.
func Sanitize(frame *models.CanonicalFrame) *models.CanonicalFrame {
	if frame.IsPDFText() || !frame.HasField(models.FieldSalesperson) {
		return frame
	}
	out := &models.CanonicalFrame{Fields: frame.Fields, PDFText: frame.PDFText}
	for _, rec := range frame.Records {
		if ValidSalesperson(rec.Salesperson) {
			out.Records = append(out.Records, rec)
		}
	}
	return out
}
