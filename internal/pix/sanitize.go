package pix

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Per-field caps applied after sanitization.
const (
	maxNameLength        = 25
	maxCityLength        = 15
	maxTxIDLength        = 25
	maxDescriptionLength = 72
)

// sanitizeText folds accents, upper-cases, drops characters scanners reject,
// trims and truncates to maxLen. An empty result yields fallback.
//
// Upper-casing uses full case mapping, so ß becomes SS and ligatures like ﬁ
// expand to FI before the charset filter runs.
func sanitizeText(value string, maxLen int, fallback string) string {
	// Chained transformers carry buffers, so build one per call.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Upper(language.Und))
	folded, _, err := transform.String(fold, value)
	if err != nil {
		folded = strings.ToUpper(value)
	}

	cleaned := strings.Map(func(r rune) rune {
		if allowedRune(r) {
			return r
		}
		return -1
	}, folded)
	cleaned = strings.TrimSpace(cleaned)

	// Only ASCII survives the filter, so byte and character counts agree.
	if len(cleaned) > maxLen {
		cleaned = cleaned[:maxLen]
	}
	if cleaned == "" {
		return fallback
	}
	return cleaned
}

func allowedRune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	switch r {
	case ' ', '$', '%', '*', '+', '-', '.', '/', ':':
		return true
	}
	return false
}
