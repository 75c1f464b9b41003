// Package identity extracts and normalizes identity numbers and holder
// names from OCR text.
package identity

import (
	"regexp"
	"strings"

	"github.com/arbovm/levenshtein"
)

// icPattern matches the two accepted surface forms of an identity number:
// the contiguous 12-digit form and the hyphen-segmented 6-2-4 form.
var icPattern = regexp.MustCompile(`(\d{12}|\d{6}-\d{2}-\d{4})`)

var nonDigits = regexp.MustCompile(`\D`)

// CanonicalDigits is the digit count of a normalized identity number
const CanonicalDigits = 12

// NormalizeTyped strips all non-digit characters from a user-typed
// identity number. It performs no length validation; comparison against
// the extracted identifier is the caller's concern.
func NormalizeTyped(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// ExtractFromText searches OCR text for the first identity-number pattern
// and returns it with non-digits stripped. First match wins; multiple
// candidates are never reconciled. The second return value is false when
// no pattern matches, which is a legitimate terminal outcome for the
// caller, not a defect.
func ExtractFromText(text string) (string, bool) {
	clean := strings.ReplaceAll(text, "\n", " ")
	match := icPattern.FindString(clean)
	if match == "" {
		return "", false
	}
	return nonDigits.ReplaceAllString(match, ""), true
}

// ExtractName returns the first all-uppercase line longer than five
// characters, the heuristic position of the holder name on an ID card.
func ExtractName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) > 5 && trimmed == strings.ToUpper(trimmed) && strings.ContainsAny(trimmed, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
			return trimmed
		}
	}
	return ""
}

// NameSimilarity returns a [0,1] similarity between two names based on
// Levenshtein distance. Reported as an audit signal only; it never
// participates in the verification verdict.
func NameSimilarity(a, b string) float64 {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	dist := levenshtein.Distance(a, b)
	if dist >= longest {
		return 0
	}
	return 1 - float64(dist)/float64(longest)
}
