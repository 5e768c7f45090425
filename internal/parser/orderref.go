package parser

import (
	"regexp"
)

// orderReferencePatterns is the priority-ordered list tried against the
// combined text. The first pattern that matches anywhere wins; TOKEN is
// alphanumeric-leading, 6-30 chars of letters, digits, dash, underscore.
var orderReferencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)order\s*(?:#|number|no\.?|ref(?:erence)?)\s*[:#]?\s*([A-Za-z0-9][A-Za-z0-9_-]{5,29})\b`),
	regexp.MustCompile(`(?i)reference\s*[:#]?\s*([A-Za-z0-9][A-Za-z0-9_-]{5,29})\b`),
	regexp.MustCompile(`(?i)tracking\s*number\s*[:#]?\s*([A-Za-z0-9][A-Za-z0-9_-]{7,29})\b`),
	regexp.MustCompile(`(?i)shipment\s*number\s*[:#]?\s*([A-Za-z0-9][A-Za-z0-9_-]{5,29})\b`),
}

// OrderReferenceExtractor finds the order or shipment reference an email
// is about.
type OrderReferenceExtractor struct{}

// NewOrderReferenceExtractor creates an order reference extractor
func NewOrderReferenceExtractor() *OrderReferenceExtractor {
	return &OrderReferenceExtractor{}
}

// Extract returns the first reference matched by the priority list, or
// empty when nothing matches. Multiple matches are never aggregated.
func (e *OrderReferenceExtractor) Extract(text string) string {
	for _, re := range orderReferencePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}
