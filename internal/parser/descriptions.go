package parser

import (
	"regexp"
	"strings"
)

const (
	maxDescriptions     = 10
	minDescriptionLen   = 4
	maxDescriptionLen   = 150
	maxCandidateLineLen = 80
	attributeLookahead  = 6
)

var (
	attributeLineRe = regexp.MustCompile(`(?i)^(Colou?r|Size|Qty|Quantity|Article|SKU|Material|Style|Ref)\s*:`)
	productAttrRe   = regexp.MustCompile(`(?i)^(Colou?r|Size|Qty|Quantity|Article|SKU)\s*:`)
	colorFieldRe    = regexp.MustCompile(`(?i)^Colou?r\s*:\s*(.+)$`)
	materialFieldRe = regexp.MustCompile(`(?i)^Material\s*:\s*(.+)$`)
	quantityLineRe  = regexp.MustCompile(`(?i)^(\d{1,3})\s*x\s+(.+)$`)
	bulletLineRe    = regexp.MustCompile(`^\s*[-•*]\s+(.+)$`)
	listHeaderRe    = regexp.MustCompile(`(?i)^(?:Items|Products|Contains)\s*:\s*(.*)$`)
	priceLineRe     = regexp.MustCompile(`^[£$€]?\s*\d+(?:[.,]\d{2})\s*(?:USD|GBP|EUR)?$`)
	pureNumericRe   = regexp.MustCompile(`^[\d\s.,#/-]+$`)
	bracketOnlyRe   = regexp.MustCompile(`^[\[\(].*[\]\)]$`)
	currencyAmtRe   = regexp.MustCompile(`[£$€]\s*\d+(?:[.,]\d{2})?|\b\d+(?:[.,]\d{2})?\s*(?:USD|GBP|EUR)\b`)
	leadingJunkRe   = regexp.MustCompile(`^[\s\-•*\[\(>]+`)
	nonAlnumRe      = regexp.MustCompile(`[^a-z0-9]+`)
)

// nonProductPhrases rejects boilerplate lines that look like product
// names but never are.
var nonProductPhrases = []string{
	"total", "subtotal", "shipping", "tax", "vat", "discount", "delivery",
	"order summary", "order total", "order confirmation", "thank you",
	"customer service", "unsubscribe", "view in browser", "free returns",
	"terms and conditions", "terms & conditions", "privacy policy",
	"all rights reserved", "track your order", "track your parcel",
	"your order", "payment method", "billing address", "shipping address",
}

// DescriptionExtractor pulls product line items out of order and
// shipping confirmation text.
type DescriptionExtractor struct{}

// NewDescriptionExtractor creates a product description extractor
func NewDescriptionExtractor() *DescriptionExtractor {
	return &DescriptionExtractor{}
}

// Extract runs the three line-based strategies, pools their output, and
// returns at most ten cleaned, deduplicated descriptions in discovery
// order.
func (e *DescriptionExtractor) Extract(text string) []string {
	lines := nonEmptyLines(text)

	var pooled []string
	pooled = append(pooled, e.attributeFollowing(lines)...)
	pooled = append(pooled, e.listMarkers(lines)...)
	pooled = append(pooled, e.quantityPrefixed(lines)...)

	results := []string{}
	seen := make(map[string]bool)
	for _, raw := range pooled {
		cleaned := cleanDescription(raw)
		if cleaned == "" {
			continue
		}
		key := descriptionKey(cleaned)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		results = append(results, cleaned)
		if len(results) >= maxDescriptions {
			break
		}
	}
	return results
}

// attributeFollowing treats a plausible name line as a product when one
// of the next few lines is a Color:/Size:/Qty:/SKU:-style attribute, and
// enriches the name with Color and Material sub-fields.
func (e *DescriptionExtractor) attributeFollowing(lines []string) []string {
	var found []string

	for i, line := range lines {
		if !isCandidateNameLine(line) {
			continue
		}

		end := i + 1 + attributeLookahead
		if end > len(lines) {
			end = len(lines)
		}
		window := lines[i+1 : end]

		hasAttribute := false
		for _, next := range window {
			if productAttrRe.MatchString(next) {
				hasAttribute = true
				break
			}
		}
		if !hasAttribute {
			continue
		}

		var fields []string
		for _, next := range window {
			if priceLineRe.MatchString(next) || quantityLineRe.MatchString(next) {
				break
			}
			if m := colorFieldRe.FindStringSubmatch(next); m != nil {
				fields = append(fields, "Color: "+strings.TrimSpace(m[1]))
			} else if m := materialFieldRe.FindStringSubmatch(next); m != nil {
				fields = append(fields, "Material: "+strings.TrimSpace(m[1]))
			}
		}

		desc := line
		if len(fields) > 0 {
			desc = line + " (" + strings.Join(fields, ", ") + ")"
		}
		found = append(found, desc)
	}

	return found
}

// listMarkers collects bulleted/dashed lines and Items:/Products:/
// Contains: lists.
func (e *DescriptionExtractor) listMarkers(lines []string) []string {
	var found []string

	for i, line := range lines {
		if m := bulletLineRe.FindStringSubmatch(line); m != nil {
			found = append(found, m[1])
			continue
		}
		if m := listHeaderRe.FindStringSubmatch(line); m != nil {
			if rest := strings.TrimSpace(m[1]); rest != "" {
				for _, item := range strings.Split(rest, ",") {
					found = append(found, item)
				}
				continue
			}
			// Newline-separated list: take following lines until one
			// stops looking like an item.
			for j := i + 1; j < len(lines) && j <= i+maxDescriptions; j++ {
				next := lines[j]
				if attributeLineRe.MatchString(next) || listHeaderRe.MatchString(next) ||
					strings.HasSuffix(next, ":") {
					break
				}
				found = append(found, next)
			}
		}
	}

	return found
}

// quantityPrefixed collects "<N>x <name>" and "<N> x <name>" lines
func (e *DescriptionExtractor) quantityPrefixed(lines []string) []string {
	var found []string
	for _, line := range lines {
		if m := quantityLineRe.FindStringSubmatch(line); m != nil {
			found = append(found, m[2])
		}
	}
	return found
}

// isCandidateNameLine filters out headers, prices, attribute lines, pure
// numerics, and bracket-only text before the attribute-following check.
func isCandidateNameLine(line string) bool {
	if len(line) < minDescriptionLen || len(line) > maxCandidateLineLen {
		return false
	}
	if strings.HasSuffix(line, ":") {
		return false
	}
	if attributeLineRe.MatchString(line) || priceLineRe.MatchString(line) {
		return false
	}
	if pureNumericRe.MatchString(line) || bracketOnlyRe.MatchString(line) {
		return false
	}
	if isNonProductPhrase(line) {
		return false
	}
	return true
}

// cleanDescription applies the pooled-set cleaning rules: strip leading
// bullets/brackets and currency amounts, collapse whitespace, reject
// boilerplate and out-of-bound lengths.
func cleanDescription(raw string) string {
	s := leadingJunkRe.ReplaceAllString(raw, "")
	s = currencyAmtRe.ReplaceAllString(s, "")
	s = flattenWhitespace(s)
	s = strings.Trim(s, "-–—· ")

	if len(s) < minDescriptionLen || len(s) > maxDescriptionLen {
		return ""
	}
	if pureNumericRe.MatchString(s) {
		return ""
	}
	if isNonProductPhrase(s) {
		return ""
	}
	return s
}

func isNonProductPhrase(s string) bool {
	lower := strings.ToLower(s)
	for _, phrase := range nonProductPhrases {
		if strings.HasPrefix(lower, phrase) || (len(phrase) > 8 && strings.Contains(lower, phrase)) {
			return true
		}
	}
	return false
}

// descriptionKey is the case- and punctuation-insensitive dedup key
func descriptionKey(s string) string {
	return nonAlnumRe.ReplaceAllString(strings.ToLower(s), "")
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
