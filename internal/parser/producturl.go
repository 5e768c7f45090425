package parser

import (
	"strings"

	"purchase-tracking/internal/email"
)

// ProductURLExtractor finds retailer product-page links. Unlike tracking
// links, product URLs have their query strings stripped so the same page
// reached through different campaign parameters deduplicates.
type ProductURLExtractor struct {
	table *PatternTable
}

// NewProductURLExtractor creates a product URL extractor backed by the
// shared pattern table.
func NewProductURLExtractor(table *PatternTable) *ProductURLExtractor {
	return &ProductURLExtractor{table: table}
}

// Extract matches the retailer product-page table against text and HTML,
// skipping cart/unsubscribe/static-asset links, deduplicated by URL.
func (e *ProductURLExtractor) Extract(text, html string) []email.ProductURL {
	searchSpace := text
	if html != "" {
		searchSpace = text + "\n" + html
	}

	var urls []email.ProductURL
	seen := make(map[string]bool)

	for _, entry := range e.table.ProductURLs {
		for _, re := range entry.Patterns {
			for _, m := range re.FindAllStringSubmatch(searchSpace, -1) {
				raw := cleanProductURL(m[0])
				if raw == "" || seen[raw] {
					continue
				}
				if isNonProductPath(raw) {
					continue
				}
				seen[raw] = true
				productURL := email.ProductURL{URL: raw, Retailer: entry.Retailer}
				if len(m) > 1 {
					productURL.ProductID = m[1]
				}
				urls = append(urls, productURL)
			}
		}
	}

	return urls
}

// cleanProductURL normalizes scheme, strips trailing punctuation, and
// drops the query string entirely.
func cleanProductURL(raw string) string {
	raw = cleanTrackingURL(raw)
	if raw == "" {
		return ""
	}
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSuffix(raw, "/")
}

func isNonProductPath(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, fragment := range nonProductPathFragments {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}
