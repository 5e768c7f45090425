package parser

import (
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"purchase-tracking/internal/email"
)

const (
	maxProductImages  = 10
	minImageDimension = 50
	matchThreshold    = 0.3
	minTokenLen       = 3
)

// nonProductImageFragments marks image URLs that are never product
// shots: logos, icons, social buttons, tracking pixels, payment badges.
var nonProductImageFragments = []string{
	"logo", "icon", "favicon", "sprite", "banner", "header", "footer",
	"facebook", "twitter", "instagram", "pinterest", "youtube", "tiktok",
	"pixel", "beacon", "spacer", "blank", "transparent", "1x1",
	"button", "btn", "arrow", "divider", "separator",
	"paypal", "visa", "mastercard", "amex", "klarna", "applepay",
	"star", "rating", "avatar", "badge", "signature",
}

// nonProductAltPhrases rejects images whose alt text is boilerplate
var nonProductAltPhrases = []string{
	"logo", "icon", "banner", "facebook", "twitter", "instagram",
	"unsubscribe", "view in browser", "follow us", "download",
	"app store", "google play", "payment", "rating", "stars",
}

// matchStopWords are dropped before keyword-overlap scoring
var matchStopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"color": true, "size": true, "qty": true, "quantity": true,
	"item": true, "product": true, "order": true, "your": true,
}

// ImageExtractor finds candidate product images in an HTML body and
// matches them against extracted product descriptions.
type ImageExtractor struct{}

// NewImageExtractor creates a product image extractor
func NewImageExtractor() *ImageExtractor {
	return &ImageExtractor{}
}

// Extract scans <img> tags and returns plausible product images sorted
// by descending area, deduplicated by URL, capped at ten. An empty or
// unparseable HTML body yields an empty list.
func (e *ImageExtractor) Extract(html string) []email.ProductImage {
	images := []email.ProductImage{}
	if html == "" {
		return images
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return images
	}

	seen := make(map[string]bool)
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok {
			return
		}
		src = strings.TrimSpace(src)
		if !strings.HasPrefix(strings.ToLower(src), "http") {
			return
		}
		if seen[src] {
			return
		}

		alt := strings.TrimSpace(sel.AttrOr("alt", ""))
		width := parseDimension(sel.AttrOr("width", ""))
		height := parseDimension(sel.AttrOr("height", ""))

		if !isProductImage(src, alt, width, height) {
			return
		}

		seen[src] = true
		images = append(images, email.ProductImage{
			URL:     src,
			AltText: alt,
			Width:   width,
			Height:  height,
		})
	})

	// Largest images first; unknown dimensions sort last
	sort.SliceStable(images, func(i, j int) bool {
		return images[i].Width*images[i].Height > images[j].Width*images[j].Height
	})

	if len(images) > maxProductImages {
		images = images[:maxProductImages]
	}
	return images
}

// MatchImagesToProducts pairs each product description with the image
// whose alt text overlaps it best. The result is parallel to products:
// one image URL or empty string per description, in order. An image may
// match more than one product; no exclusivity is enforced.
func (e *ImageExtractor) MatchImagesToProducts(images []email.ProductImage, products []string) []string {
	matches := make([]string, len(products))

	for i, product := range products {
		productTokens := matchTokens(product)
		if len(productTokens) == 0 {
			continue
		}

		bestScore := 0.0
		bestURL := ""
		for _, img := range images {
			imageTokens := matchTokens(img.AltText)
			if len(imageTokens) == 0 {
				continue
			}
			overlap := 0
			for token := range productTokens {
				if imageTokens[token] {
					overlap++
				}
			}
			score := float64(overlap) / float64(len(productTokens))
			if score > bestScore {
				bestScore = score
				bestURL = img.URL
			}
		}

		if bestScore > matchThreshold {
			matches[i] = bestURL
		}
	}

	return matches
}

// isProductImage applies the URL blocklist, alt-text blocklist, and
// minimum-dimension filters.
func isProductImage(src, alt string, width, height int) bool {
	lowerSrc := strings.ToLower(src)
	if strings.HasPrefix(lowerSrc, "data:") || strings.HasSuffix(stripQuery(lowerSrc), ".gif") {
		return false
	}
	for _, fragment := range nonProductImageFragments {
		if strings.Contains(lowerSrc, fragment) {
			return false
		}
	}

	lowerAlt := strings.ToLower(alt)
	for _, phrase := range nonProductAltPhrases {
		if lowerAlt != "" && strings.Contains(lowerAlt, phrase) {
			return false
		}
	}

	// Dimensions only disqualify when explicitly declared
	if width > 0 && width < minImageDimension {
		return false
	}
	if height > 0 && height < minImageDimension {
		return false
	}

	return true
}

// matchTokens lowercases, splits, and drops stop-words and short tokens
func matchTokens(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, field := range strings.Fields(strings.ToLower(s)) {
		field = strings.Trim(field, ".,;:()[]\"'-")
		if len(field) < minTokenLen || matchStopWords[field] {
			continue
		}
		tokens[field] = true
	}
	return tokens
}

func parseDimension(s string) int {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func stripQuery(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		return u[:i]
	}
	return u
}
