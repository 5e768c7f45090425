package parser

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"purchase-tracking/internal/email"
)

// CarrierUnknown marks a tracking link no pass could attribute
const CarrierUnknown = "unknown"

// contextWindow is how far around an unattributed link the enrichment
// pass searches for a carrier name.
const contextWindow = 300

var (
	genericURLRe = regexp.MustCompile(`(?i)https?://[^\s"'<>\)\]]+`)

	// "<carrier?> tracking number: <NUM> ... <a href=...>"
	labeledAnchorRe = regexp.MustCompile(`(?i)(?:([a-z][a-z -]{1,15})\s+)?tracking\s+number:?\s*([A-Z0-9][A-Z0-9-]{6,29})\b[^<]{0,200}?<a[^>]+href=["']([^"']+)["']`)

	// "<carrier?> tracking number: <NUM> <url>" in plain text
	labeledTextRe = regexp.MustCompile(`(?i)(?:([a-z][a-z -]{1,15})\s+)?tracking\s+number:?\s*([A-Z0-9][A-Z0-9-]{6,29})\s+(https?://[^\s"'<>\)\]]+)`)

	// any anchor shortly after the word "tracking"
	trackingAnchorRe = regexp.MustCompile(`(?i)tracking[^<]{0,100}<a[^>]+href=["']([^"']+)["']`)

	trackingShapedRe = regexp.MustCompile(`^[A-Z0-9]{10,30}$`)

	trailingPunctRe = regexp.MustCompile(`[.,;:!?'"\)\]]+$`)
)

// trackingParamKeys are query parameters that carry the tracking number
// inside a tracking URL.
var trackingParamKeys = []string{
	"tracknumber", "trackingnumber", "tracking_number", "tracknumbers",
	"trackingcode", "tracking", "tracknum", "parcelcode", "consignment", "tn",
}

// TrackingExtractor finds tracking links in email text and HTML and
// attributes them to carriers.
type TrackingExtractor struct {
	table *PatternTable
}

// NewTrackingExtractor creates a tracking URL extractor backed by the
// shared pattern table.
func NewTrackingExtractor(table *PatternTable) *TrackingExtractor {
	return &TrackingExtractor{table: table}
}

// Extract runs all extraction passes and returns tracking links
// deduplicated by URL. Carrier attribution is first-writer-wins; the
// context pass only upgrades links still tagged unknown.
func (e *TrackingExtractor) Extract(text, html string) []email.TrackingLink {
	var links []email.TrackingLink
	index := make(map[string]int)

	add := func(link email.TrackingLink) {
		link.URL = cleanTrackingURL(link.URL)
		if link.URL == "" {
			return
		}
		if i, ok := index[link.URL]; ok {
			// Keep the first attribution but fill in a missing number
			if links[i].TrackingNumber == "" && link.TrackingNumber != "" {
				links[i].TrackingNumber = link.TrackingNumber
			}
			return
		}
		if link.TrackingNumber == "" {
			link.TrackingNumber = trackingNumberFromURL(link.URL)
		}
		index[link.URL] = len(links)
		links = append(links, link)
	}

	searchSpace := text
	if html != "" {
		searchSpace = text + "\n" + html
	}

	// Pass 1: known carrier URL shapes
	for _, carrier := range e.table.Carriers {
		for _, re := range carrier.Patterns {
			for _, match := range re.FindAllString(searchSpace, -1) {
				add(email.TrackingLink{Carrier: carrier.ID, URL: match})
			}
		}
	}

	// Pass 2: any URL that talks about tracking or delivery
	for _, match := range genericURLRe.FindAllString(searchSpace, -1) {
		lower := strings.ToLower(match)
		if strings.Contains(lower, "track") || strings.Contains(lower, "delivery") ||
			strings.Contains(lower, "shipment") || strings.Contains(lower, "parcel") {
			add(email.TrackingLink{Carrier: CarrierUnknown, URL: match})
		}
	}

	// Pass 3: HTML link strategies, highest-signal first
	if html != "" {
		e.extractFromHTML(html, add)
	}
	for _, m := range labeledTextRe.FindAllStringSubmatch(text, -1) {
		carrier := carrierFromText(m[1])
		if carrier == "" {
			carrier = CarrierUnknown
		}
		add(email.TrackingLink{Carrier: carrier, URL: m[3], TrackingNumber: strings.ToUpper(m[2])})
	}

	// Pass 4: context enrichment for links still unknown
	for i := range links {
		if links[i].Carrier != CarrierUnknown {
			continue
		}
		if carrier := e.carrierFromContext(links[i], text, html); carrier != "" {
			links[i].Carrier = carrier
		}
	}

	return links
}

// extractFromHTML applies the three anchor-based sub-strategies in
// priority order.
func (e *TrackingExtractor) extractFromHTML(html string, add func(email.TrackingLink)) {
	// (a) explicit "tracking number: NUM" tied to the following anchor
	for _, m := range labeledAnchorRe.FindAllStringSubmatch(html, -1) {
		carrier := carrierFromText(m[1])
		if carrier == "" {
			carrier = CarrierUnknown
		}
		add(email.TrackingLink{Carrier: carrier, URL: m[3], TrackingNumber: strings.ToUpper(m[2])})
	}

	// (b) anchors whose visible text mentions tracking or is itself a
	// tracking-number-shaped token
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			if !strings.HasPrefix(strings.ToLower(href), "http") {
				return
			}
			anchorText := strings.TrimSpace(sel.Text())
			shaped := trackingShapedRe.MatchString(anchorText)
			if !shaped && !strings.Contains(strings.ToLower(anchorText), "tracking") {
				return
			}
			link := email.TrackingLink{Carrier: e.carrierForURL(href), URL: href}
			if shaped {
				link.TrackingNumber = anchorText
			}
			add(link)
		})
	}

	// (c) any anchor immediately following the word "tracking"
	for _, m := range trackingAnchorRe.FindAllStringSubmatch(html, -1) {
		add(email.TrackingLink{Carrier: CarrierUnknown, URL: m[1]})
	}
}

// carrierForURL attributes a URL via the carrier pattern table
func (e *TrackingExtractor) carrierForURL(rawURL string) string {
	for _, carrier := range e.table.Carriers {
		for _, re := range carrier.Patterns {
			if re.MatchString(rawURL) {
				return carrier.ID
			}
		}
	}
	return CarrierUnknown
}

// carrierFromContext inspects text around an unattributed link and, as a
// last resort, the shape of its tracking number.
func (e *TrackingExtractor) carrierFromContext(link email.TrackingLink, text, html string) string {
	needle := strings.TrimPrefix(link.URL, "https://")
	needle = strings.TrimPrefix(needle, "http://")

	if pos := strings.Index(text, needle); pos >= 0 {
		start := pos - contextWindow
		if start < 0 {
			start = 0
		}
		end := pos + len(needle) + contextWindow
		if end > len(text) {
			end = len(text)
		}
		if carrier := carrierFromText(text[start:end]); carrier != "" {
			return carrier
		}
	}

	if html != "" {
		if pos := strings.Index(html, needle); pos >= 0 {
			start := pos - contextWindow
			if start < 0 {
				start = 0
			}
			preceding := tagRe.ReplaceAllString(html[start:pos], " ")
			if carrier := carrierFromText(preceding); carrier != "" {
				return carrier
			}
		}
	}

	if link.TrackingNumber != "" {
		if carrier := carrierFromNumberShape(link.TrackingNumber); carrier != "" {
			return carrier
		}
	}

	return ""
}

// cleanTrackingURL normalizes a matched URL: decodes entity artifacts,
// strips trailing punctuation, and forces an https scheme when missing.
// Query-string tracking parameters are preserved as-is at this stage.
func cleanTrackingURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	raw = strings.ReplaceAll(raw, "&amp;", "&")
	raw = strings.TrimSuffix(raw, "&nbsp;")
	raw = trailingPunctRe.ReplaceAllString(raw, "")
	raw = strings.TrimRight(raw, "&?")

	if !strings.HasPrefix(strings.ToLower(raw), "http://") &&
		!strings.HasPrefix(strings.ToLower(raw), "https://") {
		raw = "https://" + raw
	}

	if _, err := url.Parse(raw); err != nil {
		return ""
	}
	return raw
}

// trackingNumberFromURL pulls a tracking number out of well-known query
// parameters.
func trackingNumberFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	values := parsed.Query()
	for key, vals := range values {
		lower := strings.ToLower(key)
		for _, want := range trackingParamKeys {
			if lower == want && len(vals) > 0 && vals[0] != "" {
				return vals[0]
			}
		}
	}
	return ""
}
