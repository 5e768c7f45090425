package parser

import (
	"regexp"
	"strings"
)

// CarrierPattern holds the tracking-URL regexes for one carrier.
// New carriers are additive data: append an entry, no new types.
type CarrierPattern struct {
	ID       string
	Patterns []*regexp.Regexp
}

// RetailerDomain maps a sender/body domain fragment to a display name.
// Fragments ending in "." match any TLD (amazon. matches amazon.co.uk).
type RetailerDomain struct {
	Fragment string
	Name     string
}

// RetailerURLPattern holds the product-page URL regexes for one retailer.
// The first capture group, when present, is the product identifier.
type RetailerURLPattern struct {
	Retailer string
	Patterns []*regexp.Regexp
}

// PatternTable is the immutable pattern data consulted by every extractor.
// Built once at process start; safe for concurrent use.
type PatternTable struct {
	Carriers        []CarrierPattern
	RetailerDomains []RetailerDomain
	ProductURLs     []RetailerURLPattern
}

// carrierAliases is the priority-ordered keyword table for carrier
// detection from surrounding text. First match wins, so more specific
// names (global-e before "dhl" etc.) come first.
var carrierAliases = []struct {
	ID       string
	Keywords []string
}{
	{"global_e", []string{"global-e", "globale"}},
	{"royal_mail", []string{"royal mail", "royalmail"}},
	{"dhl", []string{"dhl"}},
	{"ups", []string{"ups"}},
	{"fedex", []string{"fedex"}},
	{"dpd", []string{"dpd"}},
	{"evri", []string{"evri", "hermes"}},
	{"usps", []string{"usps"}},
	{"yodel", []string{"yodel"}},
}

// trackingNumberSignatures classifies a bare tracking number by shape when
// no carrier could be attributed any other way.
var trackingNumberSignatures = []struct {
	ID      string
	Pattern *regexp.Regexp
}{
	{"global_e", regexp.MustCompile(`^LTN[0-9A-Z]+$`)},
	{"royal_mail", regexp.MustCompile(`^[A-Z]{2}\d{9}[A-Z]{2}$`)},
}

// urlTail matches the remainder of a URL once a known domain has been seen
const urlTail = `[^\s"'<>\)\]]*`

// NewPatternTable builds the static carrier/retailer pattern table
func NewPatternTable() *PatternTable {
	return &PatternTable{
		Carriers:        carrierPatterns(),
		RetailerDomains: retailerDomains(),
		ProductURLs:     productURLPatterns(),
	}
}

func carrierPatterns() []CarrierPattern {
	return []CarrierPattern{
		{
			ID: "royal_mail",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?royalmail\.com/(?:track-your-item|portal|track)` + urlTail),
			},
		},
		{
			ID: "ups",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.|wwwapps\.)?ups\.com/(?:track|mobile/track|WebTracking)` + urlTail),
			},
		},
		{
			ID: "fedex",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?fedex\.com/(?:fedextrack|apps/fedextrack|wtrk)` + urlTail),
			},
		},
		{
			ID: "dhl",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?dhl\.(?:com|de|co\.uk)/` + `[^\s"'<>\)\]]*(?:tracking|verfolgen)` + urlTail),
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?dhlparcel\.co\.uk/` + urlTail),
			},
		},
		{
			ID: "dpd",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?track(?:ing)?\.dpd\.(?:co\.uk|com|de)/` + urlTail),
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?dpd\.(?:co\.uk|com)/(?:apps/tracking|track)` + urlTail),
			},
		},
		{
			ID: "evri",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?evri\.com/track` + urlTail),
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?myhermes\.co\.uk/track` + urlTail),
			},
		},
		{
			ID: "usps",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?tools\.usps\.com/go/TrackConfirmAction` + urlTail),
			},
		},
		{
			ID: "yodel",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?yodel\.co\.uk/track` + urlTail),
			},
		},
		{
			ID: "global_e",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?(?:web|track)\.global-e\.com/` + urlTail),
			},
		},
	}
}

func retailerDomains() []RetailerDomain {
	return []RetailerDomain{
		{"amazon.", "Amazon"},
		{"ebay.", "eBay"},
		{"asos.com", "ASOS"},
		{"zara.com", "Zara"},
		{"next.co.uk", "Next"},
		{"johnlewis.com", "John Lewis"},
		{"argos.co.uk", "Argos"},
		{"marksandspencer.com", "Marks & Spencer"},
		{"hm.com", "H&M"},
		{"uniqlo.com", "UNIQLO"},
		{"nike.com", "Nike"},
		{"adidas.", "adidas"},
		{"apple.com", "Apple"},
		{"etsy.com", "Etsy"},
		{"boohoo.com", "boohoo"},
		{"zalando.", "Zalando"},
		{"shein.", "SHEIN"},
		{"currys.co.uk", "Currys"},
		{"very.co.uk", "Very"},
		{"sportsdirect.com", "Sports Direct"},
	}
}

func productURLPatterns() []RetailerURLPattern {
	return []RetailerURLPattern{
		{
			Retailer: "Amazon",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?amazon\.[a-z.]{2,10}/(?:[^\s"'<>]*?/)?(?:dp|gp/product)/([A-Z0-9]{10})` + urlTail),
			},
		},
		{
			Retailer: "eBay",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?ebay\.[a-z.]{2,10}/itm/(?:[^\s"'<>]*?/)?(\d{9,15})` + urlTail),
			},
		},
		{
			Retailer: "ASOS",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?asos\.com/[^\s"'<>]*/prd/(\d+)` + urlTail),
			},
		},
		{
			Retailer: "Etsy",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?etsy\.com/listing/(\d+)` + urlTail),
			},
		},
		{
			Retailer: "Zara",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?zara\.com/[^\s"'<>]*-p(\d+)\.html` + urlTail),
			},
		},
		{
			Retailer: "John Lewis",
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?johnlewis\.com/[^\s"'<>]*/p(\d+)` + urlTail),
			},
		},
	}
}

// nonProductPathFragments excludes non-product retailer links (carts,
// unsubscribe pages, static assets) from product URL extraction.
var nonProductPathFragments = []string{
	"/cart", "/basket", "/checkout", "/unsubscribe", "/preferences",
	"/login", "/signin", "/account", "/help", "/returns", "/track",
	"/wishlist", "/customer-service", "/gp/css", "/gp/help",
	".css", ".js", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico",
}

// carrierFromText returns the first carrier whose alias appears in text,
// honoring the priority order of the alias table.
func carrierFromText(text string) string {
	lower := strings.ToLower(text)
	for _, entry := range carrierAliases {
		for _, kw := range entry.Keywords {
			if strings.Contains(lower, kw) {
				return entry.ID
			}
		}
	}
	return ""
}

// carrierFromNumberShape classifies a tracking number by its shape alone.
// Last-resort fallback used by the context-enrichment pass.
func carrierFromNumberShape(number string) string {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return ""
	}
	for _, sig := range trackingNumberSignatures {
		if sig.Pattern.MatchString(number) {
			return sig.ID
		}
	}
	return ""
}

// retailerForDomain looks up a domain against the retailer table
func (t *PatternTable) retailerForDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return ""
	}
	for _, rd := range t.RetailerDomains {
		if strings.Contains(domain, rd.Fragment) {
			return rd.Name
		}
	}
	return ""
}
