package parser

import (
	"regexp"
	"strings"
)

var (
	forwardedMarkerRe = regexp.MustCompile(`(?i)-{2,}\s*(?:Forwarded message|Original Message)\s*-{2,}`)
	emailAddrRe       = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	fromLineRe        = regexp.MustCompile(`(?i)^\s*>?\s*From:`)
	headerFollowRe    = regexp.MustCompile(`(?i)^\s*>?\s*(?:Date|Sent|To):`)
)

// senderPrefixes are subdomain/local-part labels that carry no retailer
// identity and are stripped before deriving a name from a domain.
var senderPrefixes = []string{
	"mail", "email", "noreply", "no-reply", "no_reply", "donotreply",
	"shipping", "orders", "order", "support", "info", "news", "newsletter",
	"hello", "contact", "notifications", "notification", "service",
	"customerservice", "updates", "reply", "confirm", "delivery",
}

// tldSuffixes are stripped from the tail of a domain, two-part country
// suffixes before the plain ones.
var tldSuffixes = []string{
	".co.uk", ".org.uk", ".com.au", ".co.nz", ".com.br",
	".com", ".net", ".org", ".io", ".uk", ".de", ".fr", ".es", ".it",
	".nl", ".ie", ".us", ".ca", ".au", ".shop", ".store", ".co",
}

// RetailerIdentifier resolves the retailer a purchase email came from.
// Forwarded emails are unwrapped so a parcel-forwarding inbox still
// resolves to the original merchant.
type RetailerIdentifier struct {
	table *PatternTable
}

// NewRetailerIdentifier creates a retailer identifier backed by the
// shared pattern table.
func NewRetailerIdentifier(table *PatternTable) *RetailerIdentifier {
	return &RetailerIdentifier{table: table}
}

// Identify resolves a retailer display name. Resolution order: forwarded
// original sender against the domain table, outer sender against the
// table, body mention, then a titleized domain fallback (forwarded
// domain first, outer domain last). Returns empty only when no address
// and no derivable domain exist.
func (r *RetailerIdentifier) Identify(fromAddress, text string) string {
	forwardedAddr := extractForwardedSender(text)

	if forwardedAddr != "" {
		if name := r.table.retailerForDomain(domainOfAddress(forwardedAddr)); name != "" {
			return name
		}
	}

	if fromAddress != "" {
		if name := r.table.retailerForDomain(domainOfAddress(fromAddress)); name != "" {
			return name
		}
	}

	if name := r.scanBody(text); name != "" {
		return name
	}

	if forwardedAddr != "" {
		if name := nameFromDomain(domainOfAddress(forwardedAddr)); name != "" {
			return name
		}
	}

	if fromAddress != "" {
		if name := nameFromDomain(domainOfAddress(fromAddress)); name != "" {
			return name
		}
	}

	return ""
}

// scanBody looks for a retailer domain or name mention in the body text
func (r *RetailerIdentifier) scanBody(text string) string {
	lower := strings.ToLower(text)
	for _, rd := range r.table.RetailerDomains {
		if strings.Contains(lower, rd.Fragment) {
			return rd.Name
		}
		// Name mentions only count for distinctive names; short ones
		// like "Next" collide with ordinary prose.
		if len(rd.Name) >= 5 && strings.Contains(text, rd.Name) {
			return rd.Name
		}
	}
	return ""
}

// extractForwardedSender finds the original sender address inside a
// forwarded-email block, or empty when the email is not a forward.
func extractForwardedSender(text string) string {
	if loc := forwardedMarkerRe.FindStringIndex(text); loc != nil {
		rest := text[loc[1]:]
		for _, line := range strings.SplitN(rest, "\n", 12) {
			if fromLineRe.MatchString(line) {
				if addr := emailAddrRe.FindString(line); addr != "" {
					return strings.ToLower(addr)
				}
			}
		}
		return ""
	}

	// A bare "From: ... <email>" line counts as a forward header only
	// when a Date:/Sent:/To: line follows within a few lines.
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !fromLineRe.MatchString(line) {
			continue
		}
		addr := emailAddrRe.FindString(line)
		if addr == "" {
			continue
		}
		for j := i + 1; j < len(lines) && j <= i+3; j++ {
			if headerFollowRe.MatchString(lines[j]) {
				return strings.ToLower(addr)
			}
		}
	}
	return ""
}

// domainOfAddress returns the lowercased domain of an address or raw
// domain string. Accepts "Name <user@host>" forms.
func domainOfAddress(addr string) string {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if m := emailAddrRe.FindString(addr); m != "" {
		addr = m
	}
	if at := strings.LastIndex(addr, "@"); at >= 0 {
		addr = addr[at+1:]
	}
	return strings.Trim(addr, "<> ")
}

// nameFromDomain derives a readable retailer name from a domain by
// stripping noise subdomains and TLDs and title-casing what remains.
func nameFromDomain(domain string) string {
	if domain == "" {
		return ""
	}

	for _, suffix := range tldSuffixes {
		if strings.HasSuffix(domain, suffix) {
			domain = strings.TrimSuffix(domain, suffix)
			break
		}
	}

	labels := strings.Split(domain, ".")
	for len(labels) > 1 && isSenderPrefix(labels[0]) {
		labels = labels[1:]
	}
	core := labels[len(labels)-1]
	if core == "" {
		return ""
	}

	return titleize(core)
}

func isSenderPrefix(label string) bool {
	for _, p := range senderPrefixes {
		if label == p {
			return true
		}
	}
	return false
}

// titleize turns "the-book-people" into "The Book People"
func titleize(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
