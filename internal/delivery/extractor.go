package delivery

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"purchase-tracking/internal/email"
)

// Confidence tiers per strategy
const (
	confidenceExplicit      = 0.9
	confidenceKnownMethod   = 0.7
	confidenceGenericMethod = 0.6
	confidenceDayRange      = 0.6
)

// maxPlausibleRangeDays rejects day ranges that are clearly not
// delivery promises.
const maxPlausibleRangeDays = 30

const monthAlternation = `January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sept?|Oct|Nov|Dec`

// deliveryPrefix anchors explicit date patterns to delivery wording so
// unrelated dates (order date, invoice date) do not match.
const deliveryPrefix = `(?:estimated\s+delivery(?:\s+date)?|arriv(?:al|ing|es?)|deliver(?:y|ed)?|expected(?:\s+delivery)?|due|by|on)`

// explicitDatePatterns is the ordered strategy-one pattern list. The
// capture group is handed to parseDateToken.
var explicitDatePatterns = []*regexp.Regexp{
	// ISO
	regexp.MustCompile(`(?i)` + deliveryPrefix + `[^\n]{0,20}?(\d{4}-\d{2}-\d{2})`),
	// UK numeric
	regexp.MustCompile(`(?i)` + deliveryPrefix + `[^\n]{0,20}?(\d{1,2}/\d{1,2}/\d{4})`),
	regexp.MustCompile(`(?i)` + deliveryPrefix + `[^\n]{0,20}?(\d{1,2}-\d{1,2}-\d{4})`),
	// Month D [, Year]
	regexp.MustCompile(`(?i)` + deliveryPrefix + `[^\n]{0,20}?((?:` + monthAlternation + `)\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?)`),
	// D Month [, Year]
	regexp.MustCompile(`(?i)` + deliveryPrefix + `[^\n]{0,20}?(\d{1,2}(?:st|nd|rd|th)?\s+(?:` + monthAlternation + `)(?:,?\s+\d{4})?)`),
}

// Day-of-week-only explicit mention, e.g. "arriving Friday"
var explicitWeekdayRe = regexp.MustCompile(`(?i)(?:arriv(?:al|ing|es?)|deliver(?:y|ed)?|expected|due)\s+(?:by\s+|on\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)

var (
	todayTomorrowRe  = regexp.MustCompile(`(?i)\b(today|tomorrow)\b`)
	thisNextRe       = regexp.MustCompile(`(?i)\b(this|next)\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	plainWeekdayRe   = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	ordinalSuffixRe  = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)\b`)
	dateTokenLayouts = []string{
		"2006-01-02",
		"2/1/2006",
		"2-1-2006",
		"January 2 2006",
		"January 2",
		"2 January 2006",
		"2 January",
		"Jan 2 2006",
		"Jan 2",
		"2 Jan 2006",
		"2 Jan",
	}
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

// Extractor infers an estimated delivery date from email text using a
// prioritized strategy chain: explicit dates, relative dates,
// shipping-method transit times, then day ranges.
type Extractor struct {
	shipping *compiledShippingConfig
}

// NewExtractor creates a delivery date extractor. A nil shipping config
// disables the shipping-method and day-range strategies; the date
// strategies still run.
func NewExtractor(config *ShippingConfig) (*Extractor, error) {
	e := &Extractor{}
	if config != nil {
		compiled, err := config.compile()
		if err != nil {
			return nil, err
		}
		e.shipping = compiled
	}
	return e, nil
}

// Extract tries each strategy in priority order and returns the first
// estimate, or nil when nothing matches. An estimate resolving before
// the email's own date is treated as an extraction error and discarded.
func (e *Extractor) Extract(body string, emailDate time.Time) *email.DeliveryEstimate {
	if body == "" {
		return nil
	}

	estimate := e.explicitDate(body, emailDate)
	if estimate == nil {
		estimate = e.relativeDate(body, emailDate)
	}
	if estimate == nil {
		estimate = e.shippingMethod(body, emailDate)
	}
	if estimate == nil {
		estimate = e.dayRange(body, emailDate)
	}

	if estimate == nil {
		return nil
	}
	if estimate.EstimatedDelivery.Before(dateOnly(emailDate)) {
		return nil
	}
	return estimate
}

// explicitDate matches the ordered pattern list, then the
// day-of-week-only form.
func (e *Extractor) explicitDate(body string, emailDate time.Time) *email.DeliveryEstimate {
	for _, re := range explicitDatePatterns {
		m := re.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		parsed, ok := parseDateToken(m[1], emailDate)
		if !ok {
			continue
		}
		return &email.DeliveryEstimate{
			EstimatedDelivery: parsed,
			Confidence:        confidenceExplicit,
			Source:            email.DeliverySourceExplicitDate,
			RawMatch:          strings.TrimSpace(m[0]),
		}
	}

	if m := explicitWeekdayRe.FindStringSubmatch(body); m != nil {
		target := weekdays[strings.ToLower(m[1])]
		return &email.DeliveryEstimate{
			EstimatedDelivery: nextWeekday(emailDate, target, true),
			Confidence:        confidenceExplicit,
			Source:            email.DeliverySourceExplicitDate,
			RawMatch:          strings.TrimSpace(m[0]),
		}
	}

	return nil
}

// relativeDate handles today/tomorrow and this/next/plain weekday
// mentions. A plain weekday on its own day rolls a full week forward;
// "same day" is never a match.
func (e *Extractor) relativeDate(body string, emailDate time.Time) *email.DeliveryEstimate {
	base := dateOnly(emailDate)

	if m := todayTomorrowRe.FindStringSubmatch(body); m != nil {
		estimated := base
		if strings.EqualFold(m[1], "tomorrow") {
			estimated = base.AddDate(0, 0, 1)
		}
		return &email.DeliveryEstimate{
			EstimatedDelivery: estimated,
			Confidence:        confidenceExplicit,
			Source:            email.DeliverySourceExplicitDate,
			RawMatch:          m[0],
		}
	}

	if m := thisNextRe.FindStringSubmatch(body); m != nil {
		target := weekdays[strings.ToLower(m[2])]
		forceNextWeek := strings.EqualFold(m[1], "next")
		var estimated time.Time
		if forceNextWeek && base.Weekday() == target {
			estimated = base.AddDate(0, 0, 7)
		} else {
			estimated = nextWeekday(base, target, false)
		}
		return &email.DeliveryEstimate{
			EstimatedDelivery: estimated,
			Confidence:        confidenceExplicit,
			Source:            email.DeliverySourceExplicitDate,
			RawMatch:          m[0],
		}
	}

	if m := plainWeekdayRe.FindStringSubmatch(body); m != nil {
		target := weekdays[strings.ToLower(m[1])]
		return &email.DeliveryEstimate{
			EstimatedDelivery: nextWeekday(base, target, true),
			Confidence:        confidenceExplicit,
			Source:            email.DeliverySourceExplicitDate,
			RawMatch:          m[0],
		}
	}

	return nil
}

// shippingMethod consults the static config: first carrier whose
// trigger matches, then first of its methods whose trigger matches,
// determines the business-day transit time. Generic methods are the
// lower-confidence fallback.
func (e *Extractor) shippingMethod(body string, emailDate time.Time) *email.DeliveryEstimate {
	if e.shipping == nil {
		return nil
	}

	for _, carrier := range e.shipping.carriers {
		if !anyMatch(carrier.patterns, body) {
			continue
		}
		for _, method := range carrier.methods {
			if m := firstMatch(method.patterns, body); m != "" {
				return &email.DeliveryEstimate{
					EstimatedDelivery: AddBusinessDays(dateOnly(emailDate), method.minDays),
					Confidence:        confidenceKnownMethod,
					Source:            email.DeliverySourceShippingMethod,
					ShippingMethod:    carrier.name + "/" + method.name,
					RawMatch:          m,
				}
			}
		}
	}

	for _, method := range e.shipping.genericMethods {
		if m := firstMatch(method.patterns, body); m != "" {
			return &email.DeliveryEstimate{
				EstimatedDelivery: AddBusinessDays(dateOnly(emailDate), method.minDays),
				Confidence:        confidenceGenericMethod,
				Source:            email.DeliverySourceShippingMethod,
				ShippingMethod:    method.name,
				RawMatch:          m,
			}
		}
	}

	return nil
}

// dayRange matches config-supplied range patterns and uses the minimum
// of the range. Day counts outside (0,30] are implausible and rejected.
func (e *Extractor) dayRange(body string, emailDate time.Time) *email.DeliveryEstimate {
	if e.shipping == nil {
		return nil
	}

	for _, re := range e.shipping.dayRanges {
		m := re.FindStringSubmatch(body)
		if m == nil || len(m) < 2 {
			continue
		}
		minDays, err := strconv.Atoi(m[1])
		if err != nil || minDays <= 0 || minDays > maxPlausibleRangeDays {
			continue
		}
		return &email.DeliveryEstimate{
			EstimatedDelivery: AddBusinessDays(dateOnly(emailDate), minDays),
			Confidence:        confidenceDayRange,
			Source:            email.DeliverySourceDayRange,
			RawMatch:          strings.TrimSpace(m[0]),
		}
	}

	return nil
}

// parseDateToken parses one captured date token. Ordinal suffixes are
// stripped first. A yearless date is anchored to the email's year and
// rolled forward a year when that lands in the past.
func parseDateToken(token string, emailDate time.Time) (time.Time, bool) {
	token = ordinalSuffixRe.ReplaceAllString(token, "$1")
	token = strings.ReplaceAll(token, ",", "")
	token = flattenSpaces(token)

	for _, layout := range dateTokenLayouts {
		parsed, err := time.Parse(layout, token)
		if err != nil {
			continue
		}
		if parsed.Year() == 0 {
			parsed = time.Date(emailDate.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
			if parsed.Before(dateOnly(emailDate)) {
				parsed = parsed.AddDate(1, 0, 0)
			}
		}
		return parsed, true
	}
	return time.Time{}, false
}

// nextWeekday finds the nearest occurrence of target on/after base.
// With rollSameDay, a match on base's own weekday moves a full week out.
func nextWeekday(base time.Time, target time.Weekday, rollSameDay bool) time.Time {
	base = dateOnly(base)
	days := int(target-base.Weekday()+7) % 7
	if days == 0 && rollSameDay {
		days = 7
	}
	return base.AddDate(0, 0, days)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func anyMatch(patterns []*regexp.Regexp, body string) bool {
	for _, re := range patterns {
		if re.MatchString(body) {
			return true
		}
	}
	return false
}

func firstMatch(patterns []*regexp.Regexp, body string) string {
	for _, re := range patterns {
		if m := re.FindString(body); m != "" {
			return m
		}
	}
	return ""
}

func flattenSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
