package parser

import (
	"log/slog"
	"time"

	"purchase-tracking/internal/delivery"
	"purchase-tracking/internal/email"
)

// EmailParser composes every extractor into one parse call. Extractors
// run independently; no extractor's empty result stops the others, and
// only the image matcher consumes another extractor's output.
type EmailParser struct {
	tracking     *TrackingExtractor
	orderRef     *OrderReferenceExtractor
	retailer     *RetailerIdentifier
	descriptions *DescriptionExtractor
	images       *ImageExtractor
	productURLs  *ProductURLExtractor
	delivery     *delivery.Extractor
	logger       *slog.Logger
}

// NewEmailParser creates the parse orchestrator. The delivery extractor
// may be nil, which skips delivery date inference entirely.
func NewEmailParser(table *PatternTable, deliveryExtractor *delivery.Extractor, logger *slog.Logger) *EmailParser {
	if table == nil {
		table = NewPatternTable()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailParser{
		tracking:     NewTrackingExtractor(table),
		orderRef:     NewOrderReferenceExtractor(),
		retailer:     NewRetailerIdentifier(table),
		descriptions: NewDescriptionExtractor(),
		images:       NewImageExtractor(),
		productURLs:  NewProductURLExtractor(table),
		delivery:     deliveryExtractor,
		logger:       logger,
	}
}

// Parse extracts everything from one inbound email. Each field of the
// result degrades to empty/nil on no match; Parse itself cannot fail.
func (p *EmailParser) Parse(msg *email.InboundEmail) *email.ParseResult {
	start := time.Now()

	bodyText := cleanText(msg.BodyText)
	if bodyText == "" && msg.BodyHTML != "" {
		bodyText = htmlToText(msg.BodyHTML)
	}
	combined := cleanText(msg.Subject)
	if bodyText != "" {
		combined = combined + "\n" + bodyText
	}

	result := &email.ParseResult{
		TrackingURLs:        []email.TrackingLink{},
		ProductURLs:         []email.ProductURL{},
		ProductDescriptions: []string{},
		ProductImages:       []email.ProductImage{},
	}

	if links := p.tracking.Extract(combined, msg.BodyHTML); links != nil {
		result.TrackingURLs = links
	}
	if urls := p.productURLs.Extract(combined, msg.BodyHTML); urls != nil {
		result.ProductURLs = urls
	}
	result.OrderReference = p.orderRef.Extract(combined)
	result.RetailerName = p.retailer.Identify(msg.From, combined)
	result.ProductDescriptions = p.descriptions.Extract(combined)
	result.ProductImages = p.images.Extract(msg.BodyHTML)
	if p.delivery != nil {
		result.DeliveryInfo = p.delivery.Extract(combined, msg.Date)
	}

	p.logger.Debug("parsed email",
		"email_id", msg.ID,
		"tracking_urls", len(result.TrackingURLs),
		"product_urls", len(result.ProductURLs),
		"descriptions", len(result.ProductDescriptions),
		"images", len(result.ProductImages),
		"has_delivery", result.DeliveryInfo != nil,
		"duration", time.Since(start))

	return result
}

// MatchImagesToProducts exposes the image-to-product matcher on the
// parser so callers holding a ParseResult can pair them up.
func (p *EmailParser) MatchImagesToProducts(result *email.ParseResult) []string {
	return p.images.MatchImagesToProducts(result.ProductImages, result.ProductDescriptions)
}
