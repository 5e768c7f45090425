package email

import (
	"time"
)

// EmailClient defines the interface for inbound email providers
type EmailClient interface {
	// Search performs a provider search query and returns matching messages
	Search(query string) ([]InboundEmail, error)

	// GetMessage retrieves the full content of a specific message
	GetMessage(id string) (*InboundEmail, error)

	// HealthCheck verifies the client connection is working
	HealthCheck() error

	// Close cleans up resources
	Close() error
}

// InboundEmail represents a raw inbound email handed to the parser
type InboundEmail struct {
	ID       string            `json:"id"`
	ThreadID string            `json:"thread_id"`
	From     string            `json:"from"`
	Subject  string            `json:"subject"`
	Date     time.Time         `json:"date"`
	Headers  map[string]string `json:"headers"`

	// Content in different formats
	BodyText string `json:"body_text"`
	BodyHTML string `json:"body_html"`

	Labels []string `json:"labels,omitempty"`
}

// TrackingLink represents a tracking URL attributed to a carrier.
// Carrier is "unknown" when no pattern or context identified one.
type TrackingLink struct {
	Carrier        string `json:"carrier"`
	URL            string `json:"url"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}

// ProductURL represents a retailer product-page link found in an email
type ProductURL struct {
	URL       string `json:"url"`
	Retailer  string `json:"retailer"`
	ProductID string `json:"product_id,omitempty"`
}

// ProductImage represents a candidate product image extracted from HTML
type ProductImage struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// Delivery estimate sources, ordered by strategy priority
const (
	DeliverySourceExplicitDate   = "explicit_date"
	DeliverySourceShippingMethod = "shipping_method"
	DeliverySourceDayRange       = "day_range"
)

// DeliveryEstimate represents an inferred delivery date for a shipment.
// EstimatedDelivery is never before the email's own date; estimates that
// resolve earlier are discarded as extraction errors.
type DeliveryEstimate struct {
	EstimatedDelivery time.Time `json:"estimated_delivery"`
	Confidence        float64   `json:"confidence"`
	Source            string    `json:"source"`
	ShippingMethod    string    `json:"shipping_method,omitempty"`
	RawMatch          string    `json:"raw_match"`
}

// ParseResult aggregates everything extracted from one email.
// Every field defaults to its empty value when nothing was found; a parse
// never fails outright.
type ParseResult struct {
	TrackingURLs        []TrackingLink    `json:"tracking_urls"`
	ProductURLs         []ProductURL      `json:"product_urls"`
	OrderReference      string            `json:"order_reference,omitempty"`
	RetailerName        string            `json:"retailer_name,omitempty"`
	ProductDescriptions []string          `json:"product_descriptions"`
	ProductImages       []ProductImage    `json:"product_images"`
	DeliveryInfo        *DeliveryEstimate `json:"delivery_info,omitempty"`
}

// IsEmpty reports whether the parse found nothing usable at all
func (r *ParseResult) IsEmpty() bool {
	return len(r.TrackingURLs) == 0 &&
		len(r.ProductURLs) == 0 &&
		r.OrderReference == "" &&
		r.RetailerName == "" &&
		len(r.ProductDescriptions) == 0 &&
		len(r.ProductImages) == 0 &&
		r.DeliveryInfo == nil
}

// ProcessingResult represents the outcome of processing one inbound email
type ProcessingResult struct {
	EmailID        string        `json:"email_id"`
	ProcessedAt    time.Time     `json:"processed_at"`
	Result         *ParseResult  `json:"result,omitempty"`
	Success        bool          `json:"success"`
	Error          string        `json:"error,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
}

// SearchQuery represents an inbound mail search configuration
type SearchQuery struct {
	Query         string     `json:"query"`
	MaxResults    int        `json:"max_results"`
	AfterDate     *time.Time `json:"after_date,omitempty"`
	BeforeDate    *time.Time `json:"before_date,omitempty"`
	UnreadOnly    bool       `json:"unread_only"`
	IncludeLabels []string   `json:"include_labels,omitempty"`
	ExcludeLabels []string   `json:"exclude_labels,omitempty"`
}
