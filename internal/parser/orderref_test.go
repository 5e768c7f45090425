package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderReferenceExtract(t *testing.T) {
	extractor := NewOrderReferenceExtractor()

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "order hash",
			text:     "Thanks! Order #ABC-123456 has been dispatched.",
			expected: "ABC-123456",
		},
		{
			name:     "order number with colon",
			text:     "Your order number: 40412345678",
			expected: "40412345678",
		},
		{
			name:     "order reference",
			text:     "Order reference ZR99881234",
			expected: "ZR99881234",
		},
		{
			name:     "bare reference",
			text:     "Reference: WEB-0042517",
			expected: "WEB-0042517",
		},
		{
			name:     "shipment number",
			text:     "Shipment number: SHP991234",
			expected: "SHP991234",
		},
		{
			name:     "tracking number needs eight chars",
			text:     "Tracking number: AB123456789GB",
			expected: "AB123456789GB",
		},
		{
			name:     "short token rejected",
			text:     "Order #1234",
			expected: "",
		},
		{
			name:     "no reference at all",
			text:     "Thanks for shopping with us.",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractor.Extract(tt.text))
		})
	}
}

func TestOrderReferencePriority(t *testing.T) {
	extractor := NewOrderReferenceExtractor()

	// An order pattern beats a reference pattern even when the reference
	// appears first in the text.
	text := "Reference: REF-999999\nOrder #A1B2C3D4"
	assert.Equal(t, "A1B2C3D4", extractor.Extract(text))

	// Only the first match is returned, never an aggregate
	text = "Order #FIRST-111111 and Order #SECOND-22222"
	assert.Equal(t, "FIRST-111111", extractor.Extract(text))
}
