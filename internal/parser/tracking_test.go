package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"purchase-tracking/internal/email"
)

func findByURL(links []email.TrackingLink, url string) *email.TrackingLink {
	for i := range links {
		if links[i].URL == url {
			return &links[i]
		}
	}
	return nil
}

func TestTrackingExtractCarrierURLs(t *testing.T) {
	extractor := NewTrackingExtractor(NewPatternTable())

	tests := []struct {
		name    string
		text    string
		carrier string
		url     string
	}{
		{
			name:    "royal mail track your item",
			text:    "Track it here: https://www.royalmail.com/track-your-item#/tracking-results/AB123456789GB",
			carrier: "royal_mail",
			url:     "https://www.royalmail.com/track-your-item#/tracking-results/AB123456789GB",
		},
		{
			name:    "dpd tracking subdomain",
			text:    "Follow your parcel at https://track.dpd.co.uk/parcels/15501234567890",
			carrier: "dpd",
			url:     "https://track.dpd.co.uk/parcels/15501234567890",
		},
		{
			name:    "evri",
			text:    "https://www.evri.com/track/parcel/C00HHA0012345678",
			carrier: "evri",
			url:     "https://www.evri.com/track/parcel/C00HHA0012345678",
		},
		{
			name:    "global-e portal",
			text:    "See https://web.global-e.com/Order/Track/abc123",
			carrier: "global_e",
			url:     "https://web.global-e.com/Order/Track/abc123",
		},
		{
			name:    "schemeless url gets https",
			text:    "Visit www.royalmail.com/track-your-item to follow your delivery",
			carrier: "royal_mail",
			url:     "https://www.royalmail.com/track-your-item",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := extractor.Extract(tt.text, "")
			require.Len(t, links, 1)
			assert.Equal(t, tt.carrier, links[0].Carrier)
			assert.Equal(t, tt.url, links[0].URL)
		})
	}
}

func TestTrackingExtractNumberFromQuery(t *testing.T) {
	extractor := NewTrackingExtractor(NewPatternTable())

	text := "Track your package: https://www.ups.com/track?tracknum=1Z999AA10123456784."
	links := extractor.Extract(text, "")

	require.Len(t, links, 1)
	assert.Equal(t, "ups", links[0].Carrier)
	assert.Equal(t, "https://www.ups.com/track?tracknum=1Z999AA10123456784", links[0].URL)
	assert.Equal(t, "1Z999AA10123456784", links[0].TrackingNumber)
}

func TestTrackingExtractGenericKeywordURLs(t *testing.T) {
	extractor := NewTrackingExtractor(NewPatternTable())

	text := "Check progress at https://shop.example.com/track/ABC123 and read https://example.com/blog/news"
	links := extractor.Extract(text, "")

	require.Len(t, links, 1)
	assert.Equal(t, CarrierUnknown, links[0].Carrier)
	assert.Equal(t, "https://shop.example.com/track/ABC123", links[0].URL)
}

func TestTrackingExtractDeduplicatesAcrossSources(t *testing.T) {
	extractor := NewTrackingExtractor(NewPatternTable())

	url := "https://www.royalmail.com/track-your-item"
	text := "Track here: " + url
	html := `<p>Track here: <a href="` + url + `">tracking link</a></p>`

	links := extractor.Extract(text, html)
	require.Len(t, links, 1)
	assert.Equal(t, "royal_mail", links[0].Carrier)
}

func TestTrackingExtractLabeledNumber(t *testing.T) {
	extractor := NewTrackingExtractor(NewPatternTable())

	t.Run("plain text with carrier name", func(t *testing.T) {
		text := "DPD tracking number: 15501234567890 https://example.com/t/999"
		links := extractor.Extract(text, "")
		require.Len(t, links, 1)
		assert.Equal(t, "dpd", links[0].Carrier)
		assert.Equal(t, "15501234567890", links[0].TrackingNumber)
	})

	t.Run("html label tied to following anchor", func(t *testing.T) {
		html := `Royal Mail tracking number: AB123456789GB <a href="https://example.com/follow/1">Track</a>`
		links := extractor.Extract("", html)
		link := findByURL(links, "https://example.com/follow/1")
		require.NotNil(t, link)
		assert.Equal(t, "royal_mail", link.Carrier)
		assert.Equal(t, "AB123456789GB", link.TrackingNumber)
	})
}

func TestTrackingExtractAnchorText(t *testing.T) {
	extractor := NewTrackingExtractor(NewPatternTable())

	t.Run("anchor text mentioning tracking", func(t *testing.T) {
		html := `<a href="https://portal.example.com/p/42">Tracking information</a>`
		links := extractor.Extract("", html)
		require.Len(t, links, 1)
		assert.Equal(t, CarrierUnknown, links[0].Carrier)
		assert.Equal(t, "https://portal.example.com/p/42", links[0].URL)
	})

	t.Run("tracking-number-shaped anchor text", func(t *testing.T) {
		html := `<a href="https://r.example.com/z9">AB123456789GB</a>`
		links := extractor.Extract("", html)
		require.Len(t, links, 1)
		assert.Equal(t, "AB123456789GB", links[0].TrackingNumber)
		// Number shape is the last-resort attribution
		assert.Equal(t, "royal_mail", links[0].Carrier)
	})
}

func TestTrackingExtractContextAttribution(t *testing.T) {
	extractor := NewTrackingExtractor(NewPatternTable())

	t.Run("carrier named near the link in text", func(t *testing.T) {
		text := "Your Royal Mail parcel is on its way. Track it: https://shop.example.com/track/XY1"
		links := extractor.Extract(text, "")
		require.Len(t, links, 1)
		assert.Equal(t, "royal_mail", links[0].Carrier)
	})

	t.Run("global-e number shape", func(t *testing.T) {
		text := "tracking number: LTN00012345 https://example.com/t/77"
		links := extractor.Extract(text, "")
		require.Len(t, links, 1)
		assert.Equal(t, "global_e", links[0].Carrier)
		assert.Equal(t, "LTN00012345", links[0].TrackingNumber)
	})

	t.Run("no context stays unknown", func(t *testing.T) {
		text := "Track here: https://shop.example.com/track/XY1"
		links := extractor.Extract(text, "")
		require.Len(t, links, 1)
		assert.Equal(t, CarrierUnknown, links[0].Carrier)
	})
}

func TestCleanTrackingURL(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"entity ampersand decoded", "https://e.com/t?a=1&amp;b=2", "https://e.com/t?a=1&b=2"},
		{"trailing punctuation stripped", "https://e.com/track.", "https://e.com/track"},
		{"trailing query junk stripped", "https://e.com/track?", "https://e.com/track"},
		{"scheme added", "www.e.com/track", "https://www.e.com/track"},
		{"query parameters preserved", "https://e.com/t?tracknumber=XYZ123", "https://e.com/t?tracknumber=XYZ123"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanTrackingURL(tt.raw))
		})
	}
}

func TestCarrierFromText(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"shipped with Royal Mail", "royal_mail"},
		{"royalmail tracked", "royal_mail"},
		{"your DHL parcel", "dhl"},
		{"Hermes is now Evri", "evri"},
		{"Global-E logistics", "global_e"},
		{"nothing here", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, carrierFromText(tt.text), tt.text)
	}
}
