package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"purchase-tracking/internal/email"
)

func TestImageExtractFilters(t *testing.T) {
	extractor := NewImageExtractor()

	html := `
		<img src="https://cdn.shop.com/products/dress-front.jpg" alt="Midi Floral Dress" width="300" height="400">
		<img src="https://cdn.shop.com/assets/logo.png" alt="Shop logo" width="200" height="80">
		<img src="https://cdn.shop.com/track/pixel-1x1.png" width="1" height="1">
		<img src="https://cdn.shop.com/products/thumb.jpg" width="20" height="20">
		<img src="https://cdn.shop.com/products/animation.gif" alt="Sale">
		<img src="cid:inline-image-1" alt="Embedded">
	`

	images := extractor.Extract(html)
	require.Len(t, images, 1)
	assert.Equal(t, "https://cdn.shop.com/products/dress-front.jpg", images[0].URL)
	assert.Equal(t, "Midi Floral Dress", images[0].AltText)
	assert.Equal(t, 300, images[0].Width)
	assert.Equal(t, 400, images[0].Height)
}

func TestImageExtractUndeclaredDimensionsKept(t *testing.T) {
	extractor := NewImageExtractor()

	// No width/height attributes means no dimension-based rejection
	html := `<img src="https://cdn.shop.com/products/wallet.jpg" alt="Leather Wallet">`
	images := extractor.Extract(html)
	require.Len(t, images, 1)
	assert.Equal(t, 0, images[0].Width)
}

func TestImageExtractSortsByArea(t *testing.T) {
	extractor := NewImageExtractor()

	html := `
		<img src="https://cdn.shop.com/products/small.jpg" alt="Small product" width="100" height="100">
		<img src="https://cdn.shop.com/products/large.jpg" alt="Large product" width="300" height="300">
		<img src="https://cdn.shop.com/products/unsized.jpg" alt="Unsized product">
	`

	images := extractor.Extract(html)
	require.Len(t, images, 3)
	assert.Equal(t, "https://cdn.shop.com/products/large.jpg", images[0].URL)
	assert.Equal(t, "https://cdn.shop.com/products/small.jpg", images[1].URL)
	assert.Equal(t, "https://cdn.shop.com/products/unsized.jpg", images[2].URL)
}

func TestImageExtractDedupAndCap(t *testing.T) {
	extractor := NewImageExtractor()

	t.Run("duplicate src collapsed", func(t *testing.T) {
		html := strings.Repeat(`<img src="https://cdn.shop.com/products/dress.jpg" alt="Dress">`, 3)
		assert.Len(t, extractor.Extract(html), 1)
	})

	t.Run("capped at ten", func(t *testing.T) {
		var b strings.Builder
		for i := 1; i <= 12; i++ {
			fmt.Fprintf(&b, `<img src="https://cdn.shop.com/products/item-%d.jpg" alt="Item %d">`, i, i)
		}
		assert.Len(t, extractor.Extract(b.String()), 10)
	})
}

func TestImageExtractEmptyHTML(t *testing.T) {
	extractor := NewImageExtractor()
	assert.Empty(t, extractor.Extract(""))
}

func TestMatchImagesToProducts(t *testing.T) {
	extractor := NewImageExtractor()

	images := []email.ProductImage{
		{URL: "https://cdn.shop.com/p/tshirt.jpg", AltText: "Blue Cotton T-Shirt photo"},
		{URL: "https://cdn.shop.com/p/wallet.jpg", AltText: "Brown Leather Wallet"},
		{URL: "https://cdn.shop.com/p/noalt.jpg"},
	}

	t.Run("pairs by keyword overlap", func(t *testing.T) {
		products := []string{"Blue Cotton T-Shirt", "Leather Wallet"}
		matches := extractor.MatchImagesToProducts(images, products)
		require.Len(t, matches, 2)
		assert.Equal(t, "https://cdn.shop.com/p/tshirt.jpg", matches[0])
		assert.Equal(t, "https://cdn.shop.com/p/wallet.jpg", matches[1])
	})

	t.Run("below threshold yields empty string", func(t *testing.T) {
		matches := extractor.MatchImagesToProducts(images, []string{"Ceramic Plant Pot"})
		require.Len(t, matches, 1)
		assert.Equal(t, "", matches[0])
	})

	t.Run("an image may match multiple products", func(t *testing.T) {
		products := []string{"Blue Cotton T-Shirt", "Cotton T-Shirt Blue"}
		matches := extractor.MatchImagesToProducts(images, products)
		assert.Equal(t, matches[0], matches[1])
		assert.NotEmpty(t, matches[0])
	})

	t.Run("no images", func(t *testing.T) {
		matches := extractor.MatchImagesToProducts(nil, []string{"Leather Wallet"})
		require.Len(t, matches, 1)
		assert.Equal(t, "", matches[0])
	})
}
