package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "block tags become line breaks",
			html:     "<p>Order confirmation</p><p>2 x Mug</p>",
			expected: "Order confirmation\n2 x Mug",
		},
		{
			name:     "table rows keep line structure",
			html:     "<table><tr><td>Midi Floral Dress</td></tr><tr><td>Colour: Blue</td></tr></table>",
			expected: "Midi Floral Dress\nColour: Blue",
		},
		{
			name:     "script and style dropped",
			html:     "<style>.a{color:red}</style><p>Hello</p><script>alert(1)</script>",
			expected: "Hello",
		},
		{
			name:     "entities decoded",
			html:     "<p>Total: &pound;45.00 &amp; free delivery</p>",
			expected: "Total: £45.00 & free delivery",
		},
		{
			name:     "empty input",
			html:     "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, htmlToText(tt.html))
		})
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "windows line endings normalized",
			text:     "line one\r\nline two",
			expected: "line one\nline two",
		},
		{
			name:     "space runs collapsed per line",
			text:     "a    b\n  c\t\td  ",
			expected: "a b\nc d",
		},
		{
			name:     "blank line runs squeezed",
			text:     "a\n\n\n\n\nb",
			expected: "a\n\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanText(tt.text))
		})
	}
}
