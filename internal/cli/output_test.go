package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"purchase-tracking/internal/email"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"this is a longer string", 10, "this is..."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, truncate(tt.input, tt.maxLen))
	}
}

func TestOutputFormatterUnsupportedFormat(t *testing.T) {
	formatter := NewOutputFormatter("xml", false)

	err := formatter.PrintParseResult(&email.ParseResult{})
	assert.Error(t, err)

	err = formatter.PrintEmails(nil)
	assert.Error(t, err)
}
