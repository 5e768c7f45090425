package delivery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadShippingConfigMissingFileDisablesFeature(t *testing.T) {
	config, err := LoadShippingConfig("")
	require.NoError(t, err)
	assert.Nil(t, config)

	config, err = LoadShippingConfig("/nonexistent/shipping.yaml")
	require.NoError(t, err)
	assert.Nil(t, config)
}

func TestLoadShippingConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shipping.yaml")
	content := `
carriers:
  royal_mail:
    patterns:
      - 'royal\s*mail'
    methods:
      second_class:
        patterns: ['2nd\s+class']
        min_days: 2
day_range_patterns:
  - '(\d+)-\d+\s+business\s+days'
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadShippingConfig(path)
	require.NoError(t, err)
	require.NotNil(t, config)

	carrier, ok := config.Carriers["royal_mail"]
	require.True(t, ok)
	assert.Equal(t, 2, carrier.Methods["second_class"].MinDays)
	assert.Len(t, config.DayRangePatterns, 1)
}

func TestLoadShippingConfigRejectsBadPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shipping.yaml")
	content := `
carriers:
  broken:
    patterns: ['[unclosed']
    methods:
      fast:
        patterns: ['fast']
        min_days: 1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadShippingConfig(path)
	assert.Error(t, err)
}

func TestShippingConfigRejectsNonPositiveMinDays(t *testing.T) {
	config := &ShippingConfig{
		GenericMethods: map[string]MethodConfig{
			"free": {Patterns: []string{`free`}, MinDays: 0},
		},
	}
	_, err := config.compile()
	assert.Error(t, err)
}

func TestDefaultShippingConfigCompiles(t *testing.T) {
	compiled, err := DefaultShippingConfig().compile()
	require.NoError(t, err)
	assert.NotEmpty(t, compiled.carriers)
	assert.NotEmpty(t, compiled.genericMethods)
	assert.NotEmpty(t, compiled.dayRanges)

	// Alphabetical carrier order keeps extraction deterministic
	names := make([]string, 0, len(compiled.carriers))
	for _, c := range compiled.carriers {
		names = append(names, c.name)
	}
	assert.Equal(t, []string{"dhl", "dpd", "evri", "fedex", "royal_mail", "ups"}, names)
}
