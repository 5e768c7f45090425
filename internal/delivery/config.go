package delivery

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/spf13/viper"
)

// MethodConfig is one shipping method's trigger patterns and its
// minimum transit time in business days.
type MethodConfig struct {
	Patterns []string `mapstructure:"patterns"`
	MinDays  int      `mapstructure:"min_days"`
}

// CarrierConfig is one carrier's trigger patterns and its methods
type CarrierConfig struct {
	Patterns []string                `mapstructure:"patterns"`
	Methods  map[string]MethodConfig `mapstructure:"methods"`
}

// ShippingConfig is the external static table consulted by the
// shipping-method and day-range strategies.
type ShippingConfig struct {
	Carriers         map[string]CarrierConfig `mapstructure:"carriers"`
	GenericMethods   map[string]MethodConfig  `mapstructure:"generic_methods"`
	DayRangePatterns []string                 `mapstructure:"day_range_patterns"`
}

type compiledMethod struct {
	name     string
	patterns []*regexp.Regexp
	minDays  int
}

type compiledCarrier struct {
	name     string
	patterns []*regexp.Regexp
	methods  []compiledMethod
}

// compiledShippingConfig is the validated, regex-compiled form used at
// parse time. Built once at load; read-only afterwards.
type compiledShippingConfig struct {
	carriers       []compiledCarrier
	genericMethods []compiledMethod
	dayRanges      []*regexp.Regexp
}

// LoadShippingConfig reads the shipping-method table from a YAML file.
// A missing file is not an error: it returns (nil, nil) and the
// strategies that depend on the table are skipped.
func LoadShippingConfig(path string) (*ShippingConfig, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read shipping config: %w", err)
	}

	config := &ShippingConfig{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shipping config: %w", err)
	}

	// Validate eagerly so a bad pattern fails at load, not mid-parse
	if _, err := config.compile(); err != nil {
		return nil, err
	}
	return config, nil
}

// compile validates every pattern and fixes carrier/method iteration
// order (alphabetical) so extraction is deterministic.
func (c *ShippingConfig) compile() (*compiledShippingConfig, error) {
	compiled := &compiledShippingConfig{}

	carrierNames := sortedKeys(c.Carriers)
	for _, name := range carrierNames {
		carrier := c.Carriers[name]
		cc := compiledCarrier{name: name}

		patterns, err := compilePatterns(carrier.Patterns)
		if err != nil {
			return nil, fmt.Errorf("carrier %s: %w", name, err)
		}
		cc.patterns = patterns

		for _, methodName := range sortedKeys(carrier.Methods) {
			method := carrier.Methods[methodName]
			cm, err := compileMethod(methodName, method)
			if err != nil {
				return nil, fmt.Errorf("carrier %s method %s: %w", name, methodName, err)
			}
			cc.methods = append(cc.methods, cm)
		}
		compiled.carriers = append(compiled.carriers, cc)
	}

	for _, methodName := range sortedKeys(c.GenericMethods) {
		cm, err := compileMethod(methodName, c.GenericMethods[methodName])
		if err != nil {
			return nil, fmt.Errorf("generic method %s: %w", methodName, err)
		}
		compiled.genericMethods = append(compiled.genericMethods, cm)
	}

	for _, pattern := range c.DayRangePatterns {
		re, err := regexp.Compile(`(?i)` + pattern)
		if err != nil {
			return nil, fmt.Errorf("day range pattern %q: %w", pattern, err)
		}
		compiled.dayRanges = append(compiled.dayRanges, re)
	}

	return compiled, nil
}

func compileMethod(name string, method MethodConfig) (compiledMethod, error) {
	if method.MinDays <= 0 {
		return compiledMethod{}, fmt.Errorf("min_days must be positive, got %d", method.MinDays)
	}
	patterns, err := compilePatterns(method.Patterns)
	if err != nil {
		return compiledMethod{}, err
	}
	return compiledMethod{name: name, patterns: patterns, minDays: method.MinDays}, nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	var compiled []*regexp.Regexp
	for _, pattern := range patterns {
		re, err := regexp.Compile(`(?i)` + pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultShippingConfig is the built-in table used when no config file
// is supplied. Covers the carriers the tracking extractor knows plus a
// generic speed-word fallback.
func DefaultShippingConfig() *ShippingConfig {
	return &ShippingConfig{
		Carriers: map[string]CarrierConfig{
			"royal_mail": {
				Patterns: []string{`royal\s*mail`},
				Methods: map[string]MethodConfig{
					"first_class":  {Patterns: []string{`1st\s+class`, `first\s+class`}, MinDays: 1},
					"second_class": {Patterns: []string{`2nd\s+class`, `second\s+class`}, MinDays: 2},
					"tracked_24":   {Patterns: []string{`tracked\s*24`}, MinDays: 1},
					"tracked_48":   {Patterns: []string{`tracked\s*48`}, MinDays: 2},
				},
			},
			"dhl": {
				Patterns: []string{`\bdhl\b`},
				Methods: map[string]MethodConfig{
					"express":  {Patterns: []string{`express`}, MinDays: 1},
					"standard": {Patterns: []string{`standard`, `parcel`}, MinDays: 3},
				},
			},
			"ups": {
				Patterns: []string{`\bups\b`},
				Methods: map[string]MethodConfig{
					"next_day": {Patterns: []string{`next\s+day\s+air`, `express`}, MinDays: 1},
					"ground":   {Patterns: []string{`ground`, `standard`}, MinDays: 5},
				},
			},
			"fedex": {
				Patterns: []string{`fedex`},
				Methods: map[string]MethodConfig{
					"overnight": {Patterns: []string{`overnight`, `priority`}, MinDays: 1},
					"ground":    {Patterns: []string{`ground`, `home\s+delivery`}, MinDays: 5},
				},
			},
			"dpd": {
				Patterns: []string{`\bdpd\b`},
				Methods: map[string]MethodConfig{
					"next_day": {Patterns: []string{`next\s+day`}, MinDays: 1},
					"classic":  {Patterns: []string{`classic`, `standard`}, MinDays: 2},
				},
			},
			"evri": {
				Patterns: []string{`evri`, `hermes`},
				Methods: map[string]MethodConfig{
					"next_day": {Patterns: []string{`next\s+day`}, MinDays: 1},
					"standard": {Patterns: []string{`standard`}, MinDays: 3},
				},
			},
		},
		GenericMethods: map[string]MethodConfig{
			"express":  {Patterns: []string{`express\s+(?:shipping|delivery)`, `next\s+day\s+delivery`}, MinDays: 1},
			"standard": {Patterns: []string{`standard\s+(?:shipping|delivery)`}, MinDays: 3},
			"economy":  {Patterns: []string{`economy\s+(?:shipping|delivery)`, `free\s+delivery`}, MinDays: 5},
		},
		DayRangePatterns: []string{
			`(\d+)-\d+\s+business\s+days`,
			`(\d+)-\d+\s+working\s+days`,
			`(\d+)\s+to\s+\d+\s+(?:business|working)\s+days`,
			`within\s+(\d+)\s+(?:business|working)\s+days`,
			`delivery\s+in\s+(\d+)\s+days`,
		},
	}
}
