package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds the parse API server configuration
type ServerConfig struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	DBPath             string        `mapstructure:"db_path"`
	ShippingConfigPath string        `mapstructure:"shipping_config_path"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	LogLevel           string        `mapstructure:"log_level"`
}

// EmailConfig holds the Gmail scanning and batch processing configuration
type EmailConfig struct {
	Gmail      GmailConfig      `mapstructure:"gmail"`
	Search     SearchConfig     `mapstructure:"search"`
	Processing ProcessingConfig `mapstructure:"processing"`
}

// GmailConfig holds Gmail API credentials and limits
type GmailConfig struct {
	ClientID       string        `mapstructure:"client_id"`
	ClientSecret   string        `mapstructure:"client_secret"`
	RefreshToken   string        `mapstructure:"refresh_token"`
	AccessToken    string        `mapstructure:"access_token"`
	UserEmail      string        `mapstructure:"user_email"`
	MaxResults     int64         `mapstructure:"max_results"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// SearchConfig controls which emails the scanner pulls
type SearchConfig struct {
	Query      string `mapstructure:"query"`
	AfterDays  int    `mapstructure:"after_days"`
	UnreadOnly bool   `mapstructure:"unread_only"`
	MaxResults int    `mapstructure:"max_results"`
}

// ProcessingConfig controls the batch parse loop
type ProcessingConfig struct {
	CheckInterval      time.Duration `mapstructure:"check_interval"`
	MaxEmailsPerRun    int           `mapstructure:"max_emails_per_run"`
	DryRun             bool          `mapstructure:"dry_run"`
	StateDBPath        string        `mapstructure:"state_db_path"`
	ShippingConfigPath string        `mapstructure:"shipping_config_path"`
}

// LoadServerConfig loads server configuration from environment and an
// optional config file using Viper.
func LoadServerConfig(configFile string) (*ServerConfig, error) {
	v := viper.New()

	v.SetDefault("host", "localhost")
	v.SetDefault("port", 8080)
	v.SetDefault("db_path", "./purchase-tracking.db")
	v.SetDefault("shipping_config_path", "./shipping-methods.yaml")
	v.SetDefault("request_timeout", "30s")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("PURCHASE_TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &ServerConfig{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// LoadEmailConfig loads Gmail/batch configuration from environment and
// an optional config file.
func LoadEmailConfig(configFile string) (*EmailConfig, error) {
	v := viper.New()

	v.SetDefault("gmail.max_results", 100)
	v.SetDefault("gmail.request_timeout", "30s")
	v.SetDefault("search.query", "")
	v.SetDefault("search.after_days", 7)
	v.SetDefault("search.unread_only", false)
	v.SetDefault("search.max_results", 100)
	v.SetDefault("processing.check_interval", "5m")
	v.SetDefault("processing.max_emails_per_run", 50)
	v.SetDefault("processing.dry_run", false)
	v.SetDefault("processing.state_db_path", "./purchase-tracking.db")
	v.SetDefault("processing.shipping_config_path", "./shipping-methods.yaml")

	v.SetEnvPrefix("PURCHASE_TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &EmailConfig{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path cannot be empty")
	}
	return nil
}

func (c *EmailConfig) validate() error {
	if c.Search.MaxResults < 1 {
		return fmt.Errorf("search.max_results must be positive")
	}
	if c.Processing.MaxEmailsPerRun < 1 {
		return fmt.Errorf("processing.max_emails_per_run must be positive")
	}
	if c.Processing.CheckInterval < time.Second {
		return fmt.Errorf("processing.check_interval must be at least 1s")
	}
	return nil
}

// Address returns the listen address for the HTTP server
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
