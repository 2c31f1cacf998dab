// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"golang.org/x/text/language"
)

type Config struct {
	// HTTP server
	Port string `koanf:"PORT"`

	// Expenses resource. When EmbeddedAPI is set the server mounts its own
	// in-memory resource and ExpensesAPIURL defaults to it.
	ExpensesAPIURL string `koanf:"EXPENSES_API_URL"`
	EmbeddedAPI    bool   `koanf:"EMBEDDED_API"`

	// Presentation
	Locale          string `koanf:"LOCALE"`
	Currency        string `koanf:"CURRENCY"`
	ChartAssetsHost string `koanf:"CHART_ASSETS_HOST"`
	ChartMaxWidth   int    `koanf:"CHART_MAX_WIDTH"`

	// Logging
	LogLevel  string `koanf:"LOG_LEVEL"`
	LogFormat string `koanf:"LOG_FORMAT"`

	// AMQP activity events, disabled when AMQPURL is empty
	AMQPURL      string `koanf:"AMQP_URL"`
	AMQPExchange string `koanf:"AMQP_EXCHANGE"`

	// Requests per minute per client IP
	RateLimit int `koanf:"RATE_LIMIT"`
}

const (
	DefaultPort            = "8081"
	DefaultLocale          = "en-IE"
	DefaultCurrency        = "EUR"
	DefaultChartAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"
	DefaultChartMaxWidth   = 520
	DefaultAMQPExchange    = "budget"
	DefaultRateLimit       = 120
)

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:            DefaultPort,
		EmbeddedAPI:     true,
		Locale:          DefaultLocale,
		Currency:        DefaultCurrency,
		ChartAssetsHost: DefaultChartAssetsHost,
		ChartMaxWidth:   DefaultChartMaxWidth,
		LogLevel:        "info",
		LogFormat:       "text",
		AMQPExchange:    DefaultAMQPExchange,
		RateLimit:       DefaultRateLimit,
	}
}

// Load reads an optional .env file and then the process environment. Values
// from the environment override defaults; it does not validate.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	c.ExpensesAPIURL = strings.TrimRight(strings.TrimSpace(c.ExpensesAPIURL), "/")
	if c.ExpensesAPIURL == "" && c.EmbeddedAPI {
		c.ExpensesAPIURL = "http://127.0.0.1:" + c.Port + "/api/expenses"
	}
}

// EventsEnabled reports whether activity events should be published.
func (c *Config) EventsEnabled() bool {
	return c.AMQPURL != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.ExpensesAPIURL == "" {
		errors = append(errors, "EXPENSES_API_URL is required when EMBEDDED_API is false")
	} else if u, err := url.Parse(c.ExpensesAPIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid expenses API URL '%s': must be an absolute http(s) URL", c.ExpensesAPIURL))
	}

	if _, err := language.Parse(c.Locale); err != nil {
		errors = append(errors, fmt.Sprintf("invalid locale '%s': %v", c.Locale, err))
	}
	if money.GetCurrency(c.Currency) == nil {
		errors = append(errors, fmt.Sprintf("unknown currency '%s'", c.Currency))
	}

	if c.ChartMaxWidth < 320 {
		errors = append(errors, fmt.Sprintf("invalid chart max width %d: must be at least 320", c.ChartMaxWidth))
	}

	if c.RateLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimit))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}
