// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
)

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info" validate:"oneof=debug info warn warning error"`
	Format string `env:"FORMAT" envDefault:"text" validate:"oneof=text json"`
}

type LedgerConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"http://localhost:8080" validate:"required,url"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"0s" validate:"gte=0"`
}

type UIConfig struct {
	Locale       string `env:"LOCALE" envDefault:"en-US" validate:"required"`
	ChipSpec     string `env:"CHIPS" envDefault:"All=/api/transactions,Deposits=/api/transactions/deposits,Payments=/api/transactions/payments"`
	UserEndpoint string `env:"USER_ENDPOINT" envDefault:"/api/transactions/user"`

	// chips is ChipSpec parsed by Load.
	chips []Chip
}

type SessionConfig struct {
	TTL time.Duration `env:"TTL" envDefault:"30m" validate:"gte=0"`
	Max int           `env:"MAX" envDefault:"1000" validate:"min=1"`
}

type Config struct {
	// HTTP Server
	Port            int           `env:"PORT" envDefault:"8081" validate:"min=1,max=65535"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s" validate:"gt=0"`
	RateLimit       int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120" validate:"min=1"`

	Log     LogConfig     `envPrefix:"LOG_"`
	Ledger  LedgerConfig  `envPrefix:"LEDGER_"`
	UI      UIConfig      `envPrefix:"UI_"`
	Session SessionConfig `envPrefix:"SESSION_"`
}

// Chip is one filter button: a label and the upstream endpoint it loads.
type Chip struct {
	Label    string
	Endpoint string
}

// Load parses the environment into a Config. It does not validate.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	chips, err := ParseChips(cfg.UI.ChipSpec)
	if err != nil {
		return nil, err
	}
	cfg.UI.chips = chips
	return cfg, nil
}

// ParseChips reads an ordered "Label=/path,Label=/path" list.
func ParseChips(spec string) ([]Chip, error) {
	var chips []Chip
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		label, endpoint, ok := strings.Cut(part, "=")
		label, endpoint = strings.TrimSpace(label), strings.TrimSpace(endpoint)
		if !ok || label == "" || endpoint == "" {
			return nil, fmt.Errorf("invalid chip %q: want Label=/path", part)
		}
		chips = append(chips, Chip{Label: label, Endpoint: endpoint})
	}
	return chips, nil
}

// Chips returns the parsed chip list in configured order.
func (u UIConfig) Chips() []Chip {
	return u.chips
}

// InitialEndpoint is the endpoint loaded when the page opens.
func (c *Config) InitialEndpoint() string {
	if len(c.UI.chips) == 0 {
		return ""
	}
	return c.UI.chips[0].Endpoint
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the configuration and returns an error listing every
// problem found.
func (c *Config) Validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate configuration: %w", err)
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}

	if u, err := url.Parse(c.Ledger.BaseURL); err == nil && c.Ledger.BaseURL != "" {
		if u.Scheme != "http" && u.Scheme != "https" {
			problems = append(problems, fmt.Sprintf("invalid ledger base URL scheme '%s': must be 'http' or 'https'", u.Scheme))
		}
	}

	if c.UI.Locale != "" {
		if _, err := language.Parse(c.UI.Locale); err != nil {
			problems = append(problems, fmt.Sprintf("invalid UI locale '%s': %v", c.UI.Locale, err))
		}
	}

	if len(c.UI.chips) == 0 {
		problems = append(problems, "at least one UI chip is required")
	}
	for _, chip := range c.UI.chips {
		if !strings.HasPrefix(chip.Endpoint, "/") {
			problems = append(problems, fmt.Sprintf("invalid endpoint '%s' for chip '%s': must start with '/'", chip.Endpoint, chip.Label))
		}
	}
	if c.UI.UserEndpoint != "" && !strings.HasPrefix(c.UI.UserEndpoint, "/") {
		problems = append(problems, fmt.Sprintf("invalid user endpoint '%s': must start with '/'", c.UI.UserEndpoint))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := fe.StructNamespace()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("invalid %s %v: must be at least %s", field, fe.Value(), fe.Param())
	case "max":
		return fmt.Sprintf("invalid %s %v: must be at most %s", field, fe.Value(), fe.Param())
	case "gt":
		return fmt.Sprintf("invalid %s %v: must be greater than %s", field, fe.Value(), fe.Param())
	case "oneof":
		return fmt.Sprintf("invalid %s '%v': must be one of [%s]", field, fe.Value(), fe.Param())
	case "url":
		return fmt.Sprintf("invalid %s '%v': must be a URL", field, fe.Value())
	default:
		return fmt.Sprintf("invalid %s: failed %s", field, fe.Tag())
	}
}
