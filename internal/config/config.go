// Package config loads and validates all environment variables at startup.
// Every other package receives typed values; nothing reads os.Getenv directly.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config is the fully-parsed application configuration.
type Config struct {
	// ── Server ────────────────────────────────────────────────────────────────
	Port           string        // default "8080"
	Env            string        // "development" | "staging" | "production"
	RequestTimeout time.Duration // default 30s

	// ── Stripe ────────────────────────────────────────────────────────────────
	StripeSecretKey     string
	StripeWebhookSecret string

	// ── Resend ────────────────────────────────────────────────────────────────
	ResendAPIKey  string
	EmailFromAddr string // default "onboarding@resend.dev"
	EmailFromName string // default "Carbinated Audio"
	EmailSubject  string // empty → "Your Carbonator Download Links"
	SupportEmail  string // default "support@carbinatedaudio.com"

	// ── Release ───────────────────────────────────────────────────────────────
	ReleaseVersion string // default "2.2.0"
}

// defaults are applied before the environment and .env file.
var defaults = map[string]any{
	"PORT":            "8080",
	"ENV":             "development",
	"REQUEST_TIMEOUT": 30 * time.Second,
	"EMAIL_FROM_ADDR": "onboarding@resend.dev",
	"EMAIL_FROM_NAME": "Carbinated Audio",
	"SUPPORT_EMAIL":   "support@carbinatedaudio.com",
	"RELEASE_VERSION": "2.2.0",
}

// keys lists every variable Load reads, so viper binds them even when only
// present in the process environment.
var keys = []string{
	"PORT", "ENV", "REQUEST_TIMEOUT",
	"STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SECRET",
	"RESEND_API_KEY", "EMAIL_FROM_ADDR", "EMAIL_FROM_NAME", "EMAIL_SUBJECT", "SUPPORT_EMAIL",
	"RELEASE_VERSION",
}

// Load reads all environment variables and returns a validated Config.
// It also reads a .env file from the working directory when present, so
// plain `go run ./cmd/fulfillment serve` works in development.
// Real environment variables always take precedence over .env values.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit dotenv path. A missing file is ignored.
func LoadFile(dotEnvPath string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", k, err)
		}
	}

	if dotEnvPath != "" {
		if _, err := os.Stat(dotEnvPath); err == nil {
			v.SetConfigFile(dotEnvPath)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("config: read %s: %w", dotEnvPath, err)
			}
		}
	}

	c := &Config{
		Port:                v.GetString("PORT"),
		Env:                 v.GetString("ENV"),
		RequestTimeout:      v.GetDuration("REQUEST_TIMEOUT"),
		StripeSecretKey:     v.GetString("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
		ResendAPIKey:        v.GetString("RESEND_API_KEY"),
		EmailFromAddr:       v.GetString("EMAIL_FROM_ADDR"),
		EmailFromName:       v.GetString("EMAIL_FROM_NAME"),
		EmailSubject:        v.GetString("EMAIL_SUBJECT"),
		SupportEmail:        v.GetString("SUPPORT_EMAIL"),
		ReleaseVersion:      v.GetString("RELEASE_VERSION"),
	}

	return c, c.validate()
}

func (c *Config) validate() error {
	var errs []error

	// Ordered so the joined message is stable.
	required := []struct{ name, val string }{
		{"STRIPE_SECRET_KEY", c.StripeSecretKey},
		{"STRIPE_WEBHOOK_SECRET", c.StripeWebhookSecret},
		{"RESEND_API_KEY", c.ResendAPIKey},
	}
	for _, r := range required {
		if r.val == "" {
			errs = append(errs, fmt.Errorf("missing required env var: %s", r.name))
		}
	}

	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether Env is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
