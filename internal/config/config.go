package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	ListenAddr    string `env:"LISTEN_ADDR" envDefault:":8080"`
	BaseURL       string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	SessionSecret string `env:"SESSION_SECRET" envDefault:"change-me-in-production-32-bytes!"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	ContentPath string `env:"CONTENT_PATH"` // empty means the embedded default document
	PhotosDir   string `env:"PHOTOS_DIR" envDefault:"./photos"`
	TimeZone    string `env:"TIME_ZONE" envDefault:"Local"`
	ThumbSize   uint   `env:"THUMB_SIZE" envDefault:"480"`

	CountdownInterval time.Duration `env:"COUNTDOWN_INTERVAL" envDefault:"1s"`

	RSVPDelay         time.Duration `env:"RSVP_DELAY" envDefault:"2s"`
	RSVPRatePerMin    float64       `env:"RSVP_RATE_PER_MIN" envDefault:"6"`
	RSVPWebhookURL    string        `env:"RSVP_WEBHOOK_URL"`
	RSVPWebhookSecret string        `env:"RSVP_WEBHOOK_SECRET"`

	SMTPHost    string `env:"SMTP_HOST"`
	SMTPPort    int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser    string `env:"SMTP_USER"`
	SMTPPass    string `env:"SMTP_PASS"`
	SMTPFrom    string `env:"SMTP_FROM"`
	NotifyEmail string `env:"NOTIFY_EMAIL"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.CountdownInterval <= 0 {
		return nil, fmt.Errorf("COUNTDOWN_INTERVAL must be positive, got %s", cfg.CountdownInterval)
	}
	if cfg.RSVPRatePerMin <= 0 {
		return nil, fmt.Errorf("RSVP_RATE_PER_MIN must be positive, got %v", cfg.RSVPRatePerMin)
	}
	return cfg, nil
}

// Location resolves TimeZone, falling back to the process local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}
