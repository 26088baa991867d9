// Package config loads runtime configuration from the process environment.
// Secrets (database password, mailbox password, setup key) are validated for
// presence but never logged.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration.
type Config struct {
	ListenAddr string

	DB   DBConfig
	Mail MailConfig
	Auth AuthConfig
}

// DBConfig selects the datastore backend.
type DBConfig struct {
	Driver string // "postgres" or "sqlite3"
	DSN    string
}

// MailConfig configures the inbound IMAP mailbox.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Mailbox  string
	TLSMode  string // "imaps" (implicit TLS) or "starttls"

	// Timeouts; zero values fall back to the connector defaults.
	DialTimeout  time.Duration
	LoginTimeout time.Duration
	PollTimeout  time.Duration

	// Cron spec for background polling in serve mode; empty disables it.
	PollSchedule string
}

// AuthConfig configures authentication behavior.
type AuthConfig struct {
	// SetupKey guards the admin bootstrap command. Required for
	// `deskhive admin create`.
	SetupKey string

	// LoginRateLimit is the allowed login attempts per hour per client IP.
	LoginRateLimit int
}

// Load reads configuration from the environment.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite3")
	v.SetDefault("DB_DSN", "deskhive.db")
	v.SetDefault("IMAP_PORT", 993)
	v.SetDefault("IMAP_MAILBOX", "INBOX")
	v.SetDefault("IMAP_TLS_MODE", "imaps")
	v.SetDefault("IMAP_DIAL_TIMEOUT", "10s")
	v.SetDefault("IMAP_LOGIN_TIMEOUT", "5s")
	v.SetDefault("IMAP_POLL_TIMEOUT", "15s")
	v.SetDefault("LOGIN_RATE_LIMIT", 20)

	return &Config{
		ListenAddr: v.GetString("LISTEN_ADDR"),
		DB: DBConfig{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:    v.GetString("DB_DSN"),
		},
		Mail: MailConfig{
			Host:         v.GetString("IMAP_HOST"),
			Port:         v.GetInt("IMAP_PORT"),
			Username:     v.GetString("IMAP_USERNAME"),
			Password:     v.GetString("IMAP_PASSWORD"),
			Mailbox:      v.GetString("IMAP_MAILBOX"),
			TLSMode:      v.GetString("IMAP_TLS_MODE"),
			DialTimeout:  v.GetDuration("IMAP_DIAL_TIMEOUT"),
			LoginTimeout: v.GetDuration("IMAP_LOGIN_TIMEOUT"),
			PollTimeout:  v.GetDuration("IMAP_POLL_TIMEOUT"),
			PollSchedule: v.GetString("MAIL_POLL_SCHEDULE"),
		},
		Auth: AuthConfig{
			SetupKey:       v.GetString("SETUP_KEY"),
			LoginRateLimit: v.GetInt("LOGIN_RATE_LIMIT"),
		},
	}
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.DB.Driver != "postgres" && c.DB.Driver != "sqlite3" {
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres or sqlite3)", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	return nil
}

// ValidateMail checks that the mailbox settings are complete. Called only on
// the code paths that actually open the mailbox.
func (c *Config) ValidateMail() error {
	if c.Mail.Host == "" {
		return fmt.Errorf("IMAP_HOST is required")
	}
	if c.Mail.Username == "" {
		return fmt.Errorf("IMAP_USERNAME is required")
	}
	if c.Mail.Password == "" {
		return fmt.Errorf("IMAP_PASSWORD is required")
	}
	return nil
}

// EffectiveTLSMode normalizes the TLS mode for the IMAP connection.
// Supported values: "imaps" (implicit TLS) and "starttls".
func (m *MailConfig) EffectiveTLSMode() string {
	switch strings.ToLower(strings.TrimSpace(m.TLSMode)) {
	case "starttls", "tls":
		return "starttls"
	case "", "imaps", "implicit", "ssl":
		return "imaps"
	default:
		return "imaps"
	}
}

// Redacted returns a loggable description of the config with secrets masked.
func (c *Config) Redacted() string {
	return fmt.Sprintf("listen=%s db=%s mail=%s@%s:%d tls=%s",
		c.ListenAddr, c.DB.Driver, c.Mail.Username, c.Mail.Host, c.Mail.Port, c.Mail.EffectiveTLSMode())
}
