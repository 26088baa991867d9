package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LISTEN_ADDR", "DB_DRIVER", "DB_DSN",
		"IMAP_HOST", "IMAP_PORT", "IMAP_USERNAME", "IMAP_PASSWORD",
		"IMAP_MAILBOX", "IMAP_TLS_MODE", "MAIL_POLL_SCHEDULE",
		"SETUP_KEY", "LOGIN_RATE_LIMIT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "sqlite3", cfg.DB.Driver)
	assert.Equal(t, "deskhive.db", cfg.DB.DSN)
	assert.Equal(t, 993, cfg.Mail.Port)
	assert.Equal(t, "INBOX", cfg.Mail.Mailbox)
	assert.Equal(t, 15*time.Second, cfg.Mail.PollTimeout)
	assert.Equal(t, 20, cfg.Auth.LoginRateLimit)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_DSN", "postgres://deskhive@localhost/deskhive")
	t.Setenv("IMAP_HOST", "mail.example.com")
	t.Setenv("IMAP_USERNAME", "support@example.com")
	t.Setenv("IMAP_PASSWORD", "hunter2")

	cfg := Load()
	assert.Equal(t, "postgres", cfg.DB.Driver, "driver name is normalized")
	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.ValidateMail())
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "oracle")

	err := Load().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
}

func TestValidateMailRequiresCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("IMAP_HOST", "mail.example.com")

	err := Load().ValidateMail()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMAP_USERNAME")
}

func TestEffectiveTLSMode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "imaps"},
		{"imaps", "imaps"},
		{"SSL", "imaps"},
		{"starttls", "starttls"},
		{"TLS", "starttls"},
		{"bogus", "imaps"},
	}
	for _, tt := range tests {
		m := MailConfig{TLSMode: tt.in}
		assert.Equal(t, tt.want, m.EffectiveTLSMode(), "mode %q", tt.in)
	}
}

func TestRedactedOmitsSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("IMAP_PASSWORD", "hunter2")
	t.Setenv("SETUP_KEY", "bootstrap-secret")

	out := Load().Redacted()
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "bootstrap-secret")
}
