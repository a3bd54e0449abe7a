package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtgsync/internal/clickup"
)

func setValidEnv(t *testing.T) {
	t.Setenv("INTERNAL_DOMAINS", "mycompany.com, sister.io ,")
	t.Setenv("SYNC_USER_EMAILS", "alice@mycompany.com,bob@mycompany.com")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "creds.json")
	t.Setenv("CLICKUP_API_KEY", "pk_123")
	t.Setenv("CLICKUP_TEAM_ID", "9000")
	t.Setenv("CLICKUP_LIST_ID", "42")
	t.Setenv("CLICKUP_BASE_URL", "")
	t.Setenv("CALENDAR_SYNC_DAYS", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FILE", "")
	t.Setenv("DEBUG", "")
}

func TestLoad(t *testing.T) {
	setValidEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, DefaultSyncDays, cfg.SyncDays)
	assert.Equal(t, []string{"mycompany.com", "sister.io"}, cfg.InternalDomains)
	assert.Equal(t, []string{"alice@mycompany.com", "bob@mycompany.com"}, cfg.UserEmails)
	assert.Equal(t, clickup.DefaultBaseURL, cfg.ClickUpBaseURL)
	assert.Equal(t, "info", cfg.EffectiveLogLevel())
}

func TestLoad_Overrides(t *testing.T) {
	setValidEnv(t)
	t.Setenv("CALENDAR_SYNC_DAYS", "7")
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("CLICKUP_BASE_URL", "http://localhost:8080/api/v2")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 7, cfg.SyncDays)
	assert.Equal(t, "warn", cfg.EffectiveLogLevel())
	assert.Equal(t, "http://localhost:8080/api/v2", cfg.ClickUpBaseURL)

	t.Setenv("DEBUG", "true")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.EffectiveLogLevel())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "missing api key", key: "CLICKUP_API_KEY", val: ""},
		{name: "missing users", key: "SYNC_USER_EMAILS", val: " , "},
		{name: "bad user email", key: "SYNC_USER_EMAILS", val: "alice"},
		{name: "missing domains", key: "INTERNAL_DOMAINS", val: ""},
		{name: "non-numeric days", key: "CALENDAR_SYNC_DAYS", val: "two weeks"},
		{name: "zero days", key: "CALENDAR_SYNC_DAYS", val: "0"},
		{name: "bad level", key: "LOG_LEVEL", val: "verbose"},
		{name: "bad debug flag", key: "DEBUG", val: "sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setValidEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
