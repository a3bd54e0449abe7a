// Package config loads the sync configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"mtgsync/internal/clickup"
)

// DefaultSyncDays is how far ahead events are fetched when not configured.
const DefaultSyncDays = 14

// Config holds everything a sync run needs.
type Config struct {
	SyncDays           int      `validate:"min=1,max=365"`
	InternalDomains    []string `validate:"required,min=1,dive,required"`
	UserEmails         []string `validate:"required,min=1,dive,email"`
	ServiceAccountFile string   `validate:"required"`
	ClickUpAPIKey      string   `validate:"required"`
	ClickUpTeamID      string   `validate:"required"`
	ClickUpListID      string   `validate:"required"`
	ClickUpBaseURL     string   `validate:"required,url"`
	LogLevel           string   `validate:"omitempty,oneof=debug info warn warning error"`
	LogFile            string
	Debug              bool
}

// LoadDotEnv loads variables from a .env file in the working directory.
// A missing file is not an error.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load reads the configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		SyncDays:           DefaultSyncDays,
		InternalDomains:    splitList(os.Getenv("INTERNAL_DOMAINS")),
		UserEmails:         splitList(os.Getenv("SYNC_USER_EMAILS")),
		ServiceAccountFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
		ClickUpAPIKey:      os.Getenv("CLICKUP_API_KEY"),
		ClickUpTeamID:      os.Getenv("CLICKUP_TEAM_ID"),
		ClickUpListID:      os.Getenv("CLICKUP_LIST_ID"),
		ClickUpBaseURL:     os.Getenv("CLICKUP_BASE_URL"),
		LogLevel:           strings.ToLower(os.Getenv("LOG_LEVEL")),
		LogFile:            os.Getenv("LOG_FILE"),
	}
	if cfg.ClickUpBaseURL == "" {
		cfg.ClickUpBaseURL = clickup.DefaultBaseURL
	}

	if v := os.Getenv("CALENDAR_SYNC_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CALENDAR_SYNC_DAYS %q: %w", v, err)
		}
		cfg.SyncDays = days
	}
	if v := os.Getenv("DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DEBUG %q: %w", v, err)
		}
		cfg.Debug = debug
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for missing or malformed values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// EffectiveLogLevel returns the log level name, honouring the debug switch.
func (c *Config) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// splitList splits a comma separated list, trimming blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
