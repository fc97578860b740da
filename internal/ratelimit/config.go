package ratelimit

import (
	"os"
	"strconv"
	"time"
)

// Action names understood by the default rule set.
const (
	ActionAnalyzeForm    = "analyze-form"
	ActionFillForm       = "fill-form"
	ActionSubmitForm     = "submit-form"
	ActionStartBulkApply = "start-bulk-apply"
)

// Rule is the quota for one action.
type Rule struct {
	Max    int
	Window time.Duration
}

// Config holds the limiter rules and housekeeping intervals.
type Config struct {
	Rules         map[string]Rule
	Default       Rule
	SweepInterval time.Duration
	MaxIdle       time.Duration
}

// LoadConfig builds the limiter configuration from environment variables,
// keeping the built-in per-action quotas.
func LoadConfig() *Config {
	return &Config{
		Rules: DefaultRules(),
		Default: Rule{
			Max:    getEnvInt("RATE_LIMIT_DEFAULT_MAX", 30),
			Window: getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		},
		SweepInterval: getEnvDuration("RATE_LIMIT_SWEEP_INTERVAL", 5*time.Minute),
		MaxIdle:       getEnvDuration("RATE_LIMIT_MAX_IDLE", time.Hour),
	}
}

// DefaultRules returns the per-action quotas. Bulk-apply starts are the
// most expensive operation and get the strictest limit.
func DefaultRules() map[string]Rule {
	return map[string]Rule{
		ActionAnalyzeForm:    {Max: 5, Window: time.Minute},
		ActionFillForm:       {Max: 10, Window: time.Minute},
		ActionSubmitForm:     {Max: 5, Window: time.Minute},
		ActionStartBulkApply: {Max: 1, Window: 5 * time.Minute},
	}
}

// RuleFor looks up the rule for an action, falling back to the default.
func (c *Config) RuleFor(action string) Rule {
	if rule, ok := c.Rules[action]; ok {
		return rule
	}
	return c.Default
}

// getEnvInt reads an integer environment variable with a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration reads a duration environment variable with a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
