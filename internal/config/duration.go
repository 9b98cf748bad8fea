package config

import (
	"strings"
	"time"

	"wordbot/internal/schedule"
)

const (
	// MinPollInterval is the shortest accepted dispatcher poll interval.
	MinPollInterval    = time.Second
	DefaultHTTPTimeout = time.Minute
)

// PollInterval returns schedule.poll_interval, or schedule.DefaultPollInterval when unset.
// Errors are *Error naming POLL_INTERVAL.
func (c *Config) PollInterval() (time.Duration, error) {
	return durationSetting(EnvPollInterval, c.Schedule.PollInterval, schedule.DefaultPollInterval, MinPollInterval)
}

// HTTPTimeout bounds one Bot API request. Errors are *Error naming TELEGRAM_HTTP_TIMEOUT.
func (c *Config) HTTPTimeout() (time.Duration, error) {
	return durationSetting(EnvHTTPTimeout, c.Telegram.HTTPTimeout, DefaultHTTPTimeout, time.Second)
}

func durationSetting(field, raw string, def, floor time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, &Error{Field: field, Err: err}
	}
	if d < floor {
		return 0, fieldErr(field, "must be at least %s, got %s", floor, d)
	}
	return d, nil
}
