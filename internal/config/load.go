package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"wordbot/internal/message"
	"wordbot/internal/schedule"
	"wordbot/internal/transport"
	logx "wordbot/pkg/logx"
)

// DefaultEnvFile is loaded when present; a missing default file is not an error.
const DefaultEnvFile = ".env"

type Options struct {
	// Path is an optional YAML/JSON config file. Environment variables override it.
	Path string
	// EnvFile is a dotenv file; empty means DefaultEnvFile (optional).
	EnvFile string
	// SkipCredentials relaxes validation for commands that never talk to Telegram.
	SkipCredentials bool
}

// Environment variables recognised by Load.
const (
	EnvBotToken     = "BOT_TOKEN"
	EnvChannelID    = "CHANNEL_ID"
	EnvScheduleTime = "SCHEDULE_TIME"
	EnvPollInterval = "POLL_INTERVAL"
	EnvTimezone     = "SCHEDULE_TIMEZONE"
	EnvSendOnStart  = "SEND_ON_START"
	EnvWordSource   = "WORD_SOURCE"
	EnvWordFile     = "WORD_FILE"
	EnvWordWatch    = "WORD_WATCH"
	EnvParseMode    = "PARSE_MODE"
	EnvHeader       = "MESSAGE_HEADER"
	EnvFooter       = "MESSAGE_FOOTER"
	EnvAPIURL       = "TELEGRAM_API_URL"
	EnvHTTPTimeout  = "TELEGRAM_HTTP_TIMEOUT"
	EnvThreadID     = "CHANNEL_THREAD_ID"
	EnvLogLevel     = "LOG_LEVEL"
	EnvLogFile      = "LOG_FILE"
	EnvLogChatID    = "LOG_CHAT_ID"
)

// Load builds the configuration: dotenv file, then the optional config file,
// then environment overrides, then defaults and validation.
// Every failure is a *Error.
func Load(opt Options) (*Config, error) {
	if err := loadEnvFile(opt.EnvFile); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if strings.TrimSpace(opt.Path) != "" {
		c, err := ParseFile(opt.Path)
		if err != nil {
			return nil, &Error{Field: "--config", Err: err}
		}
		cfg = c
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := Validate(cfg, opt.SkipCredentials); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnvFile(path string) error {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &Error{Field: "--env-file", Err: err}
	}
	// godotenv.Load never overrides variables already set in the process environment.
	if err := godotenv.Load(path); err != nil {
		return &Error{Field: "--env-file", Err: err}
	}
	return nil
}

// ParseFile strictly decodes a JSON or YAML config file; unknown keys are rejected.
func ParseFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	jb, err := coerceToJSONBytes(path, b)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid config: trailing data")
		}
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(name string, dst *bool) error {
		v, ok := os.LookupEnv(name)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fieldErr(name, "invalid boolean %q", v)
		}
		*dst = b
		return nil
	}

	str(EnvBotToken, &cfg.Telegram.Token)
	str(EnvChannelID, &cfg.Telegram.ChannelID)
	str(EnvParseMode, &cfg.Telegram.ParseMode)
	str(EnvAPIURL, &cfg.Telegram.APIURL)
	str(EnvHTTPTimeout, &cfg.Telegram.HTTPTimeout)
	str(EnvScheduleTime, &cfg.Schedule.TimeUTC)
	str(EnvPollInterval, &cfg.Schedule.PollInterval)
	str(EnvTimezone, &cfg.Schedule.Timezone)
	str(EnvWordSource, &cfg.Words.Source)
	str(EnvWordFile, &cfg.Words.File)
	str(EnvLogLevel, &cfg.Logging.Level)
	str(EnvLogFile, &cfg.Logging.File)
	str(EnvLogChatID, &cfg.Logging.Chat.ChatID)
	// Header and footer keep their spacing.
	if v, ok := os.LookupEnv(EnvHeader); ok && v != "" {
		cfg.Message.Header = v
	}
	if v, ok := os.LookupEnv(EnvFooter); ok && v != "" {
		cfg.Message.Footer = v
	}
	if v, ok := os.LookupEnv(EnvThreadID); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fieldErr(EnvThreadID, "invalid topic id %q", v)
		}
		cfg.Telegram.ThreadID = n
	}
	if err := boolean(EnvSendOnStart, &cfg.Schedule.SendOnStart); err != nil {
		return err
	}
	return boolean(EnvWordWatch, &cfg.Words.Watch)
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Schedule.TimeUTC) == "" {
		cfg.Schedule.TimeUTC = schedule.DefaultTime
	}
	if strings.TrimSpace(cfg.Schedule.PollInterval) == "" {
		cfg.Schedule.PollInterval = schedule.DefaultPollInterval.String()
	}
	if strings.TrimSpace(cfg.Words.Source) == "" {
		cfg.Words.Source = SourceEmbedded
	}
	cfg.Words.Source = strings.ToLower(strings.TrimSpace(cfg.Words.Source))
	if strings.TrimSpace(cfg.Logging.Level) == "" {
		cfg.Logging.Level = "INFO"
	}
}

// Validate checks cfg after defaults are applied.
// schedule.time_utc is not checked here; a malformed value falls back at startup.
func Validate(cfg *Config, skipCredentials bool) error {
	if !skipCredentials {
		if strings.TrimSpace(cfg.Telegram.Token) == "" {
			return fieldErr(EnvBotToken, "missing environment variable")
		}
		if strings.TrimSpace(cfg.Telegram.ChannelID) == "" {
			return fieldErr(EnvChannelID, "missing environment variable")
		}
		if _, err := transport.ParseChatTarget(cfg.Telegram.ChannelID); err != nil {
			return &Error{Field: EnvChannelID, Err: err}
		}
	}
	if cfg.Telegram.ThreadID < 0 {
		return fieldErr(EnvThreadID, "must be >= 0")
	}
	if _, err := cfg.PollInterval(); err != nil {
		return err
	}
	if _, err := cfg.HTTPTimeout(); err != nil {
		return err
	}
	if _, err := cfg.Location(); err != nil {
		return &Error{Field: EnvTimezone, Err: err}
	}
	switch cfg.Words.Source {
	case SourceEmbedded:
	case SourceFile:
		if strings.TrimSpace(cfg.Words.File) == "" {
			return fieldErr(EnvWordFile, "required when %s=%s", EnvWordSource, SourceFile)
		}
	default:
		return fieldErr(EnvWordSource, "unknown source %q (use %s or %s)", cfg.Words.Source, SourceEmbedded, SourceFile)
	}
	if err := (message.Template{Header: cfg.Message.Header, Footer: cfg.Message.Footer}).Check(); err != nil {
		return &Error{Field: EnvHeader, Err: err}
	}
	if !logx.ValidLevel(cfg.Logging.Level) {
		return fieldErr(EnvLogLevel, "unknown level %q", cfg.Logging.Level)
	}
	if !logx.ValidLevel(cfg.Logging.Chat.MinLevel) {
		return fieldErr("logging.chat.min_level", "unknown level %q", cfg.Logging.Chat.MinLevel)
	}
	if strings.TrimSpace(cfg.Logging.Chat.ChatID) != "" {
		if _, err := transport.ParseChatTarget(cfg.Logging.Chat.ChatID); err != nil {
			return &Error{Field: EnvLogChatID, Err: err}
		}
	}
	if cfg.Logging.Chat.RatePerSec < 0 {
		return fieldErr("logging.chat.rate_per_sec", "must be >= 0")
	}
	return nil
}

// Location is the zone the daily trigger is registered in; empty means the host's local zone.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Schedule.Timezone)
	if tz == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Target returns the parsed channel. Only valid after Validate with credentials.
func (c *Config) Target() transport.ChatTarget {
	t, _ := transport.ParseChatTarget(c.Telegram.ChannelID)
	t.ThreadID = c.Telegram.ThreadID
	return t
}

// LogTarget returns the log chat, zero if unset.
func (c *Config) LogTarget() transport.ChatTarget {
	if strings.TrimSpace(c.Logging.Chat.ChatID) == "" {
		return transport.ChatTarget{}
	}
	t, _ := transport.ParseChatTarget(c.Logging.Chat.ChatID)
	return t
}
