package config

// Config is the whole bot configuration. It is built once at startup and not mutated afterwards.
//
// All durations are Go duration strings (e.g. "10s", "1m").
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Schedule ScheduleConfig `json:"schedule"`
	Words    WordsConfig    `json:"words"`
	Message  MessageConfig  `json:"message"`
	Logging  LoggingConfig  `json:"logging"`
}

type TelegramConfig struct {
	Token string `json:"token"`
	// ChannelID is a numeric chat id ("-100...") or a public "@channel".
	ChannelID      string `json:"channel_id"`
	// ThreadID posts into a forum topic of ChannelID (0 = main thread).
	ThreadID       int    `json:"thread_id,omitempty"`
	ParseMode      string `json:"parse_mode,omitempty"`
	DisablePreview bool   `json:"disable_preview,omitempty"`
	APIURL         string `json:"api_url,omitempty"`
	HTTPTimeout    string `json:"http_timeout,omitempty"`
}

type ScheduleConfig struct {
	// TimeUTC is the daily send time, 24h "HH:MM" in UTC. Default "09:00".
	TimeUTC string `json:"time_utc"`
	// PollInterval is how often the dispatch loop checks the trigger. Default "10s".
	PollInterval string `json:"poll_interval,omitempty"`
	// Timezone overrides the process local zone the trigger is registered in (IANA name).
	Timezone    string `json:"timezone,omitempty"`
	SendOnStart bool   `json:"send_on_start,omitempty"`
}

type WordsConfig struct {
	// Source is "embedded" (default) or "file".
	Source string `json:"source,omitempty"`
	File   string `json:"file,omitempty"`
	// Watch reloads File when it changes.
	Watch bool `json:"watch,omitempty"`
}

type MessageConfig struct {
	Header string `json:"header,omitempty"`
	Footer string `json:"footer,omitempty"`
}

type LoggingConfig struct {
	Level   string `json:"level,omitempty"`
	Console *bool  `json:"console,omitempty"`
	// File enables a JSON log file at this path.
	File string        `json:"file,omitempty"`
	Chat LogChatConfig `json:"chat,omitempty"`
}

// LogChatConfig mirrors WARN+ log lines into a Telegram chat.
type LogChatConfig struct {
	ChatID     string `json:"chat_id,omitempty"`
	MinLevel   string `json:"min_level,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
}

// ConsoleEnabled defaults to true when logging.console is omitted.
func (l LoggingConfig) ConsoleEnabled() bool {
	return l.Console == nil || *l.Console
}

const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
)
