package logx

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"wordbot/internal/transport"
)

type Config struct {
	Level   string
	Console bool
	File    FileConfig
	Chat    ChatConfig
}

type FileConfig struct {
	Enabled bool
	Path    string
}

// ChatConfig mirrors log lines at or above MinLevel into a Telegram chat.
type ChatConfig struct {
	Enabled    bool
	Target     transport.ChatTarget
	MinLevel   string
	RatePerSec int
}

// Sender is the part of transport.Adapter the chat sink needs.
type Sender interface {
	SendText(ctx context.Context, to transport.ChatTarget, text string, opt *transport.SendOptions) (transport.MessageRef, error)
}

// Service owns the log sinks. Loggers derived from it share its root.
type Service struct {
	mu   sync.Mutex
	root atomic.Value // stores zerolog.Logger
	file *os.File

	sender   Sender
	target   transport.ChatTarget
	minLevel zerolog.Level
	limiter  *rate.Limiter
	queue    chan chatLine
	chatOn   bool
}

// New opens the configured sinks and returns both the Service and a root Logger.
func New(cfg Config, sender Sender) (*Service, Logger) {
	setGlobals()

	s := &Service{
		sender: sender,
		queue:  make(chan chatLine, 256),
	}
	lvl := parseLevel(cfg.Level, zerolog.InfoLevel)

	writers := make([]io.Writer, 0, 3)
	if cfg.Console {
		writers = append(writers, newConsoleWriter(Stdout()))
	}
	if cfg.File.Enabled {
		path := strings.TrimSpace(cfg.File.Path)
		if path == "" {
			path = "./wordbot.log"
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(Stderr(), "logx: failed opening log file %q: %v\n", path, err)
		} else {
			s.file = f
			writers = append(writers, zerolog.SyncWriter(f))
		}
	}
	if cfg.Chat.Enabled {
		if cfg.Chat.Target.IsZero() || sender == nil {
			fmt.Fprintln(Stderr(), "logx: chat logging enabled but no target chat is set")
		} else {
			rps := max(1, cfg.Chat.RatePerSec)
			s.target = cfg.Chat.Target
			s.minLevel = parseLevel(cfg.Chat.MinLevel, zerolog.WarnLevel)
			s.limiter = rate.NewLimiter(rate.Limit(rps), rps)
			s.chatOn = true
			writers = append(writers, &chatSink{svc: s})
		}
	}
	if len(writers) == 0 {
		writers = append(writers, newConsoleWriter(Stdout()))
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(lvl).With().Timestamp().Logger()
	s.root.Store(zl)
	return s, Logger{svc: s}
}

func (s *Service) current() zerolog.Logger {
	zl, ok := s.root.Load().(zerolog.Logger)
	if !ok {
		return zerolog.Nop()
	}
	return zl
}

func (s *Service) Logger() Logger { return Logger{svc: s} }

// ChatEnabled reports whether the chat sink is active and RunChatSink should be started.
func (s *Service) ChatEnabled() bool { return s != nil && s.chatOn }

// RunChatSink delivers queued log lines until ctx is done.
func (s *Service) RunChatSink(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case it := <-s.queue:
			_, _ = s.sender.SendText(ctx, it.to, it.text, &transport.SendOptions{DisablePreview: true})
		}
	}
}

func (s *Service) Close() error {
	s.mu.Lock()
	f := s.file
	s.file = nil
	s.mu.Unlock()
	if f != nil {
		return f.Close()
	}
	return nil
}
