// Package adapter implements transport.Adapter on top of telebot.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	tele "gopkg.in/telebot.v4"

	"wordbot/internal/transport"
	logx "wordbot/pkg/logx"
)

type Config struct {
	Token string
	// APIURL overrides the Bot API endpoint (tests, local bot API servers).
	APIURL string
	// HTTPTimeout bounds a single API request; 0 means one minute (telebot's default).
	HTTPTimeout time.Duration
}

type Adapter struct {
	cfg  Config
	log  logx.Logger
	bot  *tele.Bot
	http *http.Client
}

var _ transport.Adapter = (*Adapter)(nil)

// New builds a send-only adapter. The bot is created offline (no getMe call),
// so an invalid token surfaces on the first send instead of at startup.
func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	client := &http.Client{Timeout: timeout}
	b, err := tele.NewBot(tele.Settings{
		URL:     strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/"),
		Token:   strings.TrimSpace(cfg.Token),
		Client:  client,
		Offline: true,
	})
	if err != nil {
		return nil, err
	}
	return &Adapter{cfg: cfg, log: log, bot: b, http: client}, nil
}

// SetLogger swaps the logger once the full log service is up.
func (a *Adapter) SetLogger(log logx.Logger) {
	if !log.IsZero() {
		a.log = log
	}
}

func (a *Adapter) Close() error {
	a.http.CloseIdleConnections()
	return nil
}

// recipient lets telebot address public chats by @username.
type recipient string

func (r recipient) Recipient() string { return string(r) }

func toRecipient(to transport.ChatTarget) tele.Recipient {
	if to.Username != "" {
		return recipient(to.Username)
	}
	return tele.ChatID(to.ChatID)
}

// SendText posts text as one message. Text over transport.MaxTextLen is rejected
// before any request is made.
func (a *Adapter) SendText(ctx context.Context, to transport.ChatTarget, text string, opt *transport.SendOptions) (transport.MessageRef, error) {
	if to.IsZero() {
		return transport.MessageRef{}, errors.New("telegram: empty chat target")
	}
	if n := utf8.RuneCountInString(text); n > transport.MaxTextLen {
		return transport.MessageRef{}, fmt.Errorf("telegram: %w (%d > %d)", transport.ErrTextTooLong, n, transport.MaxTextLen)
	}
	if opt == nil {
		opt = &transport.SendOptions{}
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return transport.MessageRef{}, err
		}
	}
	msg, err := a.bot.Send(toRecipient(to), text, &tele.SendOptions{
		ParseMode:             opt.ParseMode,
		DisableWebPagePreview: opt.DisablePreview,
		ThreadID:              to.ThreadID,
	})
	if err != nil {
		return transport.MessageRef{}, err
	}
	ref := transport.MessageRef{MessageID: msg.ID}
	if msg.Chat != nil {
		ref.ChatID = msg.Chat.ID
	}
	a.log.Debug("message sent",
		logx.String("to", to.String()),
		logx.Int64("chat_id", ref.ChatID),
		logx.Int("message_id", ref.MessageID),
	)
	return ref, nil
}
