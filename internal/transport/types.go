package transport

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxTextLen is the Bot API limit on one text message, in characters.
const MaxTextLen = 4096

var ErrTextTooLong = errors.New("message text too long")

// ChatTarget addresses a chat either by numeric id or by public @username.
// ThreadID selects a forum topic (0 if none).
type ChatTarget struct {
	ChatID   int64
	Username string
	ThreadID int
}

// ParseChatTarget accepts "-1001234567890", "1234", "@channel" or "channel".
func ParseChatTarget(raw string) (ChatTarget, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ChatTarget{}, fmt.Errorf("chat id required")
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		if id == 0 {
			return ChatTarget{}, fmt.Errorf("invalid chat id %q", raw)
		}
		return ChatTarget{ChatID: id}, nil
	}
	name := strings.TrimPrefix(s, "@")
	if name == "" || strings.ContainsAny(name, " \t\r\n@") {
		return ChatTarget{}, fmt.Errorf("invalid chat id %q (use a numeric id or @channel)", raw)
	}
	return ChatTarget{Username: "@" + name}, nil
}

func (t ChatTarget) IsZero() bool { return t.ChatID == 0 && t.Username == "" }

func (t ChatTarget) String() string {
	if t.Username != "" {
		return t.Username
	}
	return strconv.FormatInt(t.ChatID, 10)
}

type MessageRef struct {
	ChatID    int64
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Adapter is an outbound messaging platform.
type Adapter interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
	Close() error
}
