package logx

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"wordbot/internal/transport"
)

type chatLine struct {
	to   transport.ChatTarget
	text string
}

// chatSink is a zerolog.LevelWriter feeding Service.queue. It never blocks logging.
type chatSink struct{ svc *Service }

func (w *chatSink) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.InfoLevel, p)
}

func (w *chatSink) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	s := w.svc
	if s == nil || !s.chatOn || level < s.minLevel {
		return len(p), nil
	}
	if !s.limiter.Allow() {
		return len(p), nil
	}
	text := formatChatLine(p)
	if text == "" {
		return len(p), nil
	}
	select {
	case s.queue <- chatLine{to: s.target, text: text}:
	default:
		// drop
	}
	return len(p), nil
}

// formatChatLine turns a zerolog JSON line into "[LEVEL] msg" plus one "- k=v" line per field.
func formatChatLine(p []byte) string {
	raw := strings.TrimSpace(string(p))
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return truncate(raw, 3500)
	}

	lvl, _ := m["level"].(string)
	msg, _ := m["message"].(string)

	var b strings.Builder
	if lvl != "" {
		b.WriteString("[")
		b.WriteString(strings.ToUpper(lvl))
		b.WriteString("] ")
	}
	b.WriteString(msg)

	keys := make([]string, 0, len(m))
	for k := range m {
		switch k {
		case "time", "level", "message":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := fmt.Sprint(m[k])
		if k == "stack" {
			b.WriteString("\n- stack=\n")
			b.WriteString(truncate(v, 900))
			continue
		}
		b.WriteString("\n- ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(truncate(v, 600))
	}
	return truncate(b.String(), 3500)
}

// truncate cuts s to at most maxN bytes on a rune boundary, marking the cut with "...".
func truncate(s string, maxN int) string {
	if maxN <= 0 || len(s) <= maxN {
		return s
	}
	suffix := "..."
	if maxN < 10 {
		suffix = ""
	}
	cut := maxN - len(suffix)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + suffix
}
