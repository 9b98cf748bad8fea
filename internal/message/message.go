// Package message renders a word batch as the daily post.
package message

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"wordbot/internal/transport"
	"wordbot/internal/words"
)

const (
	DefaultHeader = "📚 **Word of the Day** 📚"
	DefaultFooter = "#Persian #Learning"
)

// Template holds the fixed parts of a post. Empty fields use the defaults.
type Template struct {
	Header string
	Footer string
}

func (t Template) withDefaults() Template {
	if strings.TrimSpace(t.Header) == "" {
		t.Header = DefaultHeader
	}
	if strings.TrimSpace(t.Footer) == "" {
		t.Footer = DefaultFooter
	}
	return t
}

// Check reports whether a post built from t always fits in one message,
// assuming every word is at the maximum length.
func (t Template) Check() error {
	t = t.withDefaults()
	body := 0
	for i := 1; i <= words.BatchSize; i++ {
		body += len(strconv.Itoa(i)) + len(". ") + words.MaxWordLen + 1
	}
	n := utf8.RuneCountInString(t.Header) + len("\n\n") + body + len("\n") + utf8.RuneCountInString(t.Footer)
	if n > transport.MaxTextLen {
		return fmt.Errorf("header and footer too long: a post could reach %d characters, limit %d", n, transport.MaxTextLen)
	}
	return nil
}

// Format renders:
//
//	<header>
//
//	1. w1
//	...
//	N. wN
//
//	<footer>
func Format(b words.Batch, t Template) string {
	t = t.withDefaults()
	var sb strings.Builder
	sb.WriteString(t.Header)
	sb.WriteString("\n\n")
	for i, w := range b {
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString(". ")
		sb.WriteString(w)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(t.Footer)
	return sb.String()
}
