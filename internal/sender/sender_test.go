package sender

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"wordbot/internal/message"
	"wordbot/internal/transport"
	"wordbot/internal/words"
	logx "wordbot/pkg/logx"
)

type fakeAdapter struct {
	err   error
	sent  []string
	to    []transport.ChatTarget
	opts  []transport.SendOptions
	calls int
}

func (f *fakeAdapter) SendText(ctx context.Context, to transport.ChatTarget, text string, opt *transport.SendOptions) (transport.MessageRef, error) {
	f.calls++
	if f.err != nil {
		return transport.MessageRef{}, f.err
	}
	f.sent = append(f.sent, text)
	f.to = append(f.to, to)
	if opt != nil {
		f.opts = append(f.opts, *opt)
	}
	return transport.MessageRef{ChatID: to.ChatID, MessageID: f.calls}, nil
}

func (f *fakeAdapter) Close() error { return nil }

type staticSource struct {
	words []string
	err   error
}

func (s staticSource) Words(ctx context.Context, n int) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.words[:n], nil
}

var fiveWords = staticSource{words: []string{"آب", "باد", "خاک", "آتش", "نور"}}

func TestSendFormatsAndPosts(t *testing.T) {
	t.Parallel()
	ad := &fakeAdapter{}
	target := transport.ChatTarget{Username: "@words"}
	s := New(Config{Target: target, Options: transport.SendOptions{ParseMode: "Markdown"}}, fiveWords, ad, logx.Nop())

	b, err := s.Send(context.Background())
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if len(b) != words.BatchSize {
		t.Fatalf("batch len = %d", len(b))
	}
	if ad.calls != 1 || ad.to[0] != target {
		t.Fatalf("unexpected adapter calls: %+v", ad)
	}
	if want := message.Format(b, message.Template{}); ad.sent[0] != want {
		t.Fatalf("sent %q, want %q", ad.sent[0], want)
	}
	if ad.opts[0].ParseMode != "Markdown" {
		t.Fatalf("parse mode not forwarded: %+v", ad.opts[0])
	}
}

func TestSendErrorStages(t *testing.T) {
	t.Parallel()
	netErr := errors.New("dial tcp: i/o timeout")
	tests := []struct {
		name  string
		src   words.Source
		ad    *fakeAdapter
		stage string
		cause error
	}{
		{name: "words", src: staticSource{err: words.ErrNotEnoughWords}, ad: &fakeAdapter{}, stage: StageWords, cause: words.ErrNotEnoughWords},
		{name: "duplicate words", src: staticSource{words: []string{"a", "a", "b", "c", "d"}}, ad: &fakeAdapter{}, stage: StageWords},
		{name: "send", src: fiveWords, ad: &fakeAdapter{err: netErr}, stage: StageSend, cause: netErr},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			s := New(Config{Target: transport.ChatTarget{ChatID: 1}}, tt.src, tt.ad, logx.Nop())
			_, err := s.Send(context.Background())
			var se *SendError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SendError, got %T (%v)", err, err)
			}
			if se.Stage != tt.stage {
				t.Fatalf("Stage = %q, want %q", se.Stage, tt.stage)
			}
			if tt.cause != nil && !errors.Is(err, tt.cause) {
				t.Fatalf("error %v does not wrap %v", err, tt.cause)
			}
		})
	}
}

func TestJobSwallowsAndLogsFailures(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := logx.NewWriter(&buf, "INFO")
	s := New(Config{Target: transport.ChatTarget{ChatID: -100}}, fiveWords, &fakeAdapter{err: errors.New("Unauthorized")}, log)

	if err := s.Job(context.Background()); err != nil {
		t.Fatalf("Job must swallow send errors, got %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "daily words not sent") || !strings.Contains(out, "Unauthorized") {
		t.Fatalf("failure not logged: %s", out)
	}
	if !strings.Contains(out, `"time"`) {
		t.Fatalf("log line has no timestamp: %s", out)
	}
}

func TestJobLogsSuccess(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ad := &fakeAdapter{}
	s := New(Config{Target: transport.ChatTarget{ChatID: -100}}, fiveWords, ad, logx.NewWriter(&buf, "INFO"))
	if err := s.Job(context.Background()); err != nil {
		t.Fatalf("Job error: %v", err)
	}
	if ad.calls != 1 {
		t.Fatalf("calls = %d", ad.calls)
	}
	if !strings.Contains(buf.String(), "daily words sent") {
		t.Fatalf("success not logged: %s", buf.String())
	}
}

func TestCompose(t *testing.T) {
	t.Parallel()
	s := New(Config{Template: message.Template{Header: "H", Footer: "F"}}, fiveWords, nil, logx.Nop())
	_, text, err := s.Compose(context.Background())
	if err != nil {
		t.Fatalf("Compose error: %v", err)
	}
	if !strings.HasPrefix(text, "H\n\n1. ") || !strings.HasSuffix(text, "\n\nF") {
		t.Fatalf("unexpected text %q", text)
	}
}
