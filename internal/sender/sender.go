// Package sender fetches a word batch, formats it and posts it to the channel.
package sender

import (
	"context"
	"errors"
	"fmt"

	"wordbot/internal/message"
	"wordbot/internal/transport"
	"wordbot/internal/words"
	logx "wordbot/pkg/logx"
)

// Stages of the send path, reported in SendError.
const (
	StageWords = "words"
	StageSend  = "send"
)

// SendError is a failed daily post. It is recoverable: the job logs it and
// the next day's trigger is attempted independently.
type SendError struct {
	Stage string
	Err   error
}

func (e *SendError) Error() string { return fmt.Sprintf("send words (%s): %v", e.Stage, e.Err) }

func (e *SendError) Unwrap() error { return e.Err }

type Config struct {
	Target   transport.ChatTarget
	Template message.Template
	Options  transport.SendOptions
}

type Sender struct {
	cfg     Config
	source  words.Source
	adapter transport.Adapter
	log     logx.Logger
}

func New(cfg Config, source words.Source, adapter transport.Adapter, log logx.Logger) *Sender {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Sender{cfg: cfg, source: source, adapter: adapter, log: log}
}

// Compose fetches a batch and renders it. It does not send anything.
func (s *Sender) Compose(ctx context.Context) (words.Batch, string, error) {
	b, err := words.Fetch(ctx, s.source)
	if err != nil {
		return nil, "", &SendError{Stage: StageWords, Err: err}
	}
	return b, message.Format(b, s.cfg.Template), nil
}

// Send posts one batch. Every failure is a *SendError.
func (s *Sender) Send(ctx context.Context) (words.Batch, error) {
	b, text, err := s.Compose(ctx)
	if err != nil {
		return nil, err
	}
	if s.adapter == nil {
		return b, &SendError{Stage: StageSend, Err: errors.New("no messaging adapter")}
	}
	opt := s.cfg.Options
	if _, err := s.adapter.SendText(ctx, s.cfg.Target, text, &opt); err != nil {
		return b, &SendError{Stage: StageSend, Err: err}
	}
	return b, nil
}

// Job is the daily callback: it logs the outcome and never returns an error,
// so the tick counts as done whether or not the post went out.
func (s *Sender) Job(ctx context.Context) error {
	s.log.Info("preparing to fetch words")
	b, err := s.Send(ctx)
	if err != nil {
		s.log.Error("daily words not sent", logx.Err(err), logx.String("channel", s.cfg.Target.String()))
		return nil
	}
	s.log.Info("daily words sent",
		logx.Int("count", len(b)),
		logx.Strs("words", b),
		logx.String("channel", s.cfg.Target.String()),
	)
	return nil
}
