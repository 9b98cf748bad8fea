// Package app wires the configuration, word source, sender and dispatcher into the running bot.
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"wordbot/internal/config"
	"wordbot/internal/message"
	"wordbot/internal/runtime/supervisor"
	"wordbot/internal/schedule"
	"wordbot/internal/sender"
	"wordbot/internal/transport"
	telegram "wordbot/internal/transport/telegram/adapter"
	"wordbot/internal/words"
	logx "wordbot/pkg/logx"
)

type App struct {
	cfg *config.Config

	log  logx.Logger
	logs *logx.Service

	adapter transport.Adapter
	source  words.Source
	file    *words.File
	sender  *sender.Sender

	clock    schedule.Clock
	notifier Notifier
}

type Option func(*App)

// WithAdapter replaces the Telegram adapter (tests, dry runs).
func WithAdapter(a transport.Adapter) Option { return func(x *App) { x.adapter = a } }

// WithSource replaces the configured word source.
func WithSource(s words.Source) Option { return func(x *App) { x.source = s } }

func WithClock(c schedule.Clock) Option { return func(x *App) { x.clock = c } }

func WithNotifier(n Notifier) Option { return func(x *App) { x.notifier = n } }

// New builds the bot from an already validated config.
// Startup failures (bad word file, adapter construction) are returned as *config.Error.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	a := &App{cfg: cfg, clock: schedule.SystemClock}
	for _, o := range opts {
		o(a)
	}

	if a.adapter == nil && cfg.Telegram.Token != "" {
		httpTimeout, err := cfg.HTTPTimeout()
		if err != nil {
			return nil, err
		}
		ad, err := telegram.New(telegram.Config{
			Token:       cfg.Telegram.Token,
			APIURL:      cfg.Telegram.APIURL,
			HTTPTimeout: httpTimeout,
		}, logx.NewConsole(cfg.Logging.Level).With(logx.String("comp", "telegram")))
		if err != nil {
			return nil, &config.Error{Field: config.EnvBotToken, Err: err}
		}
		a.adapter = ad
	}

	logTarget := cfg.LogTarget()
	a.logs, a.log = logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.ConsoleEnabled(),
		File: logx.FileConfig{
			Enabled: cfg.Logging.File != "",
			Path:    cfg.Logging.File,
		},
		Chat: logx.ChatConfig{
			Enabled:    !logTarget.IsZero() && a.adapter != nil,
			Target:     logTarget,
			MinLevel:   cfg.Logging.Chat.MinLevel,
			RatePerSec: cfg.Logging.Chat.RatePerSec,
		},
	}, a.adapter)
	if ad, ok := a.adapter.(*telegram.Adapter); ok {
		ad.SetLogger(a.log.With(logx.String("comp", "telegram")))
	}

	if a.source == nil {
		src, err := a.openSource()
		if err != nil {
			return nil, err
		}
		a.source = src
	}

	a.sender = sender.New(sender.Config{
		Target:   cfg.Target(),
		Template: message.Template{Header: cfg.Message.Header, Footer: cfg.Message.Footer},
		Options: transport.SendOptions{
			ParseMode:      cfg.Telegram.ParseMode,
			DisablePreview: cfg.Telegram.DisablePreview,
		},
	}, a.source, a.adapter, a.log.With(logx.String("comp", "sender")))

	if a.notifier == nil {
		a.notifier = NewSystemdNotifier(a.log.With(logx.String("comp", "systemd")))
	}
	return a, nil
}

func (a *App) openSource() (words.Source, error) {
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	switch a.cfg.Words.Source {
	case config.SourceFile:
		f, err := words.NewFile(a.cfg.Words.File, rng, a.log.With(logx.String("comp", "words")))
		if err != nil {
			return nil, &config.Error{Field: config.EnvWordFile, Err: err}
		}
		a.file = f
		a.log.Info("word source", logx.String("source", config.SourceFile), logx.String("path", f.Path()), logx.Int("words", f.Len()))
		return f, nil
	default:
		e := words.NewEmbedded(rng)
		a.log.Info("word source", logx.String("source", config.SourceEmbedded), logx.Int("words", e.Len()))
		return e, nil
	}
}

func (a *App) Logger() logx.Logger { return a.log }

// Plan resolves the configured UTC time into the local trigger as of now.
func (a *App) Plan(now time.Time) (schedule.Resolution, *schedule.Trigger) {
	loc, err := a.cfg.Location()
	if err != nil {
		loc = time.Local
	}
	return schedule.Resolve(a.cfg.Schedule.TimeUTC, now, loc)
}

// Preview renders one batch without sending it.
func (a *App) Preview(ctx context.Context) (string, error) {
	_, text, err := a.sender.Compose(ctx)
	return text, err
}

// SendNow posts one batch immediately and reports the outcome.
func (a *App) SendNow(ctx context.Context) (words.Batch, error) {
	return a.sender.Send(ctx)
}

// Run registers the daily trigger and blocks in the dispatch loop until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	sup := supervisor.New(ctx, supervisor.WithLogger(a.log.With(logx.String("comp", "supervisor"))))
	if a.logs.ChatEnabled() {
		sup.Go0("logx.chat", a.logs.RunChatSink)
	}
	if a.file != nil && a.cfg.Words.Watch {
		sup.GoRestart("words.watch", time.Second, 30*time.Second, a.file.Watch)
	}

	res, trig := a.Plan(a.clock.Now())
	if res.Fallback {
		a.log.Warn("time zone calculation failed; scheduling at server time",
			logx.String("configured", res.UTC),
			logx.String("local", res.Local),
			logx.Err(res.Err),
		)
	} else {
		a.log.Info("scheduled daily send",
			logx.String("utc", res.UTC),
			logx.String("local", res.Local),
			logx.String("tz", trig.Location().String()),
			logx.Bool("send_on_start", a.cfg.Schedule.SendOnStart),
		)
	}

	poll, err := a.cfg.PollInterval()
	if err != nil {
		return err
	}
	httpTimeout, err := a.cfg.HTTPTimeout()
	if err != nil {
		return err
	}
	a.notifier.CheckWatchdog(poll, httpTimeout)

	d := schedule.NewDispatcher(trig, a.sender.Job,
		schedule.WithClock(a.clock),
		schedule.WithPollInterval(poll),
		schedule.WithLogger(a.log.With(logx.String("comp", "dispatcher"))),
		schedule.WithHeartbeat(a.notifier.Watchdog),
		schedule.WithRunOnStart(a.cfg.Schedule.SendOnStart),
	)
	a.notifier.Ready(fmt.Sprintf("next send %s", d.Next().Format(time.RFC3339)))

	runErr := d.Run(sup.Context())

	a.notifier.Stopping()
	a.log.Debug("stopping background tasks", logx.Int64("active", sup.Active()))
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sup.Stop(stopCtx); err != nil && !errors.Is(err, context.Canceled) {
		a.log.Warn("background tasks did not stop cleanly", logx.Err(err))
	}
	return runErr
}

// Close releases the adapter and log sinks.
func (a *App) Close() error {
	var errs []error
	if a.adapter != nil {
		errs = append(errs, a.adapter.Close())
	}
	if a.logs != nil {
		errs = append(errs, a.logs.Close())
	}
	return errors.Join(errs...)
}
