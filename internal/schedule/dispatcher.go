package schedule

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	logx "wordbot/pkg/logx"
)

// DefaultPollInterval is how often the dispatcher checks whether the trigger is due.
const DefaultPollInterval = 10 * time.Second

// Job is the dispatched callback. It runs on the poll loop goroutine.
type Job func(ctx context.Context) error

type State int32

const (
	StateIdle State = iota
	StateDispatching
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatching:
		return "dispatching"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = systemClock{}

// Dispatcher polls a single Trigger and runs its Job synchronously when due.
// At most one Job runs at a time; the loop does not poll while it runs.
type Dispatcher struct {
	trigger *Trigger
	job     Job

	interval   time.Duration
	clock      Clock
	log        logx.Logger
	heartbeat  func()
	runOnStart bool

	state atomic.Int32
	runs  atomic.Uint64

	mu   sync.Mutex
	next time.Time
}

type Option func(*Dispatcher)

func WithPollInterval(d time.Duration) Option {
	return func(x *Dispatcher) {
		if d > 0 {
			x.interval = d
		}
	}
}

func WithClock(c Clock) Option {
	return func(x *Dispatcher) {
		if c != nil {
			x.clock = c
		}
	}
}

func WithLogger(log logx.Logger) Option {
	return func(x *Dispatcher) { x.log = log }
}

// WithHeartbeat installs fn to be called on every poll tick.
func WithHeartbeat(fn func()) Option {
	return func(x *Dispatcher) { x.heartbeat = fn }
}

// WithRunOnStart runs the job once before the first poll. It does not move the trigger.
func WithRunOnStart(enabled bool) Option {
	return func(x *Dispatcher) { x.runOnStart = enabled }
}

func NewDispatcher(trigger *Trigger, job Job, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		trigger:  trigger,
		job:      job,
		interval: DefaultPollInterval,
		clock:    SystemClock,
		log:      logx.Nop(),
	}
	for _, o := range opts {
		o(d)
	}
	d.next = trigger.Next(d.clock.Now())
	return d
}

func (d *Dispatcher) State() State { return State(d.state.Load()) }

// Runs counts completed dispatches (including the startup run).
func (d *Dispatcher) Runs() uint64 { return d.runs.Load() }

// Next returns the next time the trigger is due.
func (d *Dispatcher) Next() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.next
}

// Run polls until ctx is canceled and then returns nil.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.log.Info("dispatch loop started",
		logx.String("trigger", d.trigger.String()),
		logx.Time("next", d.Next()),
		logx.Duration("poll", d.interval),
	)
	if d.runOnStart {
		d.dispatch(ctx, "startup")
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		if ctx.Err() != nil {
			break
		}
		d.tick(ctx)
		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	}
	d.log.Info("dispatch loop stopped", logx.Uint64("runs", d.Runs()))
	return nil
}

// tick performs one poll check and reports whether the job was dispatched.
func (d *Dispatcher) tick(ctx context.Context) bool {
	if d.heartbeat != nil {
		d.heartbeat()
	}
	if d.clock.Now().Before(d.Next()) {
		return false
	}
	d.dispatch(ctx, "trigger")

	next := d.trigger.Next(d.clock.Now())
	d.mu.Lock()
	d.next = next
	d.mu.Unlock()
	d.log.Info("next run scheduled", logx.Time("next", next))
	return true
}

// dispatch runs the job. Errors and panics are logged; the state returns to idle either way.
func (d *Dispatcher) dispatch(ctx context.Context, reason string) {
	d.state.Store(int32(StateDispatching))
	start := d.clock.Now()
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("job panicked", logx.String("reason", reason), logx.Any("panic", r), logx.Stack(logx.StackTrace(3, 16)))
		}
		d.runs.Add(1)
		d.state.Store(int32(StateIdle))
	}()

	d.log.Debug("dispatching", logx.String("reason", reason))
	if err := d.job(ctx); err != nil {
		d.log.Warn("job failed", logx.String("reason", reason), logx.Err(err), logx.Duration("took", d.clock.Now().Sub(start)))
		return
	}
	d.log.Debug("job done", logx.String("reason", reason), logx.Duration("took", d.clock.Now().Sub(start)))
}
