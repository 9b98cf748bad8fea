package app

import (
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	logx "wordbot/pkg/logx"
)

// Notifier reports lifecycle state to the service manager.
type Notifier interface {
	Ready(status string)
	// Watchdog is called on every poll tick.
	Watchdog()
	Stopping()
	// CheckWatchdog warns when a poll interval or a blocking send of up to
	// sendTimeout could outlast the watchdog.
	CheckWatchdog(poll, sendTimeout time.Duration)
}

// systemdNotifier speaks sd_notify. Without NOTIFY_SOCKET every call is a no-op.
type systemdNotifier struct {
	log logx.Logger

	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func NewSystemdNotifier(log logx.Logger) Notifier {
	n := &systemdNotifier{log: log}
	if d, err := daemon.SdWatchdogEnabled(false); err != nil {
		log.Warn("watchdog config unreadable", logx.Err(err))
	} else {
		n.interval = d
	}
	return n
}

func (n *systemdNotifier) notify(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		n.log.Warn("sd_notify failed", logx.String("state", state), logx.Err(err))
		return
	}
	if sent {
		n.log.Debug("sd_notify", logx.String("state", state))
	}
}

func (n *systemdNotifier) Ready(status string) {
	n.notify(daemon.SdNotifyReady)
	if status != "" {
		n.notify("STATUS=" + status)
	}
}

func (n *systemdNotifier) Watchdog() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.interval <= 0 {
		return
	}
	now := time.Now()
	if now.Sub(n.last) < n.interval/2 {
		return
	}
	n.last = now
	n.notify(daemon.SdNotifyWatchdog)
}

func (n *systemdNotifier) Stopping() { n.notify(daemon.SdNotifyStopping) }

func (n *systemdNotifier) CheckWatchdog(poll, sendTimeout time.Duration) {
	n.mu.Lock()
	interval := n.interval
	n.mu.Unlock()
	if interval <= 0 {
		return
	}
	if poll >= interval/2 {
		n.log.Warn("poll interval too long for the systemd watchdog",
			logx.Duration("poll", poll),
			logx.Duration("watchdog", interval),
		)
	}
	// No ping is sent while a post is in flight.
	if worst := poll + sendTimeout; worst >= interval {
		n.log.Warn("a slow send can outlast the systemd watchdog; raise WatchdogSec or lower TELEGRAM_HTTP_TIMEOUT",
			logx.Duration("send_timeout", sendTimeout),
			logx.Duration("poll", poll),
			logx.Duration("watchdog", interval),
		)
	}
}
