package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var triggerParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Trigger is a recurring daily time-of-day in one location.
type Trigger struct {
	at    string
	loc   *time.Location
	sched cron.Schedule
}

// NewDaily registers a daily trigger at a local "HH:MM" or "HH:MM:SS".
func NewDaily(at string, loc *time.Location) (*Trigger, error) {
	if loc == nil {
		loc = time.Local
	}
	at = strings.TrimSpace(at)
	h, m, sec, err := parseClock(at)
	if err != nil {
		return nil, &ConversionError{Input: at, Err: err}
	}
	spec := fmt.Sprintf("%d %d %d * * *", sec, m, h)
	sched, err := triggerParser.Parse(spec)
	if err != nil {
		return nil, &ConversionError{Input: at, Err: err}
	}
	return &Trigger{at: at, loc: loc, sched: sched}, nil
}

// At returns the local time-of-day the trigger fires at.
func (t *Trigger) At() string { return t.at }

func (t *Trigger) Location() *time.Location { return t.loc }

// Next returns the first fire time strictly after after. The trigger fires
// at most once per local calendar day: on a fall-back day only the first
// occurrence of the wall time counts, and on a spring-forward day a time
// inside the gap fires at the first instant after the gap.
func (t *Trigger) Next(after time.Time) time.Time {
	a := after.In(t.loc)
	y, m, d := a.Date()
	for i := 0; ; i++ {
		if occ := t.onDay(y, m, d+i); occ.After(a) {
			return occ
		}
	}
}

// onDay returns the single fire instant for the local date y-m-d.
func (t *Trigger) onDay(y int, m time.Month, d int) time.Time {
	start := time.Date(y, m, d, 0, 0, 0, 0, t.loc)
	sy, sm, sd := start.Date()
	occ := t.sched.Next(start.Add(-time.Nanosecond))
	if oy, om, od := occ.Date(); oy == sy && om == sm && od == sd {
		return occ
	}
	// The wall time does not exist on this date; fire when the clock jumps past it.
	want := t.sched.Next(start.AddDate(0, 0, 1).Add(-time.Nanosecond))
	for p := start; ; {
		_, end := p.ZoneBounds()
		if end.IsZero() {
			break
		}
		if ey, em, ed := end.Date(); ey != sy || em != sm || ed != sd {
			break
		}
		if !wallBefore(end, want) {
			return end
		}
		p = end
	}
	return time.Date(sy, sm, sd, want.Hour(), want.Minute(), want.Second(), 0, t.loc)
}

// wallBefore compares the local time-of-day of a and b.
func wallBefore(a, b time.Time) bool {
	ah, am, as := a.Clock()
	bh, bm, bs := b.Clock()
	return ah*3600+am*60+as < bh*3600+bm*60+bs
}

func (t *Trigger) String() string {
	return "daily at " + t.at + " " + t.loc.String()
}

func parseClock(s string) (h, m, sec int, err error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 2:
		h, m, err = ParseHHMM(s)
		return h, m, 0, err
	case 3:
		h, m, err = ParseHHMM(parts[0] + ":" + parts[1])
		if err != nil {
			return 0, 0, 0, err
		}
		sec, err = strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return 0, 0, 0, fmt.Errorf("invalid second in %q", s)
		}
		return h, m, sec, nil
	default:
		return 0, 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
}
