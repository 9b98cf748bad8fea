package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTime is the UTC send time used when none is configured.
const DefaultTime = "09:00"

// ConversionError reports a time-of-day that could not be parsed or converted.
// It is recoverable: callers fall back to an unconverted schedule.
type ConversionError struct {
	Input string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %q: %v", e.Input, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// ParseHHMM parses a 24h "HH:MM" time-of-day.
func ParseHHMM(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h, m, nil
}

// ToLocal converts a UTC "HH:MM" into loc's "HH:MM" as of now's UTC date.
// A nil loc means time.Local.
func ToLocal(utcHHMM string, now time.Time, loc *time.Location) (string, error) {
	h, m, err := ParseHHMM(utcHHMM)
	if err != nil {
		return "", &ConversionError{Input: utcHHMM, Err: err}
	}
	if loc == nil {
		loc = time.Local
	}
	u := now.UTC()
	target := time.Date(u.Year(), u.Month(), u.Day(), h, m, 0, 0, time.UTC)
	return target.In(loc).Format("15:04"), nil
}

// Resolution is the outcome of turning the configured UTC time into a registrable local time.
type Resolution struct {
	UTC   string
	Local string
	// Fallback is set when Local is not a converted value.
	Fallback bool
	// Err is the conversion (and, if any, registration) failure behind a fallback.
	Err error
}

// Resolve converts utcHHMM to loc and registers the daily trigger.
//
// Failure policy: if conversion fails the input is used unconverted as a local
// time; if that is not a valid time either, DefaultTime is used as a local time.
// Resolve never fails.
func Resolve(utcHHMM string, now time.Time, loc *time.Location) (Resolution, *Trigger) {
	if loc == nil {
		loc = time.Local
	}
	res := Resolution{UTC: strings.TrimSpace(utcHHMM)}

	local, err := ToLocal(utcHHMM, now, loc)
	if err == nil {
		tr, terr := NewDaily(local, loc)
		if terr == nil {
			res.Local = local
			return res, tr
		}
		err = terr
	}

	res.Fallback = true
	res.Err = err
	tr, terr := NewDaily(res.UTC, loc)
	if terr == nil {
		res.Local = tr.At()
		return res, tr
	}
	res.Err = fmt.Errorf("%w; unconverted: %v", err, terr)

	tr, terr = NewDaily(DefaultTime, loc)
	if terr != nil {
		// DefaultTime is a constant; this cannot happen.
		panic(terr)
	}
	res.Local = tr.At()
	return res, tr
}
