// Package schedule converts a UTC time-of-day into the host's local wall-clock
// time, registers one daily trigger at that time and runs the poll loop that
// fires it.
//
// The conversion is computed once, for the date of startup. A trigger
// registered before a DST transition keeps its pre-transition local time until
// the process restarts.
package schedule
