// Package schedule validates the schedule descriptors carried by graphs.
//
// The core treats a graph's schedule as an opaque string and never triggers
// runs on its own; running a graph is always an explicit call. This package
// exists so configuration can reject malformed descriptors up front and so
// embedding applications can display when a pipeline would next be due.
package schedule

import (
	"errors"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrInvalidSpec is returned when a schedule descriptor cannot be parsed.
var ErrInvalidSpec = errors.New("invalid schedule spec")

// parser accepts the standard 5-field cron format:
// minute, hour, day of month, month, day of week.
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Validate checks that spec is a well-formed 5-field cron expression.
// Returns ErrInvalidSpec (joined with the parse error) otherwise.
func Validate(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return errors.Join(ErrInvalidSpec, err)
	}
	return nil
}

// Next returns the first time after from that matches spec.
func Next(spec string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(spec)
	if err != nil {
		return time.Time{}, errors.Join(ErrInvalidSpec, err)
	}
	return sched.Next(from), nil
}
