// Package plan splits the export horizon into query windows.
package plan

import (
	"errors"
	"iter"
	"time"

	"github.com/teambition/rrule-go"

	"preplycal/internal/model"
)

// ErrNegative is returned for a negative horizon or window span.
var ErrNegative = errors.New("plan: horizon and span must not be negative")

// Windows partitions [start, start+horizonDays] into contiguous windows.
// Each window spans at most spanDays (End - Start <= spanDays), and the next
// window starts the day after the previous one ends.
//
// start is truncated to its calendar date in its own location. Window
// starts come from a DAILY rule with interval spanDays+1, so the returned
// sequence is lazy and can be ranged over any number of times.
func Windows(start time.Time, horizonDays, spanDays int) (iter.Seq[model.Window], error) {
	if horizonDays < 0 || spanDays < 0 {
		return nil, ErrNegative
	}

	first := dateOf(start)
	last := first.AddDate(0, 0, horizonDays)

	opt := rrule.ROption{
		Freq:     rrule.DAILY,
		Interval: spanDays + 1,
		Dtstart:  first,
		Until:    last,
	}
	// Validate once up front so iteration never fails.
	if _, err := rrule.NewRRule(opt); err != nil {
		return nil, err
	}

	return func(yield func(model.Window) bool) {
		r, err := rrule.NewRRule(opt)
		if err != nil {
			return
		}
		next := r.Iterator()
		for {
			cursor, ok := next()
			if !ok {
				return
			}
			cursor = dateOf(cursor)
			end := cursor.AddDate(0, 0, spanDays)
			if end.After(last) {
				end = last
			}
			if !yield(model.Window{Start: cursor, End: end}) {
				return
			}
		}
	}, nil
}

// dateOf returns midnight of t's calendar day in t's location.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
