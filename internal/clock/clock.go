// Package clock provides the simulated time-of-day value used throughout the model.
package clock

import "fmt"

// Clock is a point in simulated time. A value type: Advance returns a new
// Clock rather than mutating in place.
type Clock struct {
	Hour   int     // 0–23
	Minute float64 // 0–59.999…
}

// New constructs a Clock. Inputs are assumed to be in canonical range.
func New(hour int, minute float64) Clock {
	return Clock{Hour: hour, Minute: minute}
}

// Advance returns the clock n minutes later, and whether the day rolled over.
// n may be negative: the minute borrows from the hour, wrapping backwards
// through midnight without reporting a rollover. |n| is assumed to be < 60 in
// a single call; chain calls for larger steps.
func (c Clock) Advance(n float64) (Clock, bool) {
	next := Clock{Hour: c.Hour, Minute: c.Minute + n}
	if next.Minute < 0 {
		next.Minute += 60
		next.Hour--
		if next.Hour < 0 {
			next.Hour = 23
		}
		return next, false
	}
	if next.Minute >= 60 {
		next.Minute -= 60
		next.Hour++
		if next.Hour == 24 {
			next.Hour = 0
			return next, true
		}
	}
	return next, false
}

// TimeTo returns the gap in minutes from c forward to end. The gap only looks
// forwards: if end is earlier in wall-clock terms the result wraps through
// midnight, so it is never negative. Assumes the difference is < 24 hours.
func (c Clock) TimeTo(end Clock) float64 {
	if end.Hour < c.Hour || (end.Hour == c.Hour && end.Minute < c.Minute) {
		// Rolled over to tomorrow.
		beforeMidnight := 60*float64(23-c.Hour) + (60 - c.Minute)
		afterMidnight := 60*float64(end.Hour) + end.Minute
		return beforeMidnight + afterMidnight
	}
	return 60*float64(end.Hour-c.Hour) + (end.Minute - c.Minute)
}

// Equal is exact field-wise comparison. Callers needing "close enough"
// semantics apply their own threshold.
func (c Clock) Equal(o Clock) bool {
	return c.Hour == o.Hour && c.Minute == o.Minute
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, int(c.Minute))
}
