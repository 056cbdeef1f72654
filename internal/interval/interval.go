// Package interval provides the pure time-range arithmetic used by the
// consolidation engine: buffered overlap tests and union bounds.
package interval

import "time"

// Range is a closed time span. Start == End (a zero-duration range) is valid
// and participates in overlap tests like any other range.
type Range struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether a and b are within buffer of each other: it is
// false only when a ends more than buffer before b starts, or a starts more
// than buffer after b ends. The test is symmetric in a and b.
func Overlaps(a, b Range, buffer time.Duration) bool {
	if a.End.Add(buffer).Before(b.Start) {
		return false
	}
	if a.Start.Add(-buffer).After(b.End) {
		return false
	}
	return true
}

// Window widens [start, end] by buffer on both sides. Querying a store for
// ranges intersecting the widened window is equivalent to a buffered
// overlap test against the original bounds.
func Window(start, end time.Time, buffer time.Duration) (time.Time, time.Time) {
	return start.Add(-buffer), end.Add(buffer)
}

// Union returns the enclosing bounds of the given range and every range in
// existing: the minimum start and maximum end.
func Union(existing []Range, start, end time.Time) (time.Time, time.Time) {
	for _, r := range existing {
		if r.Start.Before(start) {
			start = r.Start
		}
		if r.End.After(end) {
			end = r.End
		}
	}
	return start, end
}
