package domain

import "time"

var (
	// Beginning stands in for an unset lower bound
	Beginning = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	// Forever stands in for an unset upper bound
	Forever = time.Date(9999, time.December, 31, 23, 59, 59, 999999999, time.UTC)
)

// TimeWindow is the [start, end] interval used to admit records by timestamp.
// A zero TimeWindow is inactive.
type TimeWindow struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	HasStart  bool      `json:"has_start"`
	HasEnd    bool      `json:"has_end"`
	Inclusive bool      `json:"inclusive"`
}

// Active reports whether either bound is set
func (w TimeWindow) Active() bool {
	return w.HasStart || w.HasEnd
}

// Bounds returns the interval with unset bounds replaced by sentinels
func (w TimeWindow) Bounds() (time.Time, time.Time) {
	start, end := Beginning, Forever
	if w.HasStart {
		start = w.Start
	}
	if w.HasEnd {
		end = w.End
	}
	return start, end
}

// Contains applies the boundary test. Inactive windows admit everything.
func (w TimeWindow) Contains(t time.Time) bool {
	if !w.Active() {
		return true
	}
	start, end := w.Bounds()
	if w.Inclusive {
		return !t.Before(start) && !t.After(end)
	}
	return t.After(start) && t.Before(end)
}

// Admits reports whether a record passes the window.
// Records without a resolved time only pass inactive windows.
func (w TimeWindow) Admits(r *Record) bool {
	if !w.Active() {
		return true
	}
	if !r.HasTime() {
		return false
	}
	return w.Contains(*r.Time)
}
