package availability

import "time"

// Window is the single unavailability window attached to a listing.
// A nil Start means no known start; a nil End means no known release.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// NewWindow copies both bounds truncated to calendar days.
func NewWindow(start, end *time.Time) Window {
	return Window{Start: DayPtr(start), End: DayPtr(end)}
}

// IsEmpty reports a window with neither bound, i.e. nothing blocks the listing.
func (w Window) IsEmpty() bool {
	return w.Start == nil && w.End == nil
}

// Malformed reports start after end. Such windows are treated as occupied indefinitely.
func (w Window) Malformed() bool {
	return w.Start != nil && w.End != nil && Day(*w.Start).After(Day(*w.End))
}

// Expired reports an end date strictly before the reference day. Start-only windows
// never expire since there is no known release to act on.
func (w Window) Expired(ref time.Time) bool {
	return w.End != nil && Day(*w.End).Before(Day(ref))
}
