package availability

import "time"

// QueryRange is the period a searcher wants a listing to be free for.
// Either bound may be nil, meaning unbounded on that side.
type QueryRange struct {
	Start *time.Time
	End   *time.Time
}

func NewQueryRange(start, end *time.Time) QueryRange {
	return QueryRange{Start: DayPtr(start), End: DayPtr(end)}
}

// IsEmpty reports a range that constrains nothing.
func (q QueryRange) IsEmpty() bool {
	return q.Start == nil && q.End == nil
}

// Inverted reports start after end. No listing with a window can satisfy such a range.
func (q QueryRange) Inverted() bool {
	return q.Start != nil && q.End != nil && Day(*q.Start).After(Day(*q.End))
}

// Overlaps is the closed-interval test with absent bounds of either side widened to
// -inf/+inf. It applies no policy: an empty window overlaps everything here.
func Overlaps(w Window, q QueryRange) bool {
	return closedOverlap(lowerBound(w.Start), upperBound(w.End), lowerBound(q.Start), upperBound(q.End))
}

// ExcludedByRange reports whether a listing must be left out of "free for these dates" results.
//
// A listing without a window is never excluded, whatever the range. A range with no bounds
// excludes nothing. An inverted range excludes every listing that has a window. Otherwise the
// listing is excluded iff its window overlaps the range.
func ExcludedByRange(w Window, q QueryRange) bool {
	if w.IsEmpty() || q.IsEmpty() {
		return false
	}
	if q.Inverted() {
		return true
	}
	return Overlaps(w, q)
}
