package availability

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the wire and storage format for calendar dates.
const DayLayout = "2006-01-02"

// Sentinels standing in for an absent bound. Every real day sorts strictly between them.
var (
	negInf = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	posInf = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// Day drops the time of day, keeping the calendar date t has in its own location.
// The result is midnight UTC so that days from different callers compare equal.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayPtr normalizes an optional date. The input is never aliased.
func DayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := Day(*t)
	return &d
}

// ParseDay parses a YYYY-MM-DD calendar date.
func ParseDay(raw string) (time.Time, error) {
	d, err := time.ParseInLocation(DayLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", raw)
	}
	return d, nil
}

// ParseOptionalDay treats an empty string as an absent bound.
func ParseOptionalDay(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := ParseDay(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func FormatDay(t time.Time) string {
	return Day(t).Format(DayLayout)
}

func lowerBound(t *time.Time) time.Time {
	if t == nil {
		return negInf
	}
	return Day(*t)
}

func upperBound(t *time.Time) time.Time {
	if t == nil {
		return posInf
	}
	return Day(*t)
}

// closedOverlap reports whether [aStart, aEnd] and [bStart, bEnd] share at least one day.
func closedOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !(aEnd.Before(bStart) || aStart.After(bEnd))
}
