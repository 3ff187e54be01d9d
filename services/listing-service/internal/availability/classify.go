package availability

import "time"

type Status string

const (
	StatusAvailable Status = "available"
	StatusOccupied  Status = "occupied"
)

// Classification is derived on every call and never stored.
type Classification struct {
	Status Status
	// AvailableFrom is the first free day. Set only for occupied windows with a known end.
	AvailableFrom *time.Time
}

func (c Classification) Occupied() bool {
	return c.Status == StatusOccupied
}

// Indefinite reports occupancy with no known release date.
func (c Classification) Indefinite() bool {
	return c.Status == StatusOccupied && c.AvailableFrom == nil
}

// Classify decides whether a listing is free on the reference day.
//
//	start  end     result
//	-      -       available
//	set    -       occupied, release unknown
//	-      set     occupied while ref <= end
//	set    set     occupied while start <= ref <= end
//
// A malformed window (start after end) is occupied with no release date rather than
// being advertised as free.
func Classify(w Window, ref time.Time) Classification {
	day := Day(ref)

	switch {
	case w.Start == nil && w.End == nil:
		return available()
	case w.End == nil:
		return Classification{Status: StatusOccupied}
	case w.Malformed():
		return Classification{Status: StatusOccupied}
	}

	if !closedOverlap(lowerBound(w.Start), upperBound(w.End), day, day) {
		return available()
	}
	from := Day(*w.End).AddDate(0, 0, 1)
	return Classification{Status: StatusOccupied, AvailableFrom: &from}
}

func available() Classification {
	return Classification{Status: StatusAvailable}
}
