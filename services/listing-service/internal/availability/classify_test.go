package availability

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time {
	return &t
}

func TestClassifyDecisionTable(t *testing.T) {
	ref := date(2024, 6, 15)
	cases := []struct {
		name      string
		window    Window
		status    Status
		available *time.Time
	}{
		{"no window", Window{}, StatusAvailable, nil},
		{"start only before ref", Window{Start: ptr(date(2024, 6, 1))}, StatusOccupied, nil},
		{"start only after ref", Window{Start: ptr(date(2024, 7, 1))}, StatusOccupied, nil},
		{"end only in future", Window{End: ptr(date(2024, 6, 20))}, StatusOccupied, ptr(date(2024, 6, 21))},
		{"end only on ref", Window{End: ptr(date(2024, 6, 15))}, StatusOccupied, ptr(date(2024, 6, 16))},
		{"end only in past", Window{End: ptr(date(2024, 6, 14))}, StatusAvailable, nil},
		{"both around ref", Window{Start: ptr(date(2024, 6, 10)), End: ptr(date(2024, 6, 20))}, StatusOccupied, ptr(date(2024, 6, 21))},
		{"both starting on ref", Window{Start: ptr(date(2024, 6, 15)), End: ptr(date(2024, 6, 20))}, StatusOccupied, ptr(date(2024, 6, 21))},
		{"both in future", Window{Start: ptr(date(2024, 6, 16)), End: ptr(date(2024, 6, 20))}, StatusAvailable, nil},
		{"both in past", Window{Start: ptr(date(2024, 6, 1)), End: ptr(date(2024, 6, 14))}, StatusAvailable, nil},
		{"malformed", Window{Start: ptr(date(2024, 6, 20)), End: ptr(date(2024, 6, 10))}, StatusOccupied, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.window, ref)
			if got.Status != tc.status {
				t.Fatalf("status: got %s want %s", got.Status, tc.status)
			}
			switch {
			case tc.available == nil && got.AvailableFrom != nil:
				t.Fatalf("available from: got %s want none", got.AvailableFrom)
			case tc.available != nil && got.AvailableFrom == nil:
				t.Fatalf("available from: got none want %s", tc.available)
			case tc.available != nil && !got.AvailableFrom.Equal(*tc.available):
				t.Fatalf("available from: got %s want %s", got.AvailableFrom, tc.available)
			}
		})
	}
}

func TestClassifyScenarios(t *testing.T) {
	// Window 2024-06-10..2024-06-20 seen from three reference days.
	w := Window{Start: ptr(date(2024, 6, 10)), End: ptr(date(2024, 6, 20))}

	got := Classify(w, date(2024, 6, 15))
	if !got.Occupied() || got.AvailableFrom == nil || FormatDay(*got.AvailableFrom) != "2024-06-21" {
		t.Fatalf("mid window: got %+v", got)
	}

	if got := Classify(w, date(2024, 6, 21)); got.Occupied() {
		t.Fatalf("day after end: got %+v", got)
	}

	startOnly := Window{Start: ptr(date(2024, 6, 10))}
	got = Classify(startOnly, date(2025, 1, 1))
	if !got.Occupied() || !got.Indefinite() {
		t.Fatalf("start only: got %+v", got)
	}
}

func TestClassifyIgnoresTimeOfDay(t *testing.T) {
	w := Window{Start: ptr(date(2024, 6, 10)), End: ptr(date(2024, 6, 20))}
	late := time.Date(2024, 6, 20, 23, 59, 59, 0, time.UTC)
	if got := Classify(w, late); !got.Occupied() {
		t.Fatalf("last minute of end day should be occupied: %+v", got)
	}
	early := time.Date(2024, 6, 10, 0, 0, 1, 0, time.UTC)
	if got := Classify(w, early); !got.Occupied() {
		t.Fatalf("first second of start day should be occupied: %+v", got)
	}

	withClock := Window{End: ptr(time.Date(2024, 6, 20, 18, 30, 0, 0, time.UTC))}
	got := Classify(withClock, date(2024, 6, 20))
	if got.AvailableFrom == nil || !got.AvailableFrom.Equal(date(2024, 6, 21)) {
		t.Fatalf("available from should be a bare date: %+v", got)
	}
}

func TestClassifyEmptyWindowAlwaysAvailable(t *testing.T) {
	for d := date(2023, 12, 25); d.Before(date(2024, 3, 5)); d = d.AddDate(0, 0, 1) {
		if got := Classify(Window{}, d); got.Status != StatusAvailable || got.AvailableFrom != nil {
			t.Fatalf("%s: got %+v", FormatDay(d), got)
		}
	}
}

func TestClassifyWellFormedWindowMatchesInterval(t *testing.T) {
	days := dayGrid(date(2024, 2, 25), 10)
	for _, s := range days {
		for _, e := range days {
			if s.After(e) {
				continue
			}
			w := Window{Start: ptr(s), End: ptr(e)}
			for _, d := range days {
				want := !d.Before(s) && !d.After(e)
				if got := Classify(w, d).Occupied(); got != want {
					t.Fatalf("window %s..%s ref %s: got occupied=%v want %v",
						FormatDay(s), FormatDay(e), FormatDay(d), got, want)
				}
			}
		}
	}
}

func dayGrid(from time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, from.AddDate(0, 0, i))
	}
	return out
}
