package availability

import (
	"testing"
	"time"
)

func TestExcludedByRangeScenarios(t *testing.T) {
	w := Window{Start: ptr(date(2024, 6, 10)), End: ptr(date(2024, 6, 20))}

	touching := QueryRange{Start: ptr(date(2024, 6, 20)), End: ptr(date(2024, 6, 25))}
	if !ExcludedByRange(w, touching) {
		t.Fatal("range touching the last occupied day must be excluded")
	}

	after := QueryRange{Start: ptr(date(2024, 6, 21)), End: ptr(date(2024, 6, 25))}
	if ExcludedByRange(w, after) {
		t.Fatal("range starting after the window must not be excluded")
	}
}

func TestExcludedByRangeSingleBound(t *testing.T) {
	cases := []struct {
		name   string
		window Window
		query  QueryRange
		want   bool
	}{
		{"from only, end before", Window{Start: ptr(date(2024, 6, 1)), End: ptr(date(2024, 6, 9))}, QueryRange{Start: ptr(date(2024, 6, 10))}, false},
		{"from only, end on start", Window{Start: ptr(date(2024, 6, 1)), End: ptr(date(2024, 6, 10))}, QueryRange{Start: ptr(date(2024, 6, 10))}, true},
		{"from only, open window", Window{Start: ptr(date(2020, 1, 1))}, QueryRange{Start: ptr(date(2024, 6, 10))}, true},
		{"to only, start after", Window{Start: ptr(date(2024, 6, 11)), End: ptr(date(2024, 6, 30))}, QueryRange{End: ptr(date(2024, 6, 10))}, false},
		{"to only, start on end", Window{Start: ptr(date(2024, 6, 10)), End: ptr(date(2024, 6, 30))}, QueryRange{End: ptr(date(2024, 6, 10))}, true},
		{"to only, end-only window", Window{End: ptr(date(2030, 1, 1))}, QueryRange{End: ptr(date(2024, 6, 10))}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExcludedByRange(tc.window, tc.query); got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

func TestExcludedByRangeInvertedQuery(t *testing.T) {
	q := QueryRange{Start: ptr(date(2024, 7, 1)), End: ptr(date(2024, 6, 1))}
	if !q.Inverted() {
		t.Fatal("expected inverted range")
	}
	if ExcludedByRange(Window{}, q) {
		t.Fatal("listing without a window is never excluded")
	}
	far := Window{Start: ptr(date(2030, 1, 1)), End: ptr(date(2030, 1, 2))}
	if !ExcludedByRange(far, q) {
		t.Fatal("windowed listing must be excluded by an inverted range")
	}
}

func TestExcludedByRangeProperties(t *testing.T) {
	days := dayGrid(date(2024, 2, 26), 7)
	bounds := append([]*time.Time{nil}, ptrs(days)...)

	for _, ws := range bounds {
		for _, we := range bounds {
			w := Window{Start: ws, End: we}

			if ExcludedByRange(w, QueryRange{}) {
				t.Fatalf("unbounded query excluded %v", w)
			}

			for _, qs := range bounds {
				for _, qe := range bounds {
					q := QueryRange{Start: qs, End: qe}
					got := ExcludedByRange(w, q)

					if w.IsEmpty() && got {
						t.Fatalf("empty window excluded by %v", q)
					}
					if w.IsEmpty() || q.IsEmpty() || q.Inverted() {
						continue
					}
					lo, hi := orDay(ws, minDay), orDay(we, maxDay)
					qlo, qhi := orDay(qs, minDay), orDay(qe, maxDay)
					want := !(hi.Before(qlo) || lo.After(qhi))
					if got != want {
						t.Fatalf("window %s..%s query %s..%s: got %v want %v",
							FormatDay(lo), FormatDay(hi), FormatDay(qlo), FormatDay(qhi), got, want)
					}
				}
			}
		}
	}
}

func TestExcludedByRangeMalformedWindowIsSymmetric(t *testing.T) {
	// start 10, end 5: the raw interval test still runs, no special casing.
	w := Window{Start: ptr(date(2024, 6, 10)), End: ptr(date(2024, 6, 5))}
	if ExcludedByRange(w, QueryRange{Start: ptr(date(2024, 6, 6)), End: ptr(date(2024, 6, 9))}) {
		t.Fatal("query strictly between end and start does not overlap")
	}
	if !ExcludedByRange(w, QueryRange{Start: ptr(date(2024, 6, 1)), End: ptr(date(2024, 6, 30))}) {
		t.Fatal("query covering both bounds overlaps")
	}
}

var (
	minDay = date(1, 1, 1)
	maxDay = date(9999, 12, 31)
)

func orDay(t *time.Time, fallback time.Time) time.Time {
	if t == nil {
		return fallback
	}
	return *t
}

func ptrs(days []time.Time) []*time.Time {
	out := make([]*time.Time, len(days))
	for i := range days {
		out[i] = &days[i]
	}
	return out
}
