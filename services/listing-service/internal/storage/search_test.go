package storage

import (
	"math"
	"strings"
	"testing"

	"github.com/monkeyprint/listings/services/listing-service/internal/availability"
)

func TestApplyFilters(t *testing.T) {
	minPrice, minArea := 100.0, 50.0
	rooms := 3
	qb := applyFilters(SearchFilter{
		Category:    "apartment",
		MinPrice:    &minPrice,
		Rooms:       &rooms,
		Governorate: "tunis",
		MinArea:     &minArea,
		Window:      availability.QueryRange{Start: day(2024, 6, 20)},
	})

	where := qb.where()
	for _, want := range []string{
		"l.is_deleted = false",
		"l.category = $1",
		"l.price_min >= $2",
		"l.rooms = $3",
		"l.governorate = $4",
		"(l.area IS NULL OR l.area >= $5)",
		"l.end_date < $6",
	} {
		if !strings.Contains(where, want) {
			t.Fatalf("where clause missing %q:\n%s", want, where)
		}
	}
	if len(qb.args) != 6 {
		t.Fatalf("args: got %d want 6", len(qb.args))
	}
	if qb.args[0] != "apartment" || qb.args[2] != 3 {
		t.Fatalf("args: got %v", qb.args)
	}
}

func TestApplyFiltersDefaultsOnlyDeleted(t *testing.T) {
	qb := applyFilters(SearchFilter{})
	if got := qb.where(); got != "WHERE l.is_deleted = false" {
		t.Fatalf("got %q", got)
	}
	if len(qb.args) != 0 {
		t.Fatalf("args: %v", qb.args)
	}
}

func TestSearchFilterNormalize(t *testing.T) {
	f := SearchFilter{Page: 0, Limit: 1000}.Normalize()
	if f.Page != 1 || f.Limit != MaxPageSize {
		t.Fatalf("got page=%d limit=%d", f.Page, f.Limit)
	}
	f = SearchFilter{Page: 3}.Normalize()
	if f.Limit != DefaultPageSize || f.Offset() != 2*DefaultPageSize {
		t.Fatalf("got limit=%d offset=%d", f.Limit, f.Offset())
	}
	f = SearchFilter{Page: math.MaxInt, Limit: MaxPageSize}.Normalize()
	if f.Page != MaxPage || f.Offset() != (MaxPage-1)*MaxPageSize {
		t.Fatalf("huge page: got page=%d offset=%d", f.Page, f.Offset())
	}
}
