package storage

import (
	"fmt"
	"strings"

	"github.com/monkeyprint/listings/services/listing-service/internal/availability"
)

type SearchFilter struct {
	Category    string
	Type        string
	MinPrice    *float64
	MaxPrice    *float64
	Rooms       *int
	AdminID     string
	CityID      string
	Governorate string
	MinArea     *float64
	Window      availability.QueryRange
	Page        int
	Limit       int
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps Offset well inside int range.
	MaxPage = 1_000_000
)

// Normalize clamps paging to sane values.
func (f SearchFilter) Normalize() SearchFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	return f
}

func (f SearchFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type queryBuilder struct {
	conditions []string
	args       []any
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{conditions: []string{"l.is_deleted = false"}}
}

// arg binds v and returns its placeholder.
func (qb *queryBuilder) arg(v any) string {
	qb.args = append(qb.args, v)
	return fmt.Sprintf("$%d", len(qb.args))
}

func (qb *queryBuilder) addCondition(format string, column string, v any) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(format, column, qb.arg(v)))
}

func (qb *queryBuilder) addClause(c clause) {
	if c != nil {
		qb.conditions = append(qb.conditions, c.render(qb))
	}
}

func (qb *queryBuilder) where() string {
	return "WHERE " + strings.Join(qb.conditions, " AND ")
}

func applyFilters(f SearchFilter) *queryBuilder {
	qb := newQueryBuilder()

	if f.Category != "" {
		qb.addCondition("%s = %s", "l.category", f.Category)
	}
	if f.Type != "" {
		qb.addCondition("%s = %s", "l.type", f.Type)
	}
	if f.MinPrice != nil {
		qb.addCondition("%s >= %s", "l.price_min", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		qb.addCondition("%s <= %s", "l.price_max", *f.MaxPrice)
	}
	if f.Rooms != nil {
		qb.addCondition("%s = %s", "l.rooms", *f.Rooms)
	}
	if f.AdminID != "" {
		qb.addCondition("%s = %s", "l.admin_id", f.AdminID)
	}
	if f.CityID != "" {
		qb.addCondition("%s = %s", "l.city_id", f.CityID)
	}
	if f.Governorate != "" {
		qb.addCondition("%s = %s", "l.governorate", f.Governorate)
	}
	// Listings with an unknown area are kept.
	if f.MinArea != nil {
		qb.addCondition("(%s IS NULL OR l.area >= %s)", "l.area", *f.MinArea)
	}
	qb.addClause(windowFilter(f.Window))
	return qb
}
