package storage

import (
	"strings"
	"time"

	"github.com/monkeyprint/listings/services/listing-service/internal/availability"
)

type dateColumn int

const (
	colStartDate dateColumn = iota
	colEndDate
)

func (c dateColumn) String() string {
	if c == colStartDate {
		return "l.start_date"
	}
	return "l.end_date"
}

func (c dateColumn) of(w availability.Window) *time.Time {
	if c == colStartDate {
		return w.Start
	}
	return w.End
}

// clause is a SQL boolean expression over the window columns that can also be evaluated
// in memory, which lets tests hold the SQL to the same truth table as the engine.
// NULL comparisons evaluate to false; clauses are never negated, so that matches SQL.
type clause interface {
	render(qb *queryBuilder) string
	matches(w availability.Window) bool
}

type isNull struct{ col dateColumn }

func (c isNull) render(*queryBuilder) string { return c.col.String() + " IS NULL" }
func (c isNull) matches(w availability.Window) bool {
	return c.col.of(w) == nil
}

type isNotNull struct{ col dateColumn }

func (c isNotNull) render(*queryBuilder) string { return c.col.String() + " IS NOT NULL" }
func (c isNotNull) matches(w availability.Window) bool {
	return c.col.of(w) != nil
}

// before is col < day.
type before struct {
	col dateColumn
	day time.Time
}

func (c before) render(qb *queryBuilder) string { return c.col.String() + " < " + qb.arg(c.day) }
func (c before) matches(w availability.Window) bool {
	v := c.col.of(w)
	return v != nil && availability.Day(*v).Before(c.day)
}

// after is col > day.
type after struct {
	col dateColumn
	day time.Time
}

func (c after) render(qb *queryBuilder) string { return c.col.String() + " > " + qb.arg(c.day) }
func (c after) matches(w availability.Window) bool {
	v := c.col.of(w)
	return v != nil && availability.Day(*v).After(c.day)
}

type allOf []clause

func (cs allOf) render(qb *queryBuilder) string { return join(qb, cs, " AND ") }
func (cs allOf) matches(w availability.Window) bool {
	for _, c := range cs {
		if !c.matches(w) {
			return false
		}
	}
	return true
}

type anyOf []clause

func (cs anyOf) render(qb *queryBuilder) string { return join(qb, cs, " OR ") }
func (cs anyOf) matches(w availability.Window) bool {
	for _, c := range cs {
		if c.matches(w) {
			return true
		}
	}
	return false
}

func join(qb *queryBuilder, cs []clause, sep string) string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		parts = append(parts, c.render(qb))
	}
	return "(" + strings.Join(parts, sep) + ")"
}

// windowFilter keeps the listings that availability.ExcludedByRange does not exclude.
// It returns nil when the range constrains nothing.
func windowFilter(q availability.QueryRange) clause {
	if q.IsEmpty() {
		return nil
	}

	noWindow := allOf{isNull{colStartDate}, isNull{colEndDate}}
	if q.Inverted() {
		return noWindow
	}

	free := anyOf{noWindow}
	if q.Start != nil {
		free = append(free, allOf{isNotNull{colEndDate}, before{colEndDate, availability.Day(*q.Start)}})
	}
	if q.End != nil {
		free = append(free, allOf{isNotNull{colStartDate}, after{colStartDate, availability.Day(*q.End)}})
	}
	return free
}
