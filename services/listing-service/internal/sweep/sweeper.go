package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/monkeyprint/listings/services/listing-service/internal/availability"
	"github.com/monkeyprint/listings/services/listing-service/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Repository is the persistence the sweeper needs.
//
// FindExpiredWindows returns non-deleted listings whose end date is before ref.
// ClearWindow nulls both dates of one listing and reports whether a row actually changed,
// so a listing cleared concurrently by another sweep is not counted twice.
type Repository interface {
	FindExpiredWindows(ctx context.Context, ref time.Time) ([]model.Listing, error)
	ClearWindow(ctx context.Context, id string, ref time.Time) (bool, error)
}

type Result struct {
	ReferenceDate time.Time
	ClearedCount  int
	ClearedIDs    []string
}

type Sweeper struct {
	repo   Repository
	logger *slog.Logger
	tracer trace.Tracer
}

func New(repo Repository, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		repo:   repo,
		logger: logger,
		tracer: otel.Tracer("listing-service/sweep"),
	}
}

// Sweep clears every window that ended before ref's calendar day. A failure on one listing
// does not stop the others; all failures come back joined.
func (s *Sweeper) Sweep(ctx context.Context, ref time.Time) (Result, error) {
	day := availability.Day(ref)
	res := Result{ReferenceDate: day}

	ctx, span := s.tracer.Start(ctx, "sweep.expired_windows",
		trace.WithAttributes(attribute.String("sweep.reference_date", availability.FormatDay(day))))
	defer span.End()

	candidates, err := s.repo.FindExpiredWindows(ctx, day)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "find")
		return res, fmt.Errorf("find expired windows: %w", err)
	}

	var errs []error
	for _, l := range candidates {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if !l.Window().Expired(day) {
			continue
		}
		cleared, err := s.repo.ClearWindow(ctx, l.ID, day)
		if err != nil {
			errs = append(errs, fmt.Errorf("clear window %s: %w", l.ID, err))
			continue
		}
		if cleared {
			res.ClearedIDs = append(res.ClearedIDs, l.ID)
		}
	}
	res.ClearedCount = len(res.ClearedIDs)

	span.SetAttributes(
		attribute.Int("sweep.candidates", len(candidates)),
		attribute.Int("sweep.cleared", res.ClearedCount),
	)
	if res.ClearedCount > 0 {
		s.logger.Info("expired windows cleared",
			"reference_date", availability.FormatDay(day),
			"cleared", res.ClearedCount,
			"listing_ids", res.ClearedIDs,
		)
	}

	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "clear")
		return res, err
	}
	return res, nil
}
