package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/monkeyprint/listings/services/listing-service/internal/availability"
	"github.com/monkeyprint/listings/services/listing-service/internal/sweep"
	"github.com/segmentio/kafka-go"
)

const TopicSweepRequested = "maintenance.sweep.requested.v1"

type SweepRequest struct {
	// ReferenceDate overrides today when set (YYYY-MM-DD).
	ReferenceDate string `json:"reference_date,omitempty"`
	RequestedBy   string `json:"requested_by,omitempty"`
}

type Sweeper interface {
	Sweep(ctx context.Context, ref time.Time) (sweep.Result, error)
}

// SweepRequestHandler runs a sweep for each maintenance request message.
// An empty message body means "sweep as of today".
func SweepRequestHandler(s Sweeper, logger *slog.Logger, now func() time.Time) Handler {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, msg kafka.Message) error {
		var req SweepRequest
		if len(msg.Value) > 0 {
			if err := validateMessage(sweepRequestedSchema, msg.Value); err != nil {
				return err
			}
			if err := json.Unmarshal(msg.Value, &req); err != nil {
				return fmt.Errorf("decode sweep request: %w", err)
			}
		}

		ref := now()
		if req.ReferenceDate != "" {
			d, err := availability.ParseDay(req.ReferenceDate)
			if err != nil {
				return err
			}
			ref = d
		}

		res, err := s.Sweep(ctx, ref)
		logger.Info("requested sweep finished",
			"requested_by", req.RequestedBy,
			"reference_date", availability.FormatDay(ref),
			"cleared", res.ClearedCount,
		)
		return err
	}
}
