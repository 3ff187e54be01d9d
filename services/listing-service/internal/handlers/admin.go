package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/monkeyprint/listings/libs/httpx"
	"github.com/monkeyprint/listings/services/listing-service/internal/availability"
	"github.com/monkeyprint/listings/services/listing-service/internal/model"
	"github.com/monkeyprint/listings/services/listing-service/internal/sweep"
)

type Sweeper interface {
	Sweep(ctx context.Context, ref time.Time) (sweep.Result, error)
}

const dashboardPageSize = 500

type AdminHandler struct {
	store       ListingStore
	sweeper     Sweeper
	logger      *slog.Logger
	sweepOnRead bool
	now         func() time.Time
}

func NewAdminHandler(store ListingStore, sweeper Sweeper, logger *slog.Logger, sweepOnRead bool) *AdminHandler {
	return &AdminHandler{
		store:       store,
		sweeper:     sweeper,
		logger:      logger,
		sweepOnRead: sweepOnRead,
		now:         time.Now,
	}
}

type dashboardStats struct {
	Total      int `json:"total"`
	Available  int `json:"available"`
	Occupied   int `json:"occupied"`
	Indefinite int `json:"indefinite"`
}

type sweepSummary struct {
	ReferenceDate string   `json:"reference_date"`
	ClearedCount  int      `json:"cleared_count"`
	ClearedIDs    []string `json:"cleared_ids"`
	Error         string   `json:"error,omitempty"`
}

type dashboardResponse struct {
	Stats     dashboardStats `json:"stats"`
	Available []listingItem  `json:"available"`
	Occupied  []listingItem  `json:"occupied"`
	Sweep     *sweepSummary  `json:"sweep,omitempty"`
}

// Dashboard splits the caller's listings into available and occupied as of today.
// A sweep runs first when enabled; its failure only shows up in the response.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	ctx := r.Context()
	now := h.now()

	resp := dashboardResponse{
		Available: []listingItem{},
		Occupied:  []listingItem{},
	}
	if h.sweepOnRead {
		summary := h.runSweep(ctx, now)
		resp.Sweep = &summary
	}

	listings, err := h.listAll(ctx, claims.AdminID)
	if err != nil {
		h.logger.Error("dashboard listings failed", "err", err, "admin_id", claims.AdminID)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	for _, l := range listings {
		win := l.Window()
		if win.Malformed() {
			h.logger.Warn("unavailability window starts after it ends",
				"listing_id", l.ID,
				"start_date", availability.FormatDay(*win.Start),
				"end_date", availability.FormatDay(*win.End),
			)
		}
		c := availability.Classify(win, now)
		item := toItem(l, c)
		if c.Occupied() {
			resp.Occupied = append(resp.Occupied, item)
			if c.Indefinite() {
				resp.Stats.Indefinite++
			}
			continue
		}
		resp.Available = append(resp.Available, item)
	}
	resp.Stats.Total = len(listings)
	resp.Stats.Available = len(resp.Available)
	resp.Stats.Occupied = len(resp.Occupied)

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// listAll pages through every listing the admin owns.
func (h *AdminHandler) listAll(ctx context.Context, adminID string) ([]model.Listing, error) {
	var all []model.Listing
	for offset := 0; ; offset += dashboardPageSize {
		page, err := h.store.ListByAdmin(ctx, adminID, dashboardPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < dashboardPageSize {
			return all, nil
		}
	}
}

// Sweep runs an on-demand sweep. ?date=YYYY-MM-DD overrides today.
func (h *AdminHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	ref := h.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := availability.ParseDay(raw)
		if err != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		ref = d
	}

	summary := h.runSweep(r.Context(), ref)
	status := http.StatusOK
	if summary.Error != "" {
		status = http.StatusInternalServerError
	}
	httpx.WriteJSON(w, status, summary)
}

func (h *AdminHandler) runSweep(ctx context.Context, ref time.Time) sweepSummary {
	res, err := h.sweeper.Sweep(ctx, ref)
	summary := sweepSummary{
		ReferenceDate: availability.FormatDay(ref),
		ClearedCount:  res.ClearedCount,
		ClearedIDs:    res.ClearedIDs,
	}
	if summary.ClearedIDs == nil {
		summary.ClearedIDs = []string{}
	}
	if err != nil {
		h.logger.Error("sweep failed", "err", err)
		summary.Error = "sweep failed"
	}
	return summary
}
