package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/monkeyprint/listings/libs/httpx"
	"github.com/monkeyprint/listings/services/listing-service/internal/availability"
	"github.com/monkeyprint/listings/services/listing-service/internal/model"
	"github.com/monkeyprint/listings/services/listing-service/internal/storage"
)

// ListingStore is the slice of storage.ListingRepository the HTTP layer uses.
type ListingStore interface {
	Create(ctx context.Context, l *model.Listing) (string, error)
	Get(ctx context.Context, id string) (model.Listing, error)
	Search(ctx context.Context, f storage.SearchFilter) ([]model.Listing, int, error)
	ListByAdmin(ctx context.Context, adminID string, limit, offset int) ([]model.Listing, error)
	UpdateWindow(ctx context.Context, id, adminID string, w availability.Window) (model.Listing, error)
	SoftDelete(ctx context.Context, id, adminID string) error
}

const roleSuperAdmin = "super_admin"

type ListingHandler struct {
	store  ListingStore
	logger *slog.Logger
	now    func() time.Time
}

func NewListingHandler(store ListingStore, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{store: store, logger: logger, now: time.Now}
}

type pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalCount int  `json:"total_count"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

type searchResponse struct {
	Listings   []listingItem `json:"listings"`
	Pagination pagination    `json:"pagination"`
}

func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request) {
	f, err := parseSearchFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f = f.Normalize()

	items, total, err := h.store.Search(r.Context(), f)
	if err != nil {
		h.logger.Error("search listings failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	now := h.now()
	resp := searchResponse{Listings: make([]listingItem, 0, len(items))}
	for _, l := range items {
		resp.Listings = append(resp.Listings, toItem(l, availability.Classify(l.Window(), now)))
	}
	totalPages := int(math.Ceil(float64(total) / float64(f.Limit)))
	resp.Pagination = pagination{
		Page:       f.Page,
		Limit:      f.Limit,
		TotalCount: total,
		TotalPages: totalPages,
		HasMore:    f.Page < totalPages,
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := listingID(r)
	if !ok {
		http.Error(w, "listing not found", http.StatusNotFound)
		return
	}
	l, err := h.store.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "listing not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("get listing failed", "err", err, "listing_id", id)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toItem(l, availability.Classify(l.Window(), h.now())))
}

type createListingRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	Type         string   `json:"type"`
	Area         *float64 `json:"area"`
	Rooms        int      `json:"rooms"`
	Bathrooms    int      `json:"bathrooms"`
	PriceMin     *float64 `json:"price_min"`
	PriceMax     *float64 `json:"price_max"`
	CityID       string   `json:"city_id"`
	Governorate  string   `json:"governorate"`
	Address      string   `json:"address"`
	Images       []string `json:"images"`
	PhoneNumbers []string `json:"phone_numbers"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)
	req.Type = strings.TrimSpace(req.Type)
	if req.Title == "" || req.Category == "" || req.Type == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}
	if req.PriceMin != nil && req.PriceMax != nil && *req.PriceMin > *req.PriceMax {
		http.Error(w, "price_min must not exceed price_max", http.StatusBadRequest)
		return
	}

	start, err := availability.ParseOptionalDay(req.StartDate)
	if err != nil {
		http.Error(w, "invalid start_date", http.StatusBadRequest)
		return
	}
	end, err := availability.ParseOptionalDay(req.EndDate)
	if err != nil {
		http.Error(w, "invalid end_date", http.StatusBadRequest)
		return
	}

	l := &model.Listing{
		AdminID:      claims.AdminID,
		Title:        req.Title,
		Description:  strings.TrimSpace(req.Description),
		Category:     req.Category,
		Type:         req.Type,
		Area:         req.Area,
		Rooms:        req.Rooms,
		Bathrooms:    req.Bathrooms,
		PriceMin:     req.PriceMin,
		PriceMax:     req.PriceMax,
		CityID:       strings.TrimSpace(req.CityID),
		Governorate:  strings.TrimSpace(req.Governorate),
		Address:      strings.TrimSpace(req.Address),
		Images:       req.Images,
		PhoneNumbers: req.PhoneNumbers,
		StartDate:    start,
		EndDate:      end,
	}
	h.warnMalformed("", l.Window())

	if _, err := h.store.Create(r.Context(), l); err != nil {
		h.logger.Error("create listing failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toItem(*l, availability.Classify(l.Window(), h.now())))
}

// updateWindowRequest uses explicit nulls to clear a bound.
type updateWindowRequest struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

func (h *ListingHandler) UpdateWindow(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := listingID(r)
	if !ok {
		http.Error(w, "listing not found", http.StatusNotFound)
		return
	}

	var req updateWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	start, err := parseNullableDay(req.StartDate)
	if err != nil {
		http.Error(w, "invalid start_date", http.StatusBadRequest)
		return
	}
	end, err := parseNullableDay(req.EndDate)
	if err != nil {
		http.Error(w, "invalid end_date", http.StatusBadRequest)
		return
	}

	window := availability.NewWindow(start, end)
	h.warnMalformed(id, window)

	l, err := h.store.UpdateWindow(r.Context(), id, ownerScope(claims.Role, claims.AdminID), window)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "listing not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("update window failed", "err", err, "listing_id", id)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toItem(l, availability.Classify(l.Window(), h.now())))
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := listingID(r)
	if !ok {
		http.Error(w, "listing not found", http.StatusNotFound)
		return
	}
	err := h.store.SoftDelete(r.Context(), id, ownerScope(claims.Role, claims.AdminID))
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "listing not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("delete listing failed", "err", err, "listing_id", id)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) warnMalformed(id string, win availability.Window) {
	if win.Malformed() {
		h.logger.Warn("unavailability window starts after it ends",
			"listing_id", id,
			"start_date", availability.FormatDay(*win.Start),
			"end_date", availability.FormatDay(*win.End),
		)
	}
}

// listingID returns the canonical form of the {id} path value.
// Anything that is not a UUID cannot name a listing.
func listingID(r *http.Request) (string, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// ownerScope limits plain admins to their own listings.
func ownerScope(role, adminID string) string {
	if role == roleSuperAdmin {
		return ""
	}
	return adminID
}

func parseNullableDay(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	return availability.ParseOptionalDay(*raw)
}

func parseSearchFilter(r *http.Request) (storage.SearchFilter, error) {
	q := r.URL.Query()
	f := storage.SearchFilter{
		Category:    strings.TrimSpace(q.Get("category")),
		Type:        strings.TrimSpace(q.Get("type")),
		CityID:      strings.TrimSpace(q.Get("city_id")),
		Governorate: strings.TrimSpace(q.Get("governorate")),
	}

	if raw := strings.TrimSpace(q.Get("admin_id")); raw != "" {
		adminID, err := uuid.Parse(raw)
		if err != nil {
			return f, errors.New("invalid admin_id")
		}
		f.AdminID = adminID.String()
	}

	var err error
	if f.Page, err = optionalInt(q.Get("page"), "page"); err != nil {
		return f, err
	}
	if f.Limit, err = optionalInt(q.Get("limit"), "limit"); err != nil {
		return f, err
	}
	if raw := q.Get("rooms"); raw != "" {
		rooms, err := optionalInt(raw, "rooms")
		if err != nil {
			return f, err
		}
		f.Rooms = &rooms
	}
	if f.MinPrice, err = optionalFloat(q.Get("min_price"), "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = optionalFloat(q.Get("max_price"), "max_price"); err != nil {
		return f, err
	}
	if f.MinArea, err = optionalFloat(q.Get("min_area"), "min_area"); err != nil {
		return f, err
	}

	start, err := availability.ParseOptionalDay(q.Get("start_date"))
	if err != nil {
		return f, errors.New("invalid start_date")
	}
	end, err := availability.ParseOptionalDay(q.Get("end_date"))
	if err != nil {
		return f, errors.New("invalid end_date")
	}
	f.Window = availability.NewQueryRange(start, end)
	return f, nil
}

func optionalInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid " + name)
	}
	return v, nil
}

func optionalFloat(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, errors.New("invalid " + name)
	}
	return &v, nil
}
