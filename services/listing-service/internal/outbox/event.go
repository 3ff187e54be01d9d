package outbox

import (
	"encoding/json"
	"time"

	"github.com/monkeyprint/listings/services/listing-service/internal/availability"
)

// Event is the envelope written to outbox_events. EventType doubles as the Kafka topic.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

const (
	AggregateListing = "listing"

	TypeWindowCleared = "listing.window.cleared.v1"
	TypeWindowUpdated = "listing.window.updated.v1"
	TypeDeleted       = "listing.deleted.v1"
)

type WindowClearedPayload struct {
	ListingID      string    `json:"listing_id"`
	Title          string    `json:"title"`
	ExpiredEndDate string    `json:"expired_end_date"`
	ClearedAt      time.Time `json:"cleared_at"`
}

type WindowUpdatedPayload struct {
	ListingID string  `json:"listing_id"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

type DeletedPayload struct {
	ListingID string    `json:"listing_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

func WindowCleared(listingID, title string, expiredEnd, clearedAt time.Time) (Event, error) {
	return newEvent(listingID, TypeWindowCleared, WindowClearedPayload{
		ListingID:      listingID,
		Title:          title,
		ExpiredEndDate: availability.FormatDay(expiredEnd),
		ClearedAt:      clearedAt.UTC(),
	})
}

func WindowUpdated(listingID string, w availability.Window) (Event, error) {
	return newEvent(listingID, TypeWindowUpdated, WindowUpdatedPayload{
		ListingID: listingID,
		StartDate: formatOptional(w.Start),
		EndDate:   formatOptional(w.End),
	})
}

func Deleted(listingID string, at time.Time) (Event, error) {
	return newEvent(listingID, TypeDeleted, DeletedPayload{ListingID: listingID, DeletedAt: at.UTC()})
}

func newEvent(listingID, eventType string, payload any) (Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: AggregateListing,
		AggregateID:   listingID,
		EventType:     eventType,
		Payload:       body,
	}, nil
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := availability.FormatDay(*t)
	return &s
}
