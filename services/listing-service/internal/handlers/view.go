package handlers

import (
	"time"

	"github.com/monkeyprint/listings/services/listing-service/internal/availability"
	"github.com/monkeyprint/listings/services/listing-service/internal/model"
)

type availabilityView struct {
	Status        availability.Status `json:"status"`
	AvailableFrom string              `json:"available_from,omitempty"`
	Indefinite    bool                `json:"indefinite,omitempty"`
}

type listingItem struct {
	ID           string           `json:"id"`
	AdminID      string           `json:"admin_id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Category     string           `json:"category"`
	Type         string           `json:"type"`
	Area         *float64         `json:"area"`
	Rooms        int              `json:"rooms"`
	Bathrooms    int              `json:"bathrooms"`
	PriceMin     *float64         `json:"price_min"`
	PriceMax     *float64         `json:"price_max"`
	CityID       string           `json:"city_id"`
	Governorate  string           `json:"governorate"`
	Address      string           `json:"address"`
	Images       []string         `json:"images"`
	PhoneNumbers []string         `json:"phone_numbers"`
	StartDate    *string          `json:"start_date"`
	EndDate      *string          `json:"end_date"`
	Availability availabilityView `json:"availability"`
	CreatedAt    string           `json:"created_at"`
}

func toItem(l model.Listing, c availability.Classification) listingItem {
	item := listingItem{
		ID:           l.ID,
		AdminID:      l.AdminID,
		Title:        l.Title,
		Description:  l.Description,
		Category:     l.Category,
		Type:         l.Type,
		Area:         l.Area,
		Rooms:        l.Rooms,
		Bathrooms:    l.Bathrooms,
		PriceMin:     l.PriceMin,
		PriceMax:     l.PriceMax,
		CityID:       l.CityID,
		Governorate:  l.Governorate,
		Address:      l.Address,
		Images:       orEmpty(l.Images),
		PhoneNumbers: orEmpty(l.PhoneNumbers),
		StartDate:    formatDate(l.StartDate),
		EndDate:      formatDate(l.EndDate),
		Availability: availabilityView{Status: c.Status, Indefinite: c.Indefinite()},
	}
	if c.AvailableFrom != nil {
		item.Availability.AvailableFrom = availability.FormatDay(*c.AvailableFrom)
	}
	if !l.CreatedAt.IsZero() {
		item.CreatedAt = l.CreatedAt.UTC().Format(time.RFC3339)
	}
	return item
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := availability.FormatDay(*t)
	return &s
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
