package model

import (
	"time"

	"github.com/monkeyprint/listings/services/listing-service/internal/availability"
)

type Listing struct {
	ID           string
	AdminID      string
	Title        string
	Description  string
	Category     string
	Type         string
	Area         *float64
	Rooms        int
	Bathrooms    int
	PriceMin     *float64
	PriceMax     *float64
	CityID       string
	Governorate  string
	Address      string
	Images       []string
	PhoneNumbers []string
	StartDate    *time.Time
	EndDate      *time.Time
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Window exposes the unavailability dates to the availability engine.
func (l Listing) Window() availability.Window {
	return availability.NewWindow(l.StartDate, l.EndDate)
}
