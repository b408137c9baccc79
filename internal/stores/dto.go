package stores

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tablenow/tablenow-backend/pkg/db/models"
	"github.com/tablenow/tablenow-backend/pkg/enums"
	"github.com/tablenow/tablenow-backend/pkg/types"
)

// StoreDTO is the public view of a store.
type StoreDTO struct {
	ID         uuid.UUID        `json:"id"`
	OwnerID    uuid.UUID        `json:"owner_id"`
	Name       string           `json:"name"`
	Location   string           `json:"location"`
	ImageURL   *string          `json:"image_url,omitempty"`
	Contents   string           `json:"contents"`
	Rating     *int             `json:"rating,omitempty"`
	OpenTime   string           `json:"open_time"`
	CloseTime  string           `json:"close_time"`
	WeekOff    string           `json:"week_off"`
	Latitude   float64          `json:"latitude"`
	Longitude  float64          `json:"longitude"`
	DistanceKm *decimal.Decimal `json:"distance_km,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// RegisterStoreInput carries a manager's new store. Latitude and Longitude
// may be omitted together when address geocoding is configured.
type RegisterStoreInput struct {
	Name      string   `json:"name" validate:"required,max=100"`
	Location  string   `json:"location" validate:"required,max=255"`
	ImageURL  *string  `json:"image_url" validate:"omitempty,url"`
	Contents  string   `json:"contents" validate:"max=2000"`
	OpenTime  string   `json:"open_time" validate:"required,timeofday"`
	CloseTime string   `json:"close_time" validate:"required,timeofday"`
	WeekOff   string   `json:"week_off" validate:"max=64"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// UpdateStoreInput holds the fields an owner may change. Nil leaves a field untouched.
type UpdateStoreInput struct {
	Name      *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Location  *string  `json:"location" validate:"omitempty,min=1,max=255"`
	ImageURL  *string  `json:"image_url" validate:"omitempty,url"`
	Contents  *string  `json:"contents" validate:"omitempty,max=2000"`
	Rating    *int     `json:"rating" validate:"omitempty,min=0,max=5"`
	OpenTime  *string  `json:"open_time" validate:"omitempty,timeofday"`
	CloseTime *string  `json:"close_time" validate:"omitempty,timeofday"`
	WeekOff   *string  `json:"week_off" validate:"omitempty,max=64"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
}

// ListQuery filters and orders the store listing. Origin is required for
// distance ordering.
type ListQuery struct {
	Keyword string
	Sort    enums.StoreSort
	Origin  *types.GeoPoint
}

// FromModel maps the persisted store into a DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	return &StoreDTO{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Name:      m.Name,
		Location:  m.Location,
		ImageURL:  m.ImageURL,
		Contents:  m.Contents,
		Rating:    m.Rating,
		OpenTime:  m.OpenTime,
		CloseTime: m.CloseTime,
		WeekOff:   m.WeekOff,
		Latitude:  m.Latitude,
		Longitude: m.Longitude,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (m *StoreDTO) point() types.GeoPoint {
	return types.GeoPoint{Lat: m.Latitude, Lng: m.Longitude}
}

func (m *StoreDTO) ratingOrZero() int {
	if m.Rating == nil {
		return 0
	}
	return *m.Rating
}
