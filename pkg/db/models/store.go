package models

import (
	"time"

	"github.com/google/uuid"
)

// Store is a restaurant that accepts reservations.
//
// OpenTime and CloseTime are "HH:MM" wall-clock strings. WeekOff is free text
// listing closure days by their abbreviated weekday names, e.g. "Mon,Tue".
type Store struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	Location  string    `gorm:"column:location;not null"`
	ImageURL  *string   `gorm:"column:image_url"`
	Contents  string    `gorm:"column:contents;not null;default:''"`
	Rating    *int      `gorm:"column:rating"`
	OpenTime  string    `gorm:"column:open_time;not null"`
	CloseTime string    `gorm:"column:close_time;not null"`
	WeekOff   string    `gorm:"column:week_off;not null;default:''"`
	Latitude  float64   `gorm:"column:latitude;not null"`
	Longitude float64   `gorm:"column:longitude;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
