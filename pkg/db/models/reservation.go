package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tablenow/tablenow-backend/pkg/enums"
)

// Reservation is one booking of a store table at a 10 minute aligned time.
// ReservedAt is stored in UTC with minute precision.
type Reservation struct {
	ID         uuid.UUID               `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	StoreID    uuid.UUID               `gorm:"column:store_id;type:uuid;not null;index:idx_reservations_store_time,priority:1"`
	ReservedAt time.Time               `gorm:"column:reserved_at;not null;index:idx_reservations_store_time,priority:2"`
	PartySize  int                     `gorm:"column:party_size;not null"`
	Phone      string                  `gorm:"column:phone;not null;index"`
	Status     enums.ReservationStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
