package reservations

import (
	"time"

	"github.com/google/uuid"
	"github.com/tablenow/tablenow-backend/pkg/db/models"
	"github.com/tablenow/tablenow-backend/pkg/enums"
)

// ReservationDTO is the public shape of a reservation. ReservedAt is
// rendered in the engine's configured zone.
type ReservationDTO struct {
	ID         uuid.UUID               `json:"id"`
	UserID     uuid.UUID               `json:"user_id"`
	StoreID    uuid.UUID               `json:"store_id"`
	ReservedAt time.Time               `json:"reserved_at"`
	PartySize  int                     `json:"party_size"`
	Phone      string                  `json:"phone"`
	Status     enums.ReservationStatus `json:"status"`
	CreatedAt  time.Time               `json:"created_at"`
	UpdatedAt  time.Time               `json:"updated_at"`
}

// RequestInput is a customer's booking request. The requesting user comes
// from the authenticated session, never from the body.
type RequestInput struct {
	StoreID    uuid.UUID `json:"store_id" validate:"required"`
	ReservedAt time.Time `json:"reserved_at" validate:"required"`
	PartySize  int       `json:"party_size" validate:"required,min=1,max=100"`
	Phone      string    `json:"phone" validate:"required,max=32"`
}

// ApproveInput identifies the reservation to approve by its contact phone.
type ApproveInput struct {
	Phone string `json:"phone" validate:"required,max=32"`
}

// ApprovalResult reports the status an approval settled on.
type ApprovalResult struct {
	Phone    string                  `json:"phone"`
	Status   enums.ReservationStatus `json:"status"`
	Approved bool                    `json:"approved"`
}

func FromModel(m *models.Reservation, loc *time.Location) *ReservationDTO {
	if m == nil {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReservationDTO{
		ID:         m.ID,
		UserID:     m.UserID,
		StoreID:    m.StoreID,
		ReservedAt: m.ReservedAt.In(loc),
		PartySize:  m.PartySize,
		Phone:      m.Phone,
		Status:     m.Status,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
