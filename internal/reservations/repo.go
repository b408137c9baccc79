package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tablenow/tablenow-backend/internal/repo"
	"github.com/tablenow/tablenow-backend/pkg/db/models"
	"github.com/tablenow/tablenow-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository persists reservations. All times are compared in UTC.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a reservation row.
func (r *Repository) Create(ctx context.Context, reservation *models.Reservation) error {
	reservation.ReservedAt = reservation.ReservedAt.UTC()
	return r.DB(ctx).Create(reservation).Error
}

// FindByID loads a single reservation.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.DB(ctx).Where("id = ?", id).First(&reservation).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// FindByStoreAndTimeBetween returns the store's reservations with
// from <= reserved_at <= to.
func (r *Repository) FindByStoreAndTimeBetween(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.DB(ctx).
		Where("store_id = ? AND reserved_at >= ? AND reserved_at <= ?", storeID, from.UTC(), to.UTC()).
		Order("reserved_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByPhone returns the most recently created reservation for phone.
func (r *Repository) FindByPhone(ctx context.Context, phone string) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.DB(ctx).
		Where("phone = ?", phone).
		Order("created_at DESC").
		Order("id DESC").
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// UpdateStatus writes status even when it is unchanged.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus) error {
	return r.UpdateColumnByID(ctx, &models.Reservation{}, id, "status", status)
}

// ListByStoreBetween returns reservations with from <= reserved_at < to,
// earliest first.
func (r *Repository) ListByStoreBetween(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.DB(ctx).
		Where("store_id = ? AND reserved_at >= ? AND reserved_at < ?", storeID, from.UTC(), to.UTC()).
		Order("reserved_at ASC").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
