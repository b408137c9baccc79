package reviews

import (
	"context"

	"github.com/google/uuid"
	"github.com/tablenow/tablenow-backend/internal/repo"
	"github.com/tablenow/tablenow-backend/pkg/db/models"
	"github.com/tablenow/tablenow-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes review persistence operations.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new review row.
func (r *Repository) Create(ctx context.Context, review *models.Review) error {
	return r.DB(ctx).Create(review).Error
}

// FindByID loads a single review.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := r.DB(ctx).Where("id = ?", id).First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// List returns up to limit reviews ordered newest first, starting after cursor.
func (r *Repository) List(ctx context.Context, storeID *uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Review, error) {
	query := r.DB(ctx).Model(&models.Review{})
	if storeID != nil {
		query = query.Where("store_id = ?", *storeID)
	}
	if cursor != nil {
		query = query.Where("((created_at < ?) OR (created_at = ? AND id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Review
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateContents replaces the review text. Missing rows yield gorm.ErrRecordNotFound.
func (r *Repository) UpdateContents(ctx context.Context, id uuid.UUID, contents string) error {
	return r.UpdateColumnByID(ctx, &models.Review{}, id, "contents", contents)
}

// Delete removes a review. Missing rows yield gorm.ErrRecordNotFound.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DeleteByID(ctx, &models.Review{}, id)
}
