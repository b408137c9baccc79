package reviews

import (
	"time"

	"github.com/google/uuid"
	"github.com/tablenow/tablenow-backend/pkg/db/models"
	"github.com/tablenow/tablenow-backend/pkg/enums"
	"github.com/tablenow/tablenow-backend/pkg/pagination"
)

// ReviewDTO is the public shape of a review.
type ReviewDTO struct {
	ID         uuid.UUID      `json:"id"`
	StoreID    uuid.UUID      `json:"store_id"`
	UserID     uuid.UUID      `json:"user_id"`
	AuthorRole enums.UserRole `json:"author_role"`
	Contents   string         `json:"contents"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// WriteReviewInput is the body for creating or editing a review.
type WriteReviewInput struct {
	Contents string `json:"contents" validate:"required,max=2000"`
}

// ListQuery selects a page of reviews, optionally for one store.
type ListQuery struct {
	StoreID *uuid.UUID
	pagination.Params
}

func FromModel(m *models.Review) *ReviewDTO {
	if m == nil {
		return nil
	}
	return &ReviewDTO{
		ID:         m.ID,
		StoreID:    m.StoreID,
		UserID:     m.UserID,
		AuthorRole: m.AuthorRole,
		Contents:   m.Contents,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func cursorOf(r ReviewDTO) pagination.Cursor {
	return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
}
