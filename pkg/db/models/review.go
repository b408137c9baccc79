package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tablenow/tablenow-backend/pkg/enums"
)

// Review is free-text feedback left on a store.
type Review struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	StoreID    uuid.UUID      `gorm:"column:store_id;type:uuid;not null;index"`
	UserID     uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index"`
	AuthorRole enums.UserRole `gorm:"column:author_role;type:text;not null"`
	Contents   string         `gorm:"column:contents;not null"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
