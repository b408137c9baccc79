package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is embedded by every table repository. It owns the connection and the
// single-row write helpers that map "no row touched" to gorm.ErrRecordNotFound
// so services can translate it into a NotFound error.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB binds the connection to ctx. A nil ctx returns the raw connection.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

func (b Base) Conn() *gorm.DB {
	return b.db
}

// UpdateColumnByID writes a single column on the row with the given id. The
// write happens even when the stored value already matches.
func (b Base) UpdateColumnByID(ctx context.Context, model any, id uuid.UUID, column string, value any) error {
	res := b.DB(ctx).Model(model).Where("id = ?", id).Update(column, value)
	return affectedOne(res)
}

// DeleteByID removes the row with the given id.
func (b Base) DeleteByID(ctx context.Context, model any, id uuid.UUID) error {
	res := b.DB(ctx).Where("id = ?", id).Delete(model)
	return affectedOne(res)
}

func affectedOne(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
