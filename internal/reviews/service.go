package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tablenow/tablenow-backend/pkg/db/models"
	"github.com/tablenow/tablenow-backend/pkg/enums"
	pkgerrors "github.com/tablenow/tablenow-backend/pkg/errors"
	"github.com/tablenow/tablenow-backend/pkg/pagination"
	"gorm.io/gorm"
)

type reviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	List(ctx context.Context, storeID *uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Review, error)
	UpdateContents(ctx context.Context, id uuid.UUID, contents string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type storeLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

// Service exposes review operations.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, role enums.UserRole, storeID uuid.UUID, input WriteReviewInput) (*ReviewDTO, error)
	List(ctx context.Context, query ListQuery) (pagination.Page[ReviewDTO], error)
	Update(ctx context.Context, userID, reviewID uuid.UUID, input WriteReviewInput) (*ReviewDTO, error)
	Delete(ctx context.Context, userID, reviewID uuid.UUID) error
}

type service struct {
	repo   reviewRepository
	stores storeLookup
	now    func() time.Time
}

func NewService(repo reviewRepository, stores storeLookup, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, stores: stores, now: now}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, role enums.UserRole, storeID uuid.UUID, input WriteReviewInput) (*ReviewDTO, error) {
	contents := strings.TrimSpace(input.Contents)
	if contents == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contents are required")
	}
	if _, err := s.loadStore(ctx, storeID); err != nil {
		return nil, err
	}

	ts := s.now().UTC().Truncate(time.Microsecond)
	review := &models.Review{
		StoreID:    storeID,
		UserID:     userID,
		AuthorRole: role,
		Contents:   contents,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}
	return FromModel(review), nil
}

func (s *service) List(ctx context.Context, query ListQuery) (pagination.Page[ReviewDTO], error) {
	cursor, err := pagination.ParseCursor(query.Cursor)
	if err != nil {
		return pagination.Page[ReviewDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if query.StoreID != nil {
		if _, err := s.loadStore(ctx, *query.StoreID); err != nil {
			return pagination.Page[ReviewDTO]{}, err
		}
	}

	rows, err := s.repo.List(ctx, query.StoreID, cursor, pagination.LimitWithBuffer(query.Limit))
	if err != nil {
		return pagination.Page[ReviewDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}

	items := make([]ReviewDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return pagination.Trim(items, query.Limit, cursorOf), nil
}

// Update edits a review. Only the author may change its contents.
func (s *service) Update(ctx context.Context, userID, reviewID uuid.UUID, input WriteReviewInput) (*ReviewDTO, error) {
	contents := strings.TrimSpace(input.Contents)
	if contents == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contents are required")
	}
	review, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the author can edit this review")
	}
	if err := s.repo.UpdateContents(ctx, reviewID, contents); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update review")
	}
	review.Contents = contents
	review.UpdatedAt = s.now().UTC()
	return FromModel(review), nil
}

// Delete removes a review. The author and the owner of the reviewed store
// may delete it.
func (s *service) Delete(ctx context.Context, userID, reviewID uuid.UUID) error {
	review, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID {
		store, err := s.loadStore(ctx, review.StoreID)
		if err != nil {
			return err
		}
		if store.OwnerID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to delete this review")
		}
	}
	if err := s.repo.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
	}
	return nil
}

func (s *service) loadReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	return review, nil
}

func (s *service) loadStore(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	store, err := s.stores.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}
