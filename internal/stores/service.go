package stores

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tablenow/tablenow-backend/pkg/db"
	"github.com/tablenow/tablenow-backend/pkg/db/models"
	"github.com/tablenow/tablenow-backend/pkg/enums"
	pkgerrors "github.com/tablenow/tablenow-backend/pkg/errors"
	"github.com/tablenow/tablenow-backend/pkg/maps"
	"github.com/tablenow/tablenow-backend/pkg/types"
	"gorm.io/gorm"
)

// distancePlaces is the number of decimals kept on listing distances.
const distancePlaces = 2

type storeRepository interface {
	Create(ctx context.Context, store *models.Store) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	FindByName(ctx context.Context, name string) (*models.Store, error)
	List(ctx context.Context, keyword string) ([]models.Store, error)
	Update(ctx context.Context, store *models.Store) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type geocoder interface {
	Geocode(ctx context.Context, address string) (*maps.Place, error)
}

// Service exposes store operations.
type Service interface {
	Register(ctx context.Context, ownerID uuid.UUID, role enums.UserRole, input RegisterStoreInput) (*StoreDTO, error)
	List(ctx context.Context, query ListQuery) ([]StoreDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error)
	Update(ctx context.Context, userID, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error)
	Delete(ctx context.Context, userID, storeID uuid.UUID) error
}

type service struct {
	repo     storeRepository
	geocoder geocoder
}

// NewService builds a store service. geo may be nil, in which case stores
// must be registered with explicit coordinates.
func NewService(repo storeRepository, geo geocoder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{repo: repo, geocoder: geo}, nil
}

func (s *service) Register(ctx context.Context, ownerID uuid.UUID, role enums.UserRole, input RegisterStoreInput) (*StoreDTO, error) {
	if role != enums.UserRoleManager {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only managers can register stores")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
	}
	if err := validateHours(input.OpenTime, input.CloseTime); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, duplicateNameError(name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check store name")
	}

	point, err := s.resolvePoint(ctx, input.Location, input.Latitude, input.Longitude)
	if err != nil {
		return nil, err
	}

	store := &models.Store{
		OwnerID:   ownerID,
		Name:      name,
		Location:  strings.TrimSpace(input.Location),
		ImageURL:  input.ImageURL,
		Contents:  input.Contents,
		OpenTime:  strings.TrimSpace(input.OpenTime),
		CloseTime: strings.TrimSpace(input.CloseTime),
		WeekOff:   strings.TrimSpace(input.WeekOff),
		Latitude:  point.Lat,
		Longitude: point.Lng,
	}
	if err := s.repo.Create(ctx, store); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, duplicateNameError(name)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
	}
	return FromModel(store), nil
}

func (s *service) resolvePoint(ctx context.Context, location string, lat, lng *float64) (types.GeoPoint, error) {
	switch {
	case lat != nil && lng != nil:
		point := types.GeoPoint{Lat: *lat, Lng: *lng}
		if err := point.Validate(); err != nil {
			return types.GeoPoint{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coordinates")
		}
		return point, nil
	case lat != nil || lng != nil:
		return types.GeoPoint{}, pkgerrors.New(pkgerrors.CodeValidation, "latitude and longitude must be provided together")
	case s.geocoder == nil:
		return types.GeoPoint{}, pkgerrors.New(pkgerrors.CodeValidation, "latitude and longitude are required")
	}

	place, err := s.geocoder.Geocode(ctx, location)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return types.GeoPoint{}, err
		}
		return types.GeoPoint{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "geocode store location")
	}
	return place.Point, nil
}

func (s *service) List(ctx context.Context, query ListQuery) ([]StoreDTO, error) {
	sortBy := query.Sort
	if sortBy == "" {
		sortBy = enums.StoreSortNameAsc
	}
	if !sortBy.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid sort type").
			WithDetails(map[string]any{"sort": string(sortBy)})
	}
	if sortBy == enums.StoreSortDistance {
		if query.Origin == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "latitude and longitude are required for distance sort")
		}
		if err := query.Origin.Validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid origin")
		}
	}

	rows, err := s.repo.List(ctx, query.Keyword)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}

	out := make([]StoreDTO, 0, len(rows))
	distances := make([]float64, 0, len(rows))
	for i := range rows {
		dto := FromModel(&rows[i])
		if query.Origin != nil {
			km := query.Origin.DistanceKm(dto.point())
			rounded := decimal.NewFromFloat(km).Round(distancePlaces)
			dto.DistanceKm = &rounded
			distances = append(distances, km)
		}
		out = append(out, *dto)
	}

	sortStores(out, distances, sortBy)
	return out, nil
}

// sortStores orders in place. Ties fall back to name so the output is stable
// across requests.
func sortStores(items []StoreDTO, distances []float64, by enums.StoreSort) {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	less := func(a, b int) bool {
		x, y := items[a], items[b]
		switch by {
		case enums.StoreSortDistance:
			if distances[a] != distances[b] {
				return distances[a] < distances[b]
			}
		case enums.StoreSortRatingHigh:
			if x.ratingOrZero() != y.ratingOrZero() {
				return x.ratingOrZero() > y.ratingOrZero()
			}
		case enums.StoreSortRatingLow:
			if x.ratingOrZero() != y.ratingOrZero() {
				return x.ratingOrZero() < y.ratingOrZero()
			}
		case enums.StoreSortNameDesc:
			return x.Name > y.Name
		}
		return x.Name < y.Name
	}
	sort.SliceStable(idx, func(i, j int) bool { return less(idx[i], idx[j]) })

	sorted := make([]StoreDTO, len(items))
	for i, k := range idx {
		sorted[i] = items[k]
	}
	copy(items, sorted)
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error) {
	store, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(store), nil
}

func (s *service) Update(ctx context.Context, userID, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error) {
	store, err := s.loadOwned(ctx, userID, storeID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
		}
		if name != store.Name {
			if _, err := s.repo.FindByName(ctx, name); err == nil {
				return nil, duplicateNameError(name)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check store name")
			}
		}
		store.Name = name
	}
	if input.Location != nil {
		store.Location = strings.TrimSpace(*input.Location)
	}
	if input.ImageURL != nil {
		store.ImageURL = cloneStringPtr(input.ImageURL)
	}
	if input.Contents != nil {
		store.Contents = *input.Contents
	}
	if input.Rating != nil {
		rating := *input.Rating
		store.Rating = &rating
	}
	if input.WeekOff != nil {
		store.WeekOff = strings.TrimSpace(*input.WeekOff)
	}

	openTime, closeTime := store.OpenTime, store.CloseTime
	if input.OpenTime != nil {
		openTime = strings.TrimSpace(*input.OpenTime)
	}
	if input.CloseTime != nil {
		closeTime = strings.TrimSpace(*input.CloseTime)
	}
	if input.OpenTime != nil || input.CloseTime != nil {
		if err := validateHours(openTime, closeTime); err != nil {
			return nil, err
		}
		store.OpenTime, store.CloseTime = openTime, closeTime
	}

	if input.Latitude != nil || input.Longitude != nil {
		lat, lng := store.Latitude, store.Longitude
		if input.Latitude != nil {
			lat = *input.Latitude
		}
		if input.Longitude != nil {
			lng = *input.Longitude
		}
		point := types.GeoPoint{Lat: lat, Lng: lng}
		if err := point.Validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coordinates")
		}
		store.Latitude, store.Longitude = point.Lat, point.Lng
	}

	if err := s.repo.Update(ctx, store); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, duplicateNameError(store.Name)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
	}
	return FromModel(store), nil
}

func (s *service) Delete(ctx context.Context, userID, storeID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, userID, storeID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete store")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}

func (s *service) loadOwned(ctx context.Context, userID, storeID uuid.UUID) (*models.Store, error) {
	store, err := s.load(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store.OwnerID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the store owner can modify this store")
	}
	return store, nil
}

// validateHours requires both "HH:MM" values to parse and open to not be
// after close. Overnight hours are not supported.
func validateHours(openRaw, closeRaw string) error {
	open, err := types.ParseTimeOfDay(openRaw)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid open time").
			WithDetails(map[string]any{"open_time": openRaw})
	}
	closing, err := types.ParseTimeOfDay(closeRaw)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid close time").
			WithDetails(map[string]any{"close_time": closeRaw})
	}
	if open > closing {
		return pkgerrors.New(pkgerrors.CodeValidation, "open time must not be after close time").
			WithDetails(map[string]any{"open_time": openRaw, "close_time": closeRaw})
	}
	return nil
}

func duplicateNameError(name string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "store name already registered").
		WithDetails(map[string]any{"name": name})
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}
