package reservations

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
	"github.com/tablenow/tablenow-backend/pkg/logger"
	"github.com/tablenow/tablenow-backend/pkg/metrics"
	"gorm.io/gorm"
)

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type storeLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

type reservationRepository interface {
	windowFinder
	Create(ctx context.Context, reservation *models.Reservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	FindByPhone(ctx context.Context, phone string) (*models.Reservation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus) error
	ListByStoreBetween(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]models.Reservation, error)
}

// Service is the reservation request and approval engine.
type Service interface {
	Request(ctx context.Context, userID uuid.UUID, input RequestInput) (*ReservationDTO, error)
	Approve(ctx context.Context, phone string) (*ApprovalResult, error)
	Get(ctx context.Context, userID, reservationID uuid.UUID) (*ReservationDTO, error)
	ListForStoreDay(ctx context.Context, managerID, storeID uuid.UUID, day time.Time) ([]ReservationDTO, error)
}

// ServiceParams bundles the engine's collaborators. Locker defaults to an
// in-process LocalSlotLocker and Location to UTC.
type ServiceParams struct {
	Users    userLookup
	Stores   storeLookup
	Repo     reservationRepository
	Locker   SlotLocker
	Weekdays WeekdayNames
	Location *time.Location
	Metrics  *metrics.ReservationMetrics
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	users     userLookup
	stores    storeLookup
	repo      reservationRepository
	conflicts *ConflictDetector
	locker    SlotLocker
	weekdays  WeekdayNames
	loc       *time.Location
	metrics   *metrics.ReservationMetrics
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("reservation repository required")
	}
	locker := params.Locker
	if locker == nil {
		locker = NewLocalSlotLocker()
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:     params.Users,
		stores:    params.Stores,
		repo:      params.Repo,
		conflicts: NewConflictDetector(params.Repo),
		locker:    locker,
		weekdays:  params.Weekdays,
		loc:       loc,
		metrics:   params.Metrics,
		logg:      logg,
		now:       now,
	}, nil
}

// Request validates a booking against the store and existing reservations
// and persists it as pending. Checks run grid, hours, holiday, conflict and
// stop at the first failure; nothing is written unless all pass.
func (s *service) Request(ctx context.Context, userID uuid.UUID, input RequestInput) (*ReservationDTO, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDuration("request", time.Since(start)) }()

	ctx = s.logg.WithUserID(ctx, userID.String())
	ctx = s.logg.WithStoreID(ctx, input.StoreID.String())

	reservation, err := s.request(ctx, userID, input)
	if err != nil {
		s.metrics.IncRejected(Reason(err))
		rejectCtx := s.logg.WithFields(ctx, map[string]any{
			"reserved_at": input.ReservedAt.Format(time.RFC3339),
			"reason":      Reason(err),
		})
		if pkgerrors.MetadataFor(pkgerrors.CodeOf(err)).HTTPStatus >= 500 {
			s.logg.Error(rejectCtx, "reservation request failed", err)
		} else {
			s.logg.Warn(rejectCtx, "reservation rejected")
		}
		return nil, err
	}

	s.metrics.IncAccepted()
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"reservation_id": reservation.ID.String(),
		"reserved_at":    reservation.ReservedAt.Format(time.RFC3339),
		"status":         reservation.Status.String(),
	}), "reservation accepted")
	return FromModel(reservation, s.loc), nil
}

func (s *service) request(ctx context.Context, userID uuid.UUID, input RequestInput) (*models.Reservation, error) {
	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	if input.PartySize < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "party size must be at least 1").
			WithDetails(map[string]any{"party_size": input.PartySize})
	}

	if _, err := s.loadUser(ctx, userID); err != nil {
		return nil, err
	}
	store, err := s.loadStore(ctx, input.StoreID)
	if err != nil {
		return nil, err
	}

	local := input.ReservedAt.In(s.loc)
	if err := runChecks(storeChecks(store, local, s.weekdays)...); err != nil {
		return nil, err
	}

	reservation := &models.Reservation{
		UserID:     userID,
		StoreID:    store.ID,
		ReservedAt: local.UTC(),
		PartySize:  input.PartySize,
		Phone:      phone,
		Status:     enums.ReservationStatusPending,
	}
	err = s.locker.WithSlot(ctx, store.ID, reservation.ReservedAt, func(ctx context.Context) error {
		if err := s.conflicts.Check(ctx, store.ID, userID, reservation.ReservedAt); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, reservation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) == nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "slot lock")
		}
		return nil, err
	}
	return reservation, nil
}

// Approve settles the most recent reservation for phone to active or stopped
// depending on whether now is before the approval cutoff. The status is
// written on every call.
func (s *service) Approve(ctx context.Context, phone string) (*ApprovalResult, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDuration("approve", time.Since(start)) }()

	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}

	reservation, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.IncApproval("not_found")
			return nil, reservationNotFound(phone)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation by phone")
	}

	decision := DecideApproval(reservation.ReservedAt, s.now())
	if err := s.repo.UpdateStatus(ctx, reservation.ID, decision.Status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reservationNotFound(phone)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reservation status")
	}

	s.metrics.IncApproval(decision.Status.String())
	s.logg.Info(s.logg.WithFields(s.logg.WithReservationID(ctx, reservation.ID.String()), map[string]any{
		"store_id":    reservation.StoreID.String(),
		"reserved_at": reservation.ReservedAt.Format(time.RFC3339),
		"status":      decision.Status.String(),
		"approved":    decision.Approved,
	}), "reservation approval decided")

	return &ApprovalResult{
		Phone:    reservation.Phone,
		Status:   decision.Status,
		Approved: decision.Approved,
	}, nil
}

// Get returns a reservation to its booker or to the owner of its store.
func (s *service) Get(ctx context.Context, userID, reservationID uuid.UUID) (*ReservationDTO, error) {
	reservation, err := s.repo.FindByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}
	if reservation.UserID != userID {
		store, err := s.loadStore(ctx, reservation.StoreID)
		if err != nil {
			return nil, err
		}
		if store.OwnerID != userID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to view this reservation")
		}
	}
	return FromModel(reservation, s.loc), nil
}

// ListForStoreDay lists a store's reservations on the calendar day of day in
// the engine's zone. Only the store owner may list them.
func (s *service) ListForStoreDay(ctx context.Context, managerID, storeID uuid.UUID, day time.Time) ([]ReservationDTO, error) {
	store, err := s.loadStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store.OwnerID != managerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the store owner can list its reservations")
	}

	local := day.In(s.loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 0, 1)
	rows, err := s.repo.ListByStoreBetween(ctx, storeID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list store reservations")
	}

	out := make([]ReservationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i], s.loc))
	}
	return out, nil
}

func (s *service) loadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return nil, userNotFound()
	}
	return user, nil
}

func (s *service) loadStore(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	store, err := s.stores.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storeNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}
