package reservations

import (
	"errors"
	"time"

	pkgerrors "github.com/tablenow/tablenow-backend/pkg/errors"
)

// Sentinels for every way a reservation request or approval can be refused.
// Returned errors wrap them in a *pkgerrors.Error, so both errors.Is and
// pkgerrors.As work on the same value.
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrStoreNotFound          = errors.New("store not found")
	ErrInvalidTimeGranularity = errors.New("invalid time granularity")
	ErrMalformedStoreHours    = errors.New("malformed store hours")
	ErrOutsideBusinessHours   = errors.New("outside business hours")
	ErrStoreClosed            = errors.New("store closed")
	ErrSlotConflict           = errors.New("slot conflict")
	ErrReservationNotFound    = errors.New("reservation not found")
)

// Reason returns a short metric label for a rejection. Domain refusals carry
// their own reason; anything else is bad input or a failing dependency.
func Reason(err error) string {
	if reason := pkgerrors.ReasonOf(err); reason != "" {
		return reason
	}
	if pkgerrors.CodeOf(err) == pkgerrors.CodeValidation {
		return "invalid_input"
	}
	return "dependency"
}

func userNotFound() error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrUserNotFound, "user not found").
		WithReason("user_not_found")
}

func storeNotFound() error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrStoreNotFound, "store not found").
		WithReason("store_not_found")
}

func reservationNotFound(phone string) error {
	return pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrReservationNotFound, "reservation not found").
		WithReason("reservation_not_found").
		WithDetails(map[string]any{"phone": phone})
}

func invalidTimeGranularity(at time.Time) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrInvalidTimeGranularity, "reservation time must be on a 10 minute boundary").
		WithReason("invalid_time_granularity").
		WithDetails(map[string]any{
			"reserved_at": at.Format(time.RFC3339),
			"granularity": GridGranularity.String(),
		})
}

func malformedStoreHours(field, value string, cause error) error {
	return pkgerrors.Wrap(pkgerrors.CodeInternal, errors.Join(ErrMalformedStoreHours, cause), "store hours are malformed").
		WithReason("malformed_store_hours").
		WithDetails(map[string]any{field: value})
}

func outsideBusinessHours(open, closing string, at time.Time) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrOutsideBusinessHours, "reservation time is outside business hours").
		WithReason("outside_business_hours").
		WithDetails(map[string]any{
			"open_time":   open,
			"close_time":  closing,
			"reserved_at": at.Format(time.RFC3339),
		})
}

func storeClosed(day, weekOff string) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrStoreClosed, "store is closed on the requested day").
		WithReason("store_closed").
		WithDetails(map[string]any{
			"day":      day,
			"week_off": weekOff,
		})
}

func slotConflict(at time.Time) error {
	return pkgerrors.Wrap(pkgerrors.CodeConflict, ErrSlotConflict, "requested slot is already reserved").
		WithReason("slot_conflict").
		WithDetails(map[string]any{
			"reserved_at": at.Format(time.RFC3339),
			"window":      ConflictWindow.String(),
		})
}
