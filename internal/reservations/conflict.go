package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tablenow/tablenow-backend/pkg/db/models"
	pkgerrors "github.com/tablenow/tablenow-backend/pkg/errors"
)

// ConflictWindow is the tolerance searched on either side of a requested time.
const ConflictWindow = 10 * time.Minute

type windowFinder interface {
	FindByStoreAndTimeBetween(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]models.Reservation, error)
}

// ConflictDetector rejects a request that would sit within the conflict
// window of another user's reservation at the same store.
type ConflictDetector struct {
	finder windowFinder
}

func NewConflictDetector(finder windowFinder) *ConflictDetector {
	return &ConflictDetector{finder: finder}
}

// Check loads reservations in [at-window, at+window] and fails with
// ErrSlotConflict if any candidate owned by someone other than userID is at
// exactly at or strictly inside the open window. The caller's own bookings
// never conflict.
func (d *ConflictDetector) Check(ctx context.Context, storeID, userID uuid.UUID, at time.Time) error {
	from := at.Add(-ConflictWindow)
	to := at.Add(ConflictWindow)
	candidates, err := d.finder.FindByStoreAndTimeBetween(ctx, storeID, from, to)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservations in conflict window")
	}
	for _, candidate := range candidates {
		if conflicts(candidate, userID, at) {
			return slotConflict(at)
		}
	}
	return nil
}

func conflicts(candidate models.Reservation, userID uuid.UUID, at time.Time) bool {
	if candidate.UserID == userID {
		return false
	}
	c := candidate.ReservedAt
	if c.Equal(at) {
		return true
	}
	return c.After(at.Add(-ConflictWindow)) && c.Before(at.Add(ConflictWindow))
}
