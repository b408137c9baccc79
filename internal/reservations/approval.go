package reservations

import (
	"time"

	"github.com/tablenow/tablenow-backend/pkg/enums"
)

// ApprovalCutoff is how long before the reserved time an approval still
// activates a reservation.
const ApprovalCutoff = 10 * time.Minute

// ApprovalDecision is the outcome of approving a reservation at a given instant.
type ApprovalDecision struct {
	Status   enums.ReservationStatus
	Approved bool
}

// DecideApproval activates a reservation when now is strictly before
// reservedAt minus the cutoff and stops it otherwise.
func DecideApproval(reservedAt, now time.Time) ApprovalDecision {
	cutoff := reservedAt.Add(-ApprovalCutoff)
	if now.Before(cutoff) {
		return ApprovalDecision{Status: enums.ReservationStatusActive, Approved: true}
	}
	return ApprovalDecision{Status: enums.ReservationStatusStopped, Approved: false}
}
