package enums

import "fmt"

// ReservationStatus tracks where a reservation sits in the approval flow.
// Every reservation starts pending; approval moves it to active or stopped.
type ReservationStatus string

const (
	ReservationStatusPending ReservationStatus = "pending"
	ReservationStatusActive  ReservationStatus = "active"
	ReservationStatusStopped ReservationStatus = "stopped"
)

var validReservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusActive,
	ReservationStatusStopped,
}

func (s ReservationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ReservationStatus.
func (s ReservationStatus) IsValid() bool {
	for _, candidate := range validReservationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseReservationStatus converts raw input into a ReservationStatus.
func ParseReservationStatus(value string) (ReservationStatus, error) {
	for _, candidate := range validReservationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reservation status %q", value)
}
