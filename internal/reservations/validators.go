package reservations

import (
	"strings"
	"time"

	"github.com/tablenow/tablenow-backend/pkg/db/models"
	"github.com/tablenow/tablenow-backend/pkg/types"
)

// GridGranularity is the alignment every reservation time must respect.
const GridGranularity = 10 * time.Minute

// ValidateTimeGrid accepts t iff it sits on a whole minute that is a multiple
// of ten. Seconds are refused, never rounded away.
func ValidateTimeGrid(t time.Time) error {
	if t.Second() != 0 || t.Nanosecond() != 0 || t.Minute()%int(GridGranularity/time.Minute) != 0 {
		return invalidTimeGranularity(t)
	}
	return nil
}

// ValidateBusinessHours accepts t iff open <= time-of-day(t) <= close, both
// bounds inclusive. t must already be in the store's wall-clock zone.
func ValidateBusinessHours(openTime, closeTime string, t time.Time) error {
	open, err := types.ParseTimeOfDay(openTime)
	if err != nil {
		return malformedStoreHours("open_time", openTime, err)
	}
	closing, err := types.ParseTimeOfDay(closeTime)
	if err != nil {
		return malformedStoreHours("close_time", closeTime, err)
	}
	requested := types.TimeOfDayOf(t)
	if requested < open || requested > closing {
		return outsideBusinessHours(openTime, closeTime, t)
	}
	return nil
}

// ValidateStoreHoliday rejects t when the abbreviated weekday name of t
// appears anywhere in weekOff. Matching is plain substring containment.
func ValidateStoreHoliday(weekOff string, t time.Time, names WeekdayNames) error {
	day := names.Short(t.Weekday())
	if strings.Contains(weekOff, day) {
		return storeClosed(day, weekOff)
	}
	return nil
}

// check is one link of the request veto chain.
type check func() error

// runChecks evaluates checks in order and returns the first failure.
func runChecks(checks ...check) error {
	for _, c := range checks {
		if err := c(); err != nil {
			return err
		}
	}
	return nil
}

// storeChecks builds the pure field validations for a store and a local time.
func storeChecks(store *models.Store, local time.Time, names WeekdayNames) []check {
	return []check{
		func() error { return ValidateTimeGrid(local) },
		func() error { return ValidateBusinessHours(store.OpenTime, store.CloseTime, local) },
		func() error { return ValidateStoreHoliday(store.WeekOff, local, names) },
	}
}
