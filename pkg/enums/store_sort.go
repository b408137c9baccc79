package enums

import (
	"fmt"
	"strings"
)

// StoreSort selects the ordering of the public store listing.
type StoreSort string

const (
	StoreSortDistance   StoreSort = "DISTANCE"
	StoreSortRatingHigh StoreSort = "RATING_HIGH"
	StoreSortRatingLow  StoreSort = "RATING_LOW"
	StoreSortNameAsc    StoreSort = "NAME_ASC"
	StoreSortNameDesc   StoreSort = "NAME_DESC"
)

var validStoreSorts = []StoreSort{
	StoreSortDistance,
	StoreSortRatingHigh,
	StoreSortRatingLow,
	StoreSortNameAsc,
	StoreSortNameDesc,
}

func (s StoreSort) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StoreSort.
func (s StoreSort) IsValid() bool {
	for _, candidate := range validStoreSorts {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStoreSort converts query input into a StoreSort. Matching ignores case.
func ParseStoreSort(value string) (StoreSort, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validStoreSorts {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid store sort %q", value)
}
