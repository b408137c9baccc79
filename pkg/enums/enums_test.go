package enums

import "testing"

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole(" Manager ")
	if err != nil {
		t.Fatalf("parse manager: %v", err)
	}
	if role != UserRoleManager {
		t.Fatalf("expected manager, got %s", role)
	}
	if _, err := ParseUserRole("admin"); err == nil {
		t.Fatalf("expected admin to be rejected")
	}
}

func TestReservationStatusValidity(t *testing.T) {
	for _, status := range []ReservationStatus{ReservationStatusPending, ReservationStatusActive, ReservationStatusStopped} {
		if !status.IsValid() {
			t.Fatalf("expected %s to be valid", status)
		}
	}
	if ReservationStatus("ING").IsValid() {
		t.Fatalf("expected unknown status to be invalid")
	}
	if _, err := ParseReservationStatus("cancelled"); err == nil {
		t.Fatalf("expected parse error for unknown status")
	}
}

func TestParseStoreSort(t *testing.T) {
	sort, err := ParseStoreSort("name_desc")
	if err != nil {
		t.Fatalf("parse sort: %v", err)
	}
	if sort != StoreSortNameDesc {
		t.Fatalf("expected NAME_DESC, got %s", sort)
	}
	if _, err := ParseStoreSort("popularity"); err == nil {
		t.Fatalf("expected unknown sort to fail")
	}
}
