package reservations

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tablenow/tablenow-backend/pkg/db/models"
	"github.com/tablenow/tablenow-backend/pkg/enums"
	pkgerrors "github.com/tablenow/tablenow-backend/pkg/errors"
	"github.com/tablenow/tablenow-backend/pkg/metrics"
	"gorm.io/gorm"
)

type fixture struct {
	svc     Service
	users   *memUsers
	stores  *memStores
	repo    *memReservations
	clock   *fakeClock
	store   *models.Store
	manager uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:   &memUsers{rows: map[uuid.UUID]*models.User{}},
		stores:  &memStores{rows: map[uuid.UUID]*models.Store{}},
		repo:    &memReservations{},
		clock:   &fakeClock{now: tuesday.Add(9 * time.Hour)},
		manager: uuid.New(),
	}
	f.store = f.stores.add(&models.Store{
		ID:        uuid.New(),
		OwnerID:   f.manager,
		Name:      "Hanok Table",
		OpenTime:  "09:00",
		CloseTime: "22:00",
		WeekOff:   "Mon",
	})
	svc, err := NewService(ServiceParams{
		Users:    f.users,
		Stores:   f.stores,
		Repo:     f.repo,
		Weekdays: NewWeekdayNames("en"),
		Metrics:  metrics.NewReservationMetrics(prometheus.NewRegistry()),
		Now:      f.clock.Now,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func (f *fixture) request(userID uuid.UUID, at time.Time, phone string) (*ReservationDTO, error) {
	return f.svc.Request(context.Background(), userID, RequestInput{
		StoreID:    f.store.ID,
		ReservedAt: at,
		PartySize:  2,
		Phone:      phone,
	})
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error without repositories")
	}
	if _, err := NewService(ServiceParams{Users: &memUsers{}, Stores: &memStores{}}); err == nil {
		t.Fatal("expected error without reservation repository")
	}
}

func TestRequestEndToEndScenario(t *testing.T) {
	f := newFixture(t)
	alice := f.users.add(true)
	bob := f.users.add(true)
	sixPM := tuesday.Add(18 * time.Hour)

	first, err := f.request(alice, sixPM, "010-1111-2222")
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	if first.Status != enums.ReservationStatusPending || !first.ReservedAt.Equal(sixPM) {
		t.Fatalf("unexpected reservation %+v", first)
	}

	// Another user at the same slot collides.
	if _, err := f.request(bob, sixPM, "010-3333-4444"); !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("expected slot conflict for other user, got %v", err)
	}
	// 18:05 never reaches conflict detection: the grid check runs first.
	if _, err := f.request(bob, sixPM.Add(5*time.Minute), "010-3333-4444"); !errors.Is(err, ErrInvalidTimeGranularity) {
		t.Fatalf("expected granularity failure for 18:05, got %v", err)
	}
	// A neighbouring slot is free for someone else.
	if _, err := f.request(bob, sixPM.Add(10*time.Minute), "010-3333-4444"); err != nil {
		t.Fatalf("expected 18:10 to be free, got %v", err)
	}

	if _, err := f.request(alice, sixPM, "010-1111-2222"); err != nil {
		t.Fatalf("same user repeat: %v", err)
	}
	if got := f.repo.countFor(alice); got != 2 {
		t.Fatalf("expected two reservations for alice, got %d", got)
	}
	if got := f.repo.count(); got != 3 {
		t.Fatalf("expected three stored reservations, got %d", got)
	}
}

func TestRequestFailuresWriteNothing(t *testing.T) {
	f := newFixture(t)
	user := f.users.add(true)
	inactive := f.users.add(false)
	monday := tuesday.AddDate(0, 0, -1)

	cases := []struct {
		name   string
		user   uuid.UUID
		store  uuid.UUID
		at     time.Time
		target error
	}{
		{"unknown user", uuid.New(), f.store.ID, tuesday.Add(18 * time.Hour), ErrUserNotFound},
		{"inactive user", inactive, f.store.ID, tuesday.Add(18 * time.Hour), ErrUserNotFound},
		{"unknown store", user, uuid.New(), tuesday.Add(18 * time.Hour), ErrStoreNotFound},
		{"off grid", user, f.store.ID, tuesday.Add(18*time.Hour + 15*time.Minute), ErrInvalidTimeGranularity},
		{"before open", user, f.store.ID, tuesday.Add(8*time.Hour + 50*time.Minute), ErrOutsideBusinessHours},
		{"after close", user, f.store.ID, tuesday.Add(22*time.Hour + 10*time.Minute), ErrOutsideBusinessHours},
		{"closed day", user, f.store.ID, monday.Add(18 * time.Hour), ErrStoreClosed},
	}
	for _, tc := range cases {
		_, err := f.svc.Request(context.Background(), tc.user, RequestInput{StoreID: tc.store, ReservedAt: tc.at, PartySize: 2, Phone: "010"})
		if !errors.Is(err, tc.target) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.target, err)
		}
	}
	if f.repo.count() != 0 {
		t.Fatalf("expected zero writes, got %d", f.repo.count())
	}
}

func TestRequestBoundaryHoursAccepted(t *testing.T) {
	f := newFixture(t)
	user := f.users.add(true)
	for _, at := range []time.Time{tuesday.Add(9 * time.Hour), tuesday.Add(22 * time.Hour)} {
		if _, err := f.request(user, at, "010"); err != nil {
			t.Fatalf("%s: expected inclusive bound, got %v", at.Format("15:04"), err)
		}
	}
}

func TestRequestRefusesSubMinuteTimes(t *testing.T) {
	f := newFixture(t)
	alice := f.users.add(true)
	bob := f.users.add(true)

	// 22:00:30 is past closing and must not be rounded back to 22:00.
	if _, err := f.request(alice, tuesday.Add(22*time.Hour+30*time.Second), "010"); !errors.Is(err, ErrInvalidTimeGranularity) {
		t.Fatalf("22:00:30: expected granularity failure, got %v", err)
	}
	// 18:00:59 would otherwise sit 9m01s from a booking at 18:10.
	if _, err := f.request(alice, tuesday.Add(18*time.Hour+59*time.Second), "010"); !errors.Is(err, ErrInvalidTimeGranularity) {
		t.Fatalf("18:00:59: expected granularity failure, got %v", err)
	}
	if _, err := f.request(bob, tuesday.Add(18*time.Hour+10*time.Minute), "011"); err != nil {
		t.Fatalf("18:10: %v", err)
	}
	if got := f.repo.count(); got != 1 {
		t.Fatalf("expected only the 18:10 booking stored, got %d", got)
	}
}

func TestRequestMalformedStoreHoursIsInternal(t *testing.T) {
	f := newFixture(t)
	user := f.users.add(true)
	f.store.OpenTime = "nine"

	_, err := f.request(user, tuesday.Add(18*time.Hour), "010")
	if !errors.Is(err, ErrMalformedStoreHours) || pkgerrors.CodeOf(err) != pkgerrors.CodeInternal {
		t.Fatalf("expected internal malformed hours, got %v", err)
	}
}

func TestRequestValidatesInput(t *testing.T) {
	f := newFixture(t)
	user := f.users.add(true)
	_, err := f.svc.Request(context.Background(), user, RequestInput{StoreID: f.store.ID, ReservedAt: tuesday.Add(18 * time.Hour), PartySize: 0, Phone: "010"})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for party size, got %v", err)
	}
	_, err = f.svc.Request(context.Background(), user, RequestInput{StoreID: f.store.ID, ReservedAt: tuesday.Add(18 * time.Hour), PartySize: 2, Phone: "  "})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for phone, got %v", err)
	}
}

func TestRequestInterpretsConfiguredZone(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	f := newFixture(t)
	svc, err := NewService(ServiceParams{Users: f.users, Stores: f.stores, Repo: f.repo, Location: seoul, Now: f.clock.Now})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	user := f.users.add(true)

	// 09:00 UTC is 18:00 in Seoul, inside business hours.
	dto, err := svc.Request(context.Background(), user, RequestInput{StoreID: f.store.ID, ReservedAt: tuesday.Add(9 * time.Hour), PartySize: 2, Phone: "010"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if dto.ReservedAt.Hour() != 18 || dto.ReservedAt.Location() != seoul {
		t.Fatalf("expected 18:00 KST, got %s", dto.ReservedAt)
	}
	if f.repo.rows[0].ReservedAt.Location() != time.UTC {
		t.Fatalf("expected UTC storage, got %s", f.repo.rows[0].ReservedAt.Location())
	}

	// 14:00 UTC is 23:00 in Seoul, after close.
	_, err = svc.Request(context.Background(), user, RequestInput{StoreID: f.store.ID, ReservedAt: tuesday.Add(14 * time.Hour), PartySize: 2, Phone: "010"})
	if !errors.Is(err, ErrOutsideBusinessHours) {
		t.Fatalf("expected outside hours in KST, got %v", err)
	}
}

func TestRequestConcurrentSameSlotOneWinner(t *testing.T) {
	f := newFixture(t)
	at := tuesday.Add(18 * time.Hour)

	const n = 12
	users := make([]uuid.UUID, n)
	for i := range users {
		users[i] = f.users.add(true)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted, conflicts := 0, 0
	for _, u := range users {
		wg.Add(1)
		go func(u uuid.UUID) {
			defer wg.Done()
			_, err := f.request(u, at, "010")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, ErrSlotConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(u)
	}
	wg.Wait()

	if accepted != 1 || conflicts != n-1 {
		t.Fatalf("expected exactly one winner, got accepted=%d conflicts=%d", accepted, conflicts)
	}
}

func TestRequestStorageFailureIsDependency(t *testing.T) {
	f := newFixture(t)
	user := f.users.add(true)
	boom := errors.New("insert failed")
	f.repo.createErr = boom

	_, err := f.request(user, tuesday.Add(18*time.Hour), "010")
	if !errors.Is(err, boom) || pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error wrapping cause, got %v", err)
	}
}

func TestApproveBoundaries(t *testing.T) {
	cases := []struct {
		offset   time.Duration
		status   enums.ReservationStatus
		approved bool
	}{
		{-11 * time.Minute, enums.ReservationStatusActive, true},
		{-10 * time.Minute, enums.ReservationStatusStopped, false},
		{-9 * time.Minute, enums.ReservationStatusStopped, false},
	}
	for _, tc := range cases {
		f := newFixture(t)
		user := f.users.add(true)
		at := tuesday.Add(18 * time.Hour)
		if _, err := f.request(user, at, "010-5555-6666"); err != nil {
			t.Fatalf("request: %v", err)
		}

		f.clock.set(at.Add(tc.offset))
		res, err := f.svc.Approve(context.Background(), "010-5555-6666")
		if err != nil {
			t.Fatalf("offset %s: approve: %v", tc.offset, err)
		}
		if res.Status != tc.status || res.Approved != tc.approved || res.Phone != "010-5555-6666" {
			t.Fatalf("offset %s: unexpected result %+v", tc.offset, res)
		}
		if f.repo.rows[0].Status != tc.status {
			t.Fatalf("offset %s: stored status %s", tc.offset, f.repo.rows[0].Status)
		}
	}
}

func TestApproveRepeatedCallsAreStable(t *testing.T) {
	f := newFixture(t)
	user := f.users.add(true)
	at := tuesday.Add(18 * time.Hour)
	if _, err := f.request(user, at, "010"); err != nil {
		t.Fatalf("request: %v", err)
	}

	f.clock.set(at.Add(-time.Hour))
	for i := 0; i < 3; i++ {
		res, err := f.svc.Approve(context.Background(), "010")
		if err != nil || res.Status != enums.ReservationStatusActive {
			t.Fatalf("call %d: expected active, got %+v %v", i, res, err)
		}
	}

	f.clock.set(at)
	for i := 0; i < 3; i++ {
		res, err := f.svc.Approve(context.Background(), "010")
		if err != nil || res.Status != enums.ReservationStatusStopped {
			t.Fatalf("call %d: expected stopped, got %+v %v", i, res, err)
		}
	}
	if f.repo.statusWrites != 6 {
		t.Fatalf("expected a write per approval, got %d", f.repo.statusWrites)
	}
}

func TestApproveUnknownPhone(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Approve(context.Background(), "000")
	if !errors.Is(err, ErrReservationNotFound) || pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected reservation not found, got %v", err)
	}
}

func TestGetVisibility(t *testing.T) {
	f := newFixture(t)
	user := f.users.add(true)
	dto, err := f.request(user, tuesday.Add(18*time.Hour), "010")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if _, err := f.svc.Get(context.Background(), user, dto.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), f.manager, dto.ID); err != nil {
		t.Fatalf("store owner get: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), uuid.New(), dto.ID); pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}
	if _, err := f.svc.Get(context.Background(), user, uuid.New()); pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListForStoreDay(t *testing.T) {
	f := newFixture(t)
	user := f.users.add(true)
	wednesday := tuesday.AddDate(0, 0, 1)
	for _, at := range []time.Time{tuesday.Add(19 * time.Hour), tuesday.Add(12 * time.Hour), wednesday.Add(12 * time.Hour)} {
		if _, err := f.request(user, at, "010"); err != nil {
			t.Fatalf("request %s: %v", at, err)
		}
	}

	got, err := f.svc.ListForStoreDay(context.Background(), f.manager, f.store.ID, tuesday.Add(15*time.Hour))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ReservedAt.Hour() != 12 || got[1].ReservedAt.Hour() != 19 {
		t.Fatalf("unexpected day listing %+v", got)
	}

	if _, err := f.svc.ListForStoreDay(context.Background(), user, f.store.ID, tuesday); pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type memUsers struct {
	rows map[uuid.UUID]*models.User
}

func (m *memUsers) add(active bool) uuid.UUID {
	id := uuid.New()
	m.rows[id] = &models.User{ID: id, Role: enums.UserRoleUser, IsActive: active}
	return id
}

func (m *memUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

type memStores struct {
	rows map[uuid.UUID]*models.Store
}

func (m *memStores) add(store *models.Store) *models.Store {
	m.rows[store.ID] = store
	return store
}

func (m *memStores) FindByID(_ context.Context, id uuid.UUID) (*models.Store, error) {
	s, ok := m.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

type memReservations struct {
	mu           sync.Mutex
	rows         []models.Reservation
	createErr    error
	statusWrites int
	seq          int
}

func (m *memReservations) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memReservations) countFor(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.UserID == userID {
			n++
		}
	}
	return n
}

func (m *memReservations) Create(_ context.Context, r *models.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.seq++
	r.ID = uuid.New()
	r.CreatedAt = tuesday.Add(time.Duration(m.seq) * time.Second)
	m.rows = append(m.rows, *r)
	return nil
}

func (m *memReservations) FindByID(_ context.Context, id uuid.UUID) (*models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			cpy := r
			return &cpy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memReservations) FindByStoreAndTimeBetween(_ context.Context, storeID uuid.UUID, from, to time.Time) ([]models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Reservation
	for _, r := range m.rows {
		if r.StoreID == storeID && !r.ReservedAt.Before(from) && !r.ReservedAt.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReservations) FindByPhone(_ context.Context, phone string) (*models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].Phone == phone {
			cpy := m.rows[i]
			return &cpy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memReservations) UpdateStatus(_ context.Context, id uuid.UUID, status enums.ReservationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows[i].Status = status
			m.statusWrites++
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memReservations) ListByStoreBetween(_ context.Context, storeID uuid.UUID, from, to time.Time) ([]models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Reservation
	for _, r := range m.rows {
		if r.StoreID == storeID && !r.ReservedAt.Before(from) && r.ReservedAt.Before(to) {
			out = append(out, r)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].ReservedAt.Before(out[j-1].ReservedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}
