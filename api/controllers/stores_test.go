package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tablenow/tablenow-backend/internal/stores"
	"github.com/tablenow/tablenow-backend/pkg/enums"
	pkgerrors "github.com/tablenow/tablenow-backend/pkg/errors"
)

type stubStoreService struct {
	dto   *stores.StoreDTO
	list  []stores.StoreDTO
	err   error
	query *stores.ListQuery
	role  enums.UserRole
	calls int
}

func (s *stubStoreService) Register(ctx context.Context, ownerID uuid.UUID, role enums.UserRole, input stores.RegisterStoreInput) (*stores.StoreDTO, error) {
	s.calls++
	s.role = role
	return s.dto, s.err
}

func (s *stubStoreService) List(ctx context.Context, query stores.ListQuery) ([]stores.StoreDTO, error) {
	s.calls++
	s.query = &query
	return s.list, s.err
}

func (s *stubStoreService) GetByID(ctx context.Context, id uuid.UUID) (*stores.StoreDTO, error) {
	s.calls++
	return s.dto, s.err
}

func (s *stubStoreService) Update(ctx context.Context, userID, storeID uuid.UUID, input stores.UpdateStoreInput) (*stores.StoreDTO, error) {
	s.calls++
	return s.dto, s.err
}

func (s *stubStoreService) Delete(ctx context.Context, userID, storeID uuid.UUID) error {
	s.calls++
	return s.err
}

func TestStoreListParsesQuery(t *testing.T) {
	svc := &stubStoreService{list: []stores.StoreDTO{{Name: "Noodle Bar"}}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stores?keyword=%20noodle%20&sort=distance&lat=37.5&lng=127.0", nil)
	StoreList(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.query == nil {
		t.Fatal("service not called")
	}
	if svc.query.Keyword != "noodle" {
		t.Fatalf("expected trimmed keyword got %q", svc.query.Keyword)
	}
	if svc.query.Sort != enums.StoreSortDistance {
		t.Fatalf("expected DISTANCE got %s", svc.query.Sort)
	}
	if svc.query.Origin == nil || svc.query.Origin.Lat != 37.5 || svc.query.Origin.Lng != 127.0 {
		t.Fatalf("unexpected origin %+v", svc.query.Origin)
	}

	var got []stores.StoreDTO
	decodeData(t, rec, &got)
	if len(got) != 1 || got[0].Name != "Noodle Bar" {
		t.Fatalf("unexpected listing %+v", got)
	}
}

func TestStoreListRejectsBadQuery(t *testing.T) {
	cases := map[string]string{
		"unknown sort":  "/api/v1/stores?sort=popular",
		"lat only":      "/api/v1/stores?lat=37.5",
		"non numeric":   "/api/v1/stores?lat=abc&lng=1",
		"out of bounds": "/api/v1/stores?lat=95&lng=1",
	}
	for name, target := range cases {
		svc := &stubStoreService{}
		rec := httptest.NewRecorder()
		StoreList(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", name, rec.Code)
		}
		if svc.calls != 0 {
			t.Fatalf("%s: service should not be called", name)
		}
	}
}

func TestStoreDetail(t *testing.T) {
	storeID := uuid.New()
	svc := &stubStoreService{dto: &stores.StoreDTO{ID: storeID}}
	r := chi.NewRouter()
	r.Get("/api/v1/stores/{storeId}", StoreDetail(svc, nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stores/"+storeID.String(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var got stores.StoreDTO
	decodeData(t, rec, &got)
	if got.ID != storeID {
		t.Fatalf("expected %s got %s", storeID, got.ID)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stores/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id got %d", rec.Code)
	}
}

func TestStoreRegisterForwardsRole(t *testing.T) {
	svc := &stubStoreService{dto: &stores.StoreDTO{ID: uuid.New(), Name: "Noodle Bar"}}
	body := `{
		"name": "Noodle Bar",
		"location": "1 Main St",
		"open_time": "09:00",
		"close_time": "21:00",
		"week_off": "Sun",
		"latitude": 37.5,
		"longitude": 127.0
	}`

	rec := httptest.NewRecorder()
	req := asUser(jsonRequest(http.MethodPost, "/api/v1/manager/stores", body), uuid.New(), enums.UserRoleManager)
	StoreRegister(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.role != enums.UserRoleManager {
		t.Fatalf("expected manager role forwarded got %q", svc.role)
	}
}

func TestStoreRegisterValidation(t *testing.T) {
	svc := &stubStoreService{}
	rec := httptest.NewRecorder()
	req := asUser(jsonRequest(http.MethodPost, "/api/v1/manager/stores", `{"name":"","latitude":120}`), uuid.New(), enums.UserRoleManager)
	StoreRegister(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if got := errorCode(t, rec); got != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %s", got)
	}
}

func TestStoreDeleteForbidden(t *testing.T) {
	svc := &stubStoreService{err: pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can modify this store")}
	r := chi.NewRouter()
	r.Delete("/api/v1/manager/stores/{storeId}", StoreDelete(svc, nil))

	rec := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodDelete, "/api/v1/manager/stores/"+uuid.NewString(), nil), uuid.New(), enums.UserRoleManager)
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}
