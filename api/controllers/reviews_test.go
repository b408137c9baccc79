package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tablenow/tablenow-backend/internal/reviews"
	"github.com/tablenow/tablenow-backend/pkg/enums"
	"github.com/tablenow/tablenow-backend/pkg/pagination"
)

type stubReviewService struct {
	review *reviews.ReviewDTO
	page   pagination.Page[reviews.ReviewDTO]
	err    error
	query  *reviews.ListQuery
	store  uuid.UUID
}

func (s *stubReviewService) Create(ctx context.Context, userID uuid.UUID, role enums.UserRole, storeID uuid.UUID, input reviews.WriteReviewInput) (*reviews.ReviewDTO, error) {
	s.store = storeID
	return s.review, s.err
}

func (s *stubReviewService) List(ctx context.Context, query reviews.ListQuery) (pagination.Page[reviews.ReviewDTO], error) {
	s.query = &query
	return s.page, s.err
}

func (s *stubReviewService) Update(ctx context.Context, userID, reviewID uuid.UUID, input reviews.WriteReviewInput) (*reviews.ReviewDTO, error) {
	return s.review, s.err
}

func (s *stubReviewService) Delete(ctx context.Context, userID, reviewID uuid.UUID) error {
	return s.err
}

func reviewRouter(svc reviews.Service) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/v1/reviews", ReviewList(svc, nil))
	r.Get("/api/v1/stores/{storeId}/reviews", ReviewList(svc, nil))
	r.Post("/api/v1/stores/{storeId}/reviews", ReviewCreate(svc, nil))
	r.Patch("/api/v1/reviews/{reviewId}", ReviewUpdate(svc, nil))
	r.Delete("/api/v1/reviews/{reviewId}", ReviewDelete(svc, nil))
	return r
}

func TestReviewListUnderStorePath(t *testing.T) {
	storeID := uuid.New()
	svc := &stubReviewService{page: pagination.Page[reviews.ReviewDTO]{
		Items:      []reviews.ReviewDTO{{ID: uuid.New(), Contents: "great"}},
		NextCursor: "next",
	}}

	rec := httptest.NewRecorder()
	reviewRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stores/"+storeID.String()+"/reviews?limit=5&cursor=abc", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.query.StoreID == nil || *svc.query.StoreID != storeID {
		t.Fatalf("expected store filter %s", storeID)
	}
	if svc.query.Limit != 5 || svc.query.Cursor != "abc" {
		t.Fatalf("unexpected paging %+v", svc.query.Params)
	}

	var got pagination.Page[reviews.ReviewDTO]
	decodeData(t, rec, &got)
	if len(got.Items) != 1 || got.NextCursor != "next" {
		t.Fatalf("unexpected page %+v", got)
	}
}

func TestReviewListQueryFilter(t *testing.T) {
	svc := &stubReviewService{}

	rec := httptest.NewRecorder()
	reviewRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reviews", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.query.StoreID != nil {
		t.Fatalf("expected no store filter")
	}
	if svc.query.Limit != pagination.DefaultLimit {
		t.Fatalf("expected default limit got %d", svc.query.Limit)
	}

	for _, target := range []string{"/api/v1/reviews?store_id=nope", "/api/v1/reviews?limit=0", "/api/v1/reviews?limit=1000"} {
		rec = httptest.NewRecorder()
		reviewRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", target, rec.Code)
		}
	}
}

func TestReviewCreate(t *testing.T) {
	storeID := uuid.New()
	svc := &stubReviewService{review: &reviews.ReviewDTO{ID: uuid.New(), StoreID: storeID}}

	rec := httptest.NewRecorder()
	req := asUser(jsonRequest(http.MethodPost, "/api/v1/stores/"+storeID.String()+"/reviews", `{"contents":"lovely"}`), uuid.New(), enums.UserRoleUser)
	reviewRouter(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.store != storeID {
		t.Fatalf("expected store %s got %s", storeID, svc.store)
	}

	rec = httptest.NewRecorder()
	req = asUser(jsonRequest(http.MethodPost, "/api/v1/stores/"+storeID.String()+"/reviews", `{"contents":""}`), uuid.New(), enums.UserRoleUser)
	reviewRouter(svc).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty contents got %d", rec.Code)
	}
}

func TestReviewDelete(t *testing.T) {
	svc := &stubReviewService{}
	rec := httptest.NewRecorder()
	req := asUser(httptest.NewRequest(http.MethodDelete, "/api/v1/reviews/"+uuid.NewString(), nil), uuid.New(), enums.UserRoleUser)
	reviewRouter(svc).ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rec.Code)
	}
}
