package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tablenow/tablenow-backend/internal/auth"
	"github.com/tablenow/tablenow-backend/internal/users"
	"github.com/tablenow/tablenow-backend/pkg/enums"
	pkgerrors "github.com/tablenow/tablenow-backend/pkg/errors"
)

type stubAuthService struct {
	user     *users.UserDTO
	login    *auth.LoginResponse
	err      error
	register *auth.RegisterRequest
}

func (s *stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	s.register = &req
	return s.user, s.err
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.login, s.err
}

func TestAuthRegisterCreatesUser(t *testing.T) {
	userID := uuid.New()
	svc := &stubAuthService{user: &users.UserDTO{ID: userID, Email: "kim@example.com", Role: enums.UserRoleManager}}

	req := jsonRequest(http.MethodPost, "/api/v1/auth/register", `{
		"email": "kim@example.com",
		"password": "Secret123!",
		"name": "Kim",
		"role": "manager"
	}`)
	rec := httptest.NewRecorder()
	AuthRegister(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	var got users.UserDTO
	decodeData(t, rec, &got)
	if got.ID != userID {
		t.Fatalf("expected user %s got %s", userID, got.ID)
	}
	if svc.register == nil || svc.register.Role != "manager" {
		t.Fatalf("expected role forwarded to the service")
	}
}

func TestAuthRegisterRejectsInvalidBody(t *testing.T) {
	svc := &stubAuthService{}
	cases := map[string]string{
		"bad email":     `{"email":"nope","password":"Secret123!","name":"Kim"}`,
		"short pass":    `{"email":"kim@example.com","password":"short","name":"Kim"}`,
		"unknown role":  `{"email":"kim@example.com","password":"Secret123!","name":"Kim","role":"admin"}`,
		"unknown field": `{"email":"kim@example.com","password":"Secret123!","name":"Kim","store":"x"}`,
	}
	for name, body := range cases {
		rec := httptest.NewRecorder()
		AuthRegister(svc, nil).ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/v1/auth/register", body))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", name, rec.Code)
		}
	}
	if svc.register != nil {
		t.Fatalf("service must not run for invalid bodies")
	}
}

func TestAuthLoginReturnsToken(t *testing.T) {
	svc := &stubAuthService{login: &auth.LoginResponse{
		AccessToken: "token",
		ExpiresAt:   time.Now().Add(time.Hour),
		User:        &users.UserDTO{ID: uuid.New()},
	}}

	rec := httptest.NewRecorder()
	AuthLogin(svc, nil).ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"kim@example.com","password":"Secret123!"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var got auth.LoginResponse
	decodeData(t, rec, &got)
	if got.AccessToken != "token" {
		t.Fatalf("unexpected token %q", got.AccessToken)
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}

	rec := httptest.NewRecorder()
	AuthLogin(svc, nil).ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/v1/auth/login", `{"email":"kim@example.com","password":"wrong"}`))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthControllersWithoutService(t *testing.T) {
	rec := httptest.NewRecorder()
	AuthLogin(nil, nil).ServeHTTP(rec, jsonRequest(http.MethodPost, "/api/v1/auth/login", `{}`))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}
