package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/quoteflow/quoteflow-backend/api/middleware"
	"github.com/quoteflow/quoteflow-backend/internal/auth"
	"github.com/quoteflow/quoteflow-backend/internal/users"
	pkgerrors "github.com/quoteflow/quoteflow-backend/pkg/errors"
)

type stubAuthService struct {
	profile    *users.UserDTO
	meErr      error
	lastUserID uuid.UUID
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

func (s *stubAuthService) Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	s.lastUserID = userID
	if s.meErr != nil {
		return nil, s.meErr
	}
	return s.profile, nil
}

func TestAuthMeReturnsProfile(t *testing.T) {
	userID := uuid.New()
	svc := &stubAuthService{profile: &users.UserDTO{ID: userID, Email: "owner@example.com"}}
	handler := AuthMe(svc, controllerTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastUserID != userID {
		t.Fatalf("expected service to receive %s, got %s", userID, svc.lastUserID)
	}

	var envelope struct {
		Data users.UserDTO `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Data.Email != "owner@example.com" {
		t.Fatalf("unexpected profile payload: %+v", envelope.Data)
	}
}

func TestAuthMeWithoutUserContext(t *testing.T) {
	handler := AuthMe(&stubAuthService{}, controllerTestLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
