package controllers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/quoteflow/quoteflow-backend/pkg/auth"
	"github.com/quoteflow/quoteflow-backend/pkg/auth/session"
	"github.com/quoteflow/quoteflow-backend/pkg/config"
)

type stubRotator struct {
	rotateErr    error
	newAccessID  string
	newRefresh   string
	revokedID    string
	lastProvided string
}

func (s *stubRotator) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	s.lastProvided = provided
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	return s.newAccessID, s.newRefresh, nil
}

func (s *stubRotator) Revoke(ctx context.Context, accessID string) error {
	s.revokedID = accessID
	return nil
}

func sessionTestConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "session-test-secret", Issuer: "quoteflow-test", ExpirationMinutes: 15}
}

func mintSessionToken(t *testing.T, cfg config.JWTConfig, accessID string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "owner@example.com",
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthRefreshRotatesSession(t *testing.T) {
	cfg := sessionTestConfig()
	rotator := &stubRotator{newAccessID: "next-access", newRefresh: "next-refresh"}
	handler := AuthRefresh(rotator, cfg, controllerTestLogger())

	body := strings.NewReader(`{"refresh_token":"current-refresh"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", body)
	req.Header.Set("Authorization", "Bearer "+mintSessionToken(t, cfg, "old-access"))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rotator.lastProvided != "current-refresh" {
		t.Fatalf("expected presented refresh token to reach the rotator, got %q", rotator.lastProvided)
	}
}

func TestAuthRefreshWrappedInvalidTokenIsUnauthorized(t *testing.T) {
	cfg := sessionTestConfig()
	rotator := &stubRotator{
		rotateErr: fmt.Errorf("lookup session: %w", session.ErrInvalidRefreshToken),
	}
	handler := AuthRefresh(rotator, cfg, controllerTestLogger())

	body := strings.NewReader(`{"refresh_token":"stale-refresh"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", body)
	req.Header.Set("Authorization", "Bearer "+mintSessionToken(t, cfg, "old-access"))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthLogoutRevokesSession(t *testing.T) {
	cfg := sessionTestConfig()
	rotator := &stubRotator{}
	handler := AuthLogout(rotator, cfg, controllerTestLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+mintSessionToken(t, cfg, "live-access"))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rotator.revokedID != "live-access" {
		t.Fatalf("expected access id to be revoked, got %q", rotator.revokedID)
	}
}
