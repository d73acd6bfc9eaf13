package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quoteflow/quoteflow-backend/api/middleware"
	"github.com/quoteflow/quoteflow-backend/internal/estimates"
	pkgerrors "github.com/quoteflow/quoteflow-backend/pkg/errors"
	"github.com/quoteflow/quoteflow-backend/pkg/logger"
	"github.com/quoteflow/quoteflow-backend/pkg/pagination"
)

type stubEstimateService struct {
	created    *estimates.EstimateDTO
	createErr  error
	lastUserID uuid.UUID
	lastInput  estimates.CreateEstimateInput
}

func (s *stubEstimateService) Create(ctx context.Context, userID uuid.UUID, input estimates.CreateEstimateInput) (*estimates.EstimateDTO, error) {
	s.lastUserID = userID
	s.lastInput = input
	return s.created, s.createErr
}

func (s *stubEstimateService) GetByID(ctx context.Context, id uuid.UUID) (*estimates.EstimateDTO, error) {
	if s.created != nil && s.created.ID == id {
		return s.created, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "estimate not found")
}

func (s *stubEstimateService) GetByNumber(ctx context.Context, number string) (*estimates.EstimateDTO, error) {
	if s.created != nil && s.created.Number == number {
		return s.created, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "estimate not found")
}

func (s *stubEstimateService) ListByCustomer(ctx context.Context, customerID uuid.UUID, p pagination.Params) (*estimates.EstimateListDTO, error) {
	return &estimates.EstimateListDTO{Items: []estimates.EstimateDTO{}}, nil
}

func controllerTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "controllers-test", Output: io.Discard})
}

func TestEstimateCreateRequiresUserContext(t *testing.T) {
	handler := EstimateCreate(&stubEstimateService{}, controllerTestLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimates", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestEstimateCreatePassesUserAndBody(t *testing.T) {
	customerID := uuid.New()
	svc := &stubEstimateService{created: &estimates.EstimateDTO{ID: uuid.New(), Number: "EST-2026-0001"}}
	handler := EstimateCreate(svc, controllerTestLogger())

	userID := uuid.New()
	body := `{"customer_id":"` + customerID.String() + `","line_items":[{"item_id":"` + uuid.NewString() + `"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimates", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.lastUserID != userID {
		t.Fatalf("expected user %s, got %s", userID, svc.lastUserID)
	}
	if svc.lastInput.CustomerID != customerID {
		t.Fatalf("expected customer %s, got %s", customerID, svc.lastInput.CustomerID)
	}

	var envelope struct {
		Data estimates.EstimateDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Number != "EST-2026-0001" {
		t.Fatalf("unexpected number %s", envelope.Data.Number)
	}
}

func TestEstimateCreateRejectsUnknownFields(t *testing.T) {
	handler := EstimateCreate(&stubEstimateService{}, controllerTestLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimates", strings.NewReader(`{"bogus":true}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestEstimateGetByNumber(t *testing.T) {
	svc := &stubEstimateService{created: &estimates.EstimateDTO{ID: uuid.New(), Number: "EST-2026-0042"}}

	router := chi.NewRouter()
	router.Get("/estimates/number/{estimateNumber}", EstimateGetByNumber(svc, controllerTestLogger()))

	req := httptest.NewRequest(http.MethodGet, "/estimates/number/EST-2026-0042", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestEstimateGetRejectsBadUUID(t *testing.T) {
	svc := &stubEstimateService{}

	router := chi.NewRouter()
	router.Get("/estimates/{estimateId}", EstimateGet(svc, controllerTestLogger()))

	req := httptest.NewRequest(http.MethodGet, "/estimates/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
