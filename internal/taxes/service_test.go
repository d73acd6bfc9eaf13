package taxes

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/quoteflow/quoteflow-backend/pkg/db/models"
	pkgerrors "github.com/quoteflow/quoteflow-backend/pkg/errors"
)

type stubTaxRepo struct {
	taxes map[uuid.UUID]*models.Tax
}

func newStubTaxRepo() *stubTaxRepo {
	return &stubTaxRepo{taxes: make(map[uuid.UUID]*models.Tax)}
}

func (s *stubTaxRepo) Create(ctx context.Context, tax *models.Tax) error {
	if tax.ID == uuid.Nil {
		tax.ID = uuid.New()
	}
	s.taxes[tax.ID] = tax
	return nil
}

func (s *stubTaxRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Tax, error) {
	tax, ok := s.taxes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return tax, nil
}

func (s *stubTaxRepo) FindByName(ctx context.Context, name string) (*models.Tax, error) {
	for _, tax := range s.taxes {
		if tax.Name == name {
			return tax, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTaxRepo) List(ctx context.Context) ([]models.Tax, error) {
	out := make([]models.Tax, 0, len(s.taxes))
	for _, tax := range s.taxes {
		out = append(out, *tax)
	}
	return out, nil
}

func (s *stubTaxRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.taxes, id)
	return nil
}

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(newStubTaxRepo())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestCreateTax(t *testing.T) {
	svc := newTestService(t)

	dto, err := svc.Create(context.Background(), CreateTaxInput{
		Name: "VAT",
		Rate: decimal.RequireFromString("18.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Name != "VAT" {
		t.Fatalf("unexpected name %q", dto.Name)
	}
	if !dto.Rate.Equal(decimal.RequireFromString("18.00")) {
		t.Fatalf("unexpected rate %s", dto.Rate)
	}
}

func TestCreateTaxRateBounds(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateTaxInput{Name: "Negative", Rate: decimal.RequireFromString("-1")})
	assertCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Create(ctx, CreateTaxInput{Name: "TooHigh", Rate: decimal.RequireFromString("100.01")})
	assertCode(t, err, pkgerrors.CodeValidation)

	if _, err := svc.Create(ctx, CreateTaxInput{Name: "Zero", Rate: decimal.Zero}); err != nil {
		t.Fatalf("zero rate should be allowed: %v", err)
	}
	if _, err := svc.Create(ctx, CreateTaxInput{Name: "Full", Rate: decimal.NewFromInt(100)}); err != nil {
		t.Fatalf("100 rate should be allowed: %v", err)
	}
}

func TestCreateTaxDuplicateName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateTaxInput{Name: "GST", Rate: decimal.NewFromInt(5)}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(ctx, CreateTaxInput{Name: "GST", Rate: decimal.NewFromInt(7)})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestDeleteTaxNotFound(t *testing.T) {
	svc := newTestService(t)
	err := svc.Delete(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestDeleteTax(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Create(ctx, CreateTaxInput{Name: "City", Rate: decimal.NewFromInt(2)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, dto.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}
