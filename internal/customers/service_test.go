package customers

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quoteflow/quoteflow-backend/pkg/db/models"
	pkgerrors "github.com/quoteflow/quoteflow-backend/pkg/errors"
	"github.com/quoteflow/quoteflow-backend/pkg/pagination"
)

type stubCustomerRepo struct {
	customers map[uuid.UUID]*models.Customer
	estimates map[uuid.UUID]int64
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{
		customers: make(map[uuid.UUID]*models.Customer),
		estimates: make(map[uuid.UUID]int64),
	}
}

func (s *stubCustomerRepo) Create(ctx context.Context, customer *models.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	s.customers[customer.ID] = customer
	return nil
}

func (s *stubCustomerRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, ok := s.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *customer
	return &copied, nil
}

func (s *stubCustomerRepo) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	for _, customer := range s.customers {
		if customer.Email == email {
			copied := *customer
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCustomerRepo) Update(ctx context.Context, customer *models.Customer) error {
	s.customers[customer.ID] = customer
	return nil
}

func (s *stubCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.customers, id)
	return nil
}

func (s *stubCustomerRepo) List(ctx context.Context, p pagination.Params) ([]models.Customer, int64, error) {
	out := make([]models.Customer, 0, len(s.customers))
	for _, customer := range s.customers {
		out = append(out, *customer)
	}
	return out, int64(len(s.customers)), nil
}

func (s *stubCustomerRepo) SearchByName(ctx context.Context, query string) ([]models.Customer, error) {
	var out []models.Customer
	for _, customer := range s.customers {
		if strings.Contains(strings.ToLower(customer.Name), query) {
			out = append(out, *customer)
		}
	}
	return out, nil
}

func (s *stubCustomerRepo) CountEstimates(ctx context.Context, id uuid.UUID) (int64, error) {
	return s.estimates[id], nil
}

func newTestService(t *testing.T) (Service, *stubCustomerRepo) {
	t.Helper()
	repo := newStubCustomerRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo
}

func TestCreateCustomer(t *testing.T) {
	svc, _ := newTestService(t)

	dto, err := svc.Create(context.Background(), CreateCustomerInput{
		Name:  "  Acme Corp  ",
		Email: "Billing@Acme.COM",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Name != "Acme Corp" {
		t.Fatalf("expected trimmed name, got %q", dto.Name)
	}
	if dto.Email != "billing@acme.com" {
		t.Fatalf("expected lowercased email, got %q", dto.Email)
	}
}

func TestCreateCustomerDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateCustomerInput{Name: "Acme", Email: "dup@acme.com"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(ctx, CreateCustomerInput{Name: "Other", Email: "dup@acme.com"})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestCreateCustomerMissingName(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), CreateCustomerInput{Email: "x@y.com"})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestGetCustomerNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetByID(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdateCustomer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCustomerInput{Name: "Acme", Email: "acme@acme.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newName := "Acme Industries"
	updated, err := svc.Update(ctx, created.ID, UpdateCustomerInput{Name: &newName})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != newName {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}
	if updated.Email != created.Email {
		t.Fatalf("email should be untouched, got %q", updated.Email)
	}
}

func TestUpdateCustomerEmailConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateCustomerInput{Name: "First", Email: "first@acme.com"}); err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.Create(ctx, CreateCustomerInput{Name: "Second", Email: "second@acme.com"})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	taken := "first@acme.com"
	_, err = svc.Update(ctx, second.ID, UpdateCustomerInput{Email: &taken})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestDeleteCustomerWithEstimates(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCustomerInput{Name: "Acme", Email: "acme@acme.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.estimates[created.ID] = 2

	err = svc.Delete(ctx, created.ID)
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestDeleteCustomer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCustomerInput{Name: "Acme", Email: "acme@acme.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = svc.GetByID(ctx, created.ID)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestSearchRequiresQuery(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Search(context.Background(), "   ")
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestListReturnsMeta(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		if _, err := svc.Create(ctx, CreateCustomerInput{Name: "Customer " + email, Email: email}); err != nil {
			t.Fatalf("create %s: %v", email, err)
		}
	}

	list, err := svc.List(ctx, pagination.Params{Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Total != 3 {
		t.Fatalf("expected total 3, got %d", list.Total)
	}
	if list.TotalPages != 2 {
		t.Fatalf("expected 2 pages, got %d", list.TotalPages)
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
