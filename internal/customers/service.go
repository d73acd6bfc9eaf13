package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quoteflow/quoteflow-backend/pkg/db"
	"github.com/quoteflow/quoteflow-backend/pkg/db/models"
	pkgerrors "github.com/quoteflow/quoteflow-backend/pkg/errors"
	"github.com/quoteflow/quoteflow-backend/pkg/pagination"
)

type customerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, p pagination.Params) ([]models.Customer, int64, error)
	SearchByName(ctx context.Context, query string) ([]models.Customer, error)
	CountEstimates(ctx context.Context, id uuid.UUID) (int64, error)
}

// Service exposes customer operations.
type Service interface {
	Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*CustomerDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, p pagination.Params) (*CustomerListDTO, error)
	Search(ctx context.Context, query string) ([]CustomerDTO, error)
}

type service struct {
	repo customerRepository
}

// NewService builds a customer service with the provided repository.
func NewService(repo customerRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "customer email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check customer email")
	}

	customer := &models.Customer{
		Name:  name,
		Email: email,
		Phone: input.Phone,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		if db.IsUniqueViolation(err, "ux_customers_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "customer email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create customer")
	}
	return FromModel(customer), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(customer), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error) {
	customer, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		customer.Name = name
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email cannot be empty")
		}
		if email != customer.Email {
			if _, err := s.repo.FindByEmail(ctx, email); err == nil {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "customer email already exists")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check customer email")
			}
		}
		customer.Email = email
	}
	if input.Phone != nil {
		customer.Phone = input.Phone
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update customer")
	}
	return FromModel(customer), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountEstimates(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count customer estimates")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "customer has estimates and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete customer")
	}
	return nil
}

func (s *service) List(ctx context.Context, p pagination.Params) (*CustomerListDTO, error) {
	p = pagination.Normalize(p)
	customers, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list customers")
	}
	return &CustomerListDTO{
		Items: fromModels(customers),
		Meta:  pagination.MetaFor(p, total),
	}, nil
}

func (s *service) Search(ctx context.Context, query string) ([]CustomerDTO, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}
	customers, err := s.repo.SearchByName(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search customers")
	}
	return fromModels(customers), nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup customer")
	}
	return customer, nil
}
