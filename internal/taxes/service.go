package taxes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/quoteflow/quoteflow-backend/pkg/db"
	"github.com/quoteflow/quoteflow-backend/pkg/db/models"
	pkgerrors "github.com/quoteflow/quoteflow-backend/pkg/errors"
)

var (
	minRate = decimal.Zero
	maxRate = decimal.NewFromInt(100)
)

type taxRepository interface {
	Create(ctx context.Context, tax *models.Tax) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tax, error)
	FindByName(ctx context.Context, name string) (*models.Tax, error)
	List(ctx context.Context) ([]models.Tax, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service exposes tax operations.
type Service interface {
	Create(ctx context.Context, input CreateTaxInput) (*TaxDTO, error)
	List(ctx context.Context) ([]TaxDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo taxRepository
}

// NewService builds a tax service with the provided repository.
func NewService(repo taxRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tax repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateTaxInput) (*TaxDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Rate.LessThan(minRate) || input.Rate.GreaterThan(maxRate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate must be between 0 and 100")
	}

	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "tax name already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check tax name")
	}

	tax := &models.Tax{
		Name: name,
		Rate: input.Rate,
	}
	if err := s.repo.Create(ctx, tax); err != nil {
		if db.IsUniqueViolation(err, "ux_taxes_name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "tax name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create tax")
	}
	return FromModel(tax), nil
}

func (s *service) List(ctx context.Context) ([]TaxDTO, error) {
	taxes, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list taxes")
	}
	return fromModels(taxes), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "tax not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup tax")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete tax")
	}
	return nil
}
