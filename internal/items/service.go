package items

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quoteflow/quoteflow-backend/pkg/db/models"
	pkgerrors "github.com/quoteflow/quoteflow-backend/pkg/errors"
	"github.com/quoteflow/quoteflow-backend/pkg/pagination"
)

type itemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	ReplaceTaxes(ctx context.Context, item *models.Item, taxes []models.Tax) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, p pagination.Params) ([]models.Item, int64, error)
	SearchByName(ctx context.Context, query string) ([]models.Item, error)
	CountEstimateLines(ctx context.Context, id uuid.UUID) (int64, error)
}

type taxLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Tax, error)
}

// Service exposes item operations.
type Service interface {
	Create(ctx context.Context, input CreateItemInput) (*ItemDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, p pagination.Params) (*ItemListDTO, error)
	Search(ctx context.Context, query string) ([]ItemDTO, error)
}

type service struct {
	repo  itemRepository
	taxes taxLookup
}

// NewService builds an item service with the provided repositories.
func NewService(repo itemRepository, taxes taxLookup) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if taxes == nil {
		return nil, fmt.Errorf("tax repository required")
	}
	return &service{repo: repo, taxes: taxes}, nil
}

func (s *service) Create(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	attachedTaxes, err := s.resolveTaxes(ctx, input.TaxIDs)
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		Name:        name,
		Description: input.Description,
		Price:       input.Price,
		Taxes:       attachedTaxes,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create item")
	}
	return FromModel(item), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(item), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		item.Name = name
	}
	if input.Description != nil {
		item.Description = input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		item.Price = *input.Price
	}

	if input.TaxIDs != nil {
		attachedTaxes, err := s.resolveTaxes(ctx, *input.TaxIDs)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceTaxes(ctx, item, attachedTaxes); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replace item taxes")
		}
		item.Taxes = attachedTaxes
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update item")
	}
	return FromModel(item), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountEstimateLines(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count estimate lines")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "item is referenced by estimates and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete item")
	}
	return nil
}

func (s *service) List(ctx context.Context, p pagination.Params) (*ItemListDTO, error) {
	p = pagination.Normalize(p)
	items, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list items")
	}
	return &ItemListDTO{
		Items: fromModels(items),
		Meta:  pagination.MetaFor(p, total),
	}, nil
}

func (s *service) Search(ctx context.Context, query string) ([]ItemDTO, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}
	items, err := s.repo.SearchByName(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search items")
	}
	return fromModels(items), nil
}

func (s *service) resolveTaxes(ctx context.Context, ids []uuid.UUID) ([]models.Tax, error) {
	if len(ids) == 0 {
		return []models.Tax{}, nil
	}

	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	taxes, err := s.taxes.FindByIDs(ctx, unique)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup taxes")
	}
	if len(taxes) != len(unique) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "one or more taxes do not exist")
	}
	return taxes, nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup item")
	}
	return item, nil
}
