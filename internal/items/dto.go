package items

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quoteflow/quoteflow-backend/internal/taxes"
	"github.com/quoteflow/quoteflow-backend/pkg/db/models"
	"github.com/quoteflow/quoteflow-backend/pkg/pagination"
)

// ItemDTO is the transport shape for a sellable item.
type ItemDTO struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Taxes       []taxes.TaxDTO `json:"taxes"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CreateItemInput captures the payload for creating an item.
type CreateItemInput struct {
	Name        string          `json:"name" validate:"required"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	TaxIDs      []uuid.UUID     `json:"tax_ids,omitempty"`
}

// UpdateItemInput captures the allowed item fields for mutation.
type UpdateItemInput struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	TaxIDs      *[]uuid.UUID     `json:"tax_ids,omitempty"`
}

// ItemListDTO is the paginated list response shape.
type ItemListDTO struct {
	Items []ItemDTO `json:"items"`
	pagination.Meta
}

func FromModel(i *models.Item) *ItemDTO {
	if i == nil {
		return nil
	}
	taxDTOs := make([]taxes.TaxDTO, 0, len(i.Taxes))
	for idx := range i.Taxes {
		taxDTOs = append(taxDTOs, *taxes.FromModel(&i.Taxes[idx]))
	}
	return &ItemDTO{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Price:       i.Price,
		Taxes:       taxDTOs,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func fromModels(list []models.Item) []ItemDTO {
	out := make([]ItemDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}
