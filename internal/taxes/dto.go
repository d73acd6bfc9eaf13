package taxes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quoteflow/quoteflow-backend/pkg/db/models"
)

// TaxDTO is the transport shape for a tax rate. Rate 18.00 means 18%.
type TaxDTO struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Rate      decimal.Decimal `json:"rate"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CreateTaxInput captures the payload for creating a tax.
type CreateTaxInput struct {
	Name string          `json:"name" validate:"required"`
	Rate decimal.Decimal `json:"rate"`
}

func FromModel(t *models.Tax) *TaxDTO {
	if t == nil {
		return nil
	}
	return &TaxDTO{
		ID:        t.ID,
		Name:      t.Name,
		Rate:      t.Rate,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func fromModels(list []models.Tax) []TaxDTO {
	out := make([]TaxDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}
