package estimates

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quoteflow/quoteflow-backend/internal/customers"
	"github.com/quoteflow/quoteflow-backend/internal/items"
	"github.com/quoteflow/quoteflow-backend/pkg/db/models"
	"github.com/quoteflow/quoteflow-backend/pkg/enums"
	"github.com/quoteflow/quoteflow-backend/pkg/pagination"
)

const dateLayout = "2006-01-02"

// LineItemDTO is one line of an estimate. UnitPrice is the snapshot taken at
// composition time; Item carries the item's current state including taxes.
type LineItemDTO struct {
	Item      items.ItemDTO   `json:"item"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
}

// EstimateDTO is the transport shape for an estimate with computed totals.
type EstimateDTO struct {
	ID         uuid.UUID              `json:"id"`
	Number     string                 `json:"number"`
	Customer   *customers.CustomerDTO `json:"customer"`
	Date       string                 `json:"date"`
	ValidUntil string                 `json:"valid_until"`
	FooterNote *string                `json:"footer_note,omitempty"`
	Status     enums.EstimateStatus   `json:"status"`
	LineItems  []LineItemDTO          `json:"line_items"`
	Total      decimal.Decimal        `json:"total"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// LineItemInput is one requested line. Quantity defaults to 1 and UnitPrice
// defaults to the item's current price when omitted.
type LineItemInput struct {
	ItemID    uuid.UUID        `json:"item_id" validate:"required"`
	Quantity  *int             `json:"quantity,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// CreateEstimateInput captures the payload for composing an estimate.
type CreateEstimateInput struct {
	CustomerID uuid.UUID       `json:"customer_id" validate:"required"`
	Number     *string         `json:"number,omitempty"`
	Date       *string         `json:"date,omitempty"`
	ValidUntil *string         `json:"valid_until,omitempty"`
	FooterNote *string         `json:"footer_note,omitempty"`
	Status     *string         `json:"status,omitempty"`
	LineItems  []LineItemInput `json:"line_items"`
}

// EstimateListDTO is the paginated list response shape.
type EstimateListDTO struct {
	Items []EstimateDTO `json:"items"`
	pagination.Meta
}

// FromModel builds the transport shape, computing line amounts and the grand
// total from the snapshotted unit prices and each item's current taxes.
func FromModel(e *models.Estimate) *EstimateDTO {
	if e == nil {
		return nil
	}

	lines := make([]LineItemDTO, 0, len(e.LineItems))
	amounts := make([]LineAmounts, 0, len(e.LineItems))
	for i := range e.LineItems {
		li := &e.LineItems[i]
		rates := make([]decimal.Decimal, 0, len(li.Item.Taxes))
		for t := range li.Item.Taxes {
			rates = append(rates, li.Item.Taxes[t].Rate)
		}
		a := ComputeLine(li.Quantity, li.UnitPrice, rates)
		amounts = append(amounts, a)
		lines = append(lines, LineItemDTO{
			Item:      *items.FromModel(&li.Item),
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
			Subtotal:  a.Subtotal,
			Tax:       a.Tax,
		})
	}

	var customer *customers.CustomerDTO
	if e.Customer.ID != uuid.Nil {
		customer = customers.FromModel(&e.Customer)
	}

	return &EstimateDTO{
		ID:         e.ID,
		Number:     e.Number,
		Customer:   customer,
		Date:       e.Date.Format(dateLayout),
		ValidUntil: e.ValidUntil.Format(dateLayout),
		FooterNote: e.FooterNote,
		Status:     e.Status,
		LineItems:  lines,
		Total:      GrandTotal(amounts),
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func fromModels(list []models.Estimate) []EstimateDTO {
	out := make([]EstimateDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}
