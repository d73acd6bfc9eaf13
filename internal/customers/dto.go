package customers

import (
	"time"

	"github.com/google/uuid"

	"github.com/quoteflow/quoteflow-backend/pkg/db/models"
	"github.com/quoteflow/quoteflow-backend/pkg/pagination"
)

// CustomerDTO is the transport shape for a customer.
type CustomerDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateCustomerInput captures the payload for creating a customer.
type CreateCustomerInput struct {
	Name  string  `json:"name" validate:"required"`
	Email string  `json:"email" validate:"required,email"`
	Phone *string `json:"phone,omitempty"`
}

// UpdateCustomerInput captures the allowed customer fields for mutation.
type UpdateCustomerInput struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone *string `json:"phone,omitempty"`
}

// CustomerListDTO is the paginated list response shape.
type CustomerListDTO struct {
	Items []CustomerDTO `json:"items"`
	pagination.Meta
}

func FromModel(c *models.Customer) *CustomerDTO {
	if c == nil {
		return nil
	}
	return &CustomerDTO{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func fromModels(list []models.Customer) []CustomerDTO {
	out := make([]CustomerDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}
