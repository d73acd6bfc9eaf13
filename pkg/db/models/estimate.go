package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quoteflow/quoteflow-backend/pkg/enums"
)

// Estimate is a quote issued to a customer. Number is immutable once assigned.
type Estimate struct {
	ID         uuid.UUID            `gorm:"type:uuid;primaryKey"`
	Number     string               `gorm:"column:number;type:text;not null;uniqueIndex:ux_estimates_number"`
	CustomerID uuid.UUID            `gorm:"column:customer_id;type:uuid;not null;index"`
	UserID     uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	Date       time.Time            `gorm:"column:date;type:date;not null"`
	ValidUntil time.Time            `gorm:"column:valid_until;type:date;not null"`
	FooterNote *string              `gorm:"column:footer_note"`
	Status     enums.EstimateStatus `gorm:"column:status;type:text;not null;default:draft"`
	Customer   Customer             `gorm:"foreignKey:CustomerID"`
	User       User                 `gorm:"foreignKey:UserID"`
	LineItems  []EstimateLineItem   `gorm:"foreignKey:EstimateID"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (e *Estimate) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
