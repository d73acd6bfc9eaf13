package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstimateLineItem joins an estimate to an item with quantity and the unit
// price snapshotted at composition time.
type EstimateLineItem struct {
	EstimateID uuid.UUID       `gorm:"column:estimate_id;type:uuid;primaryKey"`
	ItemID     uuid.UUID       `gorm:"column:item_id;type:uuid;primaryKey"`
	Quantity   int             `gorm:"column:quantity;not null;default:1"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	Item       Item            `gorm:"foreignKey:ItemID"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
