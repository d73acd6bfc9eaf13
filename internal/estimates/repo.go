package estimates

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quoteflow/quoteflow-backend/pkg/db/models"
	"github.com/quoteflow/quoteflow-backend/pkg/pagination"
)

// Repository handles estimate persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to estimate operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithLines persists the estimate and its line items in one
// transaction. Any failure rolls back everything, including the estimate row.
func (r *Repository) CreateWithLines(ctx context.Context, estimate *models.Estimate, lines []models.EstimateLineItem) error {
	if estimate == nil {
		return fmt.Errorf("estimate is required")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		estimate.LineItems = nil
		if err := tx.Create(estimate).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].EstimateID = estimate.ID
		}
		if len(lines) > 0 {
			if err := tx.Omit("Item").Create(&lines).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID loads an estimate with its customer and line items, each line's
// item carrying its current taxes.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Estimate, error) {
	var estimate models.Estimate
	if err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("LineItems.Item.Taxes").
		First(&estimate, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &estimate, nil
}

// FindByNumber loads an estimate by its number with the same preloads as
// FindByID.
func (r *Repository) FindByNumber(ctx context.Context, number string) (*models.Estimate, error) {
	var estimate models.Estimate
	if err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("LineItems.Item.Taxes").
		First(&estimate, "number = ?", number).Error; err != nil {
		return nil, err
	}
	return &estimate, nil
}

// MaxNumberWithPrefix returns the lexicographically greatest number with the
// prefix, or "" when none exists yet. Lexicographic order means a 5-digit
// suffix sorts below "9999", so the scan is only reliable while suffixes
// share a width.
func (r *Repository) MaxNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	var number string
	err := r.db.WithContext(ctx).
		Model(&models.Estimate{}).
		Where("number LIKE ?", prefix+"%").
		Order("number DESC").
		Limit(1).
		Pluck("number", &number).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return number, nil
}

// NumberExists reports whether any estimate already carries the number.
func (r *Repository) NumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Estimate{}).
		Where("number = ?", number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByCustomer returns one page of a customer's estimates, newest first,
// plus the total count.
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, p pagination.Params) ([]models.Estimate, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Estimate{}).
		Where("customer_id = ?", customerID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var estimates []models.Estimate
	if err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("LineItems.Item.Taxes").
		Where("customer_id = ?", customerID).
		Order("date DESC, number DESC").
		Offset(p.Offset()).
		Limit(p.PerPage).
		Find(&estimates).Error; err != nil {
		return nil, 0, err
	}
	return estimates, total, nil
}
