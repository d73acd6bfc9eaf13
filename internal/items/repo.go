package items

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quoteflow/quoteflow-backend/pkg/db/models"
	"github.com/quoteflow/quoteflow-backend/pkg/pagination"
)

// Repository handles item persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to item operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new item row along with its tax associations.
func (r *Repository) Create(ctx context.Context, item *models.Item) error {
	if item == nil {
		return fmt.Errorf("item is required")
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// FindByID loads an item with its taxes preloaded.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).
		Preload("Taxes").
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByIDs loads all items matching the provided UUIDs, taxes included.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.Item
	if err := r.db.WithContext(ctx).
		Preload("Taxes").
		Where("id IN ?", ids).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Update saves the provided item.
func (r *Repository) Update(ctx context.Context, item *models.Item) error {
	if item == nil {
		return fmt.Errorf("item is required")
	}
	return r.db.WithContext(ctx).Save(item).Error
}

// ReplaceTaxes overwrites the item's tax associations.
func (r *Repository) ReplaceTaxes(ctx context.Context, item *models.Item, taxes []models.Tax) error {
	if item == nil {
		return fmt.Errorf("item is required")
	}
	return r.db.WithContext(ctx).Model(item).Association("Taxes").Replace(taxes)
}

// Delete removes the item row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Item{}, "id = ?", id).Error
}

// List returns one page of items ordered by creation time plus the total count.
func (r *Repository) List(ctx context.Context, p pagination.Params) ([]models.Item, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Item{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Item
	if err := r.db.WithContext(ctx).
		Preload("Taxes").
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.PerPage).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// SearchByName returns items whose name contains the query, case-insensitive.
func (r *Repository) SearchByName(ctx context.Context, query string) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.WithContext(ctx).
		Preload("Taxes").
		Where("LOWER(name) LIKE ?", "%"+query+"%").
		Order("name ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CountEstimateLines reports how many estimate line items reference the item.
func (r *Repository) CountEstimateLines(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.EstimateLineItem{}).
		Where("item_id = ?", id).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
