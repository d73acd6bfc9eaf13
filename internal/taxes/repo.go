package taxes

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quoteflow/quoteflow-backend/internal/repo"
	"github.com/quoteflow/quoteflow-backend/pkg/db/models"
)

// Repository handles tax persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to tax operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create persists a new tax row.
func (r *Repository) Create(ctx context.Context, tax *models.Tax) error {
	if tax == nil {
		return fmt.Errorf("tax is required")
	}
	return r.DB(ctx).Create(tax).Error
}

// FindByID loads a tax by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Tax, error) {
	var tax models.Tax
	if err := r.DB(ctx).First(&tax, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tax, nil
}

// FindByName retrieves the tax matching the provided name.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Tax, error) {
	var tax models.Tax
	if err := r.DB(ctx).Where("name = ?", name).First(&tax).Error; err != nil {
		return nil, err
	}
	return &tax, nil
}

// FindByIDs loads all taxes matching the provided UUIDs.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Tax, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var taxes []models.Tax
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&taxes).Error; err != nil {
		return nil, err
	}
	return taxes, nil
}

// List returns all taxes ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Tax, error) {
	var taxes []models.Tax
	if err := r.DB(ctx).Order("name ASC").Find(&taxes).Error; err != nil {
		return nil, err
	}
	return taxes, nil
}

// Delete removes the tax row and its item associations.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DB(ctx).Delete(&models.Tax{}, "id = ?", id).Error
}
