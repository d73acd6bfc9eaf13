package customers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quoteflow/quoteflow-backend/pkg/db/models"
	"github.com/quoteflow/quoteflow-backend/pkg/pagination"
)

// Repository handles customer persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to customer operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new customer row.
func (r *Repository) Create(ctx context.Context, customer *models.Customer) error {
	if customer == nil {
		return fmt.Errorf("customer is required")
	}
	return r.db.WithContext(ctx).Create(customer).Error
}

// FindByID loads a customer by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByEmail retrieves the customer matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// Update saves the provided customer.
func (r *Repository) Update(ctx context.Context, customer *models.Customer) error {
	if customer == nil {
		return fmt.Errorf("customer is required")
	}
	return r.db.WithContext(ctx).Save(customer).Error
}

// Delete removes the customer row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Customer{}, "id = ?", id).Error
}

// List returns one page of customers ordered by creation time plus the total count.
func (r *Repository) List(ctx context.Context, p pagination.Params) ([]models.Customer, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Customer{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []models.Customer
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(p.Offset()).
		Limit(p.PerPage).
		Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// SearchByName returns customers whose name contains the query, case-insensitive.
func (r *Repository) SearchByName(ctx context.Context, query string) ([]models.Customer, error) {
	var customers []models.Customer
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", "%"+query+"%").
		Order("name ASC").
		Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// CountEstimates reports how many estimates reference the customer.
func (r *Repository) CountEstimates(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Estimate{}).
		Where("customer_id = ?", id).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
