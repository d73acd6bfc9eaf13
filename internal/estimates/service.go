package estimates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quoteflow/quoteflow-backend/pkg/config"
	"github.com/quoteflow/quoteflow-backend/pkg/db"
	"github.com/quoteflow/quoteflow-backend/pkg/db/models"
	"github.com/quoteflow/quoteflow-backend/pkg/enums"
	pkgerrors "github.com/quoteflow/quoteflow-backend/pkg/errors"
	"github.com/quoteflow/quoteflow-backend/pkg/logger"
	"github.com/quoteflow/quoteflow-backend/pkg/pagination"
)

const numberConstraint = "ux_estimates_number"

type estimateRepository interface {
	CreateWithLines(ctx context.Context, estimate *models.Estimate, lines []models.EstimateLineItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Estimate, error)
	FindByNumber(ctx context.Context, number string) (*models.Estimate, error)
	MaxNumberWithPrefix(ctx context.Context, prefix string) (string, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, p pagination.Params) ([]models.Estimate, int64, error)
}

type customerLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

type itemLookup interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Item, error)
}

// Service exposes estimate composition and reads.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateEstimateInput) (*EstimateDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*EstimateDTO, error)
	GetByNumber(ctx context.Context, number string) (*EstimateDTO, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, p pagination.Params) (*EstimateListDTO, error)
}

type service struct {
	repo      estimateRepository
	customers customerLookup
	items     itemLookup
	cfg       config.EstimatesConfig
	logg      *logger.Logger
	now       func() time.Time
}

// ServiceParams bundles the dependencies required to build an estimate service.
type ServiceParams struct {
	Repo      estimateRepository
	Customers customerLookup
	Items     itemLookup
	Config    config.EstimatesConfig
	Logger    *logger.Logger
}

// NewService constructs an estimate service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("estimate repository is required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customer repository is required")
	}
	if params.Items == nil {
		return nil, fmt.Errorf("item repository is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	cfg := params.Config
	if cfg.ValidityDays <= 0 {
		cfg.ValidityDays = 30
	}
	if cfg.NumberRetries <= 0 {
		cfg.NumberRetries = 3
	}
	return &service{
		repo:      params.Repo,
		customers: params.Customers,
		items:     params.Items,
		cfg:       cfg,
		logg:      params.Logger,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateEstimateInput) (*EstimateDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "acting user is required")
	}

	customer, err := s.customers.FindByID(ctx, input.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load customer")
	}

	if len(input.LineItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line item is required")
	}

	lines, err := s.resolveLines(ctx, input.LineItems)
	if err != nil {
		return nil, err
	}

	estimate := &models.Estimate{
		CustomerID: customer.ID,
		UserID:     userID,
		Status:     enums.EstimateStatusDraft,
		FooterNote: input.FooterNote,
	}
	if input.Status != nil {
		status, err := enums.ParseEstimateStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid estimate status")
		}
		estimate.Status = status
	}
	if err := s.applyDates(estimate, input.Date, input.ValidUntil); err != nil {
		return nil, err
	}

	if input.Number != nil && *input.Number != "" {
		return s.createWithExplicitNumber(ctx, estimate, lines, *input.Number)
	}
	return s.createWithAllocatedNumber(ctx, estimate, lines)
}

// resolveLines validates item requests in order: existence first, then
// quantity, then unit price. UnitPrice defaults to the item's current price
// and is snapshotted on the line.
func (s *service) resolveLines(ctx context.Context, reqs []LineItemInput) ([]models.EstimateLineItem, error) {
	ids := make([]uuid.UUID, 0, len(reqs))
	seen := make(map[uuid.UUID]struct{}, len(reqs))
	for _, req := range reqs {
		if _, ok := seen[req.ItemID]; ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate line item %s", req.ItemID))
		}
		seen[req.ItemID] = struct{}{}
		ids = append(ids, req.ItemID)
	}

	found, err := s.items.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load items")
	}
	byID := make(map[uuid.UUID]*models.Item, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	lines := make([]models.EstimateLineItem, 0, len(reqs))
	for _, req := range reqs {
		item, ok := byID[req.ItemID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("item %s not found", req.ItemID))
		}

		quantity := 1
		if req.Quantity != nil {
			quantity = *req.Quantity
		}
		if quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity for item %s must be greater than zero", req.ItemID))
		}

		unitPrice := item.Price
		if req.UnitPrice != nil {
			unitPrice = *req.UnitPrice
		}
		if unitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unit price for item %s cannot be negative", req.ItemID))
		}

		lines = append(lines, models.EstimateLineItem{
			ItemID:    item.ID,
			Quantity:  quantity,
			UnitPrice: unitPrice,
		})
	}
	return lines, nil
}

func (s *service) applyDates(estimate *models.Estimate, date, validUntil *string) error {
	estimate.Date = s.now().UTC().Truncate(24 * time.Hour)
	if date != nil {
		parsed, err := time.Parse(dateLayout, *date)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD")
		}
		estimate.Date = parsed
	}

	// The default validity window is anchored to today, not to a supplied
	// back-dated estimate date.
	estimate.ValidUntil = s.now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, s.cfg.ValidityDays)
	if validUntil != nil {
		parsed, err := time.Parse(dateLayout, *validUntil)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "valid_until must be YYYY-MM-DD")
		}
		if parsed.Before(estimate.Date) {
			return pkgerrors.New(pkgerrors.CodeValidation, "valid_until cannot precede the estimate date")
		}
		estimate.ValidUntil = parsed
	}
	return nil
}

// createWithExplicitNumber rejects an already-used number up front and treats
// a unique violation on insert as the same conflict, never retrying.
func (s *service) createWithExplicitNumber(ctx context.Context, estimate *models.Estimate, lines []models.EstimateLineItem, number string) (*EstimateDTO, error) {
	exists, err := s.repo.NumberExists(ctx, number)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to check estimate number")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("estimate number %s is already in use", number))
	}

	estimate.Number = number
	if err := s.repo.CreateWithLines(ctx, estimate, lines); err != nil {
		if db.IsUniqueViolation(err, numberConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("estimate number %s is already in use", number))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create estimate")
	}
	return s.GetByID(ctx, estimate.ID)
}

// createWithAllocatedNumber scans for the next number and inserts, retrying a
// bounded number of times when a concurrent allocation wins the unique index.
func (s *service) createWithAllocatedNumber(ctx context.Context, estimate *models.Estimate, lines []models.EstimateLineItem) (*EstimateDTO, error) {
	attempts := s.cfg.NumberRetries + 1
	year := estimate.Date.Year()

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		number, err := s.nextNumber(ctx, year)
		if err != nil {
			return nil, err
		}

		estimate.Number = number
		err = s.repo.CreateWithLines(ctx, estimate, lines)
		if err == nil {
			return s.GetByID(ctx, estimate.ID)
		}
		if !db.IsUniqueViolation(err, numberConstraint) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create estimate")
		}

		lastErr = err
		s.logg.Warn(s.logg.WithEstimateNumber(ctx, number), "estimate number collision, retrying allocation")
		estimate.ID = uuid.Nil
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, lastErr, "could not allocate a unique estimate number")
}

func (s *service) nextNumber(ctx context.Context, year int) (string, error) {
	prefix := NumberPrefixForYear(year)
	max, err := s.repo.MaxNumberWithPrefix(ctx, prefix)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to scan estimate numbers")
	}

	number, err := NextNumber(year, max)
	if err != nil {
		s.logg.Error(ctx, "existing estimate number is malformed", err)
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "existing estimate number is malformed")
	}
	return number, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*EstimateDTO, error) {
	estimate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "estimate not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load estimate")
	}
	return FromModel(estimate), nil
}

func (s *service) GetByNumber(ctx context.Context, number string) (*EstimateDTO, error) {
	estimate, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "estimate not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load estimate")
	}
	return FromModel(estimate), nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID, p pagination.Params) (*EstimateListDTO, error) {
	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to load customer")
	}

	p = pagination.Normalize(p)
	estimates, total, err := s.repo.ListByCustomer(ctx, customerID, p)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to list estimates")
	}
	return &EstimateListDTO{
		Items: fromModels(estimates),
		Meta:  pagination.MetaFor(p, total),
	}, nil
}
