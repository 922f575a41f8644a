package policies

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/millennialbroker/broker-backend/pkg/db/models"
	"github.com/millennialbroker/broker-backend/pkg/enums"
	"github.com/millennialbroker/broker-backend/pkg/pagination"
)

// Repository exposes policy persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a policies repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, policy *models.Policy) (*models.Policy, error) {
	if err := r.db.WithContext(ctx).Create(policy).Error; err != nil {
		return nil, err
	}
	return policy, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Policy, error) {
	var policy models.Policy
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Insurer").
		Where("id = ?", id).
		First(&policy).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *Repository) FindByNumber(ctx context.Context, policyNumber string) (*models.Policy, error) {
	var policy models.Policy
	err := r.db.WithContext(ctx).
		Where("policy_number = ?", policyNumber).
		First(&policy).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// ListMovements returns the policy's movement history, newest first.
func (r *Repository) ListMovements(ctx context.Context, policyID uuid.UUID) ([]models.Movement, error) {
	var movements []models.Movement
	err := r.db.WithContext(ctx).
		Where("policy_id = ?", policyID).
		Order("created_at DESC, id DESC").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// FindActiveExpiredBefore returns active policies whose coverage ended
// before the cutoff.
func (r *Repository) FindActiveExpiredBefore(ctx context.Context, cutoff time.Time) ([]models.Policy, error) {
	var policies []models.Policy
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date < ?", enums.PolicyStatusActiva, cutoff).
		Order("end_date ASC").
		Find(&policies).Error
	if err != nil {
		return nil, err
	}
	return policies, nil
}

// UpdateVersioned applies updates only when the stored version still matches.
// Returns the number of rows written.
func (r *Repository) UpdateVersioned(ctx context.Context, id uuid.UUID, expectedVersion int64, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Policy{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *Repository) List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Policy, *string, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Policy{}).
		Preload("Client").
		Preload("Insurer")
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ClientID != nil {
		query = query.Where("client_id = ?", *filters.ClientID)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var items []models.Policy
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, nil, err
	}

	var nextCursor *string
	if len(items) > normalized {
		next := items[normalized]
		items = items[:normalized]
		encoded := pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
		nextCursor = &encoded
	}
	return items, nextCursor, nil
}
