package movements

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/millennialbroker/broker-backend/pkg/db/models"
	"github.com/millennialbroker/broker-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a movements repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.Movement) (*models.Movement, error) {
	if err := r.db.WithContext(ctx).Create(movement).Error; err != nil {
		return nil, err
	}
	return movement, nil
}

func (r *repository) FindMovement(ctx context.Context, id uuid.UUID) (*models.Movement, error) {
	var movement models.Movement
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&movement).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

func (r *repository) FindMovementByCode(ctx context.Context, code string) (*models.Movement, error) {
	var movement models.Movement
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&movement).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

func (r *repository) ListMovements(ctx context.Context, params pagination.Params, filters Filters) (*List, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Movement{})
	if filters.PolicyID != nil {
		query = query.Where("policy_id = ?", *filters.PolicyID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var items []models.Movement
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}

	list := &List{Items: items}
	if len(items) > normalized {
		next := items[normalized]
		list.Items = items[:normalized]
		encoded := pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
		list.NextCursor = &encoded
	}
	return list, nil
}

func (r *repository) UpdateMovement(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Movement{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) DeleteMovement(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Movement{}).Error
}

func (r *repository) FindPolicy(ctx context.Context, id uuid.UUID) (*models.Policy, error) {
	var policy models.Policy
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&policy).Error; err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *repository) UpdatePolicyVersioned(ctx context.Context, id uuid.UUID, expectedVersion int64, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Policy{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) CreateFinancialDocument(ctx context.Context, doc *models.FinancialDocument) (*models.FinancialDocument, error) {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *repository) ListFinancialDocuments(ctx context.Context, params pagination.Params, filters DocumentFilters) (*DocumentList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.FinancialDocument{})
	if filters.PolicyID != nil {
		query = query.Where("policy_id = ?", *filters.PolicyID)
	}
	if filters.MovementID != nil {
		query = query.Where("movement_id = ?", *filters.MovementID)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var items []models.FinancialDocument
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}

	list := &DocumentList{Items: items}
	if len(items) > normalized {
		next := items[normalized]
		list.Items = items[:normalized]
		encoded := pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
		list.NextCursor = &encoded
	}
	return list, nil
}
