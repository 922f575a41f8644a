package insurers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/millennialbroker/broker-backend/internal/repo"
	"github.com/millennialbroker/broker-backend/pkg/db/models"
)

// Repository exposes insurer persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs an insurers repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, insurer *models.Insurer) (*models.Insurer, error) {
	if err := r.DB(ctx).Create(insurer).Error; err != nil {
		return nil, err
	}
	return insurer, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Insurer, error) {
	var insurer models.Insurer
	if err := r.DB(ctx).Where("id = ?", id).First(&insurer).Error; err != nil {
		return nil, err
	}
	return &insurer, nil
}

// List returns all insurers alphabetically. The carrier roster is small
// enough that pagination is not worth the cursor bookkeeping.
func (r *Repository) List(ctx context.Context) ([]models.Insurer, error) {
	var insurers []models.Insurer
	if err := r.DB(ctx).Order("name ASC").Find(&insurers).Error; err != nil {
		return nil, err
	}
	return insurers, nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.DB(ctx).
		Model(&models.Insurer{}).
		Where("id = ?", id).
		Updates(updates).Error
}
