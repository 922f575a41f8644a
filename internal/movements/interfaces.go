package movements

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/millennialbroker/broker-backend/pkg/db/models"
	"github.com/millennialbroker/broker-backend/pkg/pagination"
)

// Repository defines persistence operations for movements, the policies they
// mutate, and the financial documents they derive.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateMovement(ctx context.Context, movement *models.Movement) (*models.Movement, error)
	FindMovement(ctx context.Context, id uuid.UUID) (*models.Movement, error)
	FindMovementByCode(ctx context.Context, code string) (*models.Movement, error)
	ListMovements(ctx context.Context, params pagination.Params, filters Filters) (*List, error)
	UpdateMovement(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteMovement(ctx context.Context, id uuid.UUID) error
	FindPolicy(ctx context.Context, id uuid.UUID) (*models.Policy, error)
	// UpdatePolicyVersioned applies updates guarded by the policy's version
	// counter and returns the number of rows matched. Zero rows means the
	// policy changed under us and the caller must treat it as a conflict.
	UpdatePolicyVersioned(ctx context.Context, id uuid.UUID, expectedVersion int64, updates map[string]any) (int64, error)
	CreateFinancialDocument(ctx context.Context, doc *models.FinancialDocument) (*models.FinancialDocument, error)
	ListFinancialDocuments(ctx context.Context, params pagination.Params, filters DocumentFilters) (*DocumentList, error)
}
