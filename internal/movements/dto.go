package movements

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/millennialbroker/broker-backend/internal/fiscal"
	"github.com/millennialbroker/broker-backend/pkg/db/models"
	"github.com/millennialbroker/broker-backend/pkg/enums"
)

// CreateInput captures the data required to register a movement in draft.
type CreateInput struct {
	Code          string
	Type          enums.MovementType
	PolicyID      uuid.UUID
	RequestedDate time.Time
	NewPremium    *decimal.Decimal
	NewInsuredSum *decimal.Decimal
	NewBeneficiary *string
	NewAddress    *string
	IssuanceFee   decimal.Decimal
	OtherCharges  decimal.Decimal
	Observations  string
	ActorUserID   uuid.UUID
}

// ApplyInput carries the parameters of one application attempt.
type ApplyInput struct {
	MovementID uuid.UUID
	// ConfirmVoid is the explicit operator confirmation required to void a
	// policy. It is ignored for every other movement type.
	ConfirmVoid bool
	// EmitDocument opts in to creating the financial derivative when the
	// movement type supports one and a premium was computed.
	EmitDocument bool
	ActorUserID  uuid.UUID
}

// ApplyResult reports what an application attempt changed.
type ApplyResult struct {
	Movement *models.Movement
	Policy   *models.Policy
	Document *models.FinancialDocument
	// Breakdown is set whenever a new premium was computed.
	Breakdown *fiscal.Breakdown
	// NoOp marks a repeated void that left the policy untouched.
	NoOp bool
}

// Filters narrows movement listings.
type Filters struct {
	PolicyID *uuid.UUID
	Status   *enums.MovementStatus
	Type     *enums.MovementType
}

// List is a cursor page of movements.
type List struct {
	Items      []models.Movement
	NextCursor *string
}

// DocumentFilters narrows financial document listings.
type DocumentFilters struct {
	PolicyID   *uuid.UUID
	MovementID *uuid.UUID
	Type       *enums.FinancialDocumentType
}

// DocumentList is a cursor page of financial documents.
type DocumentList struct {
	Items      []models.FinancialDocument
	NextCursor *string
}
