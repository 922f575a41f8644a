package policies

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/millennialbroker/broker-backend/pkg/db/models"
	"github.com/millennialbroker/broker-backend/pkg/enums"
)

// PolicyDTO is the transport shape returned by the policies API.
type PolicyDTO struct {
	ID               uuid.UUID          `json:"id"`
	PolicyNumber     string             `json:"policy_number"`
	ClientID         uuid.UUID          `json:"client_id"`
	InsurerID        uuid.UUID          `json:"insurer_id"`
	Status           enums.PolicyStatus `json:"status"`
	NetPremium       decimal.Decimal    `json:"net_premium"`
	InsuredSum       decimal.Decimal    `json:"insured_sum"`
	Beneficiary      *string            `json:"beneficiary,omitempty"`
	Observations     string             `json:"observations"`
	AppliedMovements []string           `json:"applied_movements"`
	StartDate        time.Time          `json:"start_date"`
	EndDate          time.Time          `json:"end_date"`
	Version          int64              `json:"version"`
	ClientName       string             `json:"client_name,omitempty"`
	InsurerName      string             `json:"insurer_name,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// PolicyDetail extends PolicyDTO with the policy's movement history.
type PolicyDetail struct {
	PolicyDTO
	Movements []models.Movement `json:"movements"`
}

// CreatePolicyInput captures the fields accepted at policy intake.
type CreatePolicyInput struct {
	PolicyNumber string              `json:"policy_number" validate:"required"`
	ClientID     uuid.UUID           `json:"client_id" validate:"required"`
	InsurerID    uuid.UUID           `json:"insurer_id" validate:"required"`
	Status       *enums.PolicyStatus `json:"status,omitempty"`
	NetPremium   decimal.Decimal     `json:"net_premium"`
	InsuredSum   decimal.Decimal     `json:"insured_sum"`
	Beneficiary  *string             `json:"beneficiary,omitempty"`
	StartDate    time.Time           `json:"start_date" validate:"required"`
	EndDate      time.Time           `json:"end_date" validate:"required"`
}

// Filters narrows a policy listing.
type Filters struct {
	Status   *enums.PolicyStatus
	ClientID *uuid.UUID
}

// PolicyList is a cursor-paginated page of policies.
type PolicyList struct {
	Items      []PolicyDTO `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func FromModel(p *models.Policy) *PolicyDTO {
	if p == nil {
		return nil
	}
	dto := &PolicyDTO{
		ID:               p.ID,
		PolicyNumber:     p.PolicyNumber,
		ClientID:         p.ClientID,
		InsurerID:        p.InsurerID,
		Status:           p.Status,
		NetPremium:       p.NetPremium,
		InsuredSum:       p.InsuredSum,
		Beneficiary:      p.Beneficiary,
		Observations:     p.Observations,
		AppliedMovements: append([]string(nil), p.AppliedMovements...),
		StartDate:        p.StartDate,
		EndDate:          p.EndDate,
		Version:          p.Version,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.Client != nil {
		dto.ClientName = p.Client.FullName()
	}
	if p.Insurer != nil {
		dto.InsurerName = p.Insurer.Name
	}
	return dto
}
