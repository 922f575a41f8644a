package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/millennialbroker/broker-backend/pkg/enums"
)

// Movement represents a policy endorsement request. Type-specific payload
// fields are nullable; only those relevant to the movement type are set.
type Movement struct {
	ID             uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Code           string               `gorm:"column:code;type:text;not null;uniqueIndex"`
	Type           enums.MovementType   `gorm:"column:type;type:text;not null"`
	PolicyID       uuid.UUID            `gorm:"column:policy_id;type:uuid;not null"`
	ClientID       uuid.UUID            `gorm:"column:client_id;type:uuid;not null"`
	Status         enums.MovementStatus `gorm:"column:status;type:text;not null;default:'proceso'"`
	RequestedDate  time.Time            `gorm:"column:requested_date;not null"`
	NewPremium     *decimal.Decimal     `gorm:"column:new_premium;type:numeric(14,2)"`
	NewInsuredSum  *decimal.Decimal     `gorm:"column:new_insured_sum;type:numeric(14,2)"`
	NewBeneficiary *string              `gorm:"column:new_beneficiary"`
	NewAddress     *string              `gorm:"column:new_address"`
	IssuanceFee    decimal.Decimal      `gorm:"column:issuance_fee;type:numeric(14,2);not null;default:0"`
	OtherCharges   decimal.Decimal      `gorm:"column:other_charges;type:numeric(14,2);not null;default:0"`
	Observations   string               `gorm:"column:observations;not null;default:''"`
	CreatedBy      *uuid.UUID           `gorm:"column:created_by;type:uuid"`
	DocumentRef    *string              `gorm:"column:document_ref"`
	AppliedAt      *time.Time           `gorm:"column:applied_at"`
	Policy         *Policy              `gorm:"foreignKey:PolicyID;constraint:OnDelete:RESTRICT"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// IsApplied reports whether the movement already reached its terminal status.
func (m Movement) IsApplied() bool {
	return m.Status == enums.MovementStatusAplicado
}
