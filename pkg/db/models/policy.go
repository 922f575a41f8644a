package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/millennialbroker/broker-backend/pkg/enums"
)

// Policy is the central contract record. Status, premium, insured sum,
// beneficiary and observations are only mutated through applied movements.
type Policy struct {
	ID               uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PolicyNumber     string             `gorm:"column:policy_number;type:text;not null;uniqueIndex"`
	ClientID         uuid.UUID          `gorm:"column:client_id;type:uuid;not null"`
	InsurerID        uuid.UUID          `gorm:"column:insurer_id;type:uuid;not null"`
	Status           enums.PolicyStatus `gorm:"column:status;type:text;not null;default:'borrador'"`
	NetPremium       decimal.Decimal    `gorm:"column:net_premium;type:numeric(14,2);not null"`
	InsuredSum       decimal.Decimal    `gorm:"column:insured_sum;type:numeric(14,2);not null"`
	Beneficiary      *string            `gorm:"column:beneficiary"`
	Observations     string             `gorm:"column:observations;not null;default:''"`
	AppliedMovements []string           `gorm:"column:applied_movements;type:jsonb;serializer:json"`
	StartDate        time.Time          `gorm:"column:start_date;not null"`
	EndDate          time.Time          `gorm:"column:end_date;not null"`
	Version          int64              `gorm:"column:version;not null;default:0"`
	Client           *Client            `gorm:"foreignKey:ClientID;constraint:OnDelete:RESTRICT"`
	Insurer          *Insurer           `gorm:"foreignKey:InsurerID;constraint:OnDelete:RESTRICT"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// HasAppliedMovement reports whether the movement code is already in the
// policy's applied-movement ledger.
func (p Policy) HasAppliedMovement(code string) bool {
	for _, existing := range p.AppliedMovements {
		if existing == code {
			return true
		}
	}
	return false
}
