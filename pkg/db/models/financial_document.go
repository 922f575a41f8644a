package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/millennialbroker/broker-backend/pkg/enums"
)

// FinancialDocument is an invoice or credit note derived from an applied
// movement. Documents are immutable once written.
type FinancialDocument struct {
	ID             uuid.UUID                     `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DocumentNumber *string                       `gorm:"column:document_number;type:text;uniqueIndex"`
	Type           enums.FinancialDocumentType   `gorm:"column:type;type:text;not null"`
	PolicyID       uuid.UUID                     `gorm:"column:policy_id;type:uuid;not null"`
	MovementID     uuid.UUID                     `gorm:"column:movement_id;type:uuid;not null"`
	ClientID       uuid.UUID                     `gorm:"column:client_id;type:uuid;not null"`
	IssueDate      time.Time                     `gorm:"column:issue_date;not null"`
	NetAmount      decimal.Decimal               `gorm:"column:net_amount;type:numeric(14,2);not null"`
	Taxes          decimal.Decimal               `gorm:"column:taxes;type:numeric(14,2);not null"`
	VAT            decimal.Decimal               `gorm:"column:vat;type:numeric(14,2);not null"`
	Total          decimal.Decimal               `gorm:"column:total;type:numeric(14,2);not null"`
	Status         enums.FinancialDocumentStatus `gorm:"column:status;type:text;not null;default:'emitida'"`
	CreatedAt      time.Time                     `gorm:"column:created_at;autoCreateTime"`
}
