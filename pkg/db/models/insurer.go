package models

import (
	"time"

	"github.com/google/uuid"
)

// Insurer represents an insurance carrier the brokerage places policies with.
type Insurer struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	RUC          string    `gorm:"column:ruc;type:text;not null;uniqueIndex"`
	ContactName  *string   `gorm:"column:contact_name"`
	ContactEmail *string   `gorm:"column:contact_email"`
	ContactPhone *string   `gorm:"column:contact_phone"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
