package models

import (
	"time"

	"github.com/google/uuid"
)

// Client represents a policyholder managed by the brokerage.
type Client struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Identification string    `gorm:"column:identification;type:text;not null;uniqueIndex"`
	FirstName      string    `gorm:"column:first_name;not null"`
	LastName       string    `gorm:"column:last_name;not null"`
	Email          *string   `gorm:"column:email"`
	Phone          *string   `gorm:"column:phone"`
	Address        *string   `gorm:"column:address"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName joins the client's names for display and audit lines.
func (c Client) FullName() string {
	return c.FirstName + " " + c.LastName
}
