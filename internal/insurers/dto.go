package insurers

import (
	"time"

	"github.com/google/uuid"

	"github.com/millennialbroker/broker-backend/pkg/db/models"
)

// InsurerDTO is the transport shape returned by the insurers API.
type InsurerDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	RUC          string    `json:"ruc"`
	ContactName  *string   `json:"contact_name,omitempty"`
	ContactEmail *string   `json:"contact_email,omitempty"`
	ContactPhone *string   `json:"contact_phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateInsurerInput captures the fields accepted when registering an insurer.
type CreateInsurerInput struct {
	Name         string  `json:"name" validate:"required"`
	RUC          string  `json:"ruc" validate:"required"`
	ContactName  *string `json:"contact_name,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone,omitempty"`
}

// UpdateInsurerInput captures the mutable insurer fields. Nil means unchanged.
type UpdateInsurerInput struct {
	Name         *string `json:"name,omitempty"`
	ContactName  *string `json:"contact_name,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone,omitempty"`
}

func FromModel(i *models.Insurer) *InsurerDTO {
	if i == nil {
		return nil
	}
	return &InsurerDTO{
		ID:           i.ID,
		Name:         i.Name,
		RUC:          i.RUC,
		ContactName:  i.ContactName,
		ContactEmail: i.ContactEmail,
		ContactPhone: i.ContactPhone,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}
