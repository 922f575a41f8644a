package clients

import (
	"time"

	"github.com/google/uuid"

	"github.com/millennialbroker/broker-backend/pkg/db/models"
)

// ClientDTO is the transport shape returned by the clients API.
type ClientDTO struct {
	ID             uuid.UUID `json:"id"`
	Identification string    `json:"identification"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          *string   `json:"email,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	Address        *string   `json:"address,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateClientInput captures the fields accepted when registering a client.
type CreateClientInput struct {
	Identification string  `json:"identification" validate:"required"`
	FirstName      string  `json:"first_name" validate:"required"`
	LastName       string  `json:"last_name" validate:"required"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone          *string `json:"phone,omitempty"`
	Address        *string `json:"address,omitempty"`
}

// UpdateClientInput captures the mutable client fields. Nil means unchanged.
type UpdateClientInput struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
}

// ClientList is a cursor-paginated page of clients.
type ClientList struct {
	Items      []ClientDTO `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func FromModel(c *models.Client) *ClientDTO {
	if c == nil {
		return nil
	}
	return &ClientDTO{
		ID:             c.ID,
		Identification: c.Identification,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Email:          c.Email,
		Phone:          c.Phone,
		Address:        c.Address,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
