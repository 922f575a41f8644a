package insurers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/millennialbroker/broker-backend/pkg/db"
	"github.com/millennialbroker/broker-backend/pkg/db/models"
	pkgerrors "github.com/millennialbroker/broker-backend/pkg/errors"
)

type insurerRepository interface {
	Create(ctx context.Context, insurer *models.Insurer) (*models.Insurer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Insurer, error)
	List(ctx context.Context) ([]models.Insurer, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

// Service exposes insurer operations to the controllers.
type Service interface {
	Create(ctx context.Context, input CreateInsurerInput) (*InsurerDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*InsurerDTO, error)
	List(ctx context.Context) ([]InsurerDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInsurerInput) (*InsurerDTO, error)
}

type service struct {
	repo insurerRepository
}

// NewService builds an insurers service with the provided repository.
func NewService(repo insurerRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("insurers repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInsurerInput) (*InsurerDTO, error) {
	name := strings.TrimSpace(input.Name)
	ruc := strings.TrimSpace(input.RUC)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if ruc == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ruc is required")
	}

	insurer := &models.Insurer{
		Name:         name,
		RUC:          ruc,
		ContactName:  input.ContactName,
		ContactEmail: input.ContactEmail,
		ContactPhone: input.ContactPhone,
	}
	created, err := s.repo.Create(ctx, insurer)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an insurer with that ruc already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create insurer")
	}
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*InsurerDTO, error) {
	insurer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "insurer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load insurer")
	}
	return FromModel(insurer), nil
}

func (s *service) List(ctx context.Context) ([]InsurerDTO, error) {
	insurers, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list insurers")
	}
	dtos := make([]InsurerDTO, 0, len(insurers))
	for i := range insurers {
		dtos = append(dtos, *FromModel(&insurers[i]))
	}
	return dtos, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInsurerInput) (*InsurerDTO, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.ContactName != nil {
		updates["contact_name"] = *input.ContactName
	}
	if input.ContactEmail != nil {
		updates["contact_email"] = *input.ContactEmail
	}
	if input.ContactPhone != nil {
		updates["contact_phone"] = *input.ContactPhone
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update insurer")
	}
	return s.Get(ctx, id)
}
