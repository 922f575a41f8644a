package policies

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/millennialbroker/broker-backend/pkg/db"
	"github.com/millennialbroker/broker-backend/pkg/db/models"
	"github.com/millennialbroker/broker-backend/pkg/enums"
	pkgerrors "github.com/millennialbroker/broker-backend/pkg/errors"
	"github.com/millennialbroker/broker-backend/pkg/pagination"
)

type policyRepository interface {
	Create(ctx context.Context, policy *models.Policy) (*models.Policy, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Policy, error)
	ListMovements(ctx context.Context, policyID uuid.UUID) ([]models.Movement, error)
	List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Policy, *string, error)
}

type clientFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

type insurerFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Insurer, error)
}

// Service exposes policy intake and lookup to the controllers. Status,
// premium, and the other contract fields change only through movements.
type Service interface {
	Create(ctx context.Context, input CreatePolicyInput) (*PolicyDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*PolicyDetail, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*PolicyList, error)
}

type service struct {
	repo     policyRepository
	clients  clientFinder
	insurers insurerFinder
}

// ServiceParams bundles the dependencies required to build a policies service.
type ServiceParams struct {
	Repo     policyRepository
	Clients  clientFinder
	Insurers insurerFinder
}

// NewService builds a policies service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("policies repository required")
	}
	if params.Clients == nil {
		return nil, fmt.Errorf("clients repository required")
	}
	if params.Insurers == nil {
		return nil, fmt.Errorf("insurers repository required")
	}
	return &service{
		repo:     params.Repo,
		clients:  params.Clients,
		insurers: params.Insurers,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreatePolicyInput) (*PolicyDTO, error) {
	policyNumber := strings.TrimSpace(input.PolicyNumber)
	if policyNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "policy number is required")
	}
	if input.NetPremium.IsNegative() || input.InsuredSum.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "premium and insured sum cannot be negative")
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start and end dates are required")
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must be after start date")
	}

	status := enums.PolicyStatusBorrador
	if input.Status != nil {
		// Intake accepts draft or issued. Every other status is reached
		// through movements.
		if *input.Status != enums.PolicyStatusBorrador && *input.Status != enums.PolicyStatusEmitida {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial status must be borrador or emitida")
		}
		status = *input.Status
	}

	if _, err := s.clients.FindByID(ctx, input.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load client")
	}
	if _, err := s.insurers.FindByID(ctx, input.InsurerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "insurer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load insurer")
	}

	policy := &models.Policy{
		PolicyNumber:     policyNumber,
		ClientID:         input.ClientID,
		InsurerID:        input.InsurerID,
		Status:           status,
		NetPremium:       input.NetPremium.Round(2),
		InsuredSum:       input.InsuredSum.Round(2),
		Beneficiary:      input.Beneficiary,
		AppliedMovements: []string{},
		StartDate:        input.StartDate,
		EndDate:          input.EndDate,
	}
	created, err := s.repo.Create(ctx, policy)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a policy with that number already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create policy")
	}
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*PolicyDetail, error) {
	policy, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "policy not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load policy")
	}

	movements, err := s.repo.ListMovements(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load policy movements")
	}

	return &PolicyDetail{
		PolicyDTO: *FromModel(policy),
		Movements: movements,
	}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) (*PolicyList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}

	items, nextCursor, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list policies")
	}
	list := &PolicyList{Items: make([]PolicyDTO, 0, len(items))}
	for i := range items {
		list.Items = append(list.Items, *FromModel(&items[i]))
	}
	if nextCursor != nil {
		list.NextCursor = *nextCursor
	}
	return list, nil
}
