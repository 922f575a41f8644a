package movements

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/millennialbroker/broker-backend/internal/fiscal"
	"github.com/millennialbroker/broker-backend/pkg/db"
	"github.com/millennialbroker/broker-backend/pkg/db/models"
	"github.com/millennialbroker/broker-backend/pkg/enums"
	pkgerrors "github.com/millennialbroker/broker-backend/pkg/errors"
	"github.com/millennialbroker/broker-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type clock func() time.Time

// Service defines movement lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Movement, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Movement, error)
	List(ctx context.Context, params pagination.Params, filters Filters) (*List, error)
	Approve(ctx context.Context, id uuid.UUID) (*models.Movement, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Apply(ctx context.Context, input ApplyInput) (*ApplyResult, error)
	ListDocuments(ctx context.Context, params pagination.Params, filters DocumentFilters) (*DocumentList, error)
}

type service struct {
	repo Repository
	tx   txRunner
	now  clock
}

// NewService builds a movements service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("movements repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo: repo,
		tx:   tx,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Movement, error) {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movement code required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown movement type %q", input.Type))
	}
	if input.PolicyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "policy id required")
	}

	entry, _ := Lookup(input.Type)
	if entry.RequiresPremium && input.NewPremium == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("movement %q requires a new premium", input.Type))
	}
	if entry.RequiresInsuredSum && input.NewInsuredSum == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("movement %q requires a new insured sum", input.Type))
	}
	if entry.RequiresAnyValue && input.NewPremium == nil && input.NewInsuredSum == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("movement %q requires a new premium or insured sum", input.Type))
	}
	if input.NewPremium != nil && input.NewPremium.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "new premium cannot be negative")
	}
	if input.NewInsuredSum != nil && input.NewInsuredSum.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "new insured sum cannot be negative")
	}

	policy, err := s.repo.FindPolicy(ctx, input.PolicyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "policy not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load policy")
	}

	requestedDate := input.RequestedDate
	if requestedDate.IsZero() {
		requestedDate = s.now()
	}

	movement := &models.Movement{
		Code:           code,
		Type:           input.Type,
		PolicyID:       policy.ID,
		ClientID:       policy.ClientID,
		Status:         enums.MovementStatusProceso,
		RequestedDate:  requestedDate,
		NewPremium:     input.NewPremium,
		NewInsuredSum:  input.NewInsuredSum,
		NewBeneficiary: input.NewBeneficiary,
		NewAddress:     input.NewAddress,
		IssuanceFee:    input.IssuanceFee,
		OtherCharges:   input.OtherCharges,
		Observations:   input.Observations,
	}
	if input.ActorUserID != uuid.Nil {
		actor := input.ActorUserID
		movement.CreatedBy = &actor
	}

	created, err := s.repo.CreateMovement(ctx, movement)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("movement code %q already exists", code))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create movement")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Movement, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movement id required")
	}
	movement, err := s.repo.FindMovement(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "movement not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load movement")
	}
	return movement, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) (*List, error) {
	list, err := s.repo.ListMovements(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list movements")
	}
	return list, nil
}

func (s *service) Approve(ctx context.Context, id uuid.UUID) (*models.Movement, error) {
	movement, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch movement.Status {
	case enums.MovementStatusAplicado:
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyApplied, "movement already applied")
	case enums.MovementStatusAprobado:
		return movement, nil
	}
	if err := s.repo.UpdateMovement(ctx, movement.ID, map[string]any{"status": enums.MovementStatusAprobado}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve movement")
	}
	movement.Status = enums.MovementStatusAprobado
	return movement, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	movement, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if movement.IsApplied() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "applied movements cannot be deleted")
	}
	if err := s.repo.DeleteMovement(ctx, movement.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete movement")
	}
	return nil
}

func (s *service) ListDocuments(ctx context.Context, params pagination.Params, filters DocumentFilters) (*DocumentList, error) {
	list, err := s.repo.ListFinancialDocuments(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list financial documents")
	}
	return list, nil
}

// Apply runs one endorsement application as a single transaction: policy
// update, optional derivative insert, and movement finalization commit or
// roll back together. The policy is re-read inside the transaction and its
// update is version-guarded, so directional checks always run against the
// latest committed values.
func (s *service) Apply(ctx context.Context, input ApplyInput) (*ApplyResult, error) {
	if input.MovementID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movement id required")
	}

	var result *ApplyResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		movement, err := repo.FindMovement(ctx, input.MovementID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "movement not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load movement")
		}
		if movement.IsApplied() {
			return pkgerrors.New(pkgerrors.CodeAlreadyApplied, "movement already applied")
		}

		policy, err := repo.FindPolicy(ctx, movement.PolicyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "policy not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load policy")
		}

		decision := EvaluateTransition(policy.Status, movement.Type, input.ConfirmVoid)
		if !decision.Allowed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, decision.Reason)
		}

		entry, ok := Lookup(movement.Type)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown movement type %q", movement.Type))
		}

		if err := validateDirection(entry, movement, policy); err != nil {
			return err
		}

		now := s.now()
		applied := &ApplyResult{Movement: movement, Policy: policy, NoOp: decision.NoOp}

		var breakdown *fiscal.Breakdown
		if entry.WritesPremium && movement.NewPremium != nil {
			bd := fiscal.Compute(*movement.NewPremium, movement.IssuanceFee, movement.OtherCharges)
			breakdown = &bd
			applied.Breakdown = breakdown
		}

		if !decision.NoOp {
			if err := s.applyPolicyWrites(ctx, repo, entry, movement, policy, decision, breakdown, input.ActorUserID, now); err != nil {
				return err
			}
		}

		var documentRef *string
		if input.EmitDocument && entry.EmitsDerivative && breakdown != nil {
			doc := &models.FinancialDocument{
				Type:       entry.DerivativeType(),
				PolicyID:   policy.ID,
				MovementID: movement.ID,
				ClientID:   movement.ClientID,
				IssueDate:  now,
				NetAmount:  breakdown.NetPremium,
				Taxes:      breakdown.Taxes(),
				VAT:        breakdown.VAT,
				Total:      breakdown.Total,
				Status:     enums.FinancialDocumentStatusEmitida,
			}
			created, err := repo.CreateFinancialDocument(ctx, doc)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create financial document")
			}
			applied.Document = created
			ref := created.ID.String()
			documentRef = &ref
		}

		movementUpdates := map[string]any{
			"status":     enums.MovementStatusAplicado,
			"applied_at": now,
		}
		if documentRef != nil {
			movementUpdates["document_ref"] = *documentRef
		}
		if err := repo.UpdateMovement(ctx, movement.ID, movementUpdates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize movement")
		}

		movement.Status = enums.MovementStatusAplicado
		movement.AppliedAt = &now
		movement.DocumentRef = documentRef
		result = applied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyPolicyWrites builds the policy updates permitted by the catalog entry
// and persists them guarded by the version counter.
func (s *service) applyPolicyWrites(
	ctx context.Context,
	repo Repository,
	entry CatalogEntry,
	movement *models.Movement,
	policy *models.Policy,
	decision GuardDecision,
	breakdown *fiscal.Breakdown,
	actor uuid.UUID,
	now time.Time,
) error {
	updates := map[string]any{}
	var changed []string

	if breakdown != nil {
		updates["net_premium"] = breakdown.NetPremium
		policy.NetPremium = breakdown.NetPremium
		changed = append(changed, "net_premium")
	}
	if entry.WritesInsuredSum && movement.NewInsuredSum != nil {
		updates["insured_sum"] = movement.NewInsuredSum.Round(2)
		policy.InsuredSum = movement.NewInsuredSum.Round(2)
		changed = append(changed, "insured_sum")
	}
	if entry.WritesBeneficiary && movement.NewBeneficiary != nil {
		updates["beneficiary"] = *movement.NewBeneficiary
		policy.Beneficiary = movement.NewBeneficiary
		changed = append(changed, "beneficiary")
	}

	observations := policy.Observations
	if entry.WritesObservations {
		// Clarifying annexes replace the observations text wholesale
		// before the audit line is appended.
		observations = movement.Observations
		changed = append(changed, "observations")
	}
	if decision.ResultingStatus != nil {
		updates["status"] = *decision.ResultingStatus
		policy.Status = *decision.ResultingStatus
		changed = append(changed, "status")
	}

	observations = appendAuditLine(observations, now, movement.Type, actor, changed)
	updates["observations"] = observations
	policy.Observations = observations

	if !policy.HasAppliedMovement(movement.Code) {
		policy.AppliedMovements = append(policy.AppliedMovements, movement.Code)
	}
	// Map-based Updates bypasses the model's json serializer, so the ledger
	// must be marshalled by hand or the column ends up non-JSON.
	appliedJSON, err := json.Marshal(policy.AppliedMovements)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode applied movements")
	}
	updates["applied_movements"] = string(appliedJSON)

	expectedVersion := policy.Version
	updates["version"] = expectedVersion + 1

	rows, err := repo.UpdatePolicyVersioned(ctx, policy.ID, expectedVersion, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update policy")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "policy was modified concurrently, retry the movement")
	}
	policy.Version = expectedVersion + 1
	return nil
}

// validateDirection enforces the strict increase/decrease rules for premium
// and insured-sum movements. Equality is rejected as a no-op.
func validateDirection(entry CatalogEntry, movement *models.Movement, policy *models.Policy) error {
	if entry.Direction == DirectionNeutral {
		return nil
	}

	var current, requested decimal.Decimal
	var field string
	switch {
	case entry.RequiresInsuredSum:
		if movement.NewInsuredSum == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("movement %q requires a new insured sum", movement.Type))
		}
		current = policy.InsuredSum
		requested = *movement.NewInsuredSum
		field = "insured sum"
	default:
		if movement.NewPremium == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("movement %q requires a new premium", movement.Type))
		}
		current = policy.NetPremium
		requested = *movement.NewPremium
		field = "premium"
	}

	if requested.Equal(current) {
		return pkgerrors.New(pkgerrors.CodeNoChange, fmt.Sprintf("new %s matches current %s of %s", field, field, current.StringFixed(2)))
	}

	switch entry.Direction {
	case DirectionIncrease:
		if requested.LessThan(current) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("new %s must exceed current %s of %s", field, field, current.StringFixed(2)))
		}
	case DirectionDecrease:
		if !current.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("current %s must be positive to decrease it", field))
		}
		if requested.GreaterThan(current) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("new %s must be below current %s of %s", field, field, current.StringFixed(2)))
		}
	}
	return nil
}

func appendAuditLine(observations string, now time.Time, mt enums.MovementType, actor uuid.UUID, changed []string) string {
	fields := "status"
	if len(changed) > 0 {
		fields = strings.Join(changed, ", ")
	}
	line := fmt.Sprintf("[%s] movimiento %s: %s", now.Format(time.RFC3339), mt, fields)
	if actor != uuid.Nil {
		line = fmt.Sprintf("[%s] movimiento %s por %s: %s", now.Format(time.RFC3339), mt, actor, fields)
	}
	if strings.TrimSpace(observations) == "" {
		return line
	}
	return observations + "\n" + line
}
