package movements

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/millennialbroker/broker-backend/pkg/db/models"
	"github.com/millennialbroker/broker-backend/pkg/enums"
	pkgerrors "github.com/millennialbroker/broker-backend/pkg/errors"
	"github.com/millennialbroker/broker-backend/pkg/pagination"
)

type stubRepo struct {
	movement *models.Movement
	policy   *models.Policy

	policyUpdates   map[string]any
	movementUpdates map[string]any
	documents       []*models.FinancialDocument
	deleted         bool

	createMovementErr error
	createDocumentErr error
	versionRows       *int64
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubRepo) CreateMovement(ctx context.Context, movement *models.Movement) (*models.Movement, error) {
	if s.createMovementErr != nil {
		return nil, s.createMovementErr
	}
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	return movement, nil
}

func (s *stubRepo) FindMovement(ctx context.Context, id uuid.UUID) (*models.Movement, error) {
	if s.movement == nil || s.movement.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.movement, nil
}

func (s *stubRepo) FindMovementByCode(ctx context.Context, code string) (*models.Movement, error) {
	if s.movement == nil || s.movement.Code != code {
		return nil, gorm.ErrRecordNotFound
	}
	return s.movement, nil
}

func (s *stubRepo) ListMovements(ctx context.Context, params pagination.Params, filters Filters) (*List, error) {
	if s.movement == nil {
		return &List{}, nil
	}
	return &List{Items: []models.Movement{*s.movement}}, nil
}

func (s *stubRepo) UpdateMovement(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.movementUpdates = updates
	return nil
}

func (s *stubRepo) DeleteMovement(ctx context.Context, id uuid.UUID) error {
	s.deleted = true
	return nil
}

func (s *stubRepo) FindPolicy(ctx context.Context, id uuid.UUID) (*models.Policy, error) {
	if s.policy == nil || s.policy.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.policy, nil
}

func (s *stubRepo) UpdatePolicyVersioned(ctx context.Context, id uuid.UUID, expectedVersion int64, updates map[string]any) (int64, error) {
	s.policyUpdates = updates
	if s.versionRows != nil {
		return *s.versionRows, nil
	}
	return 1, nil
}

func (s *stubRepo) CreateFinancialDocument(ctx context.Context, doc *models.FinancialDocument) (*models.FinancialDocument, error) {
	if s.createDocumentErr != nil {
		return nil, s.createDocumentErr
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	s.documents = append(s.documents, doc)
	return doc, nil
}

func (s *stubRepo) ListFinancialDocuments(ctx context.Context, params pagination.Params, filters DocumentFilters) (*DocumentList, error) {
	out := &DocumentList{}
	for _, doc := range s.documents {
		out.Items = append(out.Items, *doc)
	}
	return out, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{})
	require.NoError(t, err)
	return svc
}

func activePolicy(premium, insuredSum int64) *models.Policy {
	return &models.Policy{
		ID:           uuid.New(),
		PolicyNumber: "POL-001",
		ClientID:     uuid.New(),
		InsurerID:    uuid.New(),
		Status:       enums.PolicyStatusActiva,
		NetPremium:   decimal.NewFromInt(premium),
		InsuredSum:   decimal.NewFromInt(insuredSum),
		Version:      3,
	}
}

func movementFor(policy *models.Policy, mt enums.MovementType) *models.Movement {
	return &models.Movement{
		ID:            uuid.New(),
		Code:          "MOV-001",
		Type:          mt,
		PolicyID:      policy.ID,
		ClientID:      policy.ClientID,
		Status:        enums.MovementStatusProceso,
		RequestedDate: time.Now().UTC(),
	}
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code())
}

func TestApplySimpleActivation(t *testing.T) {
	policy := activePolicy(500, 10000)
	policy.Status = enums.PolicyStatusBorrador
	movement := movementFor(policy, enums.MovementTypeActivacion)
	repo := &stubRepo{movement: movement, policy: policy}
	svc := newTestService(t, repo)

	result, err := svc.Apply(context.Background(), ApplyInput{MovementID: movement.ID})
	require.NoError(t, err)

	require.Equal(t, enums.PolicyStatusActiva, result.Policy.Status)
	require.Equal(t, enums.MovementStatusAplicado, result.Movement.Status)
	require.Equal(t, enums.PolicyStatusActiva, repo.policyUpdates["status"])
	require.Equal(t, int64(4), repo.policyUpdates["version"])
	require.Contains(t, result.Policy.AppliedMovements, movement.Code)
	require.NotNil(t, result.Movement.AppliedAt)
}

func TestApplyAlreadyAppliedIsIdempotent(t *testing.T) {
	policy := activePolicy(500, 10000)
	movement := movementFor(policy, enums.MovementTypeActivacion)
	movement.Status = enums.MovementStatusAplicado
	repo := &stubRepo{movement: movement, policy: policy}
	svc := newTestService(t, repo)

	_, err := svc.Apply(context.Background(), ApplyInput{MovementID: movement.ID})
	requireCode(t, err, pkgerrors.CodeAlreadyApplied)
	require.Nil(t, repo.policyUpdates, "policy must stay untouched")
}

func TestApplyEqualPremiumRejectedAsNoChange(t *testing.T) {
	policy := activePolicy(500, 10000)
	movement := movementFor(policy, enums.MovementTypeAumentoPrima)
	newPremium := decimal.NewFromInt(500)
	movement.NewPremium = &newPremium
	repo := &stubRepo{movement: movement, policy: policy}
	svc := newTestService(t, repo)

	_, err := svc.Apply(context.Background(), ApplyInput{MovementID: movement.ID})
	requireCode(t, err, pkgerrors.CodeNoChange)
	require.Nil(t, repo.policyUpdates)
}

func TestApplyIncreaseBelowCurrentRejected(t *testing.T) {
	policy := activePolicy(500, 10000)
	movement := movementFor(policy, enums.MovementTypeAumentoPrima)
	newPremium := decimal.NewFromInt(400)
	movement.NewPremium = &newPremium
	repo := &stubRepo{movement: movement, policy: policy}
	svc := newTestService(t, repo)

	_, err := svc.Apply(context.Background(), ApplyInput{MovementID: movement.ID})
	requireCode(t, err, pkgerrors.CodeValidation)
	require.Contains(t, err.Error(), "must exceed current premium of 500.00")
}

func TestApplyPremiumIncreaseEmitsInvoice(t *testing.T) {
	policy := activePolicy(500, 10000)
	movement := movementFor(policy, enums.MovementTypeAumentoPrima)
	newPremium := decimal.NewFromInt(1000)
	movement.NewPremium = &newPremium
	movement.IssuanceFee = decimal.NewFromInt(10)
	movement.OtherCharges = decimal.NewFromInt(5)
	repo := &stubRepo{movement: movement, policy: policy}
	svc := newTestService(t, repo)

	result, err := svc.Apply(context.Background(), ApplyInput{MovementID: movement.ID, EmitDocument: true})
	require.NoError(t, err)

	require.NotNil(t, result.Document)
	require.Equal(t, enums.FinancialDocumentTypeFactura, result.Document.Type)
	require.True(t, result.Document.Total.Equal(decimal.NewFromInt(1173)), "total: %s", result.Document.Total)
	require.True(t, result.Document.VAT.Equal(decimal.NewFromInt(153)), "vat: %s", result.Document.VAT)
	require.True(t, result.Policy.NetPremium.Equal(decimal.NewFromInt(1000)))
	require.Equal(t, result.Document.ID.String(), *result.Movement.DocumentRef)
}

func TestApplyPremiumDecreaseEmitsCreditNote(t *testing.T) {
	policy := activePolicy(1000, 10000)
	movement := movementFor(policy, enums.MovementTypeDisminucionPrima)
	newPremium := decimal.NewFromInt(600)
	movement.NewPremium = &newPremium
	repo := &stubRepo{movement: movement, policy: policy}
	svc := newTestService(t, repo)

	result, err := svc.Apply(context.Background(), ApplyInput{MovementID: movement.ID, EmitDocument: true})
	require.NoError(t, err)

	require.NotNil(t, result.Document)
	require.Equal(t, enums.FinancialDocumentTypeNotaCredito, result.Document.Type)
	require.True(t, result.Policy.NetPremium.Equal(decimal.NewFromInt(600)))
}

func TestApplyWithoutOptInSkipsDocument(t *testing.T) {
	policy := activePolicy(500, 10000)
	movement := movementFor(policy, enums.MovementTypeAumentoPrima)
	newPremium := decimal.NewFromInt(800)
	movement.NewPremium = &newPremium
	repo := &stubRepo{movement: movement, policy: policy}
	svc := newTestService(t, repo)

	result, err := svc.Apply(context.Background(), ApplyInput{MovementID: movement.ID})
	require.NoError(t, err)
	require.Nil(t, result.Document)
	require.Empty(t, repo.documents)
	require.NotNil(t, result.Breakdown)
}

func TestApplyInsuredSumDirection(t *testing.T) {
	policy := activePolicy(500, 10000)
	movement := movementFor(policy, enums.MovementTypeDisminucionSumaAsegurada)
	newSum := decimal.NewFromInt(12000)
	movement.NewInsuredSum = &newSum
	repo := &stubRepo{movement: movement, policy: policy}
	svc := newTestService(t, repo)

	_, err := svc.Apply(context.Background(), ApplyInput{MovementID: movement.ID})
	requireCode(t, err, pkgerrors.CodeValidation)
	require.Contains(t, err.Error(), "below current insured sum")
}

func TestApplyBeneficiaryEndorsement(t *testing.T) {
	policy := activePolicy(500, 10000)
	policy.Status = enums.PolicyStatusEmitida
	movement := movementFor(policy, enums.MovementTypeEndosoBeneficiario)
	beneficiary := "María Elena Vásquez"
	movement.NewBeneficiary = &beneficiary
	repo := &stubRepo{movement: movement, policy: policy}
	svc := newTestService(t, repo)

	result, err := svc.Apply(context.Background(), ApplyInput{MovementID: movement.ID})
	require.NoError(t, err)
	require.Equal(t, beneficiary, *result.Policy.Beneficiary)
	// beneficiary endorsements never change status
	require.Equal(t, enums.PolicyStatusEmitida, result.Policy.Status)
	require.NotContains(t, repo.policyUpdates, "status")
}

func TestApplyAnexoReplacesObservations(t *testing.T) {
	policy := activePolicy(500, 10000)
	policy.Observations = "texto original"
	movement := movementFor(policy, enums.MovementTypeAnexoAclaratorio)
	movement.Observations = "aclaración completa del contrato"
	repo := &stubRepo{movement: movement, policy: policy}
	svc := newTestService(t, repo)

	result, err := svc.Apply(context.Background(), ApplyInput{MovementID: movement.ID})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(result.Policy.Observations, "aclaración completa del contrato"))
	require.NotContains(t, result.Policy.Observations, "texto original")
	require.Contains(t, result.Policy.Observations, "movimiento anexo_aclaratorio")
}

func TestApplyVersionConflict(t *testing.T) {
	policy := activePolicy(500, 10000)
	movement := movementFor(policy, enums.MovementTypeCancelacion)
	rows := int64(0)
	repo := &stubRepo{movement: movement, policy: policy, versionRows: &rows}
	svc := newTestService(t, repo)

	_, err := svc.Apply(context.Background(), ApplyInput{MovementID: movement.ID})
	requireCode(t, err, pkgerrors.CodeConflict)
	require.Nil(t, repo.movementUpdates, "movement must not finalize on conflict")
}

func TestApplyRepeatedVoidIsNoOp(t *testing.T) {
	policy := activePolicy(500, 10000)
	policy.Status = enums.PolicyStatusAnulada
	movement := movementFor(policy, enums.MovementTypeAnulacion)
	repo := &stubRepo{movement: movement, policy: policy}
	svc := newTestService(t, repo)

	result, err := svc.Apply(context.Background(), ApplyInput{MovementID: movement.ID, ConfirmVoid: true})
	require.NoError(t, err)
	require.True(t, result.NoOp)
	require.Nil(t, repo.policyUpdates, "repeated void leaves the policy untouched")
	require.Equal(t, enums.MovementStatusAplicado, result.Movement.Status)
}

func TestApplyTransitionTable(t *testing.T) {
	cases := []struct {
		status  enums.PolicyStatus
		mt      enums.MovementType
		confirm bool
		allowed bool
	}{
		{enums.PolicyStatusBorrador, enums.MovementTypeActivacion, false, true},
		{enums.PolicyStatusActiva, enums.MovementTypeActivacion, false, false},
		{enums.PolicyStatusBorrador, enums.MovementTypeAumentoPrima, false, false},
		{enums.PolicyStatusActiva, enums.MovementTypeAumentoPrima, false, true},
		{enums.PolicyStatusEmitida, enums.MovementTypeCancelacion, false, true},
		{enums.PolicyStatusVencida, enums.MovementTypeCancelacion, false, false},
		{enums.PolicyStatusVencida, enums.MovementTypeRehabilitacion, false, false},
		{enums.PolicyStatusCancelada, enums.MovementTypeRehabilitacion, false, true},
		{enums.PolicyStatusCancelada, enums.MovementTypeAumentoPrima, false, false},
		{enums.PolicyStatusBorrador, enums.MovementTypeAnulacion, false, false},
		{enums.PolicyStatusBorrador, enums.MovementTypeAnulacion, true, true},
		{enums.PolicyStatusVencida, enums.MovementTypeAnulacion, true, true},
		{enums.PolicyStatusCancelada, enums.MovementTypeAnulacion, true, true},
		{enums.PolicyStatusPendientePago, enums.MovementTypeEndosoBeneficiario, false, true},
		{enums.PolicyStatusPagada, enums.MovementTypeRenovacion, false, true},
		{enums.PolicyStatusAnulada, enums.MovementTypeRenovacion, false, false},
	}

	for _, tc := range cases {
		name := fmt.Sprintf("%s_%s_confirm=%v", tc.status, tc.mt, tc.confirm)
		t.Run(name, func(t *testing.T) {
			policy := activePolicy(500, 10000)
			policy.Status = tc.status
			movement := movementFor(policy, tc.mt)
			if tc.mt == enums.MovementTypeAumentoPrima {
				p := decimal.NewFromInt(900)
				movement.NewPremium = &p
			}
			repo := &stubRepo{movement: movement, policy: policy}
			svc := newTestService(t, repo)

			_, err := svc.Apply(context.Background(), ApplyInput{MovementID: movement.ID, ConfirmVoid: tc.confirm})
			if tc.allowed {
				require.NoError(t, err)
			} else {
				requireCode(t, err, pkgerrors.CodeStateConflict)
			}
		})
	}
}

func TestCreateRequiresCode(t *testing.T) {
	svc := newTestService(t, &stubRepo{})

	_, err := svc.Create(context.Background(), CreateInput{
		Code:     "  ",
		Type:     enums.MovementTypeActivacion,
		PolicyID: uuid.New(),
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateDuplicateCode(t *testing.T) {
	policy := activePolicy(500, 10000)
	repo := &stubRepo{
		policy:            policy,
		createMovementErr: fmt.Errorf(`duplicate key value violates unique constraint "movements_code_key"`),
	}
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), CreateInput{
		Code:     "MOV-001",
		Type:     enums.MovementTypeActivacion,
		PolicyID: policy.ID,
	})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestCreateRequiresPayloadForPremiumTypes(t *testing.T) {
	policy := activePolicy(500, 10000)
	repo := &stubRepo{policy: policy}
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), CreateInput{
		Code:     "MOV-002",
		Type:     enums.MovementTypeAumentoPrima,
		PolicyID: policy.ID,
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateDenormalizesClient(t *testing.T) {
	policy := activePolicy(500, 10000)
	repo := &stubRepo{policy: policy}
	svc := newTestService(t, repo)

	created, err := svc.Create(context.Background(), CreateInput{
		Code:     "MOV-003",
		Type:     enums.MovementTypeCancelacion,
		PolicyID: policy.ID,
	})
	require.NoError(t, err)
	require.Equal(t, policy.ClientID, created.ClientID)
	require.Equal(t, enums.MovementStatusProceso, created.Status)
}

func TestCreateRenovacionRequiresSomeValue(t *testing.T) {
	policy := activePolicy(500, 10000)
	repo := &stubRepo{policy: policy}
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), CreateInput{
		Code:     "MOV-004",
		Type:     enums.MovementTypeRenovacion,
		PolicyID: policy.ID,
	})
	requireCode(t, err, pkgerrors.CodeValidation)
	require.Contains(t, err.Error(), "requires a new premium or insured sum")

	newPremium := decimal.NewFromInt(600)
	created, err := svc.Create(context.Background(), CreateInput{
		Code:       "MOV-005",
		Type:       enums.MovementTypeRenovacion,
		PolicyID:   policy.ID,
		NewPremium: &newPremium,
	})
	require.NoError(t, err)
	require.NotNil(t, created.NewPremium)
}

func TestCreateStampsActor(t *testing.T) {
	policy := activePolicy(500, 10000)
	repo := &stubRepo{policy: policy}
	svc := newTestService(t, repo)
	actor := uuid.New()

	created, err := svc.Create(context.Background(), CreateInput{
		Code:        "MOV-006",
		Type:        enums.MovementTypeCancelacion,
		PolicyID:    policy.ID,
		ActorUserID: actor,
	})
	require.NoError(t, err)
	require.NotNil(t, created.CreatedBy)
	require.Equal(t, actor, *created.CreatedBy)

	anonymous, err := svc.Create(context.Background(), CreateInput{
		Code:     "MOV-007",
		Type:     enums.MovementTypeCancelacion,
		PolicyID: policy.ID,
	})
	require.NoError(t, err)
	require.Nil(t, anonymous.CreatedBy)
}

func TestApplyAuditLineRecordsActor(t *testing.T) {
	policy := activePolicy(500, 10000)
	movement := movementFor(policy, enums.MovementTypeAumentoPrima)
	newPremium := decimal.NewFromInt(1000)
	movement.NewPremium = &newPremium
	repo := &stubRepo{movement: movement, policy: policy}
	svc := newTestService(t, repo)
	actor := uuid.New()

	result, err := svc.Apply(context.Background(), ApplyInput{MovementID: movement.ID, ActorUserID: actor})
	require.NoError(t, err)

	observations, ok := repo.policyUpdates["observations"].(string)
	require.True(t, ok, "observations update missing")
	require.Contains(t, observations, "por "+actor.String())
	require.Contains(t, result.Policy.Observations, actor.String())
}

func TestApproveLifecycle(t *testing.T) {
	policy := activePolicy(500, 10000)
	movement := movementFor(policy, enums.MovementTypeCancelacion)
	repo := &stubRepo{movement: movement, policy: policy}
	svc := newTestService(t, repo)

	approved, err := svc.Approve(context.Background(), movement.ID)
	require.NoError(t, err)
	require.Equal(t, enums.MovementStatusAprobado, approved.Status)

	// approving twice is a no-op
	approved, err = svc.Approve(context.Background(), movement.ID)
	require.NoError(t, err)
	require.Equal(t, enums.MovementStatusAprobado, approved.Status)

	movement.Status = enums.MovementStatusAplicado
	_, err = svc.Approve(context.Background(), movement.ID)
	requireCode(t, err, pkgerrors.CodeAlreadyApplied)
}

func TestDeleteRejectsApplied(t *testing.T) {
	policy := activePolicy(500, 10000)
	movement := movementFor(policy, enums.MovementTypeCancelacion)
	movement.Status = enums.MovementStatusAplicado
	repo := &stubRepo{movement: movement, policy: policy}
	svc := newTestService(t, repo)

	err := svc.Delete(context.Background(), movement.ID)
	requireCode(t, err, pkgerrors.CodeStateConflict)
	require.False(t, repo.deleted)

	movement.Status = enums.MovementStatusProceso
	require.NoError(t, svc.Delete(context.Background(), movement.ID))
	require.True(t, repo.deleted)
}
