package insurers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/millennialbroker/broker-backend/pkg/db/models"
	pkgerrors "github.com/millennialbroker/broker-backend/pkg/errors"
)

type stubInsurerRepo struct {
	insurers  map[uuid.UUID]*models.Insurer
	createErr error
}

func newStubInsurerRepo() *stubInsurerRepo {
	return &stubInsurerRepo{insurers: map[uuid.UUID]*models.Insurer{}}
}

func (s *stubInsurerRepo) Create(ctx context.Context, insurer *models.Insurer) (*models.Insurer, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	insurer.ID = uuid.New()
	s.insurers[insurer.ID] = insurer
	return insurer, nil
}

func (s *stubInsurerRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Insurer, error) {
	insurer, ok := s.insurers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return insurer, nil
}

func (s *stubInsurerRepo) List(ctx context.Context) ([]models.Insurer, error) {
	items := make([]models.Insurer, 0, len(s.insurers))
	for _, i := range s.insurers {
		items = append(items, *i)
	}
	return items, nil
}

func (s *stubInsurerRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	insurer := s.insurers[id]
	if v, ok := updates["name"].(string); ok {
		insurer.Name = v
	}
	if v, ok := updates["contact_email"].(string); ok {
		insurer.ContactEmail = &v
	}
	return nil
}

func TestCreateInsurerValidatesRUC(t *testing.T) {
	svc, err := NewService(newStubInsurerRepo())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInsurerInput{Name: "Seguros Equinoccial"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())

	dto, err := svc.Create(context.Background(), CreateInsurerInput{
		Name: " Seguros Equinoccial ",
		RUC:  " 1790012345001 ",
	})
	require.NoError(t, err)
	require.Equal(t, "Seguros Equinoccial", dto.Name)
	require.Equal(t, "1790012345001", dto.RUC)
}

func TestCreateInsurerDuplicateRUC(t *testing.T) {
	repo := newStubInsurerRepo()
	repo.createErr = errDuplicateRUC{}
	svc, err := NewService(repo)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInsurerInput{
		Name: "Seguros Sucre",
		RUC:  "1790012345001",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

type errDuplicateRUC struct{}

func (errDuplicateRUC) Error() string {
	return `duplicate key value violates unique constraint "idx_insurers_ruc"`
}

func TestUpdateInsurerContactOnly(t *testing.T) {
	repo := newStubInsurerRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	dto, err := svc.Create(context.Background(), CreateInsurerInput{
		Name: "Seguros Sucre",
		RUC:  "1790099999001",
	})
	require.NoError(t, err)

	email := "comercial@segurossucre.ec"
	updated, err := svc.Update(context.Background(), dto.ID, UpdateInsurerInput{ContactEmail: &email})
	require.NoError(t, err)
	require.Equal(t, "Seguros Sucre", updated.Name)
	require.NotNil(t, updated.ContactEmail)
	require.Equal(t, email, *updated.ContactEmail)
}
