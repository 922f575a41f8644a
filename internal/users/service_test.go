package users

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/millennialbroker/broker-backend/pkg/config"
	"github.com/millennialbroker/broker-backend/pkg/db/models"
	"github.com/millennialbroker/broker-backend/pkg/enums"
	pkgerrors "github.com/millennialbroker/broker-backend/pkg/errors"
	"github.com/millennialbroker/broker-backend/pkg/security"
)

type stubUserRepo struct {
	created    *CreateUserDTO
	user       *models.User
	users      []models.User
	createErr  error
	findErr    error
	newHash    string
	activeFlag *bool
}

func (s *stubUserRepo) Create(_ context.Context, dto CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = &dto
	user := dto.ToModel()
	user.ID = uuid.New()
	return user, nil
}

func (s *stubUserRepo) FindByEmail(_ context.Context, _ string) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.user, nil
}

func (s *stubUserRepo) FindByID(_ context.Context, _ uuid.UUID) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.user, nil
}

func (s *stubUserRepo) List(_ context.Context) ([]models.User, error) {
	return s.users, nil
}

func (s *stubUserRepo) UpdatePasswordHash(_ context.Context, _ uuid.UUID, hash string) error {
	s.newHash = hash
	return nil
}

func (s *stubUserRepo) SetActive(_ context.Context, _ uuid.UUID, active bool) error {
	s.activeFlag = &active
	return nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newUsersService(t *testing.T, repo *stubUserRepo) Service {
	t.Helper()
	svc, err := NewService(repo, testPasswordConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func requireUserCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != want {
		t.Fatalf("expected code %s got %s", want, typed.Code())
	}
}

func TestServiceCreateIssuesTempPassword(t *testing.T) {
	repo := &stubUserRepo{}
	svc := newUsersService(t, repo)

	created, tempPassword, err := svc.Create(context.Background(), CreateUserInput{
		Email:    "  Maria.Lopez@MillennialBroker.com ",
		FullName: "Maria Lopez",
		Role:     enums.UserRoleOperador,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Email != "maria.lopez@millennialbroker.com" {
		t.Fatalf("expected normalized email, got %s", created.Email)
	}
	if len(tempPassword) != 16 {
		t.Fatalf("expected 16-char temp password, got %d", len(tempPassword))
	}
	if repo.created.PasswordHash == tempPassword {
		t.Fatal("plaintext password must not be stored")
	}
	valid, err := security.VerifyPassword(tempPassword, repo.created.PasswordHash)
	if err != nil || !valid {
		t.Fatalf("expected stored hash to verify against temp password, valid=%v err=%v", valid, err)
	}
}

func TestServiceCreateRejectsBadRole(t *testing.T) {
	svc := newUsersService(t, &stubUserRepo{})

	_, _, err := svc.Create(context.Background(), CreateUserInput{
		Email:    "ops@millennialbroker.com",
		FullName: "Ops",
		Role:     enums.UserRole("superuser"),
	})
	requireUserCode(t, err, pkgerrors.CodeValidation)
}

func TestServiceCreateDuplicateEmail(t *testing.T) {
	repo := &stubUserRepo{createErr: errors.New(`duplicate key value violates unique constraint "users_email_key"`)}
	svc := newUsersService(t, repo)

	_, _, err := svc.Create(context.Background(), CreateUserInput{
		Email:    "dup@millennialbroker.com",
		FullName: "Dup",
		Role:     enums.UserRoleConsulta,
	})
	requireUserCode(t, err, pkgerrors.CodeConflict)
}

func TestServiceResetPasswordRotatesHash(t *testing.T) {
	repo := &stubUserRepo{user: &models.User{
		ID:           uuid.New(),
		Email:        "ops@millennialbroker.com",
		PasswordHash: "old-hash",
		Role:         enums.UserRoleOperador,
		IsActive:     true,
	}}
	svc := newUsersService(t, repo)

	tempPassword, err := svc.ResetPassword(context.Background(), repo.user.ID)
	if err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if repo.newHash == "" || repo.newHash == "old-hash" {
		t.Fatalf("expected a fresh hash, got %q", repo.newHash)
	}
	valid, err := security.VerifyPassword(tempPassword, repo.newHash)
	if err != nil || !valid {
		t.Fatalf("expected new hash to verify, valid=%v err=%v", valid, err)
	}
}

func TestServiceSetActiveUnknownUser(t *testing.T) {
	repo := &stubUserRepo{findErr: gorm.ErrRecordNotFound}
	svc := newUsersService(t, repo)

	err := svc.SetActive(context.Background(), uuid.New(), false)
	requireUserCode(t, err, pkgerrors.CodeNotFound)
	if repo.activeFlag != nil {
		t.Fatal("repo should not be touched for unknown user")
	}
}

func TestServiceListMapsModels(t *testing.T) {
	repo := &stubUserRepo{users: []models.User{
		{ID: uuid.New(), Email: "a@millennialbroker.com", Role: enums.UserRoleAdmin, IsActive: true},
		{ID: uuid.New(), Email: "b@millennialbroker.com", Role: enums.UserRoleConsulta, IsActive: false},
	}}
	svc := newUsersService(t, repo)

	dtos, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(dtos) != 2 {
		t.Fatalf("expected 2 users got %d", len(dtos))
	}
	if dtos[0].Email != "a@millennialbroker.com" || dtos[1].IsActive {
		t.Fatalf("unexpected mapping: %+v", dtos)
	}
}
