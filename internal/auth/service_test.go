package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/millennialbroker/broker-backend/pkg/auth"
	"github.com/millennialbroker/broker-backend/pkg/auth/session"
	"github.com/millennialbroker/broker-backend/pkg/config"
	"github.com/millennialbroker/broker-backend/pkg/db/models"
	"github.com/millennialbroker/broker-backend/pkg/enums"
	pkgerrors "github.com/millennialbroker/broker-backend/pkg/errors"
	"github.com/millennialbroker/broker-backend/pkg/security"
)

func TestServiceLoginIssuesTokens(t *testing.T) {
	password := "operator-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "operador@millennialbroker.ec",
		PasswordHash: mustHashPassword(t, password),
		FullName:     "Carla Paredes",
		Role:         enums.UserRoleOperador,
		IsActive:     true,
	}
	cfg := testJWTConfig()

	svc, _, err := buildTestService(user, cfg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "  Operador@MillennialBroker.ec ",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.UserRoleOperador {
		t.Fatalf("expected operador role claim, got %s", claims.Role)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id claim %s, got %s", user.ID, claims.UserID)
	}
	if resp.RefreshToken == "" {
		t.Fatalf("expected refresh token to be set")
	}
	if resp.User == nil || resp.User.LastLoginAt == nil {
		t.Fatalf("expected last login to be recorded")
	}
}

func TestServiceLoginWrongPassword(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "consulta@millennialbroker.ec",
		PasswordHash: mustHashPassword(t, "right-password"),
		FullName:     "Luis Vera",
		Role:         enums.UserRoleConsulta,
		IsActive:     true,
	}

	svc, _, err := buildTestService(user, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "wrong-password",
	})
	requireUnauthorized(t, err)
}

func TestServiceLoginInactiveUser(t *testing.T) {
	password := "still-knows-it"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "gone@millennialbroker.ec",
		PasswordHash: mustHashPassword(t, password),
		FullName:     "Ex Empleado",
		Role:         enums.UserRoleOperador,
		IsActive:     false,
	}

	svc, _, err := buildTestService(user, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	requireUnauthorized(t, err)
}

func TestServiceLoginUnknownEmail(t *testing.T) {
	svc, _, err := buildTestService(nil, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@millennialbroker.ec",
		Password: "whatever",
	})
	requireUnauthorized(t, err)
}

func TestServiceRefreshRotatesPair(t *testing.T) {
	password := "admin-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "admin@millennialbroker.ec",
		PasswordHash: mustHashPassword(t, password),
		FullName:     "Admin Uno",
		Role:         enums.UserRoleAdmin,
		IsActive:     true,
	}
	cfg := testJWTConfig()

	svc, sessionMgr, err := buildTestService(user, cfg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	loginResp, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshResp, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  loginResp.AccessToken,
		RefreshToken: loginResp.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshResp.RefreshToken != sessionMgr.rotatedToken {
		t.Fatalf("expected rotated refresh token")
	}

	claims, err := pkgAuth.ParseAccessToken(cfg, refreshResp.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated access token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != enums.UserRoleAdmin {
		t.Fatalf("rotated token lost identity claims")
	}
	if claims.ID == "" || claims.ID == sessionMgr.generatedFor {
		t.Fatalf("expected a fresh jti after rotation")
	}
}

func TestServiceRefreshInvalidToken(t *testing.T) {
	password := "admin-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "admin@millennialbroker.ec",
		PasswordHash: mustHashPassword(t, password),
		FullName:     "Admin Uno",
		Role:         enums.UserRoleAdmin,
		IsActive:     true,
	}

	svc, sessionMgr, err := buildTestService(user, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	sessionMgr.rotateErr = session.ErrInvalidRefreshToken

	loginResp, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  loginResp.AccessToken,
		RefreshToken: "stolen-or-stale",
	})
	requireUnauthorized(t, err)
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	svc, sessionMgr, err := buildTestService(nil, testJWTConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	if err := svc.Logout(context.Background(), "some-access-id"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if sessionMgr.revokedID != "some-access-id" {
		t.Fatalf("expected session revocation for access id")
	}

	err = svc.Logout(context.Background(), " ")
	requireUnauthorized(t, err)
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "millennialbroker",
		ExpirationMinutes: 30,
	}
}

func buildTestService(user *models.User, jwtCfg config.JWTConfig) (Service, *stubSessionManager, error) {
	userRepo := stubUserRepo{user: user}
	sessionMgr := &stubSessionManager{refreshToken: "refresh-token", rotatedToken: "rotated-token"}
	svc, err := NewService(ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionMgr,
		JWTConfig:      jwtCfg,
	})
	return svc, sessionMgr, err
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func requireUnauthorized(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected unauthorized error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

type stubUserRepo struct {
	user *models.User
	err  error
}

func (s stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}

type stubSessionManager struct {
	refreshToken string
	rotatedToken string
	generatedFor string
	revokedID    string
	rotateErr    error
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.generatedFor = accessID
	return s.refreshToken, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	if oldAccessID != s.generatedFor || provided != s.refreshToken {
		return "", "", session.ErrInvalidRefreshToken
	}
	return session.NewAccessID(), s.rotatedToken, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revokedID = accessID
	return nil
}
