package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/eventopia/eventopia-api/internal/models"
	appErrors "github.com/eventopia/eventopia-api/pkg/errors"
)

type mockAuthRepo struct {
	usersByEmail map[string]*models.User
	usersByID    map[string]*models.User
	sessions     map[string]*models.UserSession
	auditLogs    []*models.AuditLog
	created      []*models.User
}

func newMockAuthRepo(users ...*models.User) *mockAuthRepo {
	m := &mockAuthRepo{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[string]*models.User),
		sessions:     make(map[string]*models.UserSession),
	}
	for _, u := range users {
		m.usersByEmail[u.Email] = u
		m.usersByID[u.ID] = u
	}
	return m
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := m.usersByEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.usersByID[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = "generated"
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
	m.created = append(m.created, user)
	return nil
}

func (m *mockAuthRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	m.usersByID[user.ID] = user
	return nil
}

func (m *mockAuthRepo) CreateSession(ctx context.Context, session *models.UserSession) error {
	m.sessions[session.Token] = session
	return nil
}

func (m *mockAuthRepo) FindSession(ctx context.Context, token string) (*models.UserSession, error) {
	if s, ok := m.sessions[token]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) DeleteSession(ctx context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func newAuthService(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		TokenSecret: "secret",
		TokenExpiry: time.Hour,
		Issuer:      "eventopia",
	})
}

func activeUser(role models.UserRole) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	return &models.User{
		ID:           "u1",
		Email:        "user@example.com",
		PasswordHash: string(hash),
		FirstName:    "Asha",
		LastName:     "Rao",
		Role:         role,
		Active:       true,
	}
}

func TestLoginSuccessCreatesSession(t *testing.T) {
	repo := newMockAuthRepo(activeUser(models.RoleClubMember))
	svc := newAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "u1", res.User.ID)
	assert.Len(t, repo.sessions, 1)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newMockAuthRepo(activeUser(models.RoleClubMember))
	svc := newAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "nope"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	assert.Empty(t, repo.sessions)
}

func TestLoginInactiveAccount(t *testing.T) {
	user := activeUser(models.RoleClubMember)
	user.Active = false
	repo := newMockAuthRepo(user)
	svc := newAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestRegisterForcesVisitorRole(t *testing.T) {
	repo := newMockAuthRepo()
	svc := newAuthService(repo)

	info, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:     "New@Example.com",
		Password:  "password",
		FirstName: "Asha",
		LastName:  "Rao",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleVisitor, info.Role)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "new@example.com", repo.created[0].Email)
	assert.Equal(t, models.RoleVisitor, repo.created[0].Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMockAuthRepo(activeUser(models.RoleClubMember))
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:     "user@example.com",
		Password:  "password",
		FirstName: "Asha",
		LastName:  "Rao",
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	repo := newMockAuthRepo(activeUser(models.RoleClubAdmin))
	svc := newAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleClubAdmin, claims.Role)
}

func TestValidateTokenRejectedAfterLogout(t *testing.T) {
	repo := newMockAuthRepo(activeUser(models.RoleClubMember))
	svc := newAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), res.Token, "u1"))

	_, err = svc.ValidateToken(context.Background(), res.Token)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrSessionExpired.Code, appErr.Code)
}

func TestValidateTokenUsesCurrentRole(t *testing.T) {
	user := activeUser(models.RoleVisitor)
	repo := newMockAuthRepo(user)
	svc := newAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)

	// An approved promotion changes the row; the next validation reflects it
	// without a fresh login.
	user.Role = models.RoleClubAdmin

	claims, err := svc.ValidateToken(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleClubAdmin, claims.Role)
}

func TestValidateTokenExpiredSessionPurged(t *testing.T) {
	repo := newMockAuthRepo(activeUser(models.RoleClubMember))
	svc := newAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password"})
	require.NoError(t, err)

	repo.sessions[res.Token].ExpiresAt = time.Now().UTC().Add(-time.Minute)

	_, err = svc.ValidateToken(context.Background(), res.Token)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrSessionExpired.Code, appErr.Code)
	assert.Empty(t, repo.sessions)
}
