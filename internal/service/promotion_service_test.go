package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventopia/eventopia-api/internal/models"
	"github.com/eventopia/eventopia-api/internal/repository"
	appErrors "github.com/eventopia/eventopia-api/pkg/errors"
)

type mockPromotionStore struct {
	requests map[string]*models.PromotionRequest
	pending  map[string]bool
	created  []*models.PromotionRequest
}

func newMockPromotionStore() *mockPromotionStore {
	return &mockPromotionStore{
		requests: make(map[string]*models.PromotionRequest),
		pending:  make(map[string]bool),
	}
}

func (m *mockPromotionStore) Create(ctx context.Context, req *models.PromotionRequest) error {
	req.ID = "generated"
	req.Status = models.PromotionPending
	m.requests[req.ID] = req
	m.pending[req.UserID] = true
	m.created = append(m.created, req)
	return nil
}

func (m *mockPromotionStore) FindByID(ctx context.Context, id string) (*models.PromotionRequest, error) {
	if r, ok := m.requests[id]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPromotionStore) HasPending(ctx context.Context, userID string) (bool, error) {
	return m.pending[userID], nil
}

func (m *mockPromotionStore) ListPending(ctx context.Context) ([]models.PendingPromotion, error) {
	var out []models.PendingPromotion
	for _, r := range m.requests {
		if r.Status == models.PromotionPending {
			out = append(out, models.PendingPromotion{PromotionRequest: *r})
		}
	}
	return out, nil
}

func (m *mockPromotionStore) Decide(ctx context.Context, requestID, actorID string, status models.PromotionStatus) (*models.PromotionRequest, error) {
	r, ok := m.requests[requestID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if r.Status != models.PromotionPending {
		return nil, repository.ErrRequestDecided
	}
	r.Status = status
	r.DecidedBy = &actorID
	m.pending[r.UserID] = false
	return r, nil
}

func newPromotionService(store *mockPromotionStore, singlePending bool) *PromotionService {
	return NewPromotionService(store, validator.New(), zap.NewNop(), PromotionConfig{SinglePending: singlePending})
}

func TestRequestPromotion(t *testing.T) {
	store := newMockPromotionStore()
	svc := newPromotionService(store, false)

	req, err := svc.Request(context.Background(), claimsFor(models.RoleVisitor, "u1"), models.CreatePromotionRequest{RequestedRole: models.RoleClubMember})
	require.NoError(t, err)
	assert.Equal(t, models.PromotionPending, req.Status)
	assert.Equal(t, "u1", req.UserID)
}

func TestRequestPromotionRefusesAdminRoles(t *testing.T) {
	svc := newPromotionService(newMockPromotionStore(), false)

	_, err := svc.Request(context.Background(), claimsFor(models.RoleVisitor, "u1"), models.CreatePromotionRequest{RequestedRole: models.RoleAdmin})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	_, err = svc.Request(context.Background(), claimsFor(models.RoleVisitor, "u1"), models.CreatePromotionRequest{RequestedRole: models.RoleDepartmentHead})
	appErr = appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestRequestPromotionDuplicatesAllowedByDefault(t *testing.T) {
	store := newMockPromotionStore()
	svc := newPromotionService(store, false)
	caller := claimsFor(models.RoleVisitor, "u1")

	_, err := svc.Request(context.Background(), caller, models.CreatePromotionRequest{RequestedRole: models.RoleClubMember})
	require.NoError(t, err)
	_, err = svc.Request(context.Background(), caller, models.CreatePromotionRequest{RequestedRole: models.RoleClubMember})
	require.NoError(t, err)
	assert.Len(t, store.created, 2)
}

func TestRequestPromotionSinglePendingConflict(t *testing.T) {
	store := newMockPromotionStore()
	svc := newPromotionService(store, true)
	caller := claimsFor(models.RoleVisitor, "u1")

	_, err := svc.Request(context.Background(), caller, models.CreatePromotionRequest{RequestedRole: models.RoleClubMember})
	require.NoError(t, err)

	_, err = svc.Request(context.Background(), caller, models.CreatePromotionRequest{RequestedRole: models.RoleClubMember})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestApprovePromotion(t *testing.T) {
	store := newMockPromotionStore()
	svc := newPromotionService(store, false)

	created, err := svc.Request(context.Background(), claimsFor(models.RoleVisitor, "u1"), models.CreatePromotionRequest{RequestedRole: models.RoleClubMember})
	require.NoError(t, err)

	decided, err := svc.Approve(context.Background(), claimsFor(models.RoleDepartmentHead, "dh1"), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PromotionApproved, decided.Status)
	require.NotNil(t, decided.DecidedBy)
	assert.Equal(t, "dh1", *decided.DecidedBy)
}

func TestDecidePromotionTwiceConflict(t *testing.T) {
	store := newMockPromotionStore()
	svc := newPromotionService(store, false)
	reviewer := claimsFor(models.RoleDepartmentHead, "dh1")

	created, err := svc.Request(context.Background(), claimsFor(models.RoleVisitor, "u1"), models.CreatePromotionRequest{RequestedRole: models.RoleClubMember})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), reviewer, created.ID)
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), reviewer, created.ID)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestDecidePromotionNotFound(t *testing.T) {
	svc := newPromotionService(newMockPromotionStore(), false)

	_, err := svc.Approve(context.Background(), claimsFor(models.RoleDepartmentHead, "dh1"), "missing")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
