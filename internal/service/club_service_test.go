package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eventopia/eventopia-api/internal/models"
	appErrors "github.com/eventopia/eventopia-api/pkg/errors"
)

type mockClubStore struct {
	clubs   map[string]*models.Club
	members map[string]*models.ClubMember
}

func newMockClubStore(clubs ...*models.Club) *mockClubStore {
	m := &mockClubStore{
		clubs:   make(map[string]*models.Club),
		members: make(map[string]*models.ClubMember),
	}
	for _, c := range clubs {
		m.clubs[c.ID] = c
	}
	return m
}

func (m *mockClubStore) List(ctx context.Context) ([]models.Club, error) {
	var out []models.Club
	for _, c := range m.clubs {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockClubStore) FindByID(ctx context.Context, id string) (*models.Club, error) {
	if c, ok := m.clubs[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClubStore) Create(ctx context.Context, club *models.Club) error {
	club.ID = "generated"
	m.clubs[club.ID] = club
	return nil
}

func (m *mockClubStore) Update(ctx context.Context, club *models.Club) error {
	m.clubs[club.ID] = club
	return nil
}

func (m *mockClubStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.clubs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.clubs, id)
	return nil
}

func (m *mockClubStore) FindMember(ctx context.Context, clubID, userID string) (*models.ClubMember, error) {
	if mem, ok := m.members[clubID+"/"+userID]; ok {
		return mem, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClubStore) AddMember(ctx context.Context, member *models.ClubMember) error {
	member.ID = "m1"
	m.members[member.ClubID+"/"+member.UserID] = member
	return nil
}

func (m *mockClubStore) ListMembers(ctx context.Context, clubID string) ([]models.ClubMemberDetail, error) {
	return nil, nil
}

const rosterUserID = "c56a4180-65aa-42ec-a945-5fd21dec0538"

func newClubService(store *mockClubStore) *ClubService {
	return NewClubService(store, nil, zap.NewNop())
}

func clubWithCoordinator(id, coordinatorID string) *models.Club {
	return &models.Club{
		ID:                   id,
		Name:                 "Drama Club",
		ClubEmail:            "drama@example.edu",
		FacultyCoordinatorID: &coordinatorID,
		Active:               true,
	}
}

func TestAddMemberByCoordinator(t *testing.T) {
	store := newMockClubStore(clubWithCoordinator("c1", "fac1"))
	svc := newClubService(store)

	member, err := svc.AddMember(context.Background(), claimsFor(models.RoleClubFaculty, "fac1"), "c1",
		models.AddClubMemberRequest{UserID: rosterUserID})
	require.NoError(t, err)
	assert.Equal(t, "member", member.Position)
	assert.Equal(t, "fac1", *member.AddedBy)
}

func TestAddMemberForeignFacultyForbidden(t *testing.T) {
	store := newMockClubStore(clubWithCoordinator("c1", "fac1"))
	svc := newClubService(store)

	_, err := svc.AddMember(context.Background(), claimsFor(models.RoleClubFaculty, "fac2"), "c1",
		models.AddClubMemberRequest{UserID: rosterUserID})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotOwner.Code, appErr.Code)
	assert.Empty(t, store.members)
}

func TestAddMemberAdminBypassesOwnership(t *testing.T) {
	store := newMockClubStore(clubWithCoordinator("c1", "fac1"))
	svc := newClubService(store)

	_, err := svc.AddMember(context.Background(), claimsFor(models.RoleAdmin, "admin1"), "c1",
		models.AddClubMemberRequest{UserID: rosterUserID})
	require.NoError(t, err)
}

func TestAddMemberDuplicateConflict(t *testing.T) {
	store := newMockClubStore(clubWithCoordinator("c1", "fac1"))
	svc := newClubService(store)

	claims := claimsFor(models.RoleClubFaculty, "fac1")
	_, err := svc.AddMember(context.Background(), claims, "c1", models.AddClubMemberRequest{UserID: rosterUserID})
	require.NoError(t, err)

	_, err = svc.AddMember(context.Background(), claims, "c1", models.AddClubMemberRequest{UserID: rosterUserID})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestUpdateClubForeignCoordinatorForbidden(t *testing.T) {
	store := newMockClubStore(clubWithCoordinator("c1", "fac1"))
	svc := newClubService(store)

	_, err := svc.Update(context.Background(), claimsFor(models.RoleClubFaculty, "fac2"), "c1",
		models.UpdateClubRequest{Name: "Drama Club", ClubEmail: "drama@example.edu", Active: true})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotOwner.Code, appErr.Code)
}
