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

	"github.com/eventopia/eventopia-api/internal/models"
	"github.com/eventopia/eventopia-api/internal/repository"
	appErrors "github.com/eventopia/eventopia-api/pkg/errors"
)

type mockEventStore struct {
	events        map[string]*models.Event
	registrations map[string]*models.EventRegistration
	approvals     []models.EventApproval
	lastFilter    models.EventFilter
	decideErr     error
	createRegErr  error
	listedRegs    []models.RegistrationDetail
}

func newMockEventStore(events ...*models.Event) *mockEventStore {
	m := &mockEventStore{
		events:        make(map[string]*models.Event),
		registrations: make(map[string]*models.EventRegistration),
	}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

func (m *mockEventStore) Create(ctx context.Context, event *models.Event) error {
	event.ID = "generated"
	event.Status = models.EventStatusPending
	m.events[event.ID] = event
	return nil
}

func (m *mockEventStore) FindByID(ctx context.Context, id string) (*models.EventDetail, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.EventDetail{Event: *e}, nil
}

func (m *mockEventStore) Get(ctx context.Context, id string) (*models.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return e, nil
}

func (m *mockEventStore) List(ctx context.Context, filter models.EventFilter) ([]models.EventSummary, error) {
	m.lastFilter = filter
	var out []models.EventSummary
	for _, e := range m.events {
		out = append(out, models.EventSummary{Event: *e})
	}
	return out, nil
}

func (m *mockEventStore) ListPending(ctx context.Context) ([]models.EventSummary, error) {
	status := models.EventStatusPending
	return m.List(ctx, models.EventFilter{Status: &status})
}

func (m *mockEventStore) Update(ctx context.Context, event *models.Event) error {
	m.events[event.ID] = event
	return nil
}

func (m *mockEventStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.events[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.events, id)
	return nil
}

func (m *mockEventStore) Decide(ctx context.Context, eventID, actorID string, status models.ApprovalStatus, comments string) (*models.EventApproval, error) {
	if m.decideErr != nil {
		return nil, m.decideErr
	}
	e, ok := m.events[eventID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if e.Status != models.EventStatusPending {
		return nil, repository.ErrAlreadyDecided
	}
	e.Status = models.EventStatus(status)
	approval := models.EventApproval{
		ID:             "a1",
		EventID:        eventID,
		ApprovedBy:     actorID,
		ApprovalStatus: status,
		Comments:       comments,
		ApprovalDate:   time.Now().UTC(),
	}
	m.approvals = append(m.approvals, approval)
	return &approval, nil
}

func (m *mockEventStore) ListApprovals(ctx context.Context, eventID string) ([]models.EventApproval, error) {
	return m.approvals, nil
}

func (m *mockEventStore) FindRegistration(ctx context.Context, eventID, userID string) (*models.EventRegistration, error) {
	if r, ok := m.registrations[eventID+"/"+userID]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEventStore) CreateRegistration(ctx context.Context, reg *models.EventRegistration) error {
	if m.createRegErr != nil {
		return m.createRegErr
	}
	reg.ID = "r1"
	m.registrations[reg.EventID+"/"+reg.UserID] = reg
	return nil
}

func (m *mockEventStore) DeleteRegistration(ctx context.Context, eventID, userID string) error {
	key := eventID + "/" + userID
	if _, ok := m.registrations[key]; !ok {
		return sql.ErrNoRows
	}
	delete(m.registrations, key)
	return nil
}

func (m *mockEventStore) ListRegistrations(ctx context.Context, eventID string) ([]models.RegistrationDetail, error) {
	return m.listedRegs, nil
}

type mockClubFinder struct {
	clubs map[string]*models.Club
}

func (m *mockClubFinder) FindByID(ctx context.Context, id string) (*models.Club, error) {
	if c, ok := m.clubs[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func newEventService(store *mockEventStore) *EventService {
	return NewEventService(store, &mockClubFinder{clubs: map[string]*models.Club{}}, nil, 0, nil, validator.New(), zap.NewNop())
}

func claimsFor(role models.UserRole, userID string) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Role: role}
}

func pendingEvent(id, createdBy string) *models.Event {
	return &models.Event{
		ID:        id,
		Title:     "Tech Fest",
		EventDate: "2026-09-15",
		Status:    models.EventStatusPending,
		CreatedBy: createdBy,
	}
}

func TestCreateEventForbiddenForVisitor(t *testing.T) {
	svc := newEventService(newMockEventStore())

	_, err := svc.Create(context.Background(), claimsFor(models.RoleVisitor, "u1"), models.CreateEventRequest{
		Title:       "Tech Fest",
		Description: "Annual fest",
		EventDate:   "2026-09-15",
		Venue:       "Main Hall",
	})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestCreateEventAppliesDefaults(t *testing.T) {
	store := newMockEventStore()
	svc := newEventService(store)

	event, err := svc.Create(context.Background(), claimsFor(models.RoleClubAdmin, "u1"), models.CreateEventRequest{
		Title:       "Tech Fest",
		Description: "Annual fest",
		EventDate:   "2026-09-15",
		Venue:       "Main Hall",
	})
	require.NoError(t, err)
	assert.Equal(t, "General", event.Category)
	assert.Equal(t, "Free", event.Fee)
	assert.Equal(t, "10:00:00", event.EventTime)
	assert.Equal(t, 50, event.ExpectedAttendees)
	assert.Equal(t, models.EventStatusPending, event.Status)
	assert.Equal(t, "u1", event.CreatedBy)
}

func TestDecisionRequiresComment(t *testing.T) {
	store := newMockEventStore(pendingEvent("e1", "creator"))
	svc := newEventService(store)
	reviewer := claimsFor(models.RoleDepartmentHead, "dh1")

	_, err := svc.Approve(context.Background(), reviewer, "e1", models.DecisionRequest{Comments: "   "})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	_, err = svc.Reject(context.Background(), reviewer, "e1", models.DecisionRequest{Comments: ""})
	appErr = appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	assert.Empty(t, store.approvals)
}

func TestApproveRecordsLedgerEntry(t *testing.T) {
	store := newMockEventStore(pendingEvent("e1", "creator"))
	svc := newEventService(store)

	approval, err := svc.Approve(context.Background(), claimsFor(models.RoleDepartmentHead, "dh1"), "e1", models.DecisionRequest{Comments: "budget fits"})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, approval.ApprovalStatus)
	assert.Equal(t, "dh1", approval.ApprovedBy)
	assert.Equal(t, models.EventStatusApproved, store.events["e1"].Status)
}

func TestRejectAcceptsReasonKey(t *testing.T) {
	store := newMockEventStore(pendingEvent("e1", "creator"))
	svc := newEventService(store)

	approval, err := svc.Reject(context.Background(), claimsFor(models.RoleDepartmentHead, "dh1"), "e1", models.DecisionRequest{Reason: "insufficient budget"})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, approval.ApprovalStatus)
	assert.Equal(t, "insufficient budget", approval.Comments)
	assert.Equal(t, models.EventStatusRejected, store.events["e1"].Status)
}

func TestDecisionPrefersCommentsOverReason(t *testing.T) {
	store := newMockEventStore(pendingEvent("e1", "creator"))
	svc := newEventService(store)

	approval, err := svc.Approve(context.Background(), claimsFor(models.RoleDepartmentHead, "dh1"), "e1",
		models.DecisionRequest{Comments: "budget fits", Reason: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "budget fits", approval.Comments)
}

func TestApproveAlreadyDecidedConflict(t *testing.T) {
	event := pendingEvent("e1", "creator")
	event.Status = models.EventStatusApproved
	svc := newEventService(newMockEventStore(event))

	_, err := svc.Approve(context.Background(), claimsFor(models.RoleDepartmentHead, "dh1"), "e1", models.DecisionRequest{Comments: "again"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestApproveMissingEventNotFound(t *testing.T) {
	svc := newEventService(newMockEventStore())

	_, err := svc.Approve(context.Background(), claimsFor(models.RoleDepartmentHead, "dh1"), "missing", models.DecisionRequest{Comments: "ok"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestListVisibilityForcedForAnonymous(t *testing.T) {
	store := newMockEventStore()
	svc := newEventService(store)

	pending := models.EventStatusPending
	_, err := svc.List(context.Background(), nil, models.EventFilter{Status: &pending})
	require.NoError(t, err)
	assert.True(t, store.lastFilter.ApprovedOnly)
}

func TestListVisibilityForcedForVisitor(t *testing.T) {
	store := newMockEventStore()
	svc := newEventService(store)

	pending := models.EventStatusPending
	_, err := svc.List(context.Background(), claimsFor(models.RoleClubMember, "u1"), models.EventFilter{Status: &pending})
	require.NoError(t, err)
	assert.True(t, store.lastFilter.ApprovedOnly)
}

func TestListPrivilegedSeesEveryStatus(t *testing.T) {
	store := newMockEventStore()
	svc := newEventService(store)

	pending := models.EventStatusPending
	_, err := svc.List(context.Background(), claimsFor(models.RoleClubFaculty, "f1"), models.EventFilter{Status: &pending})
	require.NoError(t, err)
	assert.False(t, store.lastFilter.ApprovedOnly)
}

func TestListOwnProposalsUnrestricted(t *testing.T) {
	store := newMockEventStore()
	svc := newEventService(store)

	_, err := svc.List(context.Background(), claimsFor(models.RoleClubAdmin, "u1"), models.EventFilter{CreatedBy: "u1"})
	require.NoError(t, err)
	assert.False(t, store.lastFilter.ApprovedOnly)
}

func TestGetHidesPendingFromStrangers(t *testing.T) {
	svc := newEventService(newMockEventStore(pendingEvent("e1", "creator")))

	_, err := svc.Get(context.Background(), claimsFor(models.RoleClubMember, "stranger"), "e1")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)

	detail, err := svc.Get(context.Background(), claimsFor(models.RoleClubAdmin, "creator"), "e1")
	require.NoError(t, err)
	assert.Equal(t, "e1", detail.ID)
}

func TestUpdateRequiresOwnerOrAdmin(t *testing.T) {
	store := newMockEventStore(pendingEvent("e1", "creator"))
	svc := newEventService(store)

	req := models.UpdateEventRequest{
		Title:       "Tech Fest v2",
		Description: "Annual fest",
		EventDate:   "2026-09-16",
		Venue:       "Main Hall",
	}

	_, err := svc.Update(context.Background(), claimsFor(models.RoleClubAdmin, "stranger"), "e1", req)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotOwner.Code, appErr.Code)

	updated, err := svc.Update(context.Background(), claimsFor(models.RoleAdmin, "admin1"), "e1", req)
	require.NoError(t, err)
	assert.Equal(t, "Tech Fest v2", updated.Title)
}

func TestRegisterRequiresApprovedEvent(t *testing.T) {
	svc := newEventService(newMockEventStore(pendingEvent("e1", "creator")))

	_, err := svc.Register(context.Background(), claimsFor(models.RoleClubMember, "u1"), "e1", models.EventRegistrationRequest{})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestRegisterConcurrentDuplicateConflict(t *testing.T) {
	event := pendingEvent("e1", "creator")
	event.Status = models.EventStatusApproved
	store := newMockEventStore(event)
	store.createRegErr = repository.ErrDuplicateRegistration
	svc := newEventService(store)

	_, err := svc.Register(context.Background(), claimsFor(models.RoleClubMember, "u1"), "e1", models.EventRegistrationRequest{})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestRegisterDuplicateConflict(t *testing.T) {
	event := pendingEvent("e1", "creator")
	event.Status = models.EventStatusApproved
	store := newMockEventStore(event)
	svc := newEventService(store)
	member := claimsFor(models.RoleClubMember, "u1")

	reg, err := svc.Register(context.Background(), member, "e1", models.EventRegistrationRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationAttendee, reg.RegistrationType)

	_, err = svc.Register(context.Background(), member, "e1", models.EventRegistrationRequest{})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestExportRegistrationsCSV(t *testing.T) {
	event := pendingEvent("e1", "creator")
	event.Status = models.EventStatusApproved
	store := newMockEventStore(event)
	store.listedRegs = []models.RegistrationDetail{{
		FirstName:        "Asha",
		LastName:         "Rao",
		Email:            "asha@example.com",
		RegistrationType: models.RegistrationAttendee,
		Status:           models.RegistrationRegistered,
		RegistrationTime: time.Now().UTC(),
	}}
	svc := newEventService(store)

	payload, contentType, err := svc.ExportRegistrations(context.Background(), claimsFor(models.RoleClubAdmin, "creator"), "e1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Contains(t, string(payload), "asha@example.com")
}

func TestExportEventsIncludesAllStatuses(t *testing.T) {
	pending := pendingEvent("e1", "creator")
	approved := pendingEvent("e2", "creator")
	approved.Status = models.EventStatusApproved
	svc := newEventService(newMockEventStore(pending, approved))

	payload, contentType, err := svc.ExportEvents(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Contains(t, string(payload), "pending")
	assert.Contains(t, string(payload), "approved")
}

func TestExportRegistrationsUnknownFormat(t *testing.T) {
	event := pendingEvent("e1", "creator")
	svc := newEventService(newMockEventStore(event))

	_, _, err := svc.ExportRegistrations(context.Background(), claimsFor(models.RoleAdmin, "admin1"), "e1", "xlsx")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
