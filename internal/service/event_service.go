package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eventopia/eventopia-api/internal/models"
	"github.com/eventopia/eventopia-api/internal/repository"
	appErrors "github.com/eventopia/eventopia-api/pkg/errors"
	"github.com/eventopia/eventopia-api/pkg/export"
)

// Defaults applied to optional proposal fields.
const (
	defaultEventCategory  = "General"
	defaultEventFee       = "Free"
	defaultEventTime      = "10:00:00"
	defaultEventAttendees = 50
)

const eventListCacheKey = "events:public"

type eventStore interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id string) (*models.EventDetail, error)
	Get(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context, filter models.EventFilter) ([]models.EventSummary, error)
	ListPending(ctx context.Context) ([]models.EventSummary, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
	Decide(ctx context.Context, eventID, actorID string, status models.ApprovalStatus, comments string) (*models.EventApproval, error)
	ListApprovals(ctx context.Context, eventID string) ([]models.EventApproval, error)
	FindRegistration(ctx context.Context, eventID, userID string) (*models.EventRegistration, error)
	CreateRegistration(ctx context.Context, reg *models.EventRegistration) error
	DeleteRegistration(ctx context.Context, eventID, userID string) error
	ListRegistrations(ctx context.Context, eventID string) ([]models.RegistrationDetail, error)
}

type eventCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type clubFinder interface {
	FindByID(ctx context.Context, id string) (*models.Club, error)
}

// EventService owns the event lifecycle: proposal, the approve/reject
// transition, registration and export.
type EventService struct {
	repo      eventStore
	clubs     clubFinder
	cache     eventCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewEventService constructs an EventService instance.
func NewEventService(repo eventStore, clubs clubFinder, cache eventCache, cacheTTL time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EventService{
		repo:      repo,
		clubs:     clubs,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
	}
}

// Create submits a new event proposal. Every proposal enters the queue as
// pending no matter who submits it.
func (s *EventService) Create(ctx context.Context, claims *models.JWTClaims, req models.CreateEventRequest) (*models.Event, error) {
	if !claims.Role.CanCreateEvents() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role may not propose events")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}

	if req.ClubID != nil {
		if _, err := s.clubs.FindByID(ctx, *req.ClubID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "club does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check club")
		}
	}

	event := &models.Event{
		Title:               strings.TrimSpace(req.Title),
		Description:         req.Description,
		Category:            req.Category,
		ClubID:              req.ClubID,
		EventDate:           req.EventDate,
		EventTime:           req.EventTime,
		Venue:               req.Venue,
		Fee:                 req.Fee,
		ExpectedAttendees:   req.ExpectedAttendees,
		RegistrationFormURL: req.RegistrationFormURL,
		CreatedBy:           claims.UserID,
	}
	if event.Category == "" {
		event.Category = defaultEventCategory
	}
	if event.Fee == "" {
		event.Fee = defaultEventFee
	}
	if event.EventTime == "" {
		event.EventTime = defaultEventTime
	}
	if event.ExpectedAttendees == 0 {
		event.ExpectedAttendees = defaultEventAttendees
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}

	s.invalidateListCache(ctx)
	s.logger.Info("event proposed",
		zap.String("event_id", event.ID),
		zap.String("created_by", claims.UserID))
	return event, nil
}

// List returns events visible to the caller. Anonymous callers and
// non-privileged roles only ever see approved events; requesting another
// status silently narrows back to approved rather than erroring.
func (s *EventService) List(ctx context.Context, claims *models.JWTClaims, filter models.EventFilter) ([]models.EventSummary, error) {
	privileged := claims != nil && claims.Role.CanSeeAllEventStatuses()
	ownOnly := claims != nil && filter.CreatedBy != "" && filter.CreatedBy == claims.UserID
	if !privileged && !ownOnly {
		filter.ApprovedOnly = true
	}

	cacheable := s.cache != nil && filter.ApprovedOnly &&
		filter.Category == "" && filter.Search == "" && filter.CreatedBy == ""
	if cacheable {
		var cached []models.EventSummary
		if err := s.cache.Get(ctx, eventListCacheKey, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached, nil
		}
		s.metrics.RecordCacheOperation(false)
	}

	events, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}

	if cacheable {
		if err := s.cache.Set(ctx, eventListCacheKey, events, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache event list", zap.Error(err))
		}
	}
	return events, nil
}

// MyEvents returns the caller's own proposals in every status.
func (s *EventService) MyEvents(ctx context.Context, claims *models.JWTClaims) ([]models.EventSummary, error) {
	return s.List(ctx, claims, models.EventFilter{CreatedBy: claims.UserID})
}

// ListPending returns the approval queue.
func (s *EventService) ListPending(ctx context.Context) ([]models.EventSummary, error) {
	events, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending events")
	}
	return events, nil
}

// Get returns a single event. Undecided and rejected events stay hidden
// from callers who are neither privileged nor the creator; they get the
// same not-found as a missing id.
func (s *EventService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.EventDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	if detail.Status != models.EventStatusApproved {
		privileged := claims != nil && claims.Role.CanSeeAllEventStatuses()
		owner := claims != nil && claims.UserID == detail.CreatedBy
		if !privileged && !owner {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
	}
	return detail, nil
}

// Update replaces the mutable fields of an event. Only the creator or an
// admin may edit; the status never changes here.
func (s *EventService) Update(ctx context.Context, claims *models.JWTClaims, id string, req models.UpdateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}

	event, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	if event.CreatedBy != claims.UserID && claims.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrNotOwner, "only the creator or an admin may edit this event")
	}

	event.Title = strings.TrimSpace(req.Title)
	event.Description = req.Description
	event.Category = req.Category
	event.EventDate = req.EventDate
	event.EventTime = req.EventTime
	event.Venue = req.Venue
	event.Fee = req.Fee
	event.ExpectedAttendees = req.ExpectedAttendees
	event.RegistrationFormURL = req.RegistrationFormURL

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}

	s.invalidateListCache(ctx)
	return event, nil
}

// Delete removes an event with its registrations and ledger rows.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	s.invalidateListCache(ctx)
	return nil
}

// Approve transitions a pending event to approved.
func (s *EventService) Approve(ctx context.Context, claims *models.JWTClaims, eventID string, req models.DecisionRequest) (*models.EventApproval, error) {
	return s.decide(ctx, claims, eventID, models.ApprovalApproved, req)
}

// Reject transitions a pending event to rejected.
func (s *EventService) Reject(ctx context.Context, claims *models.JWTClaims, eventID string, req models.DecisionRequest) (*models.EventApproval, error) {
	return s.decide(ctx, claims, eventID, models.ApprovalRejected, req)
}

func (s *EventService) decide(ctx context.Context, claims *models.JWTClaims, eventID string, status models.ApprovalStatus, req models.DecisionRequest) (*models.EventApproval, error) {
	comments := req.Note()
	if comments == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a comment is required for every decision")
	}

	approval, err := s.repo.Decide(ctx, eventID, claims.UserID, status, comments)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		case errors.Is(err, repository.ErrAlreadyDecided):
			return nil, appErrors.Clone(appErrors.ErrConflict, "event has already been decided")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record decision")
		}
	}

	s.invalidateListCache(ctx)
	s.metrics.RecordDecision(string(status))
	s.logger.Info("event decided",
		zap.String("event_id", eventID),
		zap.String("decision", string(status)),
		zap.String("decided_by", claims.UserID))
	return approval, nil
}

// Approvals returns the decision ledger for an event, newest first.
func (s *EventService) Approvals(ctx context.Context, eventID string) ([]models.EventApproval, error) {
	if _, err := s.repo.Get(ctx, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	approvals, err := s.repo.ListApprovals(ctx, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list approvals")
	}
	return approvals, nil
}

// Register signs the caller up for an approved event.
func (s *EventService) Register(ctx context.Context, claims *models.JWTClaims, eventID string, req models.EventRegistrationRequest) (*models.EventRegistration, error) {
	event, err := s.repo.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.Status != models.EventStatusApproved {
		return nil, appErrors.Clone(appErrors.ErrConflict, "event is not open for registration")
	}

	if _, err := s.repo.FindRegistration(ctx, eventID, claims.UserID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "already registered for this event")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check registration")
	}

	regType := req.RegistrationType
	if regType == "" {
		regType = models.RegistrationAttendee
	}
	reg := &models.EventRegistration{
		EventID:          eventID,
		UserID:           claims.UserID,
		RegistrationType: regType,
		Status:           models.RegistrationRegistered,
	}
	if err := s.repo.CreateRegistration(ctx, reg); err != nil {
		if errors.Is(err, repository.ErrDuplicateRegistration) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "already registered for this event")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register")
	}
	s.metrics.RecordRegistration()
	return reg, nil
}

// CancelRegistration removes the caller's registration.
func (s *EventService) CancelRegistration(ctx context.Context, claims *models.JWTClaims, eventID string) error {
	if err := s.repo.DeleteRegistration(ctx, eventID, claims.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel registration")
	}
	return nil
}

// Registrations lists the registrants of an event for its organiser.
func (s *EventService) Registrations(ctx context.Context, claims *models.JWTClaims, eventID string) ([]models.RegistrationDetail, error) {
	event, err := s.repo.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.CreatedBy != claims.UserID && claims.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrNotOwner, "only the organiser or an admin may view registrations")
	}

	regs, err := s.repo.ListRegistrations(ctx, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	return regs, nil
}

// ExportRegistrations renders the registrant list as CSV or PDF.
func (s *EventService) ExportRegistrations(ctx context.Context, claims *models.JWTClaims, eventID, format string) ([]byte, string, error) {
	event, err := s.repo.Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	if event.CreatedBy != claims.UserID && claims.Role != models.RoleAdmin {
		return nil, "", appErrors.Clone(appErrors.ErrNotOwner, "only the organiser or an admin may export registrations")
	}

	renderer, ok := export.ForFormat(format)
	if !ok {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}

	regs, err := s.repo.ListRegistrations(ctx, eventID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}

	table := export.Table{
		Title:   fmt.Sprintf("Registrations - %s", event.Title),
		Columns: []string{"Name", "Email", "Student ID", "Type", "Status", "Registered At"},
	}
	for _, reg := range regs {
		studentID := ""
		if reg.StudentID != nil {
			studentID = *reg.StudentID
		}
		table.Rows = append(table.Rows, []string{
			reg.FirstName + " " + reg.LastName,
			reg.Email,
			studentID,
			string(reg.RegistrationType),
			string(reg.Status),
			reg.RegistrationTime.Format(time.RFC3339),
		})
	}

	payload, err := renderer.Render(table)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return payload, renderer.ContentType(), nil
}

// ExportEvents renders the full event catalogue, every status included.
// The route is limited to reviewing roles.
func (s *EventService) ExportEvents(ctx context.Context, format string) ([]byte, string, error) {
	renderer, ok := export.ForFormat(format)
	if !ok {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}

	events, err := s.repo.List(ctx, models.EventFilter{})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}

	table := export.Table{
		Title:   "Events",
		Columns: []string{"Title", "Category", "Club", "Date", "Time", "Venue", "Fee", "Status"},
	}
	for _, e := range events {
		clubName := ""
		if e.ClubName != nil {
			clubName = *e.ClubName
		}
		table.Rows = append(table.Rows, []string{
			e.Title, e.Category, clubName, e.EventDate, e.EventTime, e.Venue, e.Fee, string(e.Status),
		})
	}

	payload, err := renderer.Render(table)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return payload, renderer.ContentType(), nil
}

func (s *EventService) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "events:*"); err != nil {
		s.logger.Warn("failed to invalidate event cache", zap.Error(err))
	}
}
