package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/eventopia/eventopia-api/internal/models"
)

// ErrAlreadyDecided is returned by Decide when the event exists but is no
// longer pending. Callers map it to a conflict, distinct from not-found.
var ErrAlreadyDecided = errors.New("event already decided")

// ErrDuplicateRegistration is returned by CreateRegistration when the
// (event, user) pair already holds a row. The UNIQUE constraint is the
// authority; the service's pre-check only loses under concurrency.
var ErrDuplicateRegistration = errors.New("registration already exists")

// EventRepository provides database access for events, the approval ledger
// and event registrations.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new instance of EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `e.id, e.title, e.description, e.category, e.club_id,
	to_char(e.event_date, 'YYYY-MM-DD') AS event_date, e.event_time, e.venue, e.fee,
	e.expected_attendees, e.registration_form_url, e.status, e.created_by,
	e.approved_by, e.approval_date, e.created_at, e.updated_at`

// Create inserts a new event. Status is always pending on insert.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	event.Status = models.EventStatusPending

	const query = `INSERT INTO events (id, title, description, category, club_id, event_date, event_time, venue, fee,
			expected_attendees, registration_form_url, status, created_by, created_at, updated_at)
		VALUES (:id, :title, :description, :category, :club_id, :event_date, :event_time, :venue, :fee,
			:expected_attendees, :registration_form_url, :status, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// FindByID returns a single event joined with its club, creator and the
// live registered count.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.EventDetail, error) {
	query := `SELECT ` + eventColumns + `,
			c.name AS club_name,
			c.club_email AS club_email,
			u.first_name || ' ' || u.last_name AS created_by_name,
			u.email AS created_by_email,
			(SELECT COUNT(*) FROM event_registrations er WHERE er.event_id = e.id AND er.status = 'registered') AS registered_count
		FROM events e
		LEFT JOIN clubs c ON e.club_id = c.id
		LEFT JOIN users u ON e.created_by = u.id
		WHERE e.id = $1 LIMIT 1`
	var detail models.EventDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find event by id: %w", err)
	}
	return &detail, nil
}

// findBare returns the raw event row without joins, used by precondition
// checks.
func (r *EventRepository) findBare(ctx context.Context, q sqlx.QueryerContext, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = $1 LIMIT 1`
	var event models.Event
	if err := sqlx.GetContext(ctx, q, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// Get returns the raw event row.
func (r *EventRepository) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := r.findBare(ctx, r.db, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// List returns events matching the filter, newest first.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.EventSummary, error) {
	query := `SELECT ` + eventColumns + `,
			c.name AS club_name,
			u.first_name || ' ' || u.last_name AS created_by_name
		FROM events e
		LEFT JOIN clubs c ON e.club_id = c.id
		LEFT JOIN users u ON e.created_by = u.id
		WHERE 1=1`
	var args []interface{}

	if filter.ApprovedOnly {
		query += fmt.Sprintf(" AND e.status = $%d", len(args)+1)
		args = append(args, models.EventStatusApproved)
	} else if filter.Status != nil {
		query += fmt.Sprintf(" AND e.status = $%d", len(args)+1)
		args = append(args, *filter.Status)
	}
	if filter.Category != "" {
		query += fmt.Sprintf(" AND e.category = $%d", len(args)+1)
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (LOWER(e.title) LIKE $%d OR LOWER(e.description) LIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.CreatedBy != "" {
		query += fmt.Sprintf(" AND e.created_by = $%d", len(args)+1)
		args = append(args, filter.CreatedBy)
	}

	query += " ORDER BY e.created_at DESC"

	var events []models.EventSummary
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// ListPending returns pending events newest first for the approval queue.
func (r *EventRepository) ListPending(ctx context.Context) ([]models.EventSummary, error) {
	status := models.EventStatusPending
	return r.List(ctx, models.EventFilter{Status: &status})
}

// Update replaces the mutable fields of an event (full-field semantics).
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE events SET title = :title, description = :description, category = :category,
			event_date = :event_date, event_time = :event_time, venue = :venue, fee = :fee,
			expected_attendees = :expected_attendees, registration_form_url = :registration_form_url,
			updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// Delete hard-deletes an event together with its registrations and ledger
// rows. The schema declares no ON DELETE CASCADE, so the cascade is made
// explicit here inside one transaction.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete event: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM event_registrations WHERE event_id = $1`, id); err != nil {
		return fmt.Errorf("delete event registrations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM event_approvals WHERE event_id = $1`, id); err != nil {
		return fmt.Errorf("delete event approvals: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete event: %w", err)
	}
	return nil
}

// Decide performs the pending -> approved/rejected transition. The status
// update is guarded by the expected prior status and the ledger insert
// shares the transaction, so concurrent decisions leave exactly one winner
// and one ledger row; the loser observes ErrAlreadyDecided.
func (r *EventRepository) Decide(ctx context.Context, eventID, actorID string, status models.ApprovalStatus, comments string) (*models.EventApproval, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin decide event: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	decidedAt := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE events SET status = $2, approved_by = $3, approval_date = $4, updated_at = $4 WHERE id = $1 AND status = $5`,
		eventID, models.EventStatus(status), actorID, decidedAt, models.EventStatusPending)
	if err != nil {
		return nil, fmt.Errorf("transition event status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("transition event status: %w", err)
	}
	if affected == 0 {
		// Zero rows means either the event is missing or it was already
		// decided; re-read to tell the two apart.
		if _, err := r.findBare(ctx, tx, eventID); err != nil {
			if err == sql.ErrNoRows {
				return nil, sql.ErrNoRows
			}
			return nil, fmt.Errorf("check event existence: %w", err)
		}
		return nil, ErrAlreadyDecided
	}

	approval := &models.EventApproval{
		ID:             uuid.NewString(),
		EventID:        eventID,
		ApprovedBy:     actorID,
		ApprovalStatus: status,
		Comments:       comments,
		ApprovalDate:   decidedAt,
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO event_approvals (id, event_id, approved_by, approval_status, comments, approval_date)
			VALUES ($1, $2, $3, $4, $5, $6)`,
		approval.ID, approval.EventID, approval.ApprovedBy, approval.ApprovalStatus, approval.Comments, approval.ApprovalDate); err != nil {
		return nil, fmt.Errorf("append approval ledger: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit decide event: %w", err)
	}
	return approval, nil
}

// ListApprovals returns the ledger rows for an event, newest first.
func (r *EventRepository) ListApprovals(ctx context.Context, eventID string) ([]models.EventApproval, error) {
	const query = `SELECT id, event_id, approved_by, approval_status, comments, approval_date
		FROM event_approvals WHERE event_id = $1 ORDER BY approval_date DESC`
	var approvals []models.EventApproval
	if err := r.db.SelectContext(ctx, &approvals, query, eventID); err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	return approvals, nil
}

// FindRegistration returns the registration row for (event, user).
func (r *EventRepository) FindRegistration(ctx context.Context, eventID, userID string) (*models.EventRegistration, error) {
	const query = `SELECT id, event_id, user_id, registration_type, status, registration_time
		FROM event_registrations WHERE event_id = $1 AND user_id = $2 LIMIT 1`
	var reg models.EventRegistration
	if err := r.db.GetContext(ctx, &reg, query, eventID, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return &reg, nil
}

// CreateRegistration inserts a registration row.
func (r *EventRepository) CreateRegistration(ctx context.Context, reg *models.EventRegistration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.RegistrationTime.IsZero() {
		reg.RegistrationTime = time.Now().UTC()
	}
	const query = `INSERT INTO event_registrations (id, event_id, user_id, registration_type, status, registration_time)
		VALUES (:id, :event_id, :user_id, :registration_type, :status, :registration_time)`
	if _, err := r.db.NamedExecContext(ctx, query, reg); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateRegistration
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// DeleteRegistration removes the (event, user) registration.
func (r *EventRepository) DeleteRegistration(ctx context.Context, eventID, userID string) error {
	const query = `DELETE FROM event_registrations WHERE event_id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListRegistrations returns the registrants for an event, newest first.
func (r *EventRepository) ListRegistrations(ctx context.Context, eventID string) ([]models.RegistrationDetail, error) {
	const query = `SELECT er.id, er.registration_type, er.status, er.registration_time,
			u.id AS user_id, u.first_name, u.last_name, u.email, u.student_id
		FROM event_registrations er
		JOIN users u ON er.user_id = u.id
		WHERE er.event_id = $1
		ORDER BY er.registration_time DESC`
	var regs []models.RegistrationDetail
	if err := r.db.SelectContext(ctx, &regs, query, eventID); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}
