package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventopia/eventopia-api/internal/models"
)

func eventRows(status models.EventStatus, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "category", "club_id", "event_date", "event_time", "venue", "fee",
		"expected_attendees", "registration_form_url", "status", "created_by", "approved_by", "approval_date", "created_at", "updated_at"}).
		AddRow("e1", "Tech Fest", "Annual fest", "Technical", nil, "2026-09-15", "10:00:00", "Main Hall", "Free",
			100, nil, string(status), "u1", nil, nil, now, now)
}

func TestCreateEventForcesPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec("INSERT INTO events").WillReturnResult(sqlmock.NewResult(1, 1))

	event := &models.Event{
		Title:     "Tech Fest",
		EventDate: "2026-09-15",
		Status:    models.EventStatusApproved,
		CreatedBy: "u1",
	}
	err := repo.Create(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusPending, event.Status)
	assert.NotEmpty(t, event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecideApprovesPendingEvent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE events SET status = $2, approved_by = $3, approval_date = $4, updated_at = $4 WHERE id = $1 AND status = $5")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO event_approvals").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	approval, err := repo.Decide(context.Background(), "e1", "dh1", models.ApprovalApproved, "budget fits")
	require.NoError(t, err)
	assert.Equal(t, "e1", approval.EventID)
	assert.Equal(t, models.ApprovalApproved, approval.ApprovalStatus)
	assert.Equal(t, "budget fits", approval.Comments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecideAlreadyDecided(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE events SET status").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT e.id, e.title").WillReturnRows(eventRows(models.EventStatusApproved, time.Now()))
	mock.ExpectRollback()

	_, err := repo.Decide(context.Background(), "e1", "dh1", models.ApprovalRejected, "too late")
	assert.ErrorIs(t, err, ErrAlreadyDecided)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecideEventNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE events SET status").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT e.id, e.title").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Decide(context.Background(), "missing", "dh1", models.ApprovalApproved, "ok")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEventsApprovedOnlyOverridesStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	rows := sqlmock.NewRows([]string{"id", "title", "description", "category", "club_id", "event_date", "event_time", "venue", "fee",
		"expected_attendees", "registration_form_url", "status", "created_by", "approved_by", "approval_date", "created_at", "updated_at",
		"club_name", "created_by_name"}).
		AddRow("e1", "Tech Fest", "Annual fest", "Technical", nil, "2026-09-15", "10:00:00", "Main Hall", "Free",
			100, nil, string(models.EventStatusApproved), "u1", nil, nil, time.Now(), time.Now(), "Robotics Club", "Asha Rao")
	mock.ExpectQuery("SELECT e.id, e.title").
		WithArgs(string(models.EventStatusApproved)).
		WillReturnRows(rows)

	pending := models.EventStatusPending
	events, err := repo.List(context.Background(), models.EventFilter{Status: &pending, ApprovedOnly: true})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventStatusApproved, events[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRegistrationUniqueViolation(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec("INSERT INTO event_registrations").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "event_registrations_event_id_user_id_key"})

	err := repo.CreateRegistration(context.Background(), &models.EventRegistration{EventID: "e1", UserID: "u1"})
	assert.ErrorIs(t, err, ErrDuplicateRegistration)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEventCascades(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM event_registrations").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM event_approvals").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM events").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "e1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
