package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventopia/eventopia-api/internal/models"
)

func promotionRows(status models.PromotionStatus, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "requested_role", "status", "created_at", "decided_by", "decided_at"}).
		AddRow("p1", "u1", string(models.RoleClubAdmin), string(status), now, nil, nil)
}

func TestHasPending(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPromotionRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	pending, err := repo.HasPending(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, pending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecidePromotionApproveAppliesRole(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPromotionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE promotion_requests SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, user_id, requested_role").WillReturnRows(promotionRows(models.PromotionApproved, time.Now()))
	mock.ExpectExec("UPDATE users SET role").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req, err := repo.Decide(context.Background(), "p1", "admin1", models.PromotionApproved)
	require.NoError(t, err)
	assert.Equal(t, "u1", req.UserID)
	assert.Equal(t, models.RoleClubAdmin, req.RequestedRole)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecidePromotionRejectSkipsRoleUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPromotionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE promotion_requests SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, user_id, requested_role").WillReturnRows(promotionRows(models.PromotionRejected, time.Now()))
	mock.ExpectCommit()

	_, err := repo.Decide(context.Background(), "p1", "admin1", models.PromotionRejected)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecidePromotionAlreadyDecided(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPromotionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE promotion_requests SET status").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, user_id, requested_role").WillReturnRows(promotionRows(models.PromotionApproved, time.Now()))
	mock.ExpectRollback()

	_, err := repo.Decide(context.Background(), "p1", "admin1", models.PromotionApproved)
	assert.ErrorIs(t, err, ErrRequestDecided)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecidePromotionNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPromotionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE promotion_requests SET status").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, user_id, requested_role").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Decide(context.Background(), "missing", "admin1", models.PromotionApproved)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
