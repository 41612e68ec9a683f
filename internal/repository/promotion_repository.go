package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eventopia/eventopia-api/internal/models"
)

// ErrRequestDecided is returned by Decide when the promotion request exists
// but is no longer pending.
var ErrRequestDecided = errors.New("promotion request already decided")

// PromotionRepository provides database access for promotion requests.
type PromotionRepository struct {
	db *sqlx.DB
}

// NewPromotionRepository creates a new instance of PromotionRepository.
func NewPromotionRepository(db *sqlx.DB) *PromotionRepository {
	return &PromotionRepository{db: db}
}

const promotionColumns = `id, user_id, requested_role, status, created_at, decided_by, decided_at`

// Create inserts a new pending promotion request.
func (r *PromotionRepository) Create(ctx context.Context, req *models.PromotionRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	req.Status = models.PromotionPending

	const query = `INSERT INTO promotion_requests (id, user_id, requested_role, status, created_at)
		VALUES (:id, :user_id, :requested_role, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create promotion request: %w", err)
	}
	return nil
}

// FindByID returns a promotion request by identifier.
func (r *PromotionRepository) FindByID(ctx context.Context, id string) (*models.PromotionRequest, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotion_requests WHERE id = $1 LIMIT 1`
	var req models.PromotionRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find promotion request: %w", err)
	}
	return &req, nil
}

// HasPending reports whether the user already has an outstanding request.
func (r *PromotionRepository) HasPending(ctx context.Context, userID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM promotion_requests WHERE user_id = $1 AND status = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, models.PromotionPending); err != nil {
		return false, fmt.Errorf("count pending promotions: %w", err)
	}
	return count > 0, nil
}

// ListPending returns pending requests joined with the requesting user,
// newest first.
func (r *PromotionRepository) ListPending(ctx context.Context) ([]models.PendingPromotion, error) {
	const query = `SELECT pr.id, pr.user_id, pr.requested_role, pr.status, pr.created_at, pr.decided_by, pr.decided_at,
			u.first_name, u.last_name, u.email
		FROM promotion_requests pr
		JOIN users u ON pr.user_id = u.id
		WHERE pr.status = $1
		ORDER BY pr.created_at DESC`
	var pending []models.PendingPromotion
	if err := r.db.SelectContext(ctx, &pending, query, models.PromotionPending); err != nil {
		return nil, fmt.Errorf("list pending promotions: %w", err)
	}
	return pending, nil
}

// Decide transitions a pending request to approved or rejected. Approving
// writes the requested role onto the user inside the same transaction, so a
// half-applied promotion cannot be observed. The guarded update makes the
// operation deliberately non-idempotent.
func (r *PromotionRepository) Decide(ctx context.Context, requestID, actorID string, status models.PromotionStatus) (*models.PromotionRequest, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin decide promotion: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	decidedAt := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE promotion_requests SET status = $2, decided_by = $3, decided_at = $4 WHERE id = $1 AND status = $5`,
		requestID, status, actorID, decidedAt, models.PromotionPending)
	if err != nil {
		return nil, fmt.Errorf("transition promotion status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("transition promotion status: %w", err)
	}
	if affected == 0 {
		var existing models.PromotionRequest
		query := `SELECT ` + promotionColumns + ` FROM promotion_requests WHERE id = $1 LIMIT 1`
		if err := sqlx.GetContext(ctx, tx, &existing, query, requestID); err != nil {
			if err == sql.ErrNoRows {
				return nil, sql.ErrNoRows
			}
			return nil, fmt.Errorf("check promotion existence: %w", err)
		}
		return nil, ErrRequestDecided
	}

	var req models.PromotionRequest
	query := `SELECT ` + promotionColumns + ` FROM promotion_requests WHERE id = $1 LIMIT 1`
	if err := sqlx.GetContext(ctx, tx, &req, query, requestID); err != nil {
		return nil, fmt.Errorf("reload promotion request: %w", err)
	}

	if status == models.PromotionApproved {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`,
			req.UserID, req.RequestedRole, decidedAt); err != nil {
			return nil, fmt.Errorf("apply promoted role: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit decide promotion: %w", err)
	}
	return &req, nil
}
