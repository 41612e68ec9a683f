package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eventopia/eventopia-api/internal/models"
)

// CircularRepository provides database access for circulars.
type CircularRepository struct {
	db *sqlx.DB
}

// NewCircularRepository creates a new instance of CircularRepository.
func NewCircularRepository(db *sqlx.DB) *CircularRepository {
	return &CircularRepository{db: db}
}

const circularColumns = `id, title, content, created_by, target_audience, active, created_at, updated_at`

// List returns all circulars, newest first.
func (r *CircularRepository) List(ctx context.Context) ([]models.Circular, error) {
	query := `SELECT ` + circularColumns + ` FROM circulars ORDER BY created_at DESC`
	var circulars []models.Circular
	if err := r.db.SelectContext(ctx, &circulars, query); err != nil {
		return nil, fmt.Errorf("list circulars: %w", err)
	}
	return circulars, nil
}

// FindByID returns a circular by identifier.
func (r *CircularRepository) FindByID(ctx context.Context, id string) (*models.Circular, error) {
	query := `SELECT ` + circularColumns + ` FROM circulars WHERE id = $1 LIMIT 1`
	var circular models.Circular
	if err := r.db.GetContext(ctx, &circular, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find circular by id: %w", err)
	}
	return &circular, nil
}

// Create inserts a new circular.
func (r *CircularRepository) Create(ctx context.Context, circular *models.Circular) error {
	if circular.ID == "" {
		circular.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	circular.CreatedAt = now
	circular.UpdatedAt = now

	const query = `INSERT INTO circulars (id, title, content, created_by, target_audience, active, created_at, updated_at)
		VALUES (:id, :title, :content, :created_by, :target_audience, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, circular); err != nil {
		return fmt.Errorf("create circular: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a circular.
func (r *CircularRepository) Update(ctx context.Context, circular *models.Circular) error {
	circular.UpdatedAt = time.Now().UTC()
	const query = `UPDATE circulars SET title = :title, content = :content, target_audience = :target_audience,
			active = :active, updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, circular); err != nil {
		return fmt.Errorf("update circular: %w", err)
	}
	return nil
}

// Delete removes a circular.
func (r *CircularRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM circulars WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete circular: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
