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

// ClubRepository provides database access for clubs and their rosters.
type ClubRepository struct {
	db *sqlx.DB
}

// NewClubRepository creates a new instance of ClubRepository.
func NewClubRepository(db *sqlx.DB) *ClubRepository {
	return &ClubRepository{db: db}
}

const clubColumns = `id, name, description, club_email, faculty_coordinator_id, active, created_at, updated_at`

// List returns all clubs.
func (r *ClubRepository) List(ctx context.Context) ([]models.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs ORDER BY name`
	var clubs []models.Club
	if err := r.db.SelectContext(ctx, &clubs, query); err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}
	return clubs, nil
}

// FindByID returns a club by identifier.
func (r *ClubRepository) FindByID(ctx context.Context, id string) (*models.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs WHERE id = $1 LIMIT 1`
	var club models.Club
	if err := r.db.GetContext(ctx, &club, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find club by id: %w", err)
	}
	return &club, nil
}

// Create inserts a new club.
func (r *ClubRepository) Create(ctx context.Context, club *models.Club) error {
	if club.ID == "" {
		club.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	club.CreatedAt = now
	club.UpdatedAt = now

	const query = `INSERT INTO clubs (id, name, description, club_email, faculty_coordinator_id, active, created_at, updated_at)
		VALUES (:id, :name, :description, :club_email, :faculty_coordinator_id, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, club); err != nil {
		return fmt.Errorf("create club: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a club.
func (r *ClubRepository) Update(ctx context.Context, club *models.Club) error {
	club.UpdatedAt = time.Now().UTC()
	const query = `UPDATE clubs SET name = :name, description = :description, club_email = :club_email,
			faculty_coordinator_id = :faculty_coordinator_id, active = :active, updated_at = :updated_at
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, club); err != nil {
		return fmt.Errorf("update club: %w", err)
	}
	return nil
}

// Delete removes a club.
func (r *ClubRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete club: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindMember returns the membership row for (club, user).
func (r *ClubRepository) FindMember(ctx context.Context, clubID, userID string) (*models.ClubMember, error) {
	const query = `SELECT id, club_id, user_id, position, joined_date, active, added_by
		FROM club_members WHERE club_id = $1 AND user_id = $2 LIMIT 1`
	var member models.ClubMember
	if err := r.db.GetContext(ctx, &member, query, clubID, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find club member: %w", err)
	}
	return &member, nil
}

// AddMember inserts a roster row. (club_id, user_id) is unique.
func (r *ClubRepository) AddMember(ctx context.Context, member *models.ClubMember) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	if member.JoinedDate.IsZero() {
		member.JoinedDate = time.Now().UTC()
	}
	const query = `INSERT INTO club_members (id, club_id, user_id, position, joined_date, active, added_by)
		VALUES (:id, :club_id, :user_id, :position, :joined_date, :active, :added_by)`
	if _, err := r.db.NamedExecContext(ctx, query, member); err != nil {
		return fmt.Errorf("add club member: %w", err)
	}
	return nil
}

// ListMembers returns the club roster with member details.
func (r *ClubRepository) ListMembers(ctx context.Context, clubID string) ([]models.ClubMemberDetail, error) {
	const query = `SELECT cm.id, cm.club_id, cm.user_id, cm.position, cm.joined_date, cm.active, cm.added_by,
			u.first_name, u.last_name, u.email
		FROM club_members cm
		JOIN users u ON cm.user_id = u.id
		WHERE cm.club_id = $1
		ORDER BY cm.joined_date DESC`
	var members []models.ClubMemberDetail
	if err := r.db.SelectContext(ctx, &members, query, clubID); err != nil {
		return nil, fmt.Errorf("list club members: %w", err)
	}
	return members, nil
}
