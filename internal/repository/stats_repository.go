package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eventopia/eventopia-api/internal/models"
)

// StatsRepository aggregates dashboard counters from the primary store.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new instance of StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Collect runs the dashboard aggregate queries.
//
// The budget total strips every non-digit character out of the free-text
// fee column and sums what remains as integers. "₹50" counts as 50, "Free"
// counts as nothing. Lossy, but it matches what the fee field has always
// held; restructure fee into amount+currency before trusting this number.
func (r *StatsRepository) Collect(ctx context.Context) (*models.SystemStats, error) {
	stats := &models.SystemStats{GeneratedAt: time.Now().UTC()}

	counters := []struct {
		dest  *int
		query string
		args  []interface{}
	}{
		{
			&stats.TotalEventsThisMonth,
			`SELECT COUNT(*) FROM events
				WHERE EXTRACT(MONTH FROM event_date) = EXTRACT(MONTH FROM CURRENT_DATE)
				AND EXTRACT(YEAR FROM event_date) = EXTRACT(YEAR FROM CURRENT_DATE)`,
			nil,
		},
		{
			&stats.ActiveUsers,
			`SELECT COUNT(*) FROM users WHERE active = TRUE`,
			nil,
		},
		{
			&stats.PendingApprovals,
			`SELECT COUNT(*) FROM events WHERE status = $1`,
			[]interface{}{models.EventStatusPending},
		},
		{
			&stats.TotalStudents,
			`SELECT COUNT(*) FROM users WHERE role = $1`,
			[]interface{}{models.RoleClubMember},
		},
		{
			&stats.FacultyMembers,
			`SELECT COUNT(*) FROM users WHERE role = $1`,
			[]interface{}{models.RoleClubFaculty},
		},
	}

	for _, counter := range counters {
		if err := r.db.GetContext(ctx, counter.dest, counter.query, counter.args...); err != nil {
			return nil, fmt.Errorf("collect stats counter: %w", err)
		}
	}

	const budgetQuery = `SELECT COALESCE(SUM(NULLIF(regexp_replace(fee, '\D', '', 'g'), '')::BIGINT), 0)
		FROM events WHERE fee ~ '\d'`
	if err := r.db.GetContext(ctx, &stats.TotalBudgetAllocated, budgetQuery); err != nil {
		return nil, fmt.Errorf("collect budget total: %w", err)
	}

	return stats, nil
}

// RecentDecisions returns the latest ledger entries joined with event and
// club for the department head dashboard.
func (r *StatsRepository) RecentDecisions(ctx context.Context, limit int) ([]models.RecentDecision, error) {
	if limit <= 0 {
		limit = 5
	}
	const query = `SELECT e.id AS event_id, e.title AS event_title, ea.approval_status AS decision,
			ea.approval_date AS decided_at, e.fee AS budget, c.name AS club_name, ea.comments AS reason
		FROM event_approvals ea
		JOIN events e ON ea.event_id = e.id
		LEFT JOIN clubs c ON e.club_id = c.id
		ORDER BY ea.approval_date DESC
		LIMIT $1`
	var decisions []models.RecentDecision
	if err := r.db.SelectContext(ctx, &decisions, query, limit); err != nil {
		return nil, fmt.Errorf("list recent decisions: %w", err)
	}
	return decisions, nil
}
