package models

import "time"

// ApprovalStatus is the decision recorded in the approval ledger.
type ApprovalStatus string

const (
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// EventApproval is one append-only ledger row. The event's status column is
// a cached projection of the latest ledger row; both are written in the same
// transaction so they can never disagree.
type EventApproval struct {
	ID             string         `db:"id" json:"id"`
	EventID        string         `db:"event_id" json:"event_id"`
	ApprovedBy     string         `db:"approved_by" json:"approved_by"`
	ApprovalStatus ApprovalStatus `db:"approval_status" json:"approval_status"`
	Comments       string         `db:"comments" json:"comments"`
	ApprovalDate   time.Time      `db:"approval_date" json:"approval_date"`
}

// RecentDecision joins a ledger row with its event and club for the
// department head dashboard.
type RecentDecision struct {
	EventID    string         `db:"event_id" json:"event_id"`
	EventTitle string         `db:"event_title" json:"event_title"`
	Decision   ApprovalStatus `db:"decision" json:"decision"`
	DecidedAt  time.Time      `db:"decided_at" json:"decided_at"`
	Budget     string         `db:"budget" json:"budget"`
	ClubName   *string        `db:"club_name" json:"club_name,omitempty"`
	Reason     string         `db:"reason" json:"reason"`
}
