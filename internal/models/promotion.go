package models

import "time"

// PromotionStatus mirrors the event approval lifecycle for role elevation.
type PromotionStatus string

const (
	PromotionPending  PromotionStatus = "pending"
	PromotionApproved PromotionStatus = "approved"
	PromotionRejected PromotionStatus = "rejected"
)

// PromotionRequest asks for the caller's role to be elevated. The request
// row itself is the audit record; approving writes requested_role onto the
// user in the same transaction that flips the request status.
type PromotionRequest struct {
	ID            string          `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"user_id"`
	RequestedRole UserRole        `db:"requested_role" json:"requested_role"`
	Status        PromotionStatus `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	DecidedBy     *string         `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt     *time.Time      `db:"decided_at" json:"decided_at,omitempty"`
}

// CreatePromotionRequest asks for a role elevation.
type CreatePromotionRequest struct {
	RequestedRole UserRole `json:"requested_role" validate:"required"`
}

// PendingPromotion joins the requesting user for the department head queue.
type PendingPromotion struct {
	PromotionRequest
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
}
