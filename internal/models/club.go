package models

import "time"

// Club is reference data events link to.
type Club struct {
	ID                   string    `db:"id" json:"id"`
	Name                 string    `db:"name" json:"name"`
	Description          string    `db:"description" json:"description"`
	ClubEmail            string    `db:"club_email" json:"club_email"`
	FacultyCoordinatorID *string   `db:"faculty_coordinator_id" json:"faculty_coordinator_id,omitempty"`
	Active               bool      `db:"active" json:"active"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// ClubMember links a user to a club with a position label.
// (club_id, user_id) is unique.
type ClubMember struct {
	ID         string    `db:"id" json:"id"`
	ClubID     string    `db:"club_id" json:"club_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Position   string    `db:"position" json:"position"`
	JoinedDate time.Time `db:"joined_date" json:"joined_date"`
	Active     bool      `db:"active" json:"active"`
	AddedBy    *string   `db:"added_by" json:"added_by,omitempty"`
}

// CreateClubRequest is the admin payload for creating a club.
type CreateClubRequest struct {
	Name                 string  `json:"name" validate:"required,max=255"`
	Description          string  `json:"description" validate:"omitempty"`
	ClubEmail            string  `json:"club_email" validate:"required,email"`
	FacultyCoordinatorID *string `json:"faculty_coordinator_id,omitempty" validate:"omitempty,uuid"`
}

// UpdateClubRequest carries full-field update semantics.
type UpdateClubRequest struct {
	Name                 string  `json:"name" validate:"required,max=255"`
	Description          string  `json:"description" validate:"omitempty"`
	ClubEmail            string  `json:"club_email" validate:"required,email"`
	FacultyCoordinatorID *string `json:"faculty_coordinator_id,omitempty" validate:"omitempty,uuid"`
	Active               bool    `json:"active"`
}

// AddClubMemberRequest adds a user to a club roster.
type AddClubMemberRequest struct {
	UserID   string `json:"user_id" validate:"required,uuid"`
	Position string `json:"position" validate:"omitempty,max=100"`
}

// ClubMemberDetail joins the member's user record for roster listings.
type ClubMemberDetail struct {
	ClubMember
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
}
