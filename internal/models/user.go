package models

import "time"

// UserRole represents the closed set of portal roles. Authorization rules
// are expressed once against these values (internal/middleware/rbac.go and
// the ownership checks in the services) instead of per-route string lists.
type UserRole string

const (
	RoleVisitor        UserRole = "visitor"
	RoleClubMember     UserRole = "club_member"
	RoleClubAdmin      UserRole = "club_admin"
	RoleClubFaculty    UserRole = "club_faculty"
	RoleAdmin          UserRole = "admin"
	RoleDepartmentHead UserRole = "department_head"
)

// ValidRole reports whether the given role is one of the known portal roles.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleVisitor, RoleClubMember, RoleClubAdmin, RoleClubFaculty, RoleAdmin, RoleDepartmentHead:
		return true
	}
	return false
}

// CanSeeAllEventStatuses reports whether a role may list events in any
// status. Everyone else only ever sees approved events.
func (r UserRole) CanSeeAllEventStatuses() bool {
	switch r {
	case RoleClubFaculty, RoleDepartmentHead, RoleAdmin:
		return true
	}
	return false
}

// CanCreateEvents reports whether a role may submit event proposals.
func (r UserRole) CanCreateEvents() bool {
	switch r {
	case RoleClubAdmin, RoleClubFaculty, RoleAdmin:
		return true
	}
	return false
}

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Role         UserRole  `db:"role" json:"role"`
	StudentID    *string   `db:"student_id" json:"student_id,omitempty"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserInfo describes a user in API responses.
type UserInfo struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Role      UserRole `json:"role"`
}

// Info projects the public view of a user.
func (u *User) Info() UserInfo {
	return UserInfo{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
