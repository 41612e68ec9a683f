package models

import "time"

// CircularAudience targets a circular at a portal segment.
type CircularAudience string

const (
	AudienceAll      CircularAudience = "all"
	AudienceClubs    CircularAudience = "clubs"
	AudienceStudents CircularAudience = "students"
	AudienceFaculty  CircularAudience = "faculty"
)

// CreateCircularRequest publishes a notice.
type CreateCircularRequest struct {
	Title          string           `json:"title" validate:"required,max=255"`
	Content        string           `json:"content" validate:"required"`
	TargetAudience CircularAudience `json:"target_audience" validate:"omitempty,oneof=all clubs students faculty"`
}

// UpdateCircularRequest carries full-field update semantics.
type UpdateCircularRequest struct {
	Title          string           `json:"title" validate:"required,max=255"`
	Content        string           `json:"content" validate:"required"`
	TargetAudience CircularAudience `json:"target_audience" validate:"omitempty,oneof=all clubs students faculty"`
	Active         bool             `json:"active"`
}

// Circular is a notice-board announcement.
type Circular struct {
	ID             string           `db:"id" json:"id"`
	Title          string           `db:"title" json:"title"`
	Content        string           `db:"content" json:"content"`
	CreatedBy      string           `db:"created_by" json:"created_by"`
	TargetAudience CircularAudience `db:"target_audience" json:"target_audience"`
	Active         bool             `db:"active" json:"active"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}
