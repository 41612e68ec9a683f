package models

import (
	"strings"
	"time"
)

// EventStatus enumerates the event approval lifecycle. Events start out
// pending and are decided exactly once per cycle; completed and cancelled
// are reserved for administrative bookkeeping after approval.
type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusApproved  EventStatus = "approved"
	EventStatusRejected  EventStatus = "rejected"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// ValidEventStatus reports whether the given value is a known status.
func ValidEventStatus(s EventStatus) bool {
	switch s {
	case EventStatusPending, EventStatusApproved, EventStatusRejected, EventStatusCompleted, EventStatusCancelled:
		return true
	}
	return false
}

// Event is the central entity of the portal.
//
// Fee is deliberately free text ("Free", "₹50"); see the stats repository
// for the budget aggregation that depends on this format.
type Event struct {
	ID                  string      `db:"id" json:"id"`
	Title               string      `db:"title" json:"title"`
	Description         string      `db:"description" json:"description"`
	Category            string      `db:"category" json:"category"`
	ClubID              *string     `db:"club_id" json:"club_id,omitempty"`
	EventDate           string      `db:"event_date" json:"event_date"`
	EventTime           string      `db:"event_time" json:"event_time"`
	Venue               string      `db:"venue" json:"venue"`
	Fee                 string      `db:"fee" json:"fee"`
	ExpectedAttendees   int         `db:"expected_attendees" json:"expected_attendees"`
	RegistrationFormURL *string     `db:"registration_form_url" json:"registration_form_url,omitempty"`
	Status              EventStatus `db:"status" json:"status"`
	CreatedBy           string      `db:"created_by" json:"created_by"`
	ApprovedBy          *string     `db:"approved_by" json:"approved_by,omitempty"`
	ApprovalDate        *time.Time  `db:"approval_date" json:"approval_date,omitempty"`
	CreatedAt           time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time   `db:"updated_at" json:"updated_at"`
}

// EventSummary is the list-view projection joining the club and creator.
type EventSummary struct {
	Event
	ClubName      *string `db:"club_name" json:"club_name,omitempty"`
	CreatedByName *string `db:"created_by_name" json:"created_by_name,omitempty"`
}

// EventDetail is the single-event projection including the live
// registration count.
type EventDetail struct {
	Event
	ClubName        *string `db:"club_name" json:"club_name,omitempty"`
	ClubEmail       *string `db:"club_email" json:"club_email,omitempty"`
	CreatedByName   *string `db:"created_by_name" json:"created_by_name,omitempty"`
	CreatedByEmail  *string `db:"created_by_email" json:"created_by_email,omitempty"`
	RegisteredCount int     `db:"registered_count" json:"registered_count"`
}

// CreateEventRequest is the proposal payload. Optional presentation fields
// get defaults server-side.
type CreateEventRequest struct {
	Title               string  `json:"title" validate:"required,max=255"`
	Description         string  `json:"description" validate:"required"`
	Category            string  `json:"category" validate:"omitempty,max=100"`
	ClubID              *string `json:"club_id,omitempty" validate:"omitempty,uuid"`
	EventDate           string  `json:"event_date" validate:"required,datetime=2006-01-02"`
	EventTime           string  `json:"event_time" validate:"omitempty"`
	Venue               string  `json:"venue" validate:"required,max=255"`
	Fee                 string  `json:"fee" validate:"omitempty,max=50"`
	ExpectedAttendees   int     `json:"expected_attendees" validate:"omitempty,min=1"`
	RegistrationFormURL *string `json:"registration_form_url,omitempty" validate:"omitempty,url"`
}

// UpdateEventRequest carries full-field update semantics; omitted fields
// are cleared, not preserved.
type UpdateEventRequest struct {
	Title               string  `json:"title" validate:"required,max=255"`
	Description         string  `json:"description" validate:"required"`
	Category            string  `json:"category" validate:"omitempty,max=100"`
	EventDate           string  `json:"event_date" validate:"required,datetime=2006-01-02"`
	EventTime           string  `json:"event_time" validate:"omitempty"`
	Venue               string  `json:"venue" validate:"required,max=255"`
	Fee                 string  `json:"fee" validate:"omitempty,max=50"`
	ExpectedAttendees   int     `json:"expected_attendees" validate:"omitempty,min=1"`
	RegistrationFormURL *string `json:"registration_form_url,omitempty" validate:"omitempty,url"`
}

// DecisionRequest carries the mandatory reviewer note. Approvals send it
// under "comments", rejections under "reason"; either key satisfies the
// requirement. Blank or whitespace-only input is refused before the
// transition is attempted.
type DecisionRequest struct {
	Comments string `json:"comments"`
	Reason   string `json:"reason"`
}

// Note returns the trimmed reviewer note, preferring comments when both
// keys are present.
func (r DecisionRequest) Note() string {
	if c := strings.TrimSpace(r.Comments); c != "" {
		return c
	}
	return strings.TrimSpace(r.Reason)
}

// EventRegistrationRequest signs the caller up for an event.
type EventRegistrationRequest struct {
	RegistrationType RegistrationType `json:"registration_type" validate:"omitempty,oneof=performer attendee"`
}

// EventFilter captures list filtering. CreatedBy narrows to one creator
// ("my requests"); Statuses is resolved by the service from the caller's
// role, never taken from the client directly.
type EventFilter struct {
	Status    *EventStatus
	Category  string
	Search    string
	CreatedBy string

	// ApprovedOnly forces status=approved regardless of other filters.
	// Set for unauthenticated and non-privileged callers.
	ApprovedOnly bool
}
