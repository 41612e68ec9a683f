package models

import "time"

// RegistrationType distinguishes performers from attendees.
type RegistrationType string

const (
	RegistrationPerformer RegistrationType = "performer"
	RegistrationAttendee  RegistrationType = "attendee"
)

// RegistrationStatus tracks a registration through the event.
type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "registered"
	RegistrationCancelled  RegistrationStatus = "cancelled"
	RegistrationAttended   RegistrationStatus = "attended"
)

// EventRegistration links a user to an event. One row per (event, user).
type EventRegistration struct {
	ID               string             `db:"id" json:"id"`
	EventID          string             `db:"event_id" json:"event_id"`
	UserID           string             `db:"user_id" json:"user_id"`
	RegistrationType RegistrationType   `db:"registration_type" json:"registration_type"`
	Status           RegistrationStatus `db:"status" json:"status"`
	RegistrationTime time.Time          `db:"registration_time" json:"registration_time"`
}

// RegistrationDetail joins the registrant for the organiser's view.
type RegistrationDetail struct {
	ID               string             `db:"id" json:"id"`
	RegistrationType RegistrationType   `db:"registration_type" json:"registration_type"`
	Status           RegistrationStatus `db:"status" json:"status"`
	RegistrationTime time.Time          `db:"registration_time" json:"registration_time"`
	UserID           string             `db:"user_id" json:"user_id"`
	FirstName        string             `db:"first_name" json:"first_name"`
	LastName         string             `db:"last_name" json:"last_name"`
	Email            string             `db:"email" json:"email"`
	StudentID        *string            `db:"student_id" json:"student_id,omitempty"`
}
