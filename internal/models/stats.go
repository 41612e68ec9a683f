package models

import "time"

// SystemStats is the department head / admin dashboard snapshot.
//
// TotalBudgetAllocated sums the digits stripped out of each event's fee
// text. Fees without digits ("Free") contribute nothing.
type SystemStats struct {
	TotalEventsThisMonth int       `json:"total_events_this_month"`
	ActiveUsers          int       `json:"active_users"`
	TotalBudgetAllocated int64     `json:"total_budget_allocated"`
	PendingApprovals     int       `json:"pending_approvals"`
	TotalStudents        int       `json:"total_students"`
	FacultyMembers       int       `json:"faculty_members"`
	GeneratedAt          time.Time `json:"generated_at"`
}
