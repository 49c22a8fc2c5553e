package model

import (
	"time"
)

// Appointment lifecycle statuses. Scheduled is the only non-terminal state;
// the other three are terminal and may not be transitioned out of.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// Appointment is a booked consultation slot. ProviderID, PatientID, Day and
// TimeSlotLabel are fixed at creation; only Status (plus UpdatedAt) mutates
// afterwards. At most one scheduled appointment may exist per
// (provider_id, day, time_slot_label).
type Appointment struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ProviderID    string    `json:"provider_id" bson:"provider_id" validate:"required,mongodb"`
	PatientID     string    `json:"patient_id" bson:"patient_id" validate:"required,mongodb"`
	Day           time.Time `json:"day" bson:"day" validate:"required"`
	TimeSlotLabel string    `json:"time_slot_label" bson:"time_slot_label" validate:"required,slot_label"`
	Status        string    `json:"status" bson:"status" validate:"required,oneof=scheduled completed cancelled no_show"`
	Reason        string    `json:"reason,omitempty" bson:"reason,omitempty" validate:"omitempty,max=500"`
	Type          string    `json:"type,omitempty" bson:"type,omitempty" validate:"omitempty,oneof=consultation follow_up emergency"`
	Urgency       string    `json:"urgency,omitempty" bson:"urgency,omitempty" validate:"omitempty,oneof=low normal high"`
	ContactPhone  string    `json:"contact_phone,omitempty" bson:"contact_phone,omitempty" validate:"omitempty,e164"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" validate:"omitempty"`
}

// StatusUpdate is the payload for a lifecycle transition.
type StatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=scheduled completed cancelled no_show"`
}

// TerminalStatus reports whether no further transition is allowed from s.
func TerminalStatus(s string) bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// NormalizeDay strips the time-of-day component, pinning the appointment to
// a calendar date in UTC.
func NormalizeDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
