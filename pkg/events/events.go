// Package events publishes appointment lifecycle events for downstream
// collaborators (billing, prescriptions, notifications). Consumers key off
// the appointment id, so all events for one appointment land in order on the
// same partition.
package events

import (
	"time"

	"telecare/pkg/model"

	"github.com/google/uuid"
)

const (
	TypeAppointmentBooked        = "appointment.booked"
	TypeAppointmentStatusChanged = "appointment.status_changed"
)

// Header keys attached to every published message.
const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"
	HeaderTimestamp = "timestamp"
)

type AppointmentEvent struct {
	EventID        string    `json:"event_id"`
	Type           string    `json:"type"`
	AppointmentID  string    `json:"appointment_id"`
	ProviderID     string    `json:"provider_id"`
	PatientID      string    `json:"patient_id"`
	Day            time.Time `json:"day"`
	TimeSlotLabel  string    `json:"time_slot_label"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

func newAppointmentEvent(eventType string, appt *model.Appointment) AppointmentEvent {
	return AppointmentEvent{
		EventID:       uuid.New().String(),
		Type:          eventType,
		AppointmentID: appt.ID,
		ProviderID:    appt.ProviderID,
		PatientID:     appt.PatientID,
		Day:           appt.Day,
		TimeSlotLabel: appt.TimeSlotLabel,
		Status:        appt.Status,
		OccurredAt:    time.Now().UTC(),
	}
}
