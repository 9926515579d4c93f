package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentEventType string

const (
	AppointmentCreated   AppointmentEventType = "appointment.created"
	AppointmentUpdated   AppointmentEventType = "appointment.updated"
	AppointmentCancelled AppointmentEventType = "appointment.cancelled"
	AppointmentDeleted   AppointmentEventType = "appointment.deleted"
)

// AppointmentEvent is published after an appointment write has committed.
type AppointmentEvent struct {
	ID          uuid.UUID            `json:"id"`
	Type        AppointmentEventType `json:"type"`
	Appointment Appointment          `json:"appointment"`
	PatientName string               `json:"patient_name,omitempty"`
	ActorID     *uuid.UUID           `json:"actor_id,omitempty"`
	OccurredAt  time.Time            `json:"occurred_at"`
}

func NewAppointmentEvent(t AppointmentEventType, apt Appointment, patientName string, actor *Principal) AppointmentEvent {
	evt := AppointmentEvent{
		ID:          uuid.New(),
		Type:        t,
		Appointment: apt,
		PatientName: patientName,
		OccurredAt:  time.Now().UTC(),
	}
	if actor != nil {
		id := actor.UserID
		evt.ActorID = &id
	}
	return evt
}
