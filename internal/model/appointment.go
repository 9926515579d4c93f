package model

import (
	"github.com/google/uuid"

	"github.com/gorica/clinic-api/internal/schedule"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// ServiceType partitions the calendar into independent booking spaces.
type ServiceType string

const (
	ServiceTypeDoctor      ServiceType = "doctor"
	ServiceTypeEsthetician ServiceType = "esthetician"
)

func (s ServiceType) Valid() bool {
	return s == ServiceTypeDoctor || s == ServiceTypeEsthetician
}

type Appointment struct {
	Base
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	Date            schedule.Date     `db:"date" json:"date"`
	StartTime       schedule.Clock    `db:"start_time" json:"start_time"`
	EndTime         schedule.Clock    `db:"end_time" json:"end_time"`
	ServiceType     ServiceType       `db:"service_type" json:"service_type"`
	Status          AppointmentStatus `db:"status" json:"status"`
	AppointmentType string            `db:"appointment_type" json:"appointment_type"`
	Notes           *string           `db:"notes" json:"notes"`
}

// AppointmentDetails is an appointment joined with its patient's display fields.
type AppointmentDetails struct {
	Appointment
	FirstName    string         `db:"first_name" json:"first_name"`
	LastName     string         `db:"last_name" json:"last_name"`
	Phone        *string        `db:"phone" json:"phone"`
	DOB          *schedule.Date `db:"dob" json:"dob"`
	PatientNotes *string        `db:"patient_notes" json:"patient_notes"`
}

func (a *AppointmentDetails) PatientName() string {
	return schedule.DisplayName(a.FirstName, a.LastName)
}

type CreateAppointmentRequest struct {
	PatientID       string            `json:"patient_id" binding:"required"`
	Date            string            `json:"date" binding:"required,clinicdate"`
	StartTime       string            `json:"start_time" binding:"required,clocktime"`
	EndTime         string            `json:"end_time" binding:"required,clocktime"`
	AppointmentType string            `json:"appointment_type" binding:"required"`
	ServiceType     ServiceType       `json:"service_type" binding:"omitempty,oneof=doctor esthetician"`
	Status          AppointmentStatus `json:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
	Notes           *string           `json:"notes"`
}

// UpdateAppointmentRequest only touches the fields present in the body.
type UpdateAppointmentRequest struct {
	PatientID       Optional[string]            `json:"patient_id"`
	Date            Optional[string]            `json:"date"`
	StartTime       Optional[string]            `json:"start_time"`
	EndTime         Optional[string]            `json:"end_time"`
	AppointmentType Optional[string]            `json:"appointment_type"`
	ServiceType     Optional[ServiceType]       `json:"service_type"`
	Status          Optional[AppointmentStatus] `json:"status"`
	Notes           Optional[string]            `json:"notes"`
}

func (r *UpdateAppointmentRequest) Empty() bool {
	return !r.PatientID.Set && !r.Date.Set && !r.StartTime.Set && !r.EndTime.Set &&
		!r.AppointmentType.Set && !r.ServiceType.Set && !r.Status.Set && !r.Notes.Set
}

// AppointmentChanges is the normalized column set written by an update.
// Nil pointers leave the column untouched.
type AppointmentChanges struct {
	PatientID       *uuid.UUID
	Date            *schedule.Date
	StartTime       *schedule.Clock
	EndTime         *schedule.Clock
	AppointmentType *string
	ServiceType     *ServiceType
	Status          *AppointmentStatus
	Notes           Optional[string]
}

func (c *AppointmentChanges) Empty() bool {
	return c.PatientID == nil && c.Date == nil && c.StartTime == nil && c.EndTime == nil &&
		c.AppointmentType == nil && c.ServiceType == nil && c.Status == nil && !c.Notes.Set
}

type AppointmentFilters struct {
	Date        *schedule.Date
	StartDate   *schedule.Date
	EndDate     *schedule.Date
	PatientID   *uuid.UUID
	Status      AppointmentStatus
	ServiceType ServiceType
}

// AppointmentQuery is the raw query string of GET /appointments.
type AppointmentQuery struct {
	Date        string `form:"date"`
	StartDate   string `form:"start_date"`
	EndDate     string `form:"end_date"`
	PatientID   string `form:"patient_id"`
	Status      string `form:"status"`
	ServiceType string `form:"service_type"`
}

type DeleteAppointmentResponse struct {
	Message     string       `json:"message"`
	Appointment *Appointment `json:"appointment"`
}
