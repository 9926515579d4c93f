package model

import (
	"github.com/google/uuid"

	"github.com/gorica/clinic-api/internal/schedule"
)

// PhysicianReport is the clinical write-up attached to one appointment.
type PhysicianReport struct {
	Base
	AppointmentID           uuid.UUID  `db:"appointment_id" json:"appointment_id"`
	PatientName             string     `db:"patient_name" json:"patient_name"`
	DateOfBirth             *string    `db:"date_of_birth" json:"date_of_birth"`
	ReasonForVisit          *string    `db:"reason_for_visit" json:"reason_for_visit"`
	ChiefComplaint          *string    `db:"chief_complaint" json:"chief_complaint"`
	HistoryOfPresentIllness *string    `db:"history_of_present_illness" json:"history_of_present_illness"`
	PhysicalExamination     *string    `db:"physical_examination" json:"physical_examination"`
	Diagnosis               *string    `db:"diagnosis" json:"diagnosis"`
	TreatmentPlan           *string    `db:"treatment_plan" json:"treatment_plan"`
	MedicationsPrescribed   *string    `db:"medications_prescribed" json:"medications_prescribed"`
	FollowUpInstructions    *string    `db:"follow_up_instructions" json:"follow_up_instructions"`
	AdditionalNotes         *string    `db:"additional_notes" json:"additional_notes"`
	CreatedBy               *uuid.UUID `db:"created_by" json:"created_by"`
}

// ReportDetails joins a report with its appointment and patient.
type ReportDetails struct {
	PhysicianReport
	AppointmentDate   schedule.Date     `db:"appointment_date" json:"appointment_date"`
	AppointmentTime   schedule.Clock    `db:"appointment_time" json:"appointment_time"`
	AppointmentType   string            `db:"appointment_type" json:"appointment_type"`
	AppointmentStatus AppointmentStatus `db:"appointment_status" json:"appointment_status"`
	AppointmentNotes  *string           `db:"appointment_notes" json:"appointment_notes"`
	FirstName         string            `db:"first_name" json:"first_name"`
	LastName          string            `db:"last_name" json:"last_name"`
	Phone             *string           `db:"phone" json:"phone"`
	DOB               *schedule.Date    `db:"dob" json:"dob"`
	PatientNotes      *string           `db:"patient_notes" json:"patient_notes"`
}

type ReportRequest struct {
	AppointmentID           string  `json:"appointment_id"`
	PatientName             string  `json:"patient_name"`
	DateOfBirth             *string `json:"date_of_birth"`
	ReasonForVisit          *string `json:"reason_for_visit"`
	ChiefComplaint          *string `json:"chief_complaint"`
	HistoryOfPresentIllness *string `json:"history_of_present_illness"`
	PhysicalExamination     *string `json:"physical_examination"`
	Diagnosis               *string `json:"diagnosis"`
	TreatmentPlan           *string `json:"treatment_plan"`
	MedicationsPrescribed   *string `json:"medications_prescribed"`
	FollowUpInstructions    *string `json:"follow_up_instructions"`
	AdditionalNotes         *string `json:"additional_notes"`
}

// Apply copies the request's clinical fields onto r. An empty patient name
// keeps the stored one.
func (req *ReportRequest) Apply(r *PhysicianReport) {
	if req.PatientName != "" {
		r.PatientName = req.PatientName
	}
	r.DateOfBirth = req.DateOfBirth
	r.ReasonForVisit = req.ReasonForVisit
	r.ChiefComplaint = req.ChiefComplaint
	r.HistoryOfPresentIllness = req.HistoryOfPresentIllness
	r.PhysicalExamination = req.PhysicalExamination
	r.Diagnosis = req.Diagnosis
	r.TreatmentPlan = req.TreatmentPlan
	r.MedicationsPrescribed = req.MedicationsPrescribed
	r.FollowUpInstructions = req.FollowUpInstructions
	r.AdditionalNotes = req.AdditionalNotes
}

type ReportFilters struct {
	AppointmentID *uuid.UUID
	PatientID     *uuid.UUID
	StartDate     *schedule.Date
	EndDate       *schedule.Date
}

type ReportQuery struct {
	AppointmentID string `form:"appointment_id"`
	PatientID     string `form:"patient_id"`
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
}
