package model

import (
	"github.com/gorica/clinic-api/internal/schedule"
)

type Patient struct {
	Base
	FirstName string         `db:"first_name" json:"first_name"`
	LastName  string         `db:"last_name" json:"last_name"`
	Phone     *string        `db:"phone" json:"phone"`
	DOB       *schedule.Date `db:"dob" json:"dob"`
	Notes     *string        `db:"notes" json:"notes"`
}

// PatientRequest is used for both create and full update.
type PatientRequest struct {
	FirstName string  `json:"first_name" binding:"required"`
	LastName  string  `json:"last_name" binding:"required"`
	Phone     *string `json:"phone"`
	DOB       *string `json:"dob" binding:"omitempty,clinicdate"`
	Notes     *string `json:"notes"`
}

type PatientFilters struct {
	Search string `form:"search"`
}

type DeletePatientResponse struct {
	Message string   `json:"message"`
	Patient *Patient `json:"patient"`
}
