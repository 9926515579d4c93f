package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/gorica/clinic-api/internal/model"
	"github.com/gorica/clinic-api/internal/schedule"
)

type (
	AppointmentRepository interface {
		// Create inserts apt after hard-deleting the cancelled appointments
		// listed in reclaim, in one transaction.
		Create(ctx context.Context, apt *model.Appointment, reclaim []uuid.UUID) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		GetDetails(ctx context.Context, id uuid.UUID) (*model.AppointmentDetails, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.AppointmentDetails, error)
		ListSlotOccupants(ctx context.Context, date schedule.Date, serviceType model.ServiceType, excludeID *uuid.UUID) ([]schedule.Occupant, error)
		Update(ctx context.Context, id uuid.UUID, changes *model.AppointmentChanges) error
		Cancel(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Delete(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Exists(ctx context.Context, id uuid.UUID) (bool, error)
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
	}

	ReportRepository interface {
		Create(ctx context.Context, report *model.PhysicianReport) error
		Get(ctx context.Context, id uuid.UUID) (*model.ReportDetails, error)
		GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.ReportDetails, error)
		FindByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.PhysicianReport, error)
		List(ctx context.Context, filters *model.ReportFilters) ([]*model.ReportDetails, error)
		Update(ctx context.Context, report *model.PhysicianReport) error
		Delete(ctx context.Context, id uuid.UUID) error
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByUsername(ctx context.Context, username string) (*model.User, error)
		UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	}
)
