// Package mocks holds testify mocks of the repository interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/gorica/clinic-api/internal/model"
	"github.com/gorica/clinic-api/internal/repository"
	"github.com/gorica/clinic-api/internal/schedule"
)

var (
	_ repository.AppointmentRepository = (*AppointmentRepository)(nil)
	_ repository.PatientRepository     = (*PatientRepository)(nil)
	_ repository.ReportRepository      = (*ReportRepository)(nil)
)

type AppointmentRepository struct {
	mock.Mock
}

func (m *AppointmentRepository) Create(ctx context.Context, apt *model.Appointment, reclaim []uuid.UUID) error {
	return m.Called(ctx, apt, reclaim).Error(0)
}

func (m *AppointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	apt, _ := args.Get(0).(*model.Appointment)
	return apt, args.Error(1)
}

func (m *AppointmentRepository) GetDetails(ctx context.Context, id uuid.UUID) (*model.AppointmentDetails, error) {
	args := m.Called(ctx, id)
	apt, _ := args.Get(0).(*model.AppointmentDetails)
	return apt, args.Error(1)
}

func (m *AppointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.AppointmentDetails, error) {
	args := m.Called(ctx, filters)
	list, _ := args.Get(0).([]*model.AppointmentDetails)
	return list, args.Error(1)
}

func (m *AppointmentRepository) ListSlotOccupants(ctx context.Context, date schedule.Date, serviceType model.ServiceType, excludeID *uuid.UUID) ([]schedule.Occupant, error) {
	args := m.Called(ctx, date, serviceType, excludeID)
	occupants, _ := args.Get(0).([]schedule.Occupant)
	return occupants, args.Error(1)
}

func (m *AppointmentRepository) Update(ctx context.Context, id uuid.UUID, changes *model.AppointmentChanges) error {
	return m.Called(ctx, id, changes).Error(0)
}

func (m *AppointmentRepository) Cancel(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	apt, _ := args.Get(0).(*model.Appointment)
	return apt, args.Error(1)
}

func (m *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	apt, _ := args.Get(0).(*model.Appointment)
	return apt, args.Error(1)
}

func (m *AppointmentRepository) CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	args := m.Called(ctx, patientID)
	return args.Int(0), args.Error(1)
}

type PatientRepository struct {
	mock.Mock
}

func (m *PatientRepository) Create(ctx context.Context, patient *model.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *PatientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.Patient)
	return p, args.Error(1)
}

func (m *PatientRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *PatientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	args := m.Called(ctx, filters)
	list, _ := args.Get(0).([]*model.Patient)
	return list, args.Error(1)
}

func (m *PatientRepository) Update(ctx context.Context, patient *model.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *PatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type ReportRepository struct {
	mock.Mock
}

func (m *ReportRepository) Create(ctx context.Context, report *model.PhysicianReport) error {
	return m.Called(ctx, report).Error(0)
}

func (m *ReportRepository) Get(ctx context.Context, id uuid.UUID) (*model.ReportDetails, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*model.ReportDetails)
	return r, args.Error(1)
}

func (m *ReportRepository) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.ReportDetails, error) {
	args := m.Called(ctx, appointmentID)
	r, _ := args.Get(0).(*model.ReportDetails)
	return r, args.Error(1)
}

func (m *ReportRepository) FindByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.PhysicianReport, error) {
	args := m.Called(ctx, appointmentID)
	r, _ := args.Get(0).(*model.PhysicianReport)
	return r, args.Error(1)
}

func (m *ReportRepository) List(ctx context.Context, filters *model.ReportFilters) ([]*model.ReportDetails, error) {
	args := m.Called(ctx, filters)
	list, _ := args.Get(0).([]*model.ReportDetails)
	return list, args.Error(1)
}

func (m *ReportRepository) Update(ctx context.Context, report *model.PhysicianReport) error {
	return m.Called(ctx, report).Error(0)
}

func (m *ReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
