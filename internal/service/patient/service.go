package patient

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gorica/clinic-api/internal/model"
	"github.com/gorica/clinic-api/internal/repository"
	"github.com/gorica/clinic-api/internal/schedule"
	apperrors "github.com/gorica/clinic-api/pkg/errors"
)

type Service struct {
	repo         repository.PatientRepository
	appointments repository.AppointmentRepository
	logger       zerolog.Logger
}

func NewService(repo repository.PatientRepository, appointments repository.AppointmentRepository, logger zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		logger:       logger.With().Str("service", "patient").Logger(),
	}
}

func (s *Service) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	if filters != nil {
		filters.Search = strings.TrimSpace(filters.Search)
	}
	patients, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, s.fail(err, "list")
	}
	return patients, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.fail(err, "get")
	}
	return patient, nil
}

func (s *Service) Create(ctx context.Context, req *model.PatientRequest) (*model.Patient, error) {
	patient := &model.Patient{}
	if err := apply(req, patient); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, s.fail(err, "create")
	}
	return patient, nil
}

// Update replaces every field of the patient with the request's values.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.PatientRequest) (*model.Patient, error) {
	patient := &model.Patient{Base: model.Base{ID: id}}
	if err := apply(req, patient); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, s.fail(err, "update")
	}
	return patient, nil
}

// Delete removes a patient that no appointment refers to.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*model.DeletePatientResponse, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.fail(err, "delete")
	}

	count, err := s.appointments.CountByPatient(ctx, id)
	if err != nil {
		return nil, s.fail(err, "delete")
	}
	if count > 0 {
		return nil, apperrors.Validation("Cannot delete patient with existing appointments. Cancel appointments first.")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if apperrors.Is(err, apperrors.ErrValidation) {
			// an appointment was booked after the count
			return nil, apperrors.Validation("Cannot delete patient with existing appointments. Cancel appointments first.")
		}
		return nil, s.fail(err, "delete")
	}
	return &model.DeletePatientResponse{Message: "Patient deleted successfully", Patient: patient}, nil
}

func apply(req *model.PatientRequest, patient *model.Patient) error {
	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	if first == "" || last == "" {
		return apperrors.Validation("First name and last name are required")
	}
	patient.FirstName = first
	patient.LastName = last
	patient.Phone = blankToNil(req.Phone)
	patient.Notes = blankToNil(req.Notes)
	patient.DOB = nil

	if dob := blankToNil(req.DOB); dob != nil {
		d, err := schedule.NormalizeDate(*dob)
		if err != nil {
			return apperrors.ValidationWrap("Invalid dob format. Expected format: YYYY-MM-DD", err)
		}
		patient.DOB = &d
	}
	return nil
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func (s *Service) fail(err error, op string) error {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}
	s.logger.Error().Err(err).Str("op", op).Msg("patient operation failed")
	return apperrors.Internal(err)
}
