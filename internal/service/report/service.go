package report

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
	repo         repository.ReportRepository
	appointments repository.AppointmentRepository
	logger       zerolog.Logger
}

func NewService(repo repository.ReportRepository, appointments repository.AppointmentRepository, logger zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		logger:       logger.With().Str("service", "report").Logger(),
	}
}

func (s *Service) List(ctx context.Context, q *model.ReportQuery) ([]*model.ReportDetails, error) {
	filters := &model.ReportFilters{}
	if q != nil {
		if q.AppointmentID != "" {
			id, err := uuid.Parse(q.AppointmentID)
			if err != nil {
				return nil, apperrors.ValidationWrap("Invalid appointment_id filter", err)
			}
			filters.AppointmentID = &id
		}
		if q.PatientID != "" {
			id, err := uuid.Parse(q.PatientID)
			if err != nil {
				return nil, apperrors.ValidationWrap("Invalid patient_id filter", err)
			}
			filters.PatientID = &id
		}
		if q.StartDate != "" && q.EndDate != "" {
			start, err := schedule.NormalizeDate(q.StartDate)
			if err != nil {
				return nil, apperrors.ValidationWrap("Invalid start_date filter. Expected format: YYYY-MM-DD", err)
			}
			end, err := schedule.NormalizeDate(q.EndDate)
			if err != nil {
				return nil, apperrors.ValidationWrap("Invalid end_date filter. Expected format: YYYY-MM-DD", err)
			}
			filters.StartDate, filters.EndDate = &start, &end
		}
	}

	reports, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, s.fail(err, "list")
	}
	return reports, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.ReportDetails, error) {
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.fail(err, "get")
	}
	return report, nil
}

func (s *Service) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.ReportDetails, error) {
	report, err := s.repo.GetByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, s.fail(err, "get by appointment")
	}
	return report, nil
}

// Create attaches the first report to an appointment.
func (s *Service) Create(ctx context.Context, req *model.ReportRequest, principal *model.Principal) (*model.ReportDetails, error) {
	if strings.TrimSpace(req.AppointmentID) == "" || strings.TrimSpace(req.PatientName) == "" {
		return nil, apperrors.Validation("appointment_id and patient_name are required")
	}
	appointmentID, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		return nil, apperrors.ValidationWrap("Invalid appointment_id", err)
	}

	if _, err := s.appointments.Get(ctx, appointmentID); err != nil {
		return nil, s.fail(err, "create")
	}
	existing, err := s.find(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("Report already exists for this appointment. Use PUT to update.", nil)
	}

	report := &model.PhysicianReport{AppointmentID: appointmentID, CreatedBy: actor(principal)}
	req.Apply(report)
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, s.fail(err, "create")
	}
	return s.Get(ctx, report.ID)
}

// Update replaces the clinical fields of a report.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.ReportRequest) (*model.ReportDetails, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.fail(err, "update")
	}
	report := current.PhysicianReport
	req.Apply(&report)
	if err := s.repo.Update(ctx, &report); err != nil {
		return nil, s.fail(err, "update")
	}
	return s.Get(ctx, id)
}

// Upsert updates the appointment's report or creates it. A new report
// without a patient name takes the booked patient's name. The bool result
// reports whether a report was created.
func (s *Service) Upsert(ctx context.Context, appointmentID uuid.UUID, req *model.ReportRequest, principal *model.Principal) (*model.ReportDetails, bool, error) {
	apt, err := s.appointments.GetDetails(ctx, appointmentID)
	if err != nil {
		return nil, false, s.fail(err, "upsert")
	}
	existing, err := s.find(ctx, appointmentID)
	if err != nil {
		return nil, false, err
	}

	created := existing == nil
	if created {
		report := &model.PhysicianReport{
			AppointmentID: appointmentID,
			PatientName:   apt.PatientName(),
			CreatedBy:     actor(principal),
		}
		req.Apply(report)
		if err := s.repo.Create(ctx, report); err != nil {
			return nil, false, s.fail(err, "upsert")
		}
	} else {
		req.Apply(existing)
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, false, s.fail(err, "upsert")
		}
	}

	report, err := s.GetByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, false, err
	}
	return report, created, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail(err, "delete")
	}
	return nil
}

// find returns the appointment's report, or nil when it has none.
func (s *Service) find(ctx context.Context, appointmentID uuid.UUID) (*model.PhysicianReport, error) {
	report, err := s.repo.FindByAppointment(ctx, appointmentID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, s.fail(err, "find")
	}
	return report, nil
}

func actor(p *model.Principal) *uuid.UUID {
	if p == nil {
		return nil
	}
	id := p.UserID
	return &id
}

func (s *Service) fail(err error, op string) error {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}
	s.logger.Error().Err(err).Str("op", op).Msg("report operation failed")
	return apperrors.Internal(err)
}
