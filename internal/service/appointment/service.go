package appointment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gorica/clinic-api/internal/model"
	"github.com/gorica/clinic-api/internal/repository"
	"github.com/gorica/clinic-api/internal/schedule"
	"github.com/gorica/clinic-api/internal/service/event"
	apperrors "github.com/gorica/clinic-api/pkg/errors"
	"github.com/gorica/clinic-api/pkg/metrics"
)

const (
	msgDeleted   = "Appointment deleted successfully"
	msgCancelled = "Appointment cancelled successfully"
)

type Service struct {
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	events   event.Publisher
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewService(
	repo repository.AppointmentRepository,
	patients repository.PatientRepository,
	events event.Publisher,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	if events == nil {
		events = event.NewNopPublisher()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &Service{
		repo:     repo,
		patients: patients,
		events:   events,
		metrics:  m,
		logger:   logger.With().Str("service", "appointment").Logger(),
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.AppointmentDetails, error) {
	apt, err := s.repo.GetDetails(ctx, id)
	if err != nil {
		return nil, s.fail(err, "get", zerolog.Dict().Str("id", id.String()))
	}
	return apt, nil
}

func (s *Service) List(ctx context.Context, q *model.AppointmentQuery) ([]*model.AppointmentDetails, error) {
	filters, err := parseFilters(q)
	if err != nil {
		return nil, err
	}
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, s.fail(err, "list", zerolog.Dict())
	}
	return appointments, nil
}

func parseFilters(q *model.AppointmentQuery) (*model.AppointmentFilters, error) {
	filters := &model.AppointmentFilters{}
	if q == nil {
		return filters, nil
	}

	if q.Date != "" {
		d, err := schedule.NormalizeDate(q.Date)
		if err != nil {
			return nil, apperrors.ValidationWrap(fmt.Sprintf("Invalid date filter: %q. Expected format: YYYY-MM-DD", q.Date), err)
		}
		filters.Date = &d
	}
	if q.StartDate != "" && q.EndDate != "" {
		start, err := schedule.NormalizeDate(q.StartDate)
		if err != nil {
			return nil, apperrors.ValidationWrap(fmt.Sprintf("Invalid start_date filter: %q. Expected format: YYYY-MM-DD", q.StartDate), err)
		}
		end, err := schedule.NormalizeDate(q.EndDate)
		if err != nil {
			return nil, apperrors.ValidationWrap(fmt.Sprintf("Invalid end_date filter: %q. Expected format: YYYY-MM-DD", q.EndDate), err)
		}
		filters.StartDate = &start
		filters.EndDate = &end
	}
	if q.PatientID != "" {
		id, err := uuid.Parse(q.PatientID)
		if err != nil {
			return nil, apperrors.ValidationWrap("Invalid patient_id filter", err)
		}
		filters.PatientID = &id
	}
	if q.Status != "" {
		status := model.AppointmentStatus(q.Status)
		if !status.Valid() {
			return nil, apperrors.Validation(fmt.Sprintf("Invalid status filter: %q", q.Status))
		}
		filters.Status = status
	}
	if q.ServiceType != "" {
		st := model.ServiceType(q.ServiceType)
		if !st.Valid() {
			return nil, apperrors.Validation(fmt.Sprintf("Invalid service_type filter: %q", q.ServiceType))
		}
		filters.ServiceType = st
	}
	return filters, nil
}

// Create books a new appointment. A cancelled appointment sitting on the
// exact same start time is removed in the same transaction as the insert.
func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest, principal *model.Principal) (*model.AppointmentDetails, error) {
	if missing := missingFields(req); len(missing) > 0 {
		return nil, apperrors.Validation("Missing required fields", missing...)
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperrors.ValidationWrap("Invalid patient_id", err)
	}
	date, err := normalizeDate(req.Date)
	if err != nil {
		return nil, err
	}
	start, err := normalizeTime("start_time", req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := normalizeTime("end_time", req.EndTime)
	if err != nil {
		return nil, err
	}
	if !start.Before(end) {
		return nil, apperrors.Validation("end_time must be after start_time")
	}

	serviceType := resolveServiceType(req.ServiceType, principal)
	if !serviceType.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("Invalid service_type: %q", serviceType))
	}
	status := req.Status
	if status == "" {
		status = model.AppointmentStatusScheduled
	}
	if !status.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("Invalid status: %q", status))
	}

	exists, err := s.patients.Exists(ctx, patientID)
	if err != nil {
		return nil, s.fail(err, "create", zerolog.Dict().Str("patient_id", req.PatientID))
	}
	if !exists {
		return nil, apperrors.NotFound("Patient")
	}

	occupants, err := s.repo.ListSlotOccupants(ctx, date, serviceType, nil)
	if err != nil {
		return nil, s.fail(err, "create", slotDict(date, start, end, serviceType))
	}

	slot := schedule.Slot{Date: date, Start: start, End: end}
	verdict := schedule.Classify(slot, occupants)
	switch verdict.Verdict {
	case schedule.RejectExact, schedule.RejectOverlap:
		return nil, s.conflict(verdict.Verdict, verdict.Occupant, serviceType)
	}

	apt := &model.Appointment{
		PatientID:       patientID,
		Date:            date,
		StartTime:       start,
		EndTime:         end,
		ServiceType:     serviceType,
		Status:          status,
		AppointmentType: strings.TrimSpace(req.AppointmentType),
		Notes:           req.Notes,
	}
	if err := s.repo.Create(ctx, apt, verdict.Reclaim); err != nil {
		return nil, s.fail(err, "create", slotDict(date, start, end, serviceType))
	}

	if n := len(verdict.Reclaim); n > 0 {
		s.metrics.SlotsReclaimed.Add(float64(n))
		s.logger.Info().
			Str("appointment_id", apt.ID.String()).
			Int("reclaimed", n).
			Msg("reclaimed cancelled slot")
	}
	s.metrics.AppointmentWrites.WithLabelValues("create", string(serviceType)).Inc()

	details, err := s.repo.GetDetails(ctx, apt.ID)
	if err != nil {
		return nil, s.fail(err, "create", zerolog.Dict().Str("id", apt.ID.String()))
	}
	s.events.Publish(ctx, model.NewAppointmentEvent(model.AppointmentCreated, details.Appointment, details.PatientName(), principal))
	return details, nil
}

// Update applies the fields present in req. Moving an active appointment
// re-checks it for overlaps against the other active appointments of its
// day and service line.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest, principal *model.Principal) (*model.AppointmentDetails, error) {
	if req == nil || req.Empty() {
		return nil, apperrors.Validation("No fields to update")
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.fail(err, "update", zerolog.Dict().Str("id", id.String()))
	}

	changes, err := s.changes(ctx, req)
	if err != nil {
		return nil, err
	}

	date, start, end := existing.Date, existing.StartTime, existing.EndTime
	serviceType, status := existing.ServiceType, existing.Status
	if changes.Date != nil {
		date = *changes.Date
	}
	if changes.StartTime != nil {
		start = *changes.StartTime
	}
	if changes.EndTime != nil {
		end = *changes.EndTime
	}
	if changes.ServiceType != nil {
		serviceType = *changes.ServiceType
	}
	if changes.Status != nil {
		status = *changes.Status
	}

	moved := changes.Date != nil || changes.StartTime != nil || changes.EndTime != nil || changes.ServiceType != nil
	if moved && !start.Before(end) {
		return nil, apperrors.Validation("end_time must be after start_time")
	}

	reactivated := existing.Status == model.AppointmentStatusCancelled && status != model.AppointmentStatusCancelled
	if moved || reactivated {
		occupants, err := s.repo.ListSlotOccupants(ctx, date, serviceType, &id)
		if err != nil {
			return nil, s.fail(err, "update", slotDict(date, start, end, serviceType))
		}
		if o := schedule.FindOverlap(schedule.Slot{Date: date, Start: start, End: end}, occupants); o != nil {
			return nil, s.conflict(schedule.RejectOverlap, o, serviceType)
		}
	}

	if err := s.repo.Update(ctx, id, changes); err != nil {
		return nil, s.fail(err, "update", slotDict(date, start, end, serviceType))
	}
	s.metrics.AppointmentWrites.WithLabelValues("update", string(serviceType)).Inc()

	details, err := s.repo.GetDetails(ctx, id)
	if err != nil {
		return nil, s.fail(err, "update", zerolog.Dict().Str("id", id.String()))
	}

	eventType := model.AppointmentUpdated
	if existing.Status != model.AppointmentStatusCancelled && status == model.AppointmentStatusCancelled {
		eventType = model.AppointmentCancelled
	}
	s.events.Publish(ctx, model.NewAppointmentEvent(eventType, details.Appointment, details.PatientName(), principal))
	return details, nil
}

// changes normalizes the supplied fields of req. Explicit nulls are only
// accepted for notes.
func (s *Service) changes(ctx context.Context, req *model.UpdateAppointmentRequest) (*model.AppointmentChanges, error) {
	changes := &model.AppointmentChanges{Notes: req.Notes}

	if req.PatientID.Set {
		if req.PatientID.Null {
			return nil, apperrors.Validation("patient_id cannot be null")
		}
		patientID, err := uuid.Parse(req.PatientID.Value)
		if err != nil {
			return nil, apperrors.ValidationWrap("Invalid patient_id", err)
		}
		exists, err := s.patients.Exists(ctx, patientID)
		if err != nil {
			return nil, s.fail(err, "update", zerolog.Dict().Str("patient_id", req.PatientID.Value))
		}
		if !exists {
			return nil, apperrors.NotFound("Patient")
		}
		changes.PatientID = &patientID
	}
	if req.Date.Set {
		if req.Date.Null {
			return nil, apperrors.Validation("date cannot be null")
		}
		date, err := normalizeDate(req.Date.Value)
		if err != nil {
			return nil, err
		}
		changes.Date = &date
	}
	if req.StartTime.Set {
		if req.StartTime.Null {
			return nil, apperrors.Validation("start_time cannot be null")
		}
		start, err := normalizeTime("start_time", req.StartTime.Value)
		if err != nil {
			return nil, err
		}
		changes.StartTime = &start
	}
	if req.EndTime.Set {
		if req.EndTime.Null {
			return nil, apperrors.Validation("end_time cannot be null")
		}
		end, err := normalizeTime("end_time", req.EndTime.Value)
		if err != nil {
			return nil, err
		}
		changes.EndTime = &end
	}
	if req.AppointmentType.Set {
		t := strings.TrimSpace(req.AppointmentType.Value)
		if req.AppointmentType.Null || t == "" {
			return nil, apperrors.Validation("appointment_type cannot be empty")
		}
		changes.AppointmentType = &t
	}
	if req.ServiceType.Set {
		if req.ServiceType.Null || !req.ServiceType.Value.Valid() {
			return nil, apperrors.Validation(fmt.Sprintf("Invalid service_type: %q", req.ServiceType.Value))
		}
		st := req.ServiceType.Value
		changes.ServiceType = &st
	}
	if req.Status.Set {
		if req.Status.Null || !req.Status.Value.Valid() {
			return nil, apperrors.Validation(fmt.Sprintf("Invalid status: %q", req.Status.Value))
		}
		status := req.Status.Value
		changes.Status = &status
	}
	return changes, nil
}

// Delete cancels the appointment, or removes it when hard is set.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, hard bool, principal *model.Principal) (*model.DeleteAppointmentResponse, error) {
	details, err := s.repo.GetDetails(ctx, id)
	if err != nil {
		return nil, s.fail(err, "delete", zerolog.Dict().Str("id", id.String()))
	}

	var (
		apt       *model.Appointment
		message   string
		eventType model.AppointmentEventType
		operation string
	)
	if hard {
		apt, err = s.repo.Delete(ctx, id)
		message, eventType, operation = msgDeleted, model.AppointmentDeleted, "delete"
	} else {
		apt, err = s.repo.Cancel(ctx, id)
		message, eventType, operation = msgCancelled, model.AppointmentCancelled, "cancel"
	}
	if err != nil {
		return nil, s.fail(err, operation, zerolog.Dict().Str("id", id.String()))
	}
	s.metrics.AppointmentWrites.WithLabelValues(operation, string(apt.ServiceType)).Inc()

	s.events.Publish(ctx, model.NewAppointmentEvent(eventType, *apt, details.PatientName(), principal))
	return &model.DeleteAppointmentResponse{Message: message, Appointment: apt}, nil
}

func (s *Service) conflict(verdict schedule.Verdict, o *schedule.Occupant, serviceType model.ServiceType) error {
	s.metrics.SlotConflicts.WithLabelValues(string(serviceType), verdict.String()).Inc()
	if verdict == schedule.RejectExact {
		return apperrors.Conflict(ExactConflictMessage(o.PatientName), nil)
	}
	return apperrors.Conflict(OverlapConflictMessage(o), nil)
}

func ExactConflictMessage(patientName string) string {
	return fmt.Sprintf("This time slot is already booked by %s. Please choose another time.", patientName)
}

func OverlapConflictMessage(o *schedule.Occupant) string {
	return fmt.Sprintf("Time slot overlaps with an appointment for %s (%s - %s). Please choose another time.",
		o.PatientName, o.Start, o.End)
}

// fail passes AppErrors through and hides anything else behind Internal.
func (s *Service) fail(err error, op string, fields *zerolog.Event) error {
	if appErr, ok := apperrors.As(err); ok {
		if appErr.Code == apperrors.ErrConflict || appErr.Code == apperrors.ErrValidation {
			s.logger.Warn().Err(err).Str("op", op).Dict("input", fields).Msg("storage rejected appointment write")
		}
		return appErr
	}
	s.logger.Error().Err(err).Str("op", op).Dict("input", fields).Msg("appointment operation failed")
	return apperrors.Internal(err)
}

func resolveServiceType(requested model.ServiceType, principal *model.Principal) model.ServiceType {
	if requested != "" {
		return requested
	}
	if principal != nil {
		if st := principal.Role.ServiceType(); st != "" {
			return st
		}
	}
	return model.ServiceTypeDoctor
}

func missingFields(req *model.CreateAppointmentRequest) []string {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name+" is required")
		}
	}
	check("patient_id", req.PatientID)
	check("date", req.Date)
	check("start_time", req.StartTime)
	check("end_time", req.EndTime)
	check("appointment_type", req.AppointmentType)
	return missing
}

func normalizeDate(v string) (schedule.Date, error) {
	d, err := schedule.NormalizeDate(v)
	if err != nil {
		return "", apperrors.ValidationWrap(fmt.Sprintf("Invalid date format: %q. Expected format: YYYY-MM-DD", v), err)
	}
	return d, nil
}

func normalizeTime(field, v string) (schedule.Clock, error) {
	c, err := schedule.NormalizeTime(v)
	if err != nil {
		return "", apperrors.ValidationWrap(fmt.Sprintf("Invalid %s format: %q. Expected format: HH:MM:SS or HH:MM", field, v), err)
	}
	return c, nil
}

func slotDict(date schedule.Date, start, end schedule.Clock, serviceType model.ServiceType) *zerolog.Event {
	return zerolog.Dict().
		Str("date", date.String()).
		Str("start_time", start.String()).
		Str("end_time", end.String()).
		Str("service_type", string(serviceType))
}
