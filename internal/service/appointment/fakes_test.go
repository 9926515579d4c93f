package appointment

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gorica/clinic-api/internal/model"
	"github.com/gorica/clinic-api/internal/schedule"
	apperrors "github.com/gorica/clinic-api/pkg/errors"
)

// memStore is an in-memory appointment and patient store that enforces the
// same slot uniqueness as the database.
type memStore struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]model.Appointment
	patients     map[uuid.UUID]model.Patient
	listErr      error
}

func newMemStore() *memStore {
	return &memStore{
		appointments: map[uuid.UUID]model.Appointment{},
		patients:     map[uuid.UUID]model.Patient{},
	}
}

func (m *memStore) addPatient(first, last string) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.patients[id] = model.Patient{Base: model.Base{ID: id}, FirstName: first, LastName: last}
	return id
}

func (m *memStore) seed(patientID uuid.UUID, date schedule.Date, start, end schedule.Clock, st model.ServiceType, status model.AppointmentStatus) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New()
	m.appointments[id] = model.Appointment{
		Base:            model.Base{ID: id, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		PatientID:       patientID,
		Date:            date,
		StartTime:       start,
		EndTime:         end,
		ServiceType:     st,
		Status:          status,
		AppointmentType: "consultation",
	}
	return id
}

func (m *memStore) takenLocked(apt model.Appointment) bool {
	for id, other := range m.appointments {
		if id != apt.ID && other.Date == apt.Date && other.StartTime == apt.StartTime && other.ServiceType == apt.ServiceType {
			return true
		}
	}
	return false
}

func (m *memStore) Create(_ context.Context, apt *model.Appointment, reclaim []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[uuid.UUID]model.Appointment, len(m.appointments))
	for k, v := range m.appointments {
		snapshot[k] = v
	}
	for _, id := range reclaim {
		if existing, ok := m.appointments[id]; ok && existing.Status == model.AppointmentStatusCancelled {
			delete(m.appointments, id)
		}
	}

	apt.ID = uuid.New()
	if m.takenLocked(*apt) {
		m.appointments = snapshot
		return apperrors.Conflict("This time slot is already booked for this service. Please choose another time.", nil)
	}
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = apt.CreatedAt
	m.appointments[apt.ID] = *apt
	return nil
}

func (m *memStore) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apt, ok := m.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("Appointment")
	}
	return &apt, nil
}

func (m *memStore) detailsLocked(apt model.Appointment) *model.AppointmentDetails {
	p := m.patients[apt.PatientID]
	return &model.AppointmentDetails{
		Appointment: apt,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Phone:       p.Phone,
		DOB:         p.DOB,
	}
}

func (m *memStore) GetDetails(_ context.Context, id uuid.UUID) (*model.AppointmentDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apt, ok := m.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("Appointment")
	}
	return m.detailsLocked(apt), nil
}

func (m *memStore) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.AppointmentDetails, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}

	out := []*model.AppointmentDetails{}
	for _, apt := range m.appointments {
		if filters.Date != nil && apt.Date != *filters.Date {
			continue
		}
		if filters.StartDate != nil && (apt.Date < *filters.StartDate || apt.Date > *filters.EndDate) {
			continue
		}
		if filters.PatientID != nil && apt.PatientID != *filters.PatientID {
			continue
		}
		if filters.Status != "" && apt.Status != filters.Status {
			continue
		}
		if filters.ServiceType != "" && apt.ServiceType != filters.ServiceType {
			continue
		}
		out = append(out, m.detailsLocked(apt))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (m *memStore) ListSlotOccupants(_ context.Context, date schedule.Date, st model.ServiceType, excludeID *uuid.UUID) ([]schedule.Occupant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []schedule.Occupant
	for id, apt := range m.appointments {
		if apt.Date != date || apt.ServiceType != st {
			continue
		}
		if excludeID != nil && id == *excludeID {
			continue
		}
		p := m.patients[apt.PatientID]
		out = append(out, schedule.Occupant{
			ID:          id,
			PatientName: schedule.DisplayName(p.FirstName, p.LastName),
			Start:       apt.StartTime,
			End:         apt.EndTime,
			Cancelled:   apt.Status == model.AppointmentStatusCancelled,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (m *memStore) Update(_ context.Context, id uuid.UUID, c *model.AppointmentChanges) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	apt, ok := m.appointments[id]
	if !ok {
		return apperrors.NotFound("Appointment")
	}
	if c.PatientID != nil {
		apt.PatientID = *c.PatientID
	}
	if c.Date != nil {
		apt.Date = *c.Date
	}
	if c.StartTime != nil {
		apt.StartTime = *c.StartTime
	}
	if c.EndTime != nil {
		apt.EndTime = *c.EndTime
	}
	if c.AppointmentType != nil {
		apt.AppointmentType = *c.AppointmentType
	}
	if c.ServiceType != nil {
		apt.ServiceType = *c.ServiceType
	}
	if c.Status != nil {
		apt.Status = *c.Status
	}
	if c.Notes.Set {
		apt.Notes = c.Notes.Ptr()
	}
	if m.takenLocked(apt) {
		return apperrors.Conflict("This time slot is already booked for this service. Please choose another time.", nil)
	}
	apt.UpdatedAt = time.Now()
	m.appointments[id] = apt
	return nil
}

func (m *memStore) Cancel(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apt, ok := m.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("Appointment")
	}
	apt.Status = model.AppointmentStatusCancelled
	m.appointments[id] = apt
	return &apt, nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apt, ok := m.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("Appointment")
	}
	delete(m.appointments, id)
	return &apt, nil
}

func (m *memStore) CountByPatient(_ context.Context, patientID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, apt := range m.appointments {
		if apt.PatientID == patientID {
			n++
		}
	}
	return n, nil
}

// memPatients exposes the store's patients through PatientRepository.
type memPatients struct {
	store *memStore
}

func (p memPatients) Create(_ context.Context, patient *model.Patient) error {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	patient.ID = uuid.New()
	p.store.patients[patient.ID] = *patient
	return nil
}

func (p memPatients) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	patient, ok := p.store.patients[id]
	if !ok {
		return nil, apperrors.NotFound("Patient")
	}
	return &patient, nil
}

func (p memPatients) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()
	_, ok := p.store.patients[id]
	return ok, nil
}

func (p memPatients) List(context.Context, *model.PatientFilters) ([]*model.Patient, error) {
	return nil, errors.New("not implemented")
}

func (p memPatients) Update(context.Context, *model.Patient) error {
	return errors.New("not implemented")
}

func (p memPatients) Delete(context.Context, uuid.UUID) error {
	return errors.New("not implemented")
}

type capturePublisher struct {
	mu     sync.Mutex
	events []model.AppointmentEvent
}

func (c *capturePublisher) Publish(_ context.Context, evt model.AppointmentEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
}

func (c *capturePublisher) types() []model.AppointmentEventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.AppointmentEventType, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Type)
	}
	return out
}
