package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gorica/clinic-api/internal/model"
	"github.com/gorica/clinic-api/internal/repository"
	"github.com/gorica/clinic-api/internal/schedule"
	apperrors "github.com/gorica/clinic-api/pkg/errors"
)

const appointmentFields = `id, patient_id, date, start_time, end_time, service_type,
		status, appointment_type, notes, created_at, updated_at`

const appointmentDetailsQuery = `
		SELECT a.id, a.patient_id, a.date, a.start_time, a.end_time, a.service_type,
			   a.status, a.appointment_type, a.notes, a.created_at, a.updated_at,
			   p.first_name, p.last_name, p.phone, p.dob, p.notes AS patient_notes
		FROM appointments a
		JOIN patients p ON a.patient_id = p.id`

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment, reclaim []uuid.UUID) error {
	query := `
		INSERT INTO appointments (
			patient_id, date, start_time, end_time, service_type,
			status, appointment_type, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, id := range reclaim {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM appointments WHERE id = $1 AND status = 'cancelled'`, id,
			); err != nil {
				return fmt.Errorf("failed to reclaim cancelled appointment %s: %w", id, translate(err))
			}
		}

		row := tx.QueryRowxContext(ctx, query,
			apt.PatientID,
			apt.Date,
			apt.StartTime,
			apt.EndTime,
			apt.ServiceType,
			apt.Status,
			apt.AppointmentType,
			apt.Notes,
		)
		if err := row.Scan(&apt.ID, &apt.CreatedAt, &apt.UpdatedAt); err != nil {
			return fmt.Errorf("failed to create appointment: %w", translate(err))
		}
		return nil
	})
	return err
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentFields + ` FROM appointments WHERE id = $1`

	var apt model.Appointment
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", notFoundOr(err, "Appointment"))
	}
	return &apt, nil
}

func (r *appointmentRepository) GetDetails(ctx context.Context, id uuid.UUID) (*model.AppointmentDetails, error) {
	query := appointmentDetailsQuery + ` WHERE a.id = $1`

	var apt model.AppointmentDetails
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", notFoundOr(err, "Appointment"))
	}
	return &apt, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.AppointmentDetails, error) {
	query := appointmentDetailsQuery
	var conditions []string
	var args []interface{}
	argCount := 1

	if filters != nil {
		if filters.Date != nil {
			conditions = append(conditions, fmt.Sprintf("a.date = $%d", argCount))
			args = append(args, *filters.Date)
			argCount++
		}
		if filters.StartDate != nil && filters.EndDate != nil {
			conditions = append(conditions, fmt.Sprintf("a.date BETWEEN $%d AND $%d", argCount, argCount+1))
			args = append(args, *filters.StartDate, *filters.EndDate)
			argCount += 2
		}
		if filters.PatientID != nil {
			conditions = append(conditions, fmt.Sprintf("a.patient_id = $%d", argCount))
			args = append(args, *filters.PatientID)
			argCount++
		}
		if filters.Status != "" {
			conditions = append(conditions, fmt.Sprintf("a.status = $%d", argCount))
			args = append(args, filters.Status)
			argCount++
		}
		if filters.ServiceType != "" {
			conditions = append(conditions, fmt.Sprintf("a.service_type = $%d", argCount))
			args = append(args, filters.ServiceType)
			argCount++
		}
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY a.date, a.start_time"

	appointments := []*model.AppointmentDetails{}
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", translate(err))
	}
	return appointments, nil
}

type slotRow struct {
	ID        uuid.UUID               `db:"id"`
	StartTime schedule.Clock          `db:"start_time"`
	EndTime   schedule.Clock          `db:"end_time"`
	Status    model.AppointmentStatus `db:"status"`
	FirstName sql.NullString          `db:"first_name"`
	LastName  sql.NullString          `db:"last_name"`
}

// ListSlotOccupants returns every appointment of any status on date within
// serviceType, with the booked patient's name.
func (r *appointmentRepository) ListSlotOccupants(ctx context.Context, date schedule.Date, serviceType model.ServiceType, excludeID *uuid.UUID) ([]schedule.Occupant, error) {
	query := `
		SELECT a.id, a.start_time, a.end_time, a.status, p.first_name, p.last_name
		FROM appointments a
		LEFT JOIN patients p ON a.patient_id = p.id
		WHERE a.date = $1 AND a.service_type = $2
	`
	args := []interface{}{date, serviceType}
	if excludeID != nil {
		query += " AND a.id <> $3"
		args = append(args, *excludeID)
	}
	query += " ORDER BY a.start_time"

	var rows []slotRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load slot occupants: %w", translate(err))
	}

	occupants := make([]schedule.Occupant, 0, len(rows))
	for _, row := range rows {
		occupants = append(occupants, schedule.Occupant{
			ID:          row.ID,
			PatientName: schedule.DisplayName(row.FirstName.String, row.LastName.String),
			Start:       row.StartTime,
			End:         row.EndTime,
			Cancelled:   row.Status == model.AppointmentStatusCancelled,
		})
	}
	return occupants, nil
}

func (r *appointmentRepository) Update(ctx context.Context, id uuid.UUID, changes *model.AppointmentChanges) error {
	var sets []string
	var args []interface{}
	argCount := 1

	set := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argCount))
		args = append(args, value)
		argCount++
	}

	if changes.PatientID != nil {
		set("patient_id", *changes.PatientID)
	}
	if changes.Date != nil {
		set("date", *changes.Date)
	}
	if changes.StartTime != nil {
		set("start_time", *changes.StartTime)
	}
	if changes.EndTime != nil {
		set("end_time", *changes.EndTime)
	}
	if changes.AppointmentType != nil {
		set("appointment_type", *changes.AppointmentType)
	}
	if changes.ServiceType != nil {
		set("service_type", *changes.ServiceType)
	}
	if changes.Status != nil {
		set("status", *changes.Status)
	}
	if changes.Notes.Set {
		set("notes", changes.Notes.Ptr())
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE appointments SET %s WHERE id = $%d", strings.Join(sets, ", "), argCount)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", translate(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("Appointment")
	}
	return nil
}

func (r *appointmentRepository) Cancel(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1
		RETURNING ` + appointmentFields

	var apt model.Appointment
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		return nil, fmt.Errorf("failed to cancel appointment: %w", notFoundOr(err, "Appointment"))
	}
	return &apt, nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `DELETE FROM appointments WHERE id = $1 RETURNING ` + appointmentFields

	var apt model.Appointment
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		return nil, fmt.Errorf("failed to delete appointment: %w", notFoundOr(err, "Appointment"))
	}
	return &apt, nil
}

func (r *appointmentRepository) CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM appointments WHERE patient_id = $1`, patientID); err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", translate(err))
	}
	return count, nil
}
