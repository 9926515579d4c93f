package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gorica/clinic-api/internal/model"
	"github.com/gorica/clinic-api/internal/repository"
	apperrors "github.com/gorica/clinic-api/pkg/errors"
)

const reportFields = `id, appointment_id, patient_name, date_of_birth, reason_for_visit,
		chief_complaint, history_of_present_illness, physical_examination, diagnosis,
		treatment_plan, medications_prescribed, follow_up_instructions, additional_notes,
		created_by, created_at, updated_at`

const reportDetailsQuery = `
		SELECT r.id, r.appointment_id, r.patient_name, r.date_of_birth, r.reason_for_visit,
			   r.chief_complaint, r.history_of_present_illness, r.physical_examination, r.diagnosis,
			   r.treatment_plan, r.medications_prescribed, r.follow_up_instructions, r.additional_notes,
			   r.created_by, r.created_at, r.updated_at,
			   a.date AS appointment_date, a.start_time AS appointment_time,
			   a.appointment_type, a.status AS appointment_status, a.notes AS appointment_notes,
			   p.first_name, p.last_name, p.phone, p.dob, p.notes AS patient_notes
		FROM physician_reports r
		JOIN appointments a ON r.appointment_id = a.id
		JOIN patients p ON a.patient_id = p.id`

type reportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *model.PhysicianReport) error {
	query := `
		INSERT INTO physician_reports (
			appointment_id, patient_name, date_of_birth, reason_for_visit,
			chief_complaint, history_of_present_illness, physical_examination, diagnosis,
			treatment_plan, medications_prescribed, follow_up_instructions, additional_notes,
			created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		report.AppointmentID,
		report.PatientName,
		report.DateOfBirth,
		report.ReasonForVisit,
		report.ChiefComplaint,
		report.HistoryOfPresentIllness,
		report.PhysicalExamination,
		report.Diagnosis,
		report.TreatmentPlan,
		report.MedicationsPrescribed,
		report.FollowUpInstructions,
		report.AdditionalNotes,
		report.CreatedBy,
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", translate(err))
	}
	return nil
}

func (r *reportRepository) Get(ctx context.Context, id uuid.UUID) (*model.ReportDetails, error) {
	var report model.ReportDetails
	if err := r.db.GetContext(ctx, &report, reportDetailsQuery+` WHERE r.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get report: %w", notFoundOr(err, "Report"))
	}
	return &report, nil
}

func (r *reportRepository) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.ReportDetails, error) {
	var report model.ReportDetails
	if err := r.db.GetContext(ctx, &report, reportDetailsQuery+` WHERE r.appointment_id = $1`, appointmentID); err != nil {
		return nil, fmt.Errorf("failed to get report: %w", notFoundOr(err, "Report"))
	}
	return &report, nil
}

// FindByAppointment returns the bare report row for an appointment, or a
// NotFound error.
func (r *reportRepository) FindByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.PhysicianReport, error) {
	var report model.PhysicianReport
	query := `SELECT ` + reportFields + ` FROM physician_reports WHERE appointment_id = $1`
	if err := r.db.GetContext(ctx, &report, query, appointmentID); err != nil {
		return nil, fmt.Errorf("failed to find report: %w", notFoundOr(err, "Report"))
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, filters *model.ReportFilters) ([]*model.ReportDetails, error) {
	query := reportDetailsQuery
	var conditions []string
	var args []interface{}
	argCount := 1

	if filters != nil {
		if filters.AppointmentID != nil {
			conditions = append(conditions, fmt.Sprintf("r.appointment_id = $%d", argCount))
			args = append(args, *filters.AppointmentID)
			argCount++
		}
		if filters.PatientID != nil {
			conditions = append(conditions, fmt.Sprintf("a.patient_id = $%d", argCount))
			args = append(args, *filters.PatientID)
			argCount++
		}
		if filters.StartDate != nil && filters.EndDate != nil {
			conditions = append(conditions, fmt.Sprintf("a.date BETWEEN $%d AND $%d", argCount, argCount+1))
			args = append(args, *filters.StartDate, *filters.EndDate)
		}
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY r.created_at DESC"

	reports := []*model.ReportDetails{}
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", translate(err))
	}
	return reports, nil
}

func (r *reportRepository) Update(ctx context.Context, report *model.PhysicianReport) error {
	query := `
		UPDATE physician_reports SET
			patient_name = $1,
			date_of_birth = $2,
			reason_for_visit = $3,
			chief_complaint = $4,
			history_of_present_illness = $5,
			physical_examination = $6,
			diagnosis = $7,
			treatment_plan = $8,
			medications_prescribed = $9,
			follow_up_instructions = $10,
			additional_notes = $11,
			updated_at = NOW()
		WHERE id = $12
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		report.PatientName,
		report.DateOfBirth,
		report.ReasonForVisit,
		report.ChiefComplaint,
		report.HistoryOfPresentIllness,
		report.PhysicalExamination,
		report.Diagnosis,
		report.TreatmentPlan,
		report.MedicationsPrescribed,
		report.FollowUpInstructions,
		report.AdditionalNotes,
		report.ID,
	).Scan(&report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", notFoundOr(err, "Report"))
	}
	return nil
}

func (r *reportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM physician_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", translate(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("Report")
	}
	return nil
}
