package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	apperrors "github.com/gorica/clinic-api/pkg/errors"
)

const (
	slotConstraint       = "unique_time_slot_per_day_per_service"
	legacySlotConstraint = "unique_time_slot_per_day"
	usernameConstraint   = "users_username_key"
	reportConstraint     = "physician_reports_appointment_id_key"
)

// translation maps a Postgres error class onto the API error taxonomy. It
// only fires when a write raced past the service-level checks.
var translation = map[pq.ErrorCode]func(*pq.Error) *apperrors.AppError{
	"23505": func(e *pq.Error) *apperrors.AppError {
		switch e.Constraint {
		case slotConstraint, legacySlotConstraint:
			return apperrors.Conflict("This time slot is already booked for this service. Please choose another time.", e)
		case usernameConstraint:
			return apperrors.Conflict("Username already exists", e)
		case reportConstraint:
			return apperrors.Conflict("A report already exists for this appointment", e)
		default:
			return apperrors.Conflict("Duplicate entry", e)
		}
	},
	"23503": func(e *pq.Error) *apperrors.AppError {
		return apperrors.ValidationWrap("Invalid reference: the related record does not exist", e)
	},
	"23502": func(e *pq.Error) *apperrors.AppError {
		return apperrors.ValidationWrap(fmt.Sprintf("Missing required field: %s", e.Column), e)
	},
	"23514": func(e *pq.Error) *apperrors.AppError {
		return apperrors.ValidationWrap("End time must be after start time", e)
	},
	"22007": func(e *pq.Error) *apperrors.AppError {
		return apperrors.ValidationWrap("Invalid date or time format", e)
	},
	"22008": func(e *pq.Error) *apperrors.AppError {
		return apperrors.ValidationWrap("Date or time value out of range", e)
	},
	"22P02": func(e *pq.Error) *apperrors.AppError {
		return apperrors.ValidationWrap("Invalid input value", e)
	},
}

// translate turns driver errors into AppErrors where a mapping exists and
// returns every other error unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	fn, ok := translation[pqErr.Code]
	if !ok {
		return err
	}
	log.Warn().
		Str("code", string(pqErr.Code)).
		Str("constraint", pqErr.Constraint).
		Str("table", pqErr.Table).
		Str("column", pqErr.Column).
		Msg("storage constraint violation")
	return fn(pqErr)
}

func notFoundOr(err error, resource string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(resource)
	}
	return translate(err)
}
