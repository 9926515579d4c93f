package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/gorica/clinic-api/internal/schedule"
	apperrors "github.com/gorica/clinic-api/pkg/errors"
)

var registerOnce sync.Once

var validationMessages = map[string]string{
	"required":   "is required",
	"min":        "is too short",
	"max":        "is too long",
	"oneof":      "must be one of: %s",
	"uuid":       "must be a valid id",
	"clinicdate": "must be a date in YYYY-MM-DD format",
	"clocktime":  "must be a time in HH:MM or HH:MM:SS format",
}

// RegisterValidators installs the clinic validation tags on gin's validator
// and makes field errors use JSON names. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		mustRegister(v, "clinicdate", func(fl validator.FieldLevel) bool {
			_, err := schedule.NormalizeDate(fl.Field().String())
			return err == nil
		})
		mustRegister(v, "clocktime", func(fl validator.FieldLevel) bool {
			_, err := schedule.NormalizeTime(fl.Field().String())
			return err == nil
		})
	})
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// BindError converts a gin binding failure into a validation AppError with
// one detail per offending field.
func BindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, 0, len(verrs))
		for _, e := range verrs {
			details = append(details, fieldMessage(e))
		}
		return &apperrors.AppError{
			Code:    apperrors.ErrValidation,
			Message: "Validation failed",
			Details: details,
			Err:     err,
		}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperrors.ValidationWrap(fmt.Sprintf("Invalid value for field %s", typeErr.Field), err)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return apperrors.ValidationWrap("Invalid JSON body", err)
	}
	return apperrors.ValidationWrap("Invalid request", err)
}

func fieldMessage(e validator.FieldError) string {
	msg, ok := validationMessages[e.Tag()]
	if !ok {
		return fmt.Sprintf("%s is invalid", e.Field())
	}
	if strings.Contains(msg, "%s") {
		msg = fmt.Sprintf(msg, e.Param())
	}
	return e.Field() + " " + msg
}
