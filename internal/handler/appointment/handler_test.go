package appointment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gorica/clinic-api/internal/middleware"
	"github.com/gorica/clinic-api/internal/model"
	apperrors "github.com/gorica/clinic-api/pkg/errors"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, q *model.AppointmentQuery) ([]*model.AppointmentDetails, error) {
	args := m.Called(ctx, q)
	if v := args.Get(0); v != nil {
		return v.([]*model.AppointmentDetails), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) Get(ctx context.Context, id uuid.UUID) (*model.AppointmentDetails, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.AppointmentDetails), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) Create(ctx context.Context, req *model.CreateAppointmentRequest, principal *model.Principal) (*model.AppointmentDetails, error) {
	args := m.Called(ctx, req, principal)
	if v := args.Get(0); v != nil {
		return v.(*model.AppointmentDetails), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest, principal *model.Principal) (*model.AppointmentDetails, error) {
	args := m.Called(ctx, id, req, principal)
	if v := args.Get(0); v != nil {
		return v.(*model.AppointmentDetails), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, id uuid.UUID, hard bool, principal *model.Principal) (*model.DeleteAppointmentResponse, error) {
	args := m.Called(ctx, id, hard, principal)
	if v := args.Get(0); v != nil {
		return v.(*model.DeleteAppointmentResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

var doctor = &model.Principal{UserID: uuid.New(), Username: "drlee", Role: model.RoleDoctor, Name: "Dr. Lee"}

func setup(t *testing.T) (*gin.Engine, *MockService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.RegisterValidators()

	svc := new(MockService)
	t.Cleanup(func() { svc.AssertExpectations(t) })

	r := gin.New()
	r.Use(middleware.ErrorHandler(false))
	api := r.Group("/api", func(c *gin.Context) {
		c.Set(middleware.ContextPrincipal, doctor)
	})
	NewHandler(svc).RegisterRoutes(api)
	return r, svc
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAppointment(t *testing.T) {
	r, svc := setup(t)

	created := &model.AppointmentDetails{FirstName: "Ana", LastName: "Diaz"}
	created.ID = uuid.New()
	created.Date = "2025-03-10"
	created.StartTime = "09:00:00"
	svc.On("Create", mock.Anything, mock.MatchedBy(func(req *model.CreateAppointmentRequest) bool {
		return req.Date == "2025-03-10" && req.StartTime == "09:00" && req.AppointmentType == "consultation"
	}), doctor).Return(created, nil)

	w := do(r, http.MethodPost, "/api/appointments", `{
		"patient_id": "`+uuid.NewString()+`",
		"date": "2025-03-10",
		"start_time": "09:00",
		"end_time": "09:15",
		"appointment_type": "consultation"
	}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"start_time":"09:00:00"`)
	assert.Contains(t, w.Body.String(), `"first_name":"Ana"`)
}

func TestCreateAppointmentValidation(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodPost, "/api/appointments", `{"date":"10/03/2025","start_time":"09:00","end_time":"09:15"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"Validation failed"`)
	assert.Contains(t, w.Body.String(), "patient_id is required")
	assert.Contains(t, w.Body.String(), "date must be a date in YYYY-MM-DD format")
	assert.Contains(t, w.Body.String(), "appointment_type is required")
}

func TestCreateAppointmentConflict(t *testing.T) {
	r, svc := setup(t)

	msg := "This time slot is already booked by Ana Diaz. Please choose another time."
	svc.On("Create", mock.Anything, mock.Anything, doctor).Return(nil, apperrors.Conflict(msg, nil))

	w := do(r, http.MethodPost, "/api/appointments", `{
		"patient_id": "`+uuid.NewString()+`",
		"date": "2025-03-10",
		"start_time": "09:00",
		"end_time": "09:15",
		"appointment_type": "consultation"
	}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"`+msg+`"}`, w.Body.String())
}

func TestCreateAppointmentMalformedJSON(t *testing.T) {
	r, _ := setup(t)

	w := do(r, http.MethodPost, "/api/appointments", `{"date":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid JSON body")
}

func TestListAppointmentsPassesQuery(t *testing.T) {
	r, svc := setup(t)

	svc.On("List", mock.Anything, &model.AppointmentQuery{Date: "2025-03-10", ServiceType: "doctor"}).
		Return([]*model.AppointmentDetails{}, nil)

	w := do(r, http.MethodGet, "/api/appointments?date=2025-03-10&service_type=doctor", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetAppointment(t *testing.T) {
	r, svc := setup(t)

	id := uuid.New()
	svc.On("Get", mock.Anything, id).Return(nil, apperrors.NotFound("Appointment"))

	w := do(r, http.MethodGet, "/api/appointments/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Appointment not found"}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/appointments/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	svc.AssertNumberOfCalls(t, "Get", 1)
}

func TestUpdateAppointmentKeepsFieldPresence(t *testing.T) {
	r, svc := setup(t)

	id := uuid.New()
	updated := &model.AppointmentDetails{}
	updated.ID = id
	svc.On("Update", mock.Anything, id, mock.MatchedBy(func(req *model.UpdateAppointmentRequest) bool {
		return req.StartTime.Set && req.StartTime.Value == "10:00" &&
			req.Notes.Set && req.Notes.Null &&
			!req.Date.Set && !req.Status.Set
	}), doctor).Return(updated, nil)

	w := do(r, http.MethodPut, "/api/appointments/"+id.String(), `{"start_time":"10:00","notes":null}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateAppointmentNoFields(t *testing.T) {
	r, svc := setup(t)

	id := uuid.New()
	svc.On("Update", mock.Anything, id, &model.UpdateAppointmentRequest{}, doctor).
		Return(nil, apperrors.Validation("No fields to update"))

	w := do(r, http.MethodPut, "/api/appointments/"+id.String(), `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"No fields to update"}`, w.Body.String())
}

func TestDeleteAppointment(t *testing.T) {
	r, svc := setup(t)

	id := uuid.New()
	apt := &model.Appointment{Status: model.AppointmentStatusCancelled}
	apt.ID = id
	svc.On("Delete", mock.Anything, id, false, doctor).
		Return(&model.DeleteAppointmentResponse{Message: "Appointment cancelled successfully", Appointment: apt}, nil).Once()
	svc.On("Delete", mock.Anything, id, true, doctor).
		Return(&model.DeleteAppointmentResponse{Message: "Appointment deleted successfully", Appointment: apt}, nil).Once()

	w := do(r, http.MethodDelete, "/api/appointments/"+id.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Appointment cancelled successfully")

	w = do(r, http.MethodDelete, "/api/appointments/"+id.String()+"?hard_delete=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Appointment deleted successfully")
}
