package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateAppointmentRequestDistinguishesNullFromAbsent(t *testing.T) {
	var req UpdateAppointmentRequest
	require.NoError(t, json.Unmarshal([]byte(`{"notes": null, "start_time": "10:00"}`), &req))

	assert.True(t, req.Notes.Set)
	assert.True(t, req.Notes.Null)
	assert.Nil(t, req.Notes.Ptr())

	assert.True(t, req.StartTime.Set)
	assert.False(t, req.StartTime.Null)
	assert.Equal(t, "10:00", req.StartTime.Value)

	assert.False(t, req.Date.Set)
	assert.False(t, req.PatientID.Set)
	assert.False(t, req.Empty())
}

func TestUpdateAppointmentRequestEmpty(t *testing.T) {
	var req UpdateAppointmentRequest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &req))
	assert.True(t, req.Empty())
}

func TestOptionalRejectsWrongType(t *testing.T) {
	var req UpdateAppointmentRequest
	assert.Error(t, json.Unmarshal([]byte(`{"date": 20250310}`), &req))
}

func TestRoleServiceType(t *testing.T) {
	assert.Equal(t, ServiceTypeDoctor, RoleDoctor.ServiceType())
	assert.Equal(t, ServiceTypeEsthetician, RoleEsthetician.ServiceType())
	assert.Equal(t, ServiceType(""), Role("").ServiceType())
}

func TestAppointmentDetailsPatientName(t *testing.T) {
	d := AppointmentDetails{FirstName: " Ana", LastName: "Diaz "}
	assert.Equal(t, "Ana Diaz", d.PatientName())
	assert.Equal(t, "Unknown", (&AppointmentDetails{}).PatientName())
}
