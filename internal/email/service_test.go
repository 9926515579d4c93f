package email

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/gorica/clinic-api/internal/model"
)

type captureSender struct {
	sent []*gomail.Message
	err  error
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	c.sent = append(c.sent, m...)
	return c.err
}

func testEvent() model.AppointmentEvent {
	notes := "bring lab results"
	return model.NewAppointmentEvent(model.AppointmentCreated, model.Appointment{
		Base:            model.Base{ID: uuid.New()},
		Date:            "2025-03-10",
		StartTime:       "09:00:00",
		EndTime:         "09:15:00",
		ServiceType:     model.ServiceTypeDoctor,
		Status:          model.AppointmentStatusScheduled,
		AppointmentType: "consultation",
		Notes:           &notes,
	}, "Ana Diaz", nil)
}

func TestSendAppointmentNotice(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(sender, "calendar@clinic.test", []string{"front-desk@clinic.test"})

	require.NoError(t, svc.SendAppointmentNotice(context.Background(), testEvent()))
	require.Len(t, sender.sent, 1)

	m := sender.sent[0]
	assert.Equal(t, []string{"calendar@clinic.test"}, m.GetHeader("From"))
	assert.Equal(t, []string{"front-desk@clinic.test"}, m.GetHeader("To"))
	assert.Equal(t, []string{"[doctor] New appointment 2025-03-10 09:00:00"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Patient: Ana Diaz")
	assert.Contains(t, buf.String(), "Time: 09:00:00 - 09:15:00")
	assert.Contains(t, buf.String(), "Notes: bring lab results")
}

func TestSendAppointmentNoticeError(t *testing.T) {
	sender := &captureSender{err: errors.New("dial tcp: refused")}
	svc := NewService(sender, "calendar@clinic.test", []string{"front-desk@clinic.test"})

	err := svc.SendAppointmentNotice(context.Background(), testEvent())
	assert.ErrorContains(t, err, "failed to send appointment notice")
}

func TestSendAppointmentNoticeCancelledContext(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(sender, "calendar@clinic.test", []string{"front-desk@clinic.test"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, svc.SendAppointmentNotice(ctx, testEvent()), context.Canceled)
	assert.Empty(t, sender.sent)
}

type blockingSender struct {
	release chan struct{}
}

func (b *blockingSender) DialAndSend(...*gomail.Message) error {
	<-b.release
	return nil
}

func TestSendAppointmentNoticeHonoursDeadline(t *testing.T) {
	sender := &blockingSender{release: make(chan struct{})}
	defer close(sender.release)
	svc := NewService(sender, "calendar@clinic.test", []string{"front-desk@clinic.test"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := svc.SendAppointmentNotice(ctx, testEvent())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
