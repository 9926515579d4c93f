package email

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/gorica/clinic-api/internal/config"
	"github.com/gorica/clinic-api/internal/model"
)

type Service interface {
	SendAppointmentNotice(ctx context.Context, evt model.AppointmentEvent) error
}

// Sender is satisfied by *gomail.Dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	sender Sender
	from   string
	to     []string
}

func NewSMTPService(cfg config.MailConfig) Service {
	return NewService(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From, cfg.To)
}

func NewService(sender Sender, from string, to []string) Service {
	return &smtpService{sender: sender, from: from, to: to}
}

func (s *smtpService) SendAppointmentNotice(ctx context.Context, evt model.AppointmentEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// gomail does not take a context; the send is abandoned, not aborted,
	// when ctx ends first.
	done := make(chan error, 1)
	go func() { done <- s.sender.DialAndSend(s.notice(evt)) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send appointment notice: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send appointment notice: %w", ctx.Err())
	}
}

func (s *smtpService) notice(evt model.AppointmentEvent) *gomail.Message {
	apt := evt.Appointment

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to...)
	m.SetHeader("Subject", fmt.Sprintf("[%s] %s %s %s", apt.ServiceType, noticeVerb(evt.Type), apt.Date, apt.StartTime))

	var b strings.Builder
	fmt.Fprintf(&b, "Patient: %s\n", evt.PatientName)
	fmt.Fprintf(&b, "Date: %s\n", apt.Date)
	fmt.Fprintf(&b, "Time: %s - %s\n", apt.StartTime, apt.EndTime)
	fmt.Fprintf(&b, "Service: %s\n", apt.ServiceType)
	fmt.Fprintf(&b, "Type: %s\n", apt.AppointmentType)
	fmt.Fprintf(&b, "Status: %s\n", apt.Status)
	if apt.Notes != nil && *apt.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", *apt.Notes)
	}
	m.SetBody("text/plain", b.String())
	return m
}

func noticeVerb(t model.AppointmentEventType) string {
	switch t {
	case model.AppointmentCreated:
		return "New appointment"
	case model.AppointmentUpdated:
		return "Appointment changed"
	case model.AppointmentCancelled:
		return "Appointment cancelled"
	case model.AppointmentDeleted:
		return "Appointment removed"
	default:
		return "Appointment"
	}
}
