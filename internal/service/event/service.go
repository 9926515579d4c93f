package event

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/gorica/clinic-api/internal/email"
	"github.com/gorica/clinic-api/internal/model"
	"github.com/gorica/clinic-api/pkg/messaging"
	"github.com/gorica/clinic-api/pkg/metrics"
)

const publishTimeout = 5 * time.Second

// Publisher hands committed appointment events to the configured sinks.
// Delivery is best effort: failures are logged and counted, never returned.
type Publisher interface {
	Publish(ctx context.Context, evt model.AppointmentEvent)
}

type nopPublisher struct{}

func NewNopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, model.AppointmentEvent) {}

type Service struct {
	broker  messaging.Broker
	channel string
	mailer  email.Service
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewService builds a publisher. broker and mailer may be nil to disable
// that sink.
func NewService(broker messaging.Broker, channel string, mailer email.Service, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		broker:  broker,
		channel: channel,
		mailer:  mailer,
		metrics: m,
		logger:  logger.With().Str("component", "event-publisher").Logger(),
	}
}

func (s *Service) Publish(ctx context.Context, evt model.AppointmentEvent) {
	// the request context may already be done once the response is written
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if s.broker != nil {
		s.record("redis", evt, s.broker.Publish(ctx, s.channel, evt))
	}
	if s.mailer != nil {
		s.record("email", evt, s.mailer.SendAppointmentNotice(ctx, evt))
	}
}

func (s *Service) record(sink string, evt model.AppointmentEvent, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		s.logger.Warn().
			Err(err).
			Str("sink", sink).
			Str("event_type", string(evt.Type)).
			Str("appointment_id", evt.Appointment.ID.String()).
			Msg("failed to publish appointment event")
	}
	if s.metrics != nil {
		s.metrics.EventsPublished.WithLabelValues(sink, status).Inc()
	}
}
