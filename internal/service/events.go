package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Domain event subjects published to NATS. Downstream consumers (push
// notifications, analytics) subscribe out of process.
const (
	SubjectChallengeSolved  = "kidlearn.challenge.solved"
	SubjectResultsPublished = "kidlearn.results.published"
	SubjectStreakMilestone  = "kidlearn.streak.milestone"
)

// Event is the envelope for every published domain event.
type Event struct {
	Subject string                 `json:"-"`
	UserID  uint                   `json:"user_id,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
	SentAt  time.Time              `json:"sent_at"`
}

// EventPublisher emits domain events. Publication is best-effort: reward
// bookkeeping never fails because an event could not be sent.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}

// NewNATSEventPublisher constructs a publisher over a NATS connection. A nil
// connection yields a no-op publisher.
func NewNATSEventPublisher(conn *nats.Conn, logger zerolog.Logger) EventPublisher {
	return &natsEventPublisher{
		conn:   conn,
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

type natsEventPublisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

func (p *natsEventPublisher) Publish(_ context.Context, event Event) {
	if p.conn == nil {
		return
	}

	if event.SentAt.IsZero() {
		event.SentAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("subject", event.Subject).Msg("failed to encode event")
		return
	}

	if err := p.conn.Publish(event.Subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", event.Subject).Msg("failed to publish event")
	}
}
