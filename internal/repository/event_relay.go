package repository

import (
	"context"
	"encoding/json"
	"time"

	"YiJinJing/internal/domain/models"
	"YiJinJing/internal/domain/repository"
	"YiJinJing/internal/service/metrics"
	applogger "YiJinJing/pkg/logger"
)

// EventRelay consumes the events topic and hands each event to the local hub.
// Every instance runs its own consumer group, so all instances see all events.
type EventRelay struct {
	topic string
	local repository.EventPublisher
	log   *applogger.Logger
}

// NewEventRelay creates a relay from topic to local.
func NewEventRelay(topic string, local repository.EventPublisher, log *applogger.Logger) *EventRelay {
	metrics.Register()
	return &EventRelay{topic: topic, local: local, log: log}
}

// relayedEvent keeps the payload as raw JSON so it is forwarded unchanged.
type relayedEvent struct {
	ID      string           `json:"id"`
	Type    models.EventType `json:"type"`
	Session string           `json:"session"`
	Time    time.Time        `json:"time"`
	Payload json.RawMessage  `json:"payload"`
}

func (r *EventRelay) Topic() string { return r.topic }

// Handle forwards one message. Malformed messages are dropped, not retried.
func (r *EventRelay) Handle(ctx context.Context, data []byte) error {
	var in relayedEvent
	if err := json.Unmarshal(data, &in); err != nil || in.Session == "" || in.Type == "" {
		metrics.RelayMessages.WithLabelValues("invalid").Inc()
		r.log.Warn("dropping malformed event", applogger.Int("bytes", len(data)), applogger.Error(err))
		return nil
	}

	e := &models.Event{ID: in.ID, Type: in.Type, Session: in.Session, Time: in.Time}
	if len(in.Payload) > 0 {
		e.Payload = in.Payload
	}
	if err := r.local.PublishEvent(ctx, e); err != nil {
		metrics.RelayMessages.WithLabelValues("error").Inc()
		return err
	}
	metrics.RelayMessages.WithLabelValues("relayed").Inc()
	return nil
}
