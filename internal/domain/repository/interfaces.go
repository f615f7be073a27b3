package repository

import (
	"context"

	"YiJinJing/internal/domain/models"
)

// EventPublisher delivers dashboard events to subscribers, locally or through a broker.
type EventPublisher interface {
	PublishEvent(ctx context.Context, e *models.Event) error
}

// EventSubscriber hands out per-session event streams.
type EventSubscriber interface {
	Subscribe(session string, buffer int) (<-chan models.Event, func())
}

// Publisher sends arbitrary payloads to a topic. The log collector uses it.
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
	Close() error
}

// ChatCompleter turns a transcript into the next assistant reply.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []models.ChatMessage) (string, error)
	Name() string
}

type Metrics interface {
	RecordTick(stock string, alpha float64)
	RecordSignal(stock, signal string)
	RecordTransition(from, to string)
	RecordSettlement(trend string, pnl float64)
	RecordChat(provider, outcome string)
	RecordError(kind string)
	SetActiveSessions(n int)
	RecordLatency(op string, seconds float64)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordTick(string, float64) {}
func (NopMetrics) RecordSignal(string, string) {}
func (NopMetrics) RecordTransition(string, string) {}
func (NopMetrics) RecordSettlement(string, float64) {}
func (NopMetrics) RecordChat(string, string) {}
func (NopMetrics) RecordError(string) {}
func (NopMetrics) SetActiveSessions(int) {}
func (NopMetrics) RecordLatency(string, float64) {}
