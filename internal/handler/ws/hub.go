package ws

import (
	"context"
	"sync"

	"YiJinJing/internal/domain/models"
	"YiJinJing/internal/service/metrics"
	applogger "YiJinJing/pkg/logger"
)

// Hub fans dashboard events out to the stream subscribers of each session.
// Publishing never blocks; a slow subscriber loses events.
type Hub struct {
	mu   sync.RWMutex
	subs map[string][]chan models.Event
	log  *applogger.Logger
}

// NewHub creates an empty hub.
func NewHub(log *applogger.Logger) *Hub {
	metrics.Register()
	return &Hub{
		subs: make(map[string][]chan models.Event),
		log:  log,
	}
}

// Subscribe registers a listener for session and returns the channel and an unsubscribe function.
func (h *Hub) Subscribe(session string, buffer int) (<-chan models.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan models.Event, buffer)
	h.subs[session] = append(h.subs[session], ch)
	metrics.StreamClients.Inc()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			subs := h.subs[session]
			for i, c := range subs {
				if c == ch {
					close(c)
					h.subs[session] = append(subs[:i], subs[i+1:]...)
					break
				}
			}
			if len(h.subs[session]) == 0 {
				delete(h.subs, session)
			}
			metrics.StreamClients.Dec()
		})
	}

	return ch, unsub
}

// PublishEvent delivers e to every subscriber of its session.
func (h *Hub) PublishEvent(_ context.Context, e *models.Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[e.Session] {
		select {
		case ch <- *e:
			metrics.StreamEvents.WithLabelValues(string(e.Type), "delivered").Inc()
		default:
			metrics.StreamEvents.WithLabelValues(string(e.Type), "dropped").Inc()
		}
	}
	return nil
}

// Subscribers reports the listeners of session.
func (h *Hub) Subscribers(session string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[session])
}
