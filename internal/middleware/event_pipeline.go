package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"YiJinJing/internal/domain/models"
	domrepo "YiJinJing/internal/domain/repository"
	"YiJinJing/pkg/clock"
)

// EventPipeline sits between the session engines and the broker.
// It validates events, throttles high-frequency types per session, and
// buffers events while downstream is unavailable.
type EventPipeline struct {
	next     domrepo.EventPublisher
	metrics  domrepo.Metrics
	clk      clock.Clock
	limits   map[models.EventType]time.Duration
	bufSize  int
	bufCh    chan *models.Event
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[throttleKey]time.Time
}

type throttleKey struct {
	session string
	kind    models.EventType
}

type PipelineOption func(*EventPipeline)

// WithThrottle caps kind at maxPerSecond events per session. Zero disables it.
func WithThrottle(kind models.EventType, maxPerSecond int) PipelineOption {
	return func(p *EventPipeline) {
		if maxPerSecond <= 0 {
			delete(p.limits, kind)
			return
		}
		p.limits[kind] = time.Second / time.Duration(maxPerSecond)
	}
}

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *EventPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithPipelineClock replaces the wall clock used for throttling.
func WithPipelineClock(clk clock.Clock) PipelineOption {
	return func(p *EventPipeline) { p.clk = clk }
}

// NewEventPipeline creates a pipeline forwarding to next.
// Radar frames are limited to 5 per second per session by default.
func NewEventPipeline(next domrepo.EventPublisher, metrics domrepo.Metrics, opts ...PipelineOption) *EventPipeline {
	if metrics == nil {
		metrics = domrepo.NopMetrics{}
	}
	p := &EventPipeline{
		next:     next,
		metrics:  metrics,
		clk:      clock.Real{},
		limits:   map[models.EventType]time.Duration{models.EventRadar: 200 * time.Millisecond},
		bufSize:  1000,
		stopCh:   make(chan struct{}),
		lastSeen: make(map[throttleKey]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.Event, p.bufSize)
	return p
}

// Start launches background flushing of buffered events.
func (p *EventPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case e := <-p.bufCh:
				if err := p.next.PublishEvent(ctx, e); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					select {
					case <-time.After(backoff):
					case <-p.stopCh:
						return
					}
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- e:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *EventPipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return
	}
	p.started = false
	close(p.stopCh)
}

// Buffered reports the events waiting for downstream.
func (p *EventPipeline) Buffered() int {
	return len(p.bufCh)
}

// PublishEvent validates, throttles and forwards e, buffering it on downstream errors.
func (p *EventPipeline) PublishEvent(ctx context.Context, e *models.Event) error {
	start := time.Now()
	if err := validateEvent(e); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(e) {
		return nil
	}

	if err := p.next.PublishEvent(ctx, e); err != nil {
		p.metrics.RecordError("pipeline_process")
		select {
		case p.bufCh <- e:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_publish", time.Since(start).Seconds())
	return nil
}

func validateEvent(e *models.Event) error {
	if e == nil {
		return errors.New("event nil")
	}
	if e.Session == "" {
		return errors.New("session empty")
	}
	if e.Type == "" {
		return errors.New("type empty")
	}
	if e.Time.IsZero() {
		return errors.New("time missing")
	}
	return nil
}

func (p *EventPipeline) allow(e *models.Event) bool {
	gap, ok := p.limits[e.Type]
	if !ok {
		return true
	}
	now := p.clk.Now()
	key := throttleKey{session: e.Session, kind: e.Type}

	p.mu.Lock()
	defer p.mu.Unlock()
	last, seen := p.lastSeen[key]
	if seen && now.Sub(last) < gap {
		return false
	}
	p.lastSeen[key] = now
	return true
}
