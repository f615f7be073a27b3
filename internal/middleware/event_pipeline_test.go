package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"YiJinJing/internal/domain/models"
	"YiJinJing/pkg/clock"
)

type flakyPublisher struct {
	mu     sync.Mutex
	fail   bool
	events []models.Event
}

func (f *flakyPublisher) PublishEvent(_ context.Context, e *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broker down")
	}
	f.events = append(f.events, *e)
	return nil
}

func (f *flakyPublisher) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func (f *flakyPublisher) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func event(kind models.EventType, at time.Time) *models.Event {
	return &models.Event{ID: "x", Type: kind, Session: "trader", Time: at}
}

func TestPipelineRejectsInvalidEvents(t *testing.T) {
	p := NewEventPipeline(&flakyPublisher{}, nil)
	cases := []*models.Event{
		nil,
		{Type: models.EventTick, Time: time.Now()},
		{Session: "a", Time: time.Now()},
		{Session: "a", Type: models.EventTick},
	}
	for i, e := range cases {
		if err := p.PublishEvent(context.Background(), e); err == nil {
			t.Fatalf("case %d accepted", i)
		}
	}
}

func TestPipelineThrottlesRadarPerSession(t *testing.T) {
	clk := clock.NewFake(time.Unix(100, 0))
	down := &flakyPublisher{}
	p := NewEventPipeline(down, nil, WithPipelineClock(clk))

	for i := 0; i < 10; i++ {
		_ = p.PublishEvent(context.Background(), event(models.EventRadar, clk.Now()))
		_ = p.PublishEvent(context.Background(), event(models.EventTick, clk.Now()))
		clk.Advance(50 * time.Millisecond)
	}
	// 500ms of radar at 50ms cadence with a 200ms gap: t=0, 200, 400
	if got := down.len(); got != 13 {
		t.Fatalf("forwarded %d events, want 13", got)
	}
}

func TestPipelineBuffersAndFlushes(t *testing.T) {
	down := &flakyPublisher{fail: true}
	p := NewEventPipeline(down, nil, WithBufferSize(2))

	for i := 0; i < 3; i++ {
		if err := p.PublishEvent(context.Background(), event(models.EventTick, time.Now())); err == nil {
			t.Fatal("downstream failure not reported")
		}
	}
	if p.Buffered() != 2 {
		t.Fatalf("buffered %d", p.Buffered())
	}

	down.setFail(false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for down.len() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if down.len() != 2 {
		t.Fatalf("flushed %d events", down.len())
	}
}
