package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"YiJinJing/internal/domain/models"
	pkgkafka "YiJinJing/pkg/kafka"
	applogger "YiJinJing/pkg/logger"
)

type fakeProducer struct {
	topic string
	msgs  []pkgkafka.Message
}

func (f *fakeProducer) PublishBatch(_ context.Context, topic string, msgs []pkgkafka.Message) error {
	f.topic = topic
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

type captureHub struct {
	events []models.Event
}

func (c *captureHub) PublishEvent(_ context.Context, e *models.Event) error {
	c.events = append(c.events, *e)
	return nil
}

func TestKafkaEventPublisherKeysBySession(t *testing.T) {
	fp := &fakeProducer{}
	p := NewKafkaEventPublisher(fp, "dashboard.events")
	e := &models.Event{ID: "1", Type: models.EventTick, Session: "trader", Time: time.Unix(10, 0)}
	if err := p.PublishEvent(context.Background(), e); err != nil {
		t.Fatalf("PublishEvent: %v", err)
	}
	if fp.topic != "dashboard.events" || len(fp.msgs) != 1 {
		t.Fatalf("topic %q msgs %d", fp.topic, len(fp.msgs))
	}
	if string(fp.msgs[0].Key) != "trader" || fp.msgs[0].Headers["type"] != "tick" {
		t.Fatalf("message %+v", fp.msgs[0])
	}
}

func TestEventRelayRoundTrip(t *testing.T) {
	hub := &captureHub{}
	relay := NewEventRelay("dashboard.events", hub, applogger.Nop())

	in := models.Event{
		ID:      "abc",
		Type:    models.EventSystem,
		Session: "admin",
		Time:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Payload: map[string]bool{"system_on": true},
	}
	raw, _ := json.Marshal(in)
	if err := relay.Handle(context.Background(), raw); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(hub.events) != 1 {
		t.Fatalf("relayed %d", len(hub.events))
	}
	out, _ := json.Marshal(hub.events[0])
	if string(out) != string(raw) {
		t.Fatalf("payload changed:\n%s\n%s", raw, out)
	}
}

func TestEventRelayDropsMalformed(t *testing.T) {
	hub := &captureHub{}
	relay := NewEventRelay("dashboard.events", hub, applogger.Nop())
	for _, data := range []string{"not json", `{"type":"tick"}`, `{"session":"a"}`} {
		if err := relay.Handle(context.Background(), []byte(data)); err != nil {
			t.Fatalf("%q: %v", data, err)
		}
	}
	if len(hub.events) != 0 {
		t.Fatal("malformed event relayed")
	}
}
