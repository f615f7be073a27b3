package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"YiJinJing/internal/domain/models"
	applogger "YiJinJing/pkg/logger"

	"github.com/gorilla/websocket"
)

func TestHubRoutesBySession(t *testing.T) {
	h := NewHub(applogger.Nop())
	a, unsubA := h.Subscribe("admin", 4)
	b, unsubB := h.Subscribe("guest", 4)
	defer unsubB()

	_ = h.PublishEvent(context.Background(), &models.Event{Type: models.EventTick, Session: "admin"})

	select {
	case e := <-a:
		if e.Type != models.EventTick {
			t.Fatalf("got %s", e.Type)
		}
	default:
		t.Fatal("admin subscriber got nothing")
	}
	select {
	case e := <-b:
		t.Fatalf("guest received %s", e.Type)
	default:
	}

	unsubA()
	unsubA()
	if h.Subscribers("admin") != 0 {
		t.Fatal("unsubscribe left a listener")
	}
	if _, ok := <-a; ok {
		t.Fatal("channel still open after unsubscribe")
	}
}

func TestHubDropsWhenFull(t *testing.T) {
	h := NewHub(applogger.Nop())
	ch, unsub := h.Subscribe("trader", 1)
	defer unsub()

	for i := 0; i < 5; i++ {
		if err := h.PublishEvent(context.Background(), &models.Event{Type: models.EventRadar, Session: "trader"}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	if len(ch) != 1 {
		t.Fatalf("buffered %d events", len(ch))
	}
}

func TestServeSendsSnapshotThenEvents(t *testing.T) {
	h := NewHub(applogger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		events, unsub := h.Subscribe("admin", 8)
		defer unsub()
		_ = Serve(ctx, w, r, events, map[string]bool{"system_on": false}, applogger.Nop())
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first Frame
	if err := conn.ReadJSON(&first); err != nil || first.Type != "snapshot" {
		t.Fatalf("first frame %+v, %v", first, err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for h.Subscribers("admin") == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	_ = h.PublishEvent(context.Background(), &models.Event{ID: "e1", Type: models.EventSystem, Session: "admin"})

	var got models.Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if got.ID != "e1" || got.Type != models.EventSystem {
		t.Fatalf("event %+v", got)
	}
}
