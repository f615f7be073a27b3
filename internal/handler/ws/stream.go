package ws

import (
	"context"
	"net/http"
	"time"

	"YiJinJing/internal/domain/models"
	applogger "YiJinJing/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 25 * time.Second
	readLimit    = 4 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Frame is one message written to a stream client.
type Frame struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Serve upgrades the request, sends initial as a snapshot frame and then relays
// events until the client leaves or ctx ends.
func Serve(ctx context.Context, w http.ResponseWriter, r *http.Request, events <-chan models.Event, initial interface{}, log *applogger.Logger) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	closed := make(chan struct{})
	go readPump(conn, closed)

	if err := write(conn, Frame{Type: "snapshot", Payload: initial}); err != nil {
		return err
	}

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(time.Second))
			return nil
		case <-closed:
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			if err := write(conn, e); err != nil {
				log.Debug("stream write failed", applogger.String("session", e.Session), applogger.Error(err))
				return nil
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

func write(conn *websocket.Conn, v interface{}) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(v)
}

// readPump drains client frames so control messages are processed. Clients send nothing else.
func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}
