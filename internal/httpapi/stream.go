package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/seedbotics/fieldgate/internal/metrics"
)

const (
	streamWriteTimeout = 10 * time.Second
	streamPingInterval = 30 * time.Second
)

// Cross-origin policy is enforced by the CORS middleware, not per socket.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// robotStream upgrades to a websocket and relays device-link events for an
// owned robot until the client disconnects. Ownership is checked before the
// upgrade so rejections stay plain HTTP.
func (h *handler) robotStream(w http.ResponseWriter, r *http.Request) {
	robotID := mux.Vars(r)["id"]

	events, cancel, err := h.svc.Robots.Stream(r.Context(), callerID(r), robotID)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).WithField("robot_id", robotID).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	metrics.StreamOpened()
	defer metrics.StreamClosed()
	h.log.WithField("robot_id", robotID).Debug("stream opened")

	// Reader goroutine surfaces client disconnects; inbound frames are ignored.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
