package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/walnut-media/backend/internal/session"
)

type EventsHandler struct {
	bus      *session.EventBus
	upgrader websocket.Upgrader
}

func NewEventsHandler(bus *session.EventBus) *EventsHandler {
	return &EventsHandler{
		bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// CORS policy is enforced by the router middleware.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Feed serves session events. Websocket clients get a live push stream
// (after a replay from ?since=); plain GET returns the buffered events as
// JSON for pollers.
func (h *EventsHandler) Feed(w http.ResponseWriter, r *http.Request) {
	since := int64(0)
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			jsonError(w, "invalid since", http.StatusBadRequest)
			return
		}
		since = n
	}

	if !websocket.IsWebSocketUpgrade(r) {
		jsonResponse(w, h.bus.Since(since), http.StatusOK)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}
	defer conn.Close()

	// Subscribe before the replay so no event can fall between them;
	// duplicates are filtered by sequence number.
	ch, cancel := h.bus.Subscribe()
	defer cancel()

	last := since
	for _, event := range h.bus.Since(since) {
		if err := conn.WriteJSON(event); err != nil {
			return
		}
		last = event.Seq
	}

	// Discard reads so client close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for event := range ch {
		if event.Seq <= last {
			continue
		}
		if err := conn.WriteJSON(event); err != nil {
			log.Printf("[events] write: %v", err)
			return
		}
		last = event.Seq
	}
}
