package handler

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// StepEvent is pushed to watchers once per completed pipeline step.
type StepEvent struct {
	ProjectID string `json:"projectId"`
	Step      string `json:"step"`
	Timestamp int64  `json:"timestamp"`
}

// WatchHandler fans pipeline step events out to websocket subscribers. A
// subscriber may filter on one project via the projectId query parameter.
type WatchHandler struct {
	upgrader websocket.Upgrader

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

type subscriber struct {
	projectID string
	send      chan StepEvent
}

func NewWatchHandler() *WatchHandler {
	return &WatchHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// CORS is handled at the mux level.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subs: make(map[*subscriber]struct{}),
	}
}

// Publish delivers one step event to every matching subscriber. Slow
// subscribers drop events rather than blocking the pipeline.
func (h *WatchHandler) Publish(projectID, step string) {
	ev := StepEvent{ProjectID: projectID, Step: step, Timestamp: time.Now().UnixMilli()}
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if sub.projectID != "" && sub.projectID != projectID {
			continue
		}
		select {
		case sub.send <- ev:
		default:
		}
	}
}

func (h *WatchHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("watch upgrade: %v", err)
		return
	}

	sub := &subscriber{
		projectID: r.URL.Query().Get("projectId"),
		send:      make(chan StepEvent, 32),
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.subs, sub)
		h.mu.Unlock()
		conn.Close()
	}()

	// Drain client frames so pings and close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev := <-sub.send:
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
