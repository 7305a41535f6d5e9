package notify

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const (
	subscriberBuffer = 16
	writeTimeout     = 5 * time.Second
)

type subscriber struct {
	ch chan Signal
}

// Hub streams signals to websocket clients subscribed by user id. A slow
// client loses signals rather than stalling the sender.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

// Notify implements Notifier.
func (h *Hub) Notify(_ context.Context, s Signal) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[s.UserID] {
		select {
		case sub.ch <- s:
		default:
			slog.Warn("signal dropped, subscriber too slow",
				"user_id", s.UserID,
				"kind", s.Kind,
			)
		}
	}
}

// Subscribers reports how many clients are listening for userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}

func (h *Hub) subscribe(userID string) (*subscriber, func()) {
	sub := &subscriber{ch: make(chan Signal, subscriberBuffer)}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*subscriber]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	h.mu.Unlock()

	return sub, func() {
		h.mu.Lock()
		delete(h.subs[userID], sub)
		if len(h.subs[userID]) == 0 {
			delete(h.subs, userID)
		}
		h.mu.Unlock()
	}
}

// ServeUser upgrades the request and streams userID's signals as JSON
// text frames until the client goes away. Client messages are ignored.
func (h *Hub) ServeUser(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "user_id", userID, "error", err)
		return
	}
	defer conn.CloseNow()

	sub, unsubscribe := h.subscribe(userID)
	defer unsubscribe()

	ctx := conn.CloseRead(r.Context())
	slog.Debug("signal stream opened", "user_id", userID)

	for {
		select {
		case <-ctx.Done():
			slog.Debug("signal stream closed", "user_id", userID)
			return
		case s := <-sub.ch:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, conn, s)
			cancel()
			if err != nil {
				slog.Debug("signal write failed", "user_id", userID, "error", err)
				return
			}
		}
	}
}
