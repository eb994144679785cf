// Package status fans out session and send events to every connected
// observer of the web UI.
package status

import (
	"sync"
	"time"

	"github.com/nimasrn/wa-messenger/pkg/logger"
)

const (
	EventStatusUpdate     = "status_update"
	EventQRCode           = "qr_code"
	EventConnectionReady  = "connection_ready"
	EventAuthenticated    = "authenticated"
	EventAuthFailure      = "auth_failure"
	EventDisconnected     = "disconnected"
	EventMessageSent      = "message_sent"
	EventMessageSendError = "message_send_error"
)

const defaultBuffer = 32

type Event struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Subscription receives events on C until it is unsubscribed or the hub is
// closed, at which point C is closed.
type Subscription struct {
	C chan Event
	// Replayed is set when the latest status_update was queued on C.
	Replayed bool
}

type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	last   *Event
	buffer int
	closed bool
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a new observer. The latest status_update, if any, is
// delivered first so a fresh observer starts from the current state.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{C: make(chan Event, h.buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.C)
		return sub
	}
	if h.last != nil {
		sub.C <- *h.last
		sub.Replayed = true
	}
	h.subs[sub] = struct{}{}
	logger.Debug("[status] observer subscribed", "observers", len(h.subs))
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.C)
	logger.Debug("[status] observer unsubscribed", "observers", len(h.subs))
}

// Publish never blocks. An observer whose buffer is full misses the event.
func (h *Hub) Publish(eventType string, data any) {
	ev := Event{Type: eventType, Data: data, Timestamp: time.Now()}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	if eventType == EventStatusUpdate {
		h.last = &ev
	}
	for sub := range h.subs {
		select {
		case sub.C <- ev:
		default:
			logger.Warn("[status] observer too slow, event dropped", "type", eventType)
		}
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription. Later publishes are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		close(sub.C)
		delete(h.subs, sub)
	}
}
