package socket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"notesvc/pkg/logger"
)

const (
	NoteCreatedType  = "NOTE_CREATED"  // A note was inserted
	NoteDeletedType  = "NOTE_DELETED"  // A single note was removed
	NotesClearedType = "NOTES_CLEARED" // Every note was removed

	broadcastBuffer = 64
)

// Event is one change-feed message as written to subscribers.
type Event struct {
	Type      string          `json:"type"`
	NoteID    int64           `json:"note_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Hub fans note change events out to every connected websocket subscriber.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	Broadcast  chan Event
	Register   chan *Client
	Unregister chan *Client
	mu         sync.Mutex
	done       chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Broadcast:  make(chan Event, broadcastBuffer),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// closes every subscriber.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			logger.Sugar.Info("Change feed hub stopped")
			return

		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Sugar.Debugf("Subscriber %s joined", client.ID)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				logger.Sugar.Debugf("Subscriber %s left", client.ID)
			}
			h.mu.Unlock()

		case evt := <-h.Broadcast:
			payload, err := json.Marshal(evt)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling change event: %v", err)
				continue
			}

			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- payload:
				default:
					// The subscriber is lagging; drop it rather than block the feed.
					logger.Sugar.Warnf("Subscriber %s's send buffer is full. Dropping.", client.ID)
					delete(h.clients, client)
					close(client.Send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues an event for broadcast without ever blocking the caller.
func (h *Hub) Publish(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	select {
	case h.Broadcast <- evt:
	default:
		logger.Sugar.Warnf("Change feed buffer full, dropping %s event", evt.Type)
	}
}

// ClientCount reports the number of registered subscribers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}
