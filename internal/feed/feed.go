package feed

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Op is the row-level operation an event reflects.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Table names carried on events. Consumers must treat unknown tables as a
// resync trigger, never drop them silently.
const (
	TableLobbies     = "lobbies"
	TableMemberships = "memberships"
)

// Event is a raw change event for one row. Before is only present on
// updates and deletes, and only best-effort. Payloads are untyped JSON;
// the normalization boundary downstream gives them shape.
//
// Delivery is at-least-once and only best-effort ordered: subscribers must
// tolerate duplicates, drops, and reordering across rows.
type Event struct {
	Table  string          `json:"table"`
	Op     Op              `json:"operation"`
	Before json.RawMessage `json:"before,omitempty"`
	After  json.RawMessage `json:"after,omitempty"`
}

// NewEvent marshals row snapshots into a raw event. A row that fails to
// marshal is carried as an empty payload; subscribers degrade to resync.
func NewEvent(table string, op Op, before, after any) Event {
	ev := Event{Table: table, Op: op}
	if before != nil {
		if b, err := json.Marshal(before); err == nil {
			ev.Before = b
		}
	}
	if after != nil {
		if b, err := json.Marshal(after); err == nil {
			ev.After = b
		}
	}
	return ev
}

// Handle identifies one subscription.
type Handle struct {
	id      uuid.UUID
	lobbyID uint
}

// subscriberBuffer bounds how far a slow consumer may lag before it is
// dropped and forced onto its resync path.
const subscriberBuffer = 64

// Hub fans change events out to the clients subscribed to each lobby.
type Hub struct {
	mu     sync.RWMutex
	lobbies map[uint]map[uuid.UUID]chan Event
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		lobbies: make(map[uint]map[uuid.UUID]chan Event),
	}
}

// Subscribe opens one logical subscription scoped to a lobby. The returned
// channel is closed when the subscription is dropped, either by Unsubscribe
// or because the subscriber fell too far behind.
func (h *Hub) Subscribe(lobbyID uint) (Handle, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.lobbies[lobbyID]; !ok {
		h.lobbies[lobbyID] = make(map[uuid.UUID]chan Event)
	}
	handle := Handle{id: uuid.New(), lobbyID: lobbyID}
	ch := make(chan Event, subscriberBuffer)
	h.lobbies[lobbyID][handle.id] = ch
	return handle, ch
}

// Unsubscribe removes a subscription and closes its channel.
func (h *Hub) Unsubscribe(handle Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(handle.lobbyID, handle.id)
}

// drop removes one subscriber. Caller must hold mu.
func (h *Hub) drop(lobbyID uint, id uuid.UUID) {
	clients, ok := h.lobbies[lobbyID]
	if !ok {
		return
	}
	if ch, ok := clients[id]; ok {
		delete(clients, id)
		close(ch) // signals the consumer that the subscription is gone
		if len(clients) == 0 {
			delete(h.lobbies, lobbyID)
		}
	}
}

// Publish delivers an event to every subscriber of a lobby. A subscriber
// whose buffer is full is dropped; its closed channel tells it to resync
// and resubscribe rather than consume a gapped stream.
func (h *Hub) Publish(lobbyID uint, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.lobbies[lobbyID]
	if !ok {
		return
	}
	for id, ch := range clients {
		select {
		case ch <- ev:
		default:
			log.Warn().Str("module", "feed").Uint("lobby_id", lobbyID).Msg("dropping slow subscriber")
			h.drop(lobbyID, id)
		}
	}
}
