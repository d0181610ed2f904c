// Package realtime is the thin live-messaging layer: conversation-scoped
// rooms that fan persisted chat messages out to connected participants. The
// durable message store is the source of truth; a push here is a liveness
// optimization and its loss does not lose data.
package realtime

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Event names mirrored on the wire.
const (
	EventJoinConversation = "join_conversation"
	EventSendMessage      = "send_message"
	EventMarkAsRead       = "mark_as_read"
	EventNewMessage       = "new_message"
	EventMessageRead      = "message_read"
	EventError            = "error"
)

// OutboundEvent is a server-to-client frame.
type OutboundEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type subscriber interface {
	// Deliver must not block; implementations drop frames they cannot take.
	Deliver(event OutboundEvent) bool
	Name() string
}

// Hub tracks which subscribers joined which conversation rooms and
// broadcasts to them best-effort.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[subscriber]struct{}),
	}
}

// Join adds the subscriber to a conversation room.
func (h *Hub) Join(room string, sub subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[subscriber]struct{})
		h.rooms[room] = members
	}
	members[sub] = struct{}{}

	log.Debug().Str("room", room).Str("subscriber", sub.Name()).Msg("joined conversation room")
}

// Leave removes the subscriber from every room it joined.
func (h *Hub) Leave(sub subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for room, members := range h.rooms {
		if _, ok := members[sub]; !ok {
			continue
		}
		delete(members, sub)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast pushes an event to every subscriber of the room. Fire-and-forget:
// a full or disconnected subscriber misses the frame and must re-fetch from
// the durable store.
func (h *Hub) Broadcast(room, event string, data any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.rooms[room] {
		if !sub.Deliver(OutboundEvent{Event: event, Data: data}) {
			log.Warn().
				Str("room", room).
				Str("subscriber", sub.Name()).
				Str("event", event).
				Msg("dropped realtime frame for slow subscriber")
		}
	}
}

// BroadcastExcept pushes to every room member but one, for read receipts that
// should not echo back to their originator.
func (h *Hub) BroadcastExcept(room string, skip subscriber, event string, data any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.rooms[room] {
		if sub == skip {
			continue
		}
		if !sub.Deliver(OutboundEvent{Event: event, Data: data}) {
			log.Warn().
				Str("room", room).
				Str("subscriber", sub.Name()).
				Str("event", event).
				Msg("dropped realtime frame for slow subscriber")
		}
	}
}

// RoomSize reports the current member count of a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
