package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSubscriber struct {
	name   string
	events []OutboundEvent
	full   bool
}

func (f *fakeSubscriber) Deliver(event OutboundEvent) bool {
	if f.full {
		return false
	}
	f.events = append(f.events, event)
	return true
}

func (f *fakeSubscriber) Name() string { return f.name }

func TestBroadcastReachesRoomMembers(t *testing.T) {
	hub := NewHub()
	a := &fakeSubscriber{name: "a"}
	b := &fakeSubscriber{name: "b"}
	outsider := &fakeSubscriber{name: "c"}

	hub.Join("room1", a)
	hub.Join("room1", b)
	hub.Join("room2", outsider)

	hub.Broadcast("room1", EventNewMessage, "hello")

	assert.Len(t, a.events, 1)
	assert.Equal(t, EventNewMessage, a.events[0].Event)
	assert.Len(t, b.events, 1)
	assert.Empty(t, outsider.events)
}

func TestBroadcastExceptSkipsOriginator(t *testing.T) {
	hub := NewHub()
	reader := &fakeSubscriber{name: "reader"}
	other := &fakeSubscriber{name: "other"}

	hub.Join("room", reader)
	hub.Join("room", other)

	hub.BroadcastExcept("room", reader, EventMessageRead, "read")

	assert.Empty(t, reader.events)
	assert.Len(t, other.events, 1)
}

func TestBroadcastToEmptyRoomIsNoop(t *testing.T) {
	hub := NewHub()
	hub.Broadcast("nobody-here", EventNewMessage, "hello")
	assert.Equal(t, 0, hub.RoomSize("nobody-here"))
}

func TestLeaveRemovesFromAllRooms(t *testing.T) {
	hub := NewHub()
	sub := &fakeSubscriber{name: "s"}

	hub.Join("room1", sub)
	hub.Join("room2", sub)
	assert.Equal(t, 1, hub.RoomSize("room1"))

	hub.Leave(sub)

	assert.Equal(t, 0, hub.RoomSize("room1"))
	assert.Equal(t, 0, hub.RoomSize("room2"))

	hub.Broadcast("room1", EventNewMessage, "hello")
	assert.Empty(t, sub.events)
}

func TestSlowSubscriberDropsFrameWithoutBlocking(t *testing.T) {
	hub := NewHub()
	slow := &fakeSubscriber{name: "slow", full: true}
	fast := &fakeSubscriber{name: "fast"}

	hub.Join("room", slow)
	hub.Join("room", fast)

	hub.Broadcast("room", EventNewMessage, "hello")

	assert.Empty(t, slow.events)
	assert.Len(t, fast.events, 1)
}

func TestJoinIsIdempotent(t *testing.T) {
	hub := NewHub()
	sub := &fakeSubscriber{name: "s"}

	hub.Join("room", sub)
	hub.Join("room", sub)

	assert.Equal(t, 1, hub.RoomSize("room"))
	hub.Broadcast("room", EventNewMessage, "hello")
	assert.Len(t, sub.events, 1)
}
