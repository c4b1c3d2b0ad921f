package ws

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewHub(log)
}

func newTestClient(hub *Hub, rooms ...string) *Client {
	return &Client{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Rooms:  rooms,
		Send:   make(chan []byte, 16),
		hub:    hub,
	}
}

func receiveEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case msg := <-c.Send:
		var event Event
		require.NoError(t, json.Unmarshal(msg, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("client did not receive event")
		return Event{}
	}
}

func TestHubRegisterAndUnregister(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub, "queue-all-all")

	hub.Register(client)
	assert.Equal(t, 1, hub.ClientCount())
	assert.Equal(t, 1, hub.RoomCount("queue-all-all"))

	hub.Unregister(client)
	assert.Equal(t, 0, hub.ClientCount())
	assert.Equal(t, 0, hub.RoomCount("queue-all-all"))

	_, open := <-client.Send
	assert.False(t, open, "send channel should be closed after unregister")
}

func TestHubUnregisterTwiceIsSafe(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub)

	hub.Register(client)
	hub.Unregister(client)
	hub.Unregister(client)

	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubBroadcastReachesOnlyRoomMembers(t *testing.T) {
	hub := newTestHub()
	doctorID := uuid.New()
	room := "queue-" + doctorID.String() + "-all"

	member := newTestClient(hub, room)
	outsider := newTestClient(hub, "queue-all-all")
	hub.Register(member)
	hub.Register(outsider)

	hub.Broadcast(room, Event{Event: EventQueueUpdate, Data: map[string]interface{}{"length": 3}})

	event := receiveEvent(t, member)
	assert.Equal(t, EventQueueUpdate, event.Event)

	select {
	case <-outsider.Send:
		t.Fatal("outsider should not receive events for another queue room")
	default:
	}
}

func TestHubBroadcastToEmptyRoomDoesNotPanic(t *testing.T) {
	hub := newTestHub()
	hub.Broadcast("queue-nobody-here", Event{Event: EventQueueUpdate})
}

func TestHubJoinAndLeave(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub)
	hub.Register(client)

	hub.Join(client, "chat-room-1")
	assert.Equal(t, 1, hub.RoomCount("chat-room-1"))

	// Joining the same room again is a no-op.
	hub.Join(client, "chat-room-1")
	assert.Len(t, client.Rooms, 1)

	hub.Leave(client, "chat-room-1")
	assert.Equal(t, 0, hub.RoomCount("chat-room-1"))
	assert.Empty(t, client.Rooms)
}

func TestHubSlowClientIsSkipped(t *testing.T) {
	hub := newTestHub()
	slow := newTestClient(hub, "queue-all-all")
	slow.Send = make(chan []byte, 1)
	hub.Register(slow)

	hub.Broadcast("queue-all-all", Event{Event: EventQueueUpdate})
	hub.Broadcast("queue-all-all", Event{Event: EventQueueUpdate})
	hub.Broadcast("queue-all-all", Event{Event: EventQueueUpdate})

	// Only the first fits; later broadcasts must not block.
	assert.Len(t, slow.Send, 1)
}

func TestHubSendTo(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub)
	hub.Register(client)

	hub.SendTo(client, Event{Event: EventQueueStatus, Data: map[string]interface{}{"position": 2}})

	event := receiveEvent(t, client)
	assert.Equal(t, EventQueueStatus, event.Event)
}

func TestHubUserRoomDelivery(t *testing.T) {
	hub := newTestHub()
	userID := uuid.New()
	client := newTestClient(hub, UserRoom(userID))
	client.UserID = userID
	hub.Register(client)

	hub.Broadcast(UserRoom(userID), Event{Event: EventPatientCalled})

	event := receiveEvent(t, client)
	assert.Equal(t, EventPatientCalled, event.Event)
}

func TestHubConcurrentRegisterUnregister(t *testing.T) {
	hub := newTestHub()
	const n = 100

	clients := make([]*Client, n)
	for i := range clients {
		clients[i] = newTestClient(hub, "queue-all-all")
	}

	var wg sync.WaitGroup
	wg.Add(n * 2)
	for i := 0; i < n; i++ {
		go func(idx int) {
			defer wg.Done()
			hub.Register(clients[idx])
		}(i)
		go func(idx int) {
			defer wg.Done()
			hub.Unregister(clients[idx])
		}(i)
	}
	wg.Wait()

	assert.GreaterOrEqual(t, hub.ClientCount(), 0)
}

func TestHubShutdownDisconnectsEveryone(t *testing.T) {
	hub := newTestHub()
	c1 := newTestClient(hub, "queue-all-all")
	c2 := newTestClient(hub, "chat-room-9")
	hub.Register(c1)
	hub.Register(c2)

	hub.Shutdown()

	assert.Equal(t, 0, hub.ClientCount())
	for _, c := range []*Client{c1, c2} {
		_, open := <-c.Send
		assert.False(t, open)
	}
}

func TestHubSendToDeparted(t *testing.T) {
	hub := newTestHub()
	client := newTestClient(hub)
	hub.Register(client)
	hub.Shutdown()

	// An inbound frame can still be in flight when the hub shuts down; the
	// reply must be dropped, not sent on the closed channel.
	assert.NotPanics(t, func() {
		hub.SendTo(client, Event{Event: EventQueueStatus})
	})

	unregistered := newTestClient(hub)
	hub.Register(unregistered)
	hub.Unregister(unregistered)
	assert.NotPanics(t, func() {
		hub.SendTo(unregistered, Event{Event: EventQueueStatus})
	})
}

func TestClientMessageParsing(t *testing.T) {
	raw := `{"action":"get-queue-status","data":{"doctor_id":"abc"}}`

	var msg ClientMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	assert.Equal(t, ActionGetQueueStatus, msg.Action)
	assert.NotEmpty(t, msg.Data)
}
