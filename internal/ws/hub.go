// Package ws provides the realtime fan-out layer. Clients connect over
// WebSocket, join named rooms, and receive events broadcast to those rooms.
// The hub holds no business state; it only routes serialized events.
package ws

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Event is the envelope for every server-to-client message.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Server event names
const (
	EventJoinedQueue   = "joined-queue"
	EventQueueUpdate   = "queue-update"
	EventQueueStatus   = "queue-status"
	EventPatientCalled = "patient-called"
	EventJoinedRoom    = "joined-room"
	EventNewMessage    = "new-message"
	EventMessagesRead  = "messages-read"
	EventNotification  = "notification"
	EventError         = "error"
)

// Client action names
const (
	ActionJoinQueue      = "join-queue"
	ActionGetQueueStatus = "get-queue-status"
	ActionJoinRoom       = "join-room"
	ActionLeaveRoom      = "leave-room"
	ActionSendMessage    = "send-message"
	ActionMarkRead       = "mark-read"
)

// ClientMessage is an inbound message from a connected client.
type ClientMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Hub tracks connected clients and their room memberships. All operations
// are safe for concurrent use.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	all   map[*Client]struct{}
	log   *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
		all:   make(map[*Client]struct{}),
		log:   log,
	}
}

// Register adds a client to the hub and joins it to its initial rooms.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.all[client] = struct{}{}
	for _, room := range client.Rooms {
		h.joinLocked(client, room)
	}
}

// Unregister removes a client from the hub and every room it joined, and
// closes the client's Send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.all[client]; !ok {
		return
	}

	for _, room := range client.Rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}

	delete(h.all, client)
	close(client.Send)
}

// Join adds an already-registered client to a room.
func (h *Hub) Join(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, r := range client.Rooms {
		if r == room {
			return
		}
	}
	h.joinLocked(client, room)
	client.Rooms = append(client.Rooms, room)
}

// Leave removes a client from a room.
func (h *Hub) Leave(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}

	remaining := client.Rooms[:0]
	for _, r := range client.Rooms {
		if r != room {
			remaining = append(remaining, r)
		}
	}
	client.Rooms = remaining
}

func (h *Hub) joinLocked(client *Client, room string) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][client] = struct{}{}
}

// Broadcast sends an event to every client in the given room. Clients whose
// send buffer is full are skipped so one slow consumer cannot stall the rest.
func (h *Hub) Broadcast(room string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Warnf("Failed to marshal event %s: %+v", event.Event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[room]
	if !ok {
		return
	}

	for client := range members {
		select {
		case client.Send <- data:
		default:
			// Buffer full, skip to avoid blocking.
		}
	}
}

// SendTo delivers an event directly to a single client. Clients that are no
// longer registered are skipped; their Send channel is already closed.
func (h *Hub) SendTo(client *Client, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Warnf("Failed to marshal event %s: %+v", event.Event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.all[client]; !ok {
		return
	}

	select {
	case client.Send <- data:
	default:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

// RoomCount returns the number of clients in a room.
func (h *Hub) RoomCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Shutdown disconnects every client. Intended for graceful server stop.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.all {
		close(client.Send)
		delete(h.all, client)
	}
	h.rooms = make(map[string]map[*Client]struct{})
}
