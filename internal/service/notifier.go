package service

import (
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"
	"github.com/harsh11x/pulsecal.web-sub000/internal/ws"

	"github.com/google/uuid"
)

// Notifier emits typed realtime events over the hub. It is injected into
// usecases; delivery is best-effort and never fails the calling operation.
type Notifier struct {
	hub *ws.Hub
}

func NewNotifier(hub *ws.Hub) *Notifier {
	return &Notifier{hub: hub}
}

// QueueUpdated broadcasts the scope's current queue to its room.
func (n *Notifier) QueueUpdated(scope entity.QueueScope, queue interface{}) {
	n.hub.Broadcast(scope.Room(), ws.Event{Event: ws.EventQueueUpdate, Data: queue})
}

// PatientCalled tells the patient directly that it is their turn.
func (n *Notifier) PatientCalled(patientID uuid.UUID, data interface{}) {
	n.hub.Broadcast(ws.UserRoom(patientID), ws.Event{Event: ws.EventPatientCalled, Data: data})
}

// QueueStatus delivers a patient's own position and wait estimate.
func (n *Notifier) QueueStatus(patientID uuid.UUID, status interface{}) {
	n.hub.Broadcast(ws.UserRoom(patientID), ws.Event{Event: ws.EventQueueStatus, Data: status})
}

// NewMessage fans a chat message out to the room's connected members.
func (n *Notifier) NewMessage(roomID uuid.UUID, message interface{}) {
	n.hub.Broadcast(chatRoom(roomID), ws.Event{Event: ws.EventNewMessage, Data: message})
}

// MessagesRead tells the room that someone caught up on its messages.
func (n *Notifier) MessagesRead(roomID uuid.UUID, data interface{}) {
	n.hub.Broadcast(chatRoom(roomID), ws.Event{Event: ws.EventMessagesRead, Data: data})
}

// Notify delivers an ad-hoc notification to one user.
func (n *Notifier) Notify(userID uuid.UUID, payload interface{}) {
	n.hub.Broadcast(ws.UserRoom(userID), ws.Event{Event: ws.EventNotification, Data: payload})
}

// ChatRoomChannel returns the realtime room name for a chat room.
func ChatRoomChannel(roomID uuid.UUID) string {
	return chatRoom(roomID)
}

func chatRoom(roomID uuid.UUID) string {
	return "chat-" + roomID.String()
}
