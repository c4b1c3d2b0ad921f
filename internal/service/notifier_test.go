package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"
	"github.com/harsh11x/pulsecal.web-sub000/internal/ws"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotifierForTest() (*Notifier, *ws.Hub) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	hub := ws.NewHub(log)
	return NewNotifier(hub), hub
}

type fakeConn struct{}

func (fakeConn) ReadMessage() (int, []byte, error) { return 0, nil, nil }
func (fakeConn) WriteMessage(int, []byte) error { return nil }
func (fakeConn) Close() error { return nil }

func subscribe(hub *ws.Hub, userID uuid.UUID, rooms ...string) *ws.Client {
	client := ws.NewClient(hub, fakeConn{}, userID, 16)
	client.Rooms = append(client.Rooms, rooms...)
	hub.Register(client)
	return client
}

func receive(t *testing.T, client *ws.Client) ws.Event {
	t.Helper()
	select {
	case msg := <-client.Send:
		var event ws.Event
		require.NoError(t, json.Unmarshal(msg, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return ws.Event{}
	}
}

func TestNotifierQueueUpdated(t *testing.T) {
	notifier, hub := newNotifierForTest()

	doctorID := uuid.New()
	scope := entity.QueueScope{DoctorID: &doctorID}
	client := subscribe(hub, uuid.New(), scope.Room())

	notifier.QueueUpdated(scope, map[string]int{"total": 2})

	event := receive(t, client)
	assert.Equal(t, ws.EventQueueUpdate, event.Event)
}

func TestNotifierPatientCalledIsDirect(t *testing.T) {
	notifier, hub := newNotifierForTest()

	patientID := uuid.New()
	patient := subscribe(hub, patientID, ws.UserRoom(patientID))
	other := subscribe(hub, uuid.New(), ws.UserRoom(uuid.New()))

	notifier.PatientCalled(patientID, map[string]string{"status": "in_progress"})

	event := receive(t, patient)
	assert.Equal(t, ws.EventPatientCalled, event.Event)

	select {
	case <-other.Send:
		t.Fatal("event leaked to another user's room")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotifierChatEvents(t *testing.T) {
	notifier, hub := newNotifierForTest()

	roomID := uuid.New()
	member := subscribe(hub, uuid.New(), ChatRoomChannel(roomID))

	notifier.NewMessage(roomID, map[string]string{"content": "hello"})
	event := receive(t, member)
	assert.Equal(t, ws.EventNewMessage, event.Event)

	notifier.MessagesRead(roomID, map[string]int{"count": 3})
	event = receive(t, member)
	assert.Equal(t, ws.EventMessagesRead, event.Event)
}

func TestChatRoomChannel(t *testing.T) {
	roomID := uuid.New()
	assert.Equal(t, "chat-"+roomID.String(), ChatRoomChannel(roomID))
}
