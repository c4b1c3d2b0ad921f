package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/dto"
	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/http/middleware"
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"
	"github.com/harsh11x/pulsecal.web-sub000/internal/service"
	"github.com/harsh11x/pulsecal.web-sub000/internal/ws"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// fakeQueueRepo keeps entries in memory and mirrors the renumbering SQL; the
// db handle is ignored.
type fakeQueueRepo struct {
	entries        []*entity.QueueEntry
	forUpdateFinds int
}

func (f *fakeQueueRepo) Create(db *gorm.DB, entry *entity.QueueEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	stored := *entry
	f.entries = append(f.entries, &stored)
	return nil
}

func (f *fakeQueueRepo) FindByID(db *gorm.DB, id uuid.UUID, forUpdate bool) (*entity.QueueEntry, error) {
	if forUpdate {
		f.forUpdateFinds++
	}
	for _, e := range f.entries {
		if e.ID == id {
			found := *e
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeQueueRepo) FindWaitingByPatient(db *gorm.DB, patientID uuid.UUID, forUpdate bool) (*entity.QueueEntry, error) {
	for _, e := range f.entries {
		if e.PatientID == patientID && e.IsWaiting() {
			found := *e
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeQueueRepo) FindWaitingByScope(db *gorm.DB, scope entity.QueueScope, forUpdate bool) ([]entity.QueueEntry, error) {
	var out []entity.QueueEntry
	for _, e := range f.waiting(scope) {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeQueueRepo) FindFirstWaiting(db *gorm.DB, scope entity.QueueScope, forUpdate bool) (*entity.QueueEntry, error) {
	waiting := f.waiting(scope)
	if len(waiting) == 0 {
		return nil, nil
	}
	first := *waiting[0]
	return &first, nil
}

func (f *fakeQueueRepo) MaxPosition(db *gorm.DB, scope entity.QueueScope) (int, error) {
	max := 0
	for _, e := range f.waiting(scope) {
		if e.Position > max {
			max = e.Position
		}
	}
	return max, nil
}

func (f *fakeQueueRepo) CountAhead(db *gorm.DB, scope entity.QueueScope, position int) (int64, error) {
	var ahead int64
	for _, e := range f.waiting(scope) {
		if e.Position < position {
			ahead++
		}
	}
	return ahead, nil
}

func (f *fakeQueueRepo) Update(db *gorm.DB, entry *entity.QueueEntry) error {
	for i, e := range f.entries {
		if e.ID == entry.ID {
			updated := *entry
			f.entries[i] = &updated
			return nil
		}
	}
	return nil
}

func (f *fakeQueueRepo) DecrementPositionsAfter(db *gorm.DB, scope entity.QueueScope, position int) error {
	for _, e := range f.waiting(scope) {
		if e.Position > position {
			e.Position--
		}
	}
	return nil
}

func (f *fakeQueueRepo) waiting(scope entity.QueueScope) []*entity.QueueEntry {
	var waiting []*entity.QueueEntry
	for _, e := range f.entries {
		if e.IsWaiting() && e.Scope().Key() == scope.Key() {
			waiting = append(waiting, e)
		}
	}
	sort.Slice(waiting, func(i, j int) bool { return waiting[i].Position < waiting[j].Position })
	return waiting
}

// fakeLocker runs the function inline; serialization is the real locker's
// concern and is covered by its own tests.
type fakeLocker struct {
	locks int
}

func (l *fakeLocker) WithLock(ctx context.Context, scope entity.QueueScope, fn func() error) error {
	l.locks++
	return fn()
}

type fakeAuditService struct {
	actions []string
}

func (f *fakeAuditService) Record(tx *gorm.DB, userID *uuid.UUID, action string, metadata entity.JSON) error {
	f.actions = append(f.actions, action)
	return nil
}

type nopConn struct{}

func (nopConn) ReadMessage() (int, []byte, error) { return 0, nil, nil }
func (nopConn) WriteMessage(int, []byte) error { return nil }
func (nopConn) Close() error { return nil }

type queueFixture struct {
	usecase QueueUsecase
	repo    *fakeQueueRepo
	doctors *fakeDoctorProfileRepo
	locker  *fakeLocker
	hub     *ws.Hub
	mock    sqlmock.Sqlmock
}

func newQueueFixture(t *testing.T, minutesPerPatient int) *queueFixture {
	t.Helper()

	// The fake repo never issues SQL; the mocked pool only has to serve
	// Begin/Commit/Rollback for the transactional paths.
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	hub := ws.NewHub(log)
	f := &queueFixture{
		repo:    &fakeQueueRepo{},
		doctors: &fakeDoctorProfileRepo{profiles: map[uuid.UUID]*entity.DoctorProfile{}},
		locker:  &fakeLocker{},
		hub:     hub,
		mock:    mock,
	}
	f.usecase = NewQueueUsecase(db, log, f.repo, f.doctors, f.locker, &fakeAuditService{}, service.NewNotifier(hub), minutesPerPatient)
	return f
}

func (f *queueFixture) addDoctor() uuid.UUID {
	id := uuid.New()
	f.doctors.profiles[id] = &entity.DoctorProfile{UserID: id}
	return id
}

func (f *queueFixture) expectCommits(n int) {
	for i := 0; i < n; i++ {
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()
	}
}

func (f *queueFixture) expectRollback() {
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
}

func (f *queueFixture) join(t *testing.T, patientID uuid.UUID, scope entity.QueueScope) *dto.QueueEntryResponse {
	t.Helper()
	entry, err := f.usecase.JoinQueue(authedContext(patientID), &dto.JoinQueueRequest{
		DoctorID: scope.DoctorID,
		ClinicID: scope.ClinicID,
	})
	require.NoError(t, err)
	return entry
}

func (f *queueFixture) watch(room string) *ws.Client {
	client := ws.NewClient(f.hub, nopConn{}, uuid.New(), 16)
	client.Rooms = append(client.Rooms, room)
	f.hub.Register(client)
	return client
}

func receiveQueueUpdate(t *testing.T, c *ws.Client) dto.QueueResponse {
	t.Helper()
	select {
	case msg := <-c.Send:
		var event struct {
			Event string            `json:"event"`
			Data  dto.QueueResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg, &event))
		require.Equal(t, ws.EventQueueUpdate, event.Event)
		return event.Data
	case <-time.After(time.Second):
		t.Fatal("no queue update received")
		return dto.QueueResponse{}
	}
}

func authedContext(userID uuid.UUID) context.Context {
	return context.WithValue(context.Background(), middleware.UserIDKey, userID)
}

func TestJoinQueueAssignsSequentialPositions(t *testing.T) {
	f := newQueueFixture(t, 10)
	doctorID := f.addDoctor()
	scope := entity.QueueScope{DoctorID: &doctorID}

	f.expectCommits(3)
	for i := 1; i <= 3; i++ {
		entry := f.join(t, uuid.New(), scope)
		assert.Equal(t, i, entry.Position)
		assert.Equal(t, "waiting", entry.Status)
	}

	queue, err := f.usecase.GetQueue(context.Background(), scope)
	require.NoError(t, err)
	require.Equal(t, 3, queue.Total)
	for i, entry := range queue.Entries {
		assert.Equal(t, i+1, entry.Position)
	}
	assert.Equal(t, 3, f.locker.locks)
}

func TestJoinQueueSecondMembershipRejected(t *testing.T) {
	f := newQueueFixture(t, 10)
	doctorID := f.addDoctor()
	patientID := uuid.New()

	f.expectCommits(1)
	f.join(t, patientID, entity.QueueScope{DoctorID: &doctorID})

	// Waiting anywhere blocks joining everywhere, the global queue included.
	f.expectRollback()
	_, err := f.usecase.JoinQueue(authedContext(patientID), &dto.JoinQueueRequest{})
	assert.ErrorIs(t, err, ErrAlreadyQueued)
}

func TestJoinQueueUnknownDoctor(t *testing.T) {
	f := newQueueFixture(t, 10)
	doctorID := uuid.New()

	_, err := f.usecase.JoinQueue(authedContext(uuid.New()), &dto.JoinQueueRequest{DoctorID: &doctorID})
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestCallNextReturnsFrontAndRenumbers(t *testing.T) {
	f := newQueueFixture(t, 10)
	doctorID := f.addDoctor()
	scope := entity.QueueScope{DoctorID: &doctorID}

	first := uuid.New()
	second := uuid.New()
	third := uuid.New()
	f.expectCommits(4)
	f.join(t, first, scope)
	f.join(t, second, scope)
	f.join(t, third, scope)

	called, err := f.usecase.CallNext(authedContext(doctorID), scope)
	require.NoError(t, err)
	assert.Equal(t, first, called.PatientID)
	assert.Equal(t, "in_progress", called.Status)
	require.NotNil(t, called.CalledAt)

	// The gap closes: everyone behind the called patient moves up one.
	queue, err := f.usecase.GetQueue(context.Background(), scope)
	require.NoError(t, err)
	require.Equal(t, 2, queue.Total)
	assert.Equal(t, second, queue.Entries[0].PatientID)
	assert.Equal(t, 1, queue.Entries[0].Position)
	assert.Equal(t, third, queue.Entries[1].PatientID)
	assert.Equal(t, 2, queue.Entries[1].Position)
}

func TestCallNextEmptyQueue(t *testing.T) {
	f := newQueueFixture(t, 10)

	f.expectRollback()
	_, err := f.usecase.CallNext(authedContext(uuid.New()), entity.QueueScope{})
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestRemoveMiddleEntryClosesGap(t *testing.T) {
	f := newQueueFixture(t, 10)
	scope := entity.QueueScope{}

	first := uuid.New()
	second := uuid.New()
	third := uuid.New()
	f.expectCommits(4)
	f.join(t, first, scope)
	middle := f.join(t, second, scope)
	f.join(t, third, scope)

	require.NoError(t, f.usecase.Remove(authedContext(second), middle.ID))

	queue, err := f.usecase.GetQueue(context.Background(), scope)
	require.NoError(t, err)
	require.Equal(t, 2, queue.Total)
	assert.Equal(t, first, queue.Entries[0].PatientID)
	assert.Equal(t, 1, queue.Entries[0].Position)
	assert.Equal(t, third, queue.Entries[1].PatientID)
	assert.Equal(t, 2, queue.Entries[1].Position)

	cancelled, err := f.repo.FindByID(nil, middle.ID, false)
	require.NoError(t, err)
	assert.Equal(t, entity.QueueStatusCancelled, cancelled.Status)
}

func TestRemoveNotOwnedEntry(t *testing.T) {
	f := newQueueFixture(t, 10)
	scope := entity.QueueScope{}

	patientID := uuid.New()
	f.expectCommits(1)
	entry := f.join(t, patientID, scope)

	err := f.usecase.Remove(authedContext(uuid.New()), entry.ID)
	assert.ErrorIs(t, err, ErrQueueEntryNotOwned)
}

func TestCompleteRequiresInProgress(t *testing.T) {
	f := newQueueFixture(t, 10)
	scope := entity.QueueScope{}

	f.expectCommits(1)
	entry := f.join(t, uuid.New(), scope)

	f.expectRollback()
	_, err := f.usecase.Complete(authedContext(uuid.New()), entry.ID)
	assert.ErrorIs(t, err, ErrInvalidQueueTransition)
}

func TestCompletedEntryCannotBeRemoved(t *testing.T) {
	f := newQueueFixture(t, 10)
	scope := entity.QueueScope{}

	patientID := uuid.New()
	f.expectCommits(3)
	entry := f.join(t, patientID, scope)

	_, err := f.usecase.CallNext(authedContext(uuid.New()), scope)
	require.NoError(t, err)

	completed, err := f.usecase.Complete(authedContext(uuid.New()), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", completed.Status)

	// A racing cancel re-reads the row inside its transaction and must see
	// the terminal state instead of overwriting it.
	f.expectRollback()
	err = f.usecase.Remove(authedContext(patientID), entry.ID)
	assert.ErrorIs(t, err, ErrInvalidQueueTransition)

	final, err := f.repo.FindByID(nil, entry.ID, false)
	require.NoError(t, err)
	assert.Equal(t, entity.QueueStatusCompleted, final.Status)

	// Both the complete and the cancel re-read took row locks; Remove's
	// unlocked pre-check and the inspections above do not count.
	assert.Equal(t, 2, f.repo.forUpdateFinds)
}

func TestQueueBroadcastsFollowMutationOrder(t *testing.T) {
	f := newQueueFixture(t, 10)
	doctorID := f.addDoctor()
	scope := entity.QueueScope{DoctorID: &doctorID}

	watcher := f.watch(scope.Room())

	f.expectCommits(3)
	f.join(t, uuid.New(), scope)
	f.join(t, uuid.New(), scope)
	_, err := f.usecase.CallNext(authedContext(doctorID), scope)
	require.NoError(t, err)

	// Snapshots land in the order the mutations committed: join, join, call.
	var totals []int
	for i := 0; i < 3; i++ {
		totals = append(totals, receiveQueueUpdate(t, watcher).Total)
	}
	assert.Equal(t, []int{1, 2, 1}, totals)
}

func TestGetMyStatusWaitEstimate(t *testing.T) {
	f := newQueueFixture(t, 10)
	scope := entity.QueueScope{}

	var patientID uuid.UUID
	f.expectCommits(5)
	for i := 0; i < 5; i++ {
		patientID = uuid.New()
		f.join(t, patientID, scope)
	}

	status, err := f.usecase.GetMyStatus(authedContext(patientID))
	require.NoError(t, err)
	assert.Equal(t, 5, status.Position)
	assert.Equal(t, 4, status.AheadCount)
	assert.Equal(t, 40, status.EstimatedWaitMinutes)
	assert.Equal(t, "waiting", status.Status)
}

func TestGetMyStatusFrontOfQueue(t *testing.T) {
	f := newQueueFixture(t, 15)
	patientID := uuid.New()

	f.expectCommits(1)
	f.join(t, patientID, entity.QueueScope{})

	status, err := f.usecase.GetMyStatus(authedContext(patientID))
	require.NoError(t, err)
	assert.Equal(t, 1, status.Position)
	assert.Equal(t, 0, status.AheadCount)
	assert.Equal(t, 0, status.EstimatedWaitMinutes)
}

func TestGetMyStatusNotQueued(t *testing.T) {
	f := newQueueFixture(t, 10)

	_, err := f.usecase.GetMyStatus(authedContext(uuid.New()))
	assert.ErrorIs(t, err, ErrNotQueued)
}

func TestGetMyStatusRequiresAuth(t *testing.T) {
	f := newQueueFixture(t, 10)

	_, err := f.usecase.GetMyStatus(context.Background())
	assert.Error(t, err)
}

func TestGetQueueEmptyScope(t *testing.T) {
	f := newQueueFixture(t, 10)

	queue, err := f.usecase.GetQueue(context.Background(), entity.QueueScope{})
	require.NoError(t, err)
	assert.Equal(t, 0, queue.Total)
	assert.Equal(t, "queue-all-all", queue.Room)
}
