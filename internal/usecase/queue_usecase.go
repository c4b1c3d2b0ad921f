package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/harsh11x/pulsecal.web-sub000/internal/converter"
	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/dto"
	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/http/middleware"
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/repository"
	"github.com/harsh11x/pulsecal.web-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAlreadyQueued          = errors.New("you are already waiting in a queue")
	ErrQueueEmpty             = errors.New("queue is empty")
	ErrNotQueued              = errors.New("you are not waiting in any queue")
	ErrQueueEntryNotFound     = errors.New("queue entry not found")
	ErrQueueEntryNotOwned     = errors.New("queue entry does not belong to you")
	ErrInvalidQueueTransition = errors.New("queue entry is not in a state that allows this action")
)

type QueueUsecase interface {
	JoinQueue(ctx context.Context, req *dto.JoinQueueRequest) (*dto.QueueEntryResponse, error)
	GetQueue(ctx context.Context, scope entity.QueueScope) (*dto.QueueResponse, error)
	GetMyStatus(ctx context.Context) (*dto.QueueStatusResponse, error)
	CallNext(ctx context.Context, scope entity.QueueScope) (*dto.QueueEntryResponse, error)
	Complete(ctx context.Context, entryID uuid.UUID) (*dto.QueueEntryResponse, error)
	Remove(ctx context.Context, entryID uuid.UUID) error
}

// queueUsecase owns the waiting-line lifecycle. Every position-changing
// mutation runs inside the scope's lock and a transaction, so positions stay
// contiguous 1..N per scope no matter how many requests race. Status flips
// on a single entry serialize on a row lock instead.
type queueUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	queueRepo         repository.QueueRepository
	doctorProfileRepo repository.DoctorProfileRepository
	locker            service.Locker
	auditService      service.AuditService
	notifier          *service.Notifier
	minutesPerPatient int
}

func NewQueueUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	queueRepo repository.QueueRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	locker service.Locker,
	auditService service.AuditService,
	notifier *service.Notifier,
	minutesPerPatient int,
) QueueUsecase {
	return &queueUsecase{
		db:                db,
		log:               log,
		queueRepo:         queueRepo,
		doctorProfileRepo: doctorProfileRepo,
		locker:            locker,
		auditService:      auditService,
		notifier:          notifier,
		minutesPerPatient: minutesPerPatient,
	}
}

// JoinQueue admits the logged-in patient at the tail of the scope's queue.
// A patient can wait in at most one queue at a time, across all scopes.
func (u *queueUsecase) JoinQueue(ctx context.Context, req *dto.JoinQueueRequest) (*dto.QueueEntryResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	scope := entity.QueueScope{DoctorID: req.DoctorID, ClinicID: req.ClinicID}

	if scope.DoctorID != nil {
		doctor, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), *scope.DoctorID)
		if err != nil {
			u.log.Warnf("Failed to find doctor %s: %+v", scope.DoctorID, err)
			return nil, err
		}
		if doctor == nil {
			return nil, ErrDoctorNotFound
		}
	}

	var entry *entity.QueueEntry

	err := u.locker.WithLock(ctx, scope, func() error {
		tx := u.db.WithContext(ctx).Begin()
		defer tx.Rollback()

		existing, err := u.queueRepo.FindWaitingByPatient(tx, userID, true)
		if err != nil {
			u.log.Warnf("Failed to check existing queue entry: %+v", err)
			return err
		}
		if existing != nil {
			return ErrAlreadyQueued
		}

		maxPosition, err := u.queueRepo.MaxPosition(tx, scope)
		if err != nil {
			u.log.Warnf("Failed to get max position for scope %s: %+v", scope.Key(), err)
			return err
		}

		entry = &entity.QueueEntry{
			PatientID: userID,
			DoctorID:  scope.DoctorID,
			ClinicID:  scope.ClinicID,
			Position:  maxPosition + 1,
			Status:    entity.QueueStatusWaiting,
		}

		if err := u.queueRepo.Create(tx, entry); err != nil {
			u.log.Warnf("Failed to create queue entry: %+v", err)
			return err
		}

		u.auditService.Record(tx, &userID, entity.AuditActionQueueJoin, entity.JSON{
			"entry_id": entry.ID.String(),
			"scope":    scope.Key(),
			"position": entry.Position,
		})

		if err := tx.Commit().Error; err != nil {
			u.log.Warnf("Failed commit transaction: %+v", err)
			return err
		}

		u.broadcastQueue(ctx, scope)
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Patient %s joined queue %s at position %d", userID, scope.Key(), entry.Position)

	return converter.QueueEntryToResponse(entry), nil
}

// GetQueue returns the scope's waiting entries in position order
func (u *queueUsecase) GetQueue(ctx context.Context, scope entity.QueueScope) (*dto.QueueResponse, error) {
	entries, err := u.queueRepo.FindWaitingByScope(u.db.WithContext(ctx), scope, false)
	if err != nil {
		u.log.Warnf("Failed to find queue for scope %s: %+v", scope.Key(), err)
		return nil, err
	}

	return converter.QueueToResponse(scope, entries), nil
}

// GetMyStatus reports the logged-in patient's place in line and a wait
// estimate based on the patients ahead.
func (u *queueUsecase) GetMyStatus(ctx context.Context) (*dto.QueueStatusResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	entry, err := u.queueRepo.FindWaitingByPatient(u.db.WithContext(ctx), userID, false)
	if err != nil {
		u.log.Warnf("Failed to find queue entry for patient %s: %+v", userID, err)
		return nil, err
	}
	if entry == nil {
		return nil, ErrNotQueued
	}

	ahead, err := u.queueRepo.CountAhead(u.db.WithContext(ctx), entry.Scope(), entry.Position)
	if err != nil {
		u.log.Warnf("Failed to count patients ahead of %s: %+v", userID, err)
		return nil, err
	}

	return &dto.QueueStatusResponse{
		EntryID:              entry.ID,
		Position:             int(ahead) + 1,
		AheadCount:           int(ahead),
		EstimatedWaitMinutes: int(ahead) * u.minutesPerPatient,
		Status:               string(entry.Status),
	}, nil
}

// CallNext promotes the scope's front entry to in_progress and closes the
// gap it leaves, shifting every waiting entry behind it up by one.
func (u *queueUsecase) CallNext(ctx context.Context, scope entity.QueueScope) (*dto.QueueEntryResponse, error) {
	callerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	var called *entity.QueueEntry

	err := u.locker.WithLock(ctx, scope, func() error {
		tx := u.db.WithContext(ctx).Begin()
		defer tx.Rollback()

		first, err := u.queueRepo.FindFirstWaiting(tx, scope, true)
		if err != nil {
			u.log.Warnf("Failed to find first waiting entry for scope %s: %+v", scope.Key(), err)
			return err
		}
		if first == nil {
			return ErrQueueEmpty
		}

		now := time.Now()
		position := first.Position
		first.Status = entity.QueueStatusInProgress
		first.CalledAt = &now

		if err := u.queueRepo.Update(tx, first); err != nil {
			u.log.Warnf("Failed to update called entry %s: %+v", first.ID, err)
			return err
		}

		if err := u.queueRepo.DecrementPositionsAfter(tx, scope, position); err != nil {
			u.log.Warnf("Failed to renumber queue %s: %+v", scope.Key(), err)
			return err
		}

		u.auditService.Record(tx, &callerID, entity.AuditActionQueueCallNext, entity.JSON{
			"entry_id":   first.ID.String(),
			"patient_id": first.PatientID.String(),
			"scope":      scope.Key(),
		})

		if err := tx.Commit().Error; err != nil {
			u.log.Warnf("Failed commit transaction: %+v", err)
			return err
		}

		called = first
		u.broadcastQueue(ctx, scope)
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Called patient %s from queue %s", called.PatientID, scope.Key())

	response := converter.QueueEntryToResponse(called)
	u.notifier.PatientCalled(called.PatientID, response)

	return response, nil
}

// Complete marks an in-progress entry as done
func (u *queueUsecase) Complete(ctx context.Context, entryID uuid.UUID) (*dto.QueueEntryResponse, error) {
	callerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	entry, err := u.queueRepo.FindByID(tx, entryID, true)
	if err != nil {
		u.log.Warnf("Failed to find queue entry %s: %+v", entryID, err)
		return nil, err
	}
	if entry == nil {
		return nil, ErrQueueEntryNotFound
	}
	if entry.Status != entity.QueueStatusInProgress {
		return nil, ErrInvalidQueueTransition
	}

	now := time.Now()
	entry.Status = entity.QueueStatusCompleted
	entry.CompletedAt = &now

	if err := u.queueRepo.Update(tx, entry); err != nil {
		u.log.Warnf("Failed to complete queue entry %s: %+v", entryID, err)
		return nil, err
	}

	u.auditService.Record(tx, &callerID, entity.AuditActionQueueComplete, entity.JSON{
		"entry_id":   entry.ID.String(),
		"patient_id": entry.PatientID.String(),
	})

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.QueueEntryToResponse(entry), nil
}

// Remove cancels an entry. Patients can leave their own spot; staff can
// remove anyone. Removing a waiting entry renumbers the patients behind it.
func (u *queueUsecase) Remove(ctx context.Context, entryID uuid.UUID) error {
	callerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}
	roleID, _ := middleware.GetRoleIDFromContext(ctx)

	entry, err := u.queueRepo.FindByID(u.db.WithContext(ctx), entryID, false)
	if err != nil {
		u.log.Warnf("Failed to find queue entry %s: %+v", entryID, err)
		return err
	}
	if entry == nil {
		return ErrQueueEntryNotFound
	}

	isStaff := roleID == entity.RoleIDAdmin || roleID == entity.RoleIDDoctor || roleID == entity.RoleIDReceptionist
	if entry.PatientID != callerID && !isStaff {
		return ErrQueueEntryNotOwned
	}

	scope := entry.Scope()

	err = u.locker.WithLock(ctx, scope, func() error {
		tx := u.db.WithContext(ctx).Begin()
		defer tx.Rollback()

		// Re-read with a row lock; the entry may have been called, completed
		// or removed while we were waiting for the scope lock.
		current, err := u.queueRepo.FindByID(tx, entryID, true)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrQueueEntryNotFound
		}
		if current.IsTerminal() {
			return ErrInvalidQueueTransition
		}

		wasWaiting := current.IsWaiting()
		position := current.Position
		current.Status = entity.QueueStatusCancelled

		if err := u.queueRepo.Update(tx, current); err != nil {
			u.log.Warnf("Failed to cancel queue entry %s: %+v", entryID, err)
			return err
		}

		if wasWaiting {
			if err := u.queueRepo.DecrementPositionsAfter(tx, scope, position); err != nil {
				u.log.Warnf("Failed to renumber queue %s: %+v", scope.Key(), err)
				return err
			}
		}

		u.auditService.Record(tx, &callerID, entity.AuditActionQueueRemove, entity.JSON{
			"entry_id":   current.ID.String(),
			"patient_id": current.PatientID.String(),
			"scope":      scope.Key(),
		})

		if err := tx.Commit().Error; err != nil {
			u.log.Warnf("Failed commit transaction: %+v", err)
			return err
		}

		u.broadcastQueue(ctx, scope)
		return nil
	})
	if err != nil {
		return err
	}

	u.log.Infof("Removed queue entry %s from %s", entryID, scope.Key())

	return nil
}

// broadcastQueue pushes the scope's current queue to its room. It runs after
// commit while the scope lock is still held, so rooms observe snapshots in
// the order the mutations landed. Best-effort; REST responses already carry
// the authoritative state.
func (u *queueUsecase) broadcastQueue(ctx context.Context, scope entity.QueueScope) {
	entries, err := u.queueRepo.FindWaitingByScope(u.db.WithContext(ctx), scope, false)
	if err != nil {
		u.log.Warnf("Failed to load queue %s for broadcast: %+v", scope.Key(), err)
		return
	}

	u.notifier.QueueUpdated(scope, converter.QueueToResponse(scope, entries))
}
