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
	"github.com/harsh11x/pulsecal.web-sub000/pkg/schedule"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound         = errors.New("appointment not found")
	ErrAppointmentNotOwned         = errors.New("appointment does not belong to you")
	ErrAppointmentPast             = errors.New("cannot book a time in the past")
	ErrAppointmentOutsideHours     = errors.New("requested time is outside the doctor's working hours")
	ErrSlotTaken                   = errors.New("the requested slot is no longer available")
	ErrAppointmentAlreadyCancelled = errors.New("appointment is already cancelled")
)

type AppointmentUsecase interface {
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetMyAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
	CancelAppointment(ctx context.Context, appointmentID uuid.UUID) error
}

type appointmentUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	appointmentRepo   repository.AppointmentRepository
	doctorProfileRepo repository.DoctorProfileRepository
	auditService      service.AuditService
	notifier          *service.Notifier
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
	notifier *service.Notifier,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:                db,
		log:               log,
		appointmentRepo:   appointmentRepo,
		doctorProfileRepo: doctorProfileRepo,
		auditService:      auditService,
		notifier:          notifier,
	}
}

// CreateAppointment books a visit inside the doctor's working hours. The
// requested window must not overlap an existing active appointment.
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	if req.ScheduledAt.Before(time.Now()) {
		return nil, ErrAppointmentPast
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = int(schedule.DefaultSlotDuration.Minutes())
	}

	profile, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	openStart, openEnd, open := schedule.OpenInterval(schedule.WeeklySchedule(profile.WorkingHours), req.ScheduledAt)
	requestedEnd := req.ScheduledAt.Add(time.Duration(duration) * time.Minute)
	if !open || req.ScheduledAt.Before(openStart) || requestedEnd.After(openEnd) {
		return nil, ErrAppointmentOutsideHours
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	dayStart := time.Date(req.ScheduledAt.Year(), req.ScheduledAt.Month(), req.ScheduledAt.Day(), 0, 0, 0, 0, req.ScheduledAt.Location())
	existing, err := u.appointmentRepo.FindActiveByDoctorAndDay(tx, req.DoctorID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}

	for i := range existing {
		if req.ScheduledAt.Before(existing[i].EndsAt()) && requestedEnd.After(existing[i].ScheduledAt) {
			return nil, ErrSlotTaken
		}
	}

	appointment := &entity.Appointment{
		PatientID:       userID,
		DoctorID:        req.DoctorID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: duration,
		Reason:          req.Reason,
		Status:          entity.AppointmentStatusScheduled,
	}

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	u.auditService.Record(tx, &userID, entity.AuditActionAppointmentCreate, entity.JSON{
		"appointment_id": appointment.ID.String(),
		"doctor_id":      req.DoctorID.String(),
		"scheduled_at":   req.ScheduledAt.Format(time.RFC3339),
	})

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Appointment created: id=%s, doctor=%s, at=%s", appointment.ID, req.DoctorID, req.ScheduledAt.Format(time.RFC3339))

	response := converter.AppointmentToResponse(appointment)
	u.notifier.Notify(req.DoctorID, response)

	return response, nil
}

// GetMyAppointments returns the logged-in patient's appointments, most
// recent first.
func (u *appointmentUsecase) GetMyAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	appointments, err := u.appointmentRepo.FindByPatient(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for patient %s: %+v", userID, err)
		return nil, err
	}

	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *converter.AppointmentToResponse(&appointments[i])
	}

	return &dto.AppointmentListResponse{
		Appointments: responses,
		Total:        len(responses),
	}, nil
}

// CancelAppointment cancels a scheduled visit. Both parties may cancel.
func (u *appointmentUsecase) CancelAppointment(ctx context.Context, appointmentID uuid.UUID) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}
	if appointment.PatientID != userID && appointment.DoctorID != userID {
		return ErrAppointmentNotOwned
	}
	if appointment.Status == entity.AppointmentStatusCancelled {
		return ErrAppointmentAlreadyCancelled
	}

	if err := u.appointmentRepo.UpdateStatus(tx, appointmentID, entity.AppointmentStatusCancelled); err != nil {
		u.log.Warnf("Failed to cancel appointment %s: %+v", appointmentID, err)
		return err
	}

	u.auditService.Record(tx, &userID, entity.AuditActionAppointmentCancel, entity.JSON{
		"appointment_id": appointmentID.String(),
	})

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	// Tell the other party.
	other := appointment.PatientID
	if userID == appointment.PatientID {
		other = appointment.DoctorID
	}
	u.notifier.Notify(other, map[string]interface{}{
		"type":           "appointment-cancelled",
		"appointment_id": appointmentID.String(),
	})

	return nil
}
