package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/harsh11x/pulsecal.web-sub000/internal/converter"
	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/dto"
	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/http/middleware"
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/repository"
	"github.com/harsh11x/pulsecal.web-sub000/internal/service"
	"github.com/harsh11x/pulsecal.web-sub000/pkg/schedule"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrInvalidWorkingHours = errors.New("invalid working hours, use HH:MM with start before end")
)

type DoctorUsecase interface {
	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorProfileResponse, error)
	UpdateProfile(ctx context.Context, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorProfileResponse, error)
	UpdateWorkingHours(ctx context.Context, req *dto.UpdateWorkingHoursRequest) (*dto.DoctorProfileResponse, error)
}

type doctorUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	doctorProfileRepo repository.DoctorProfileRepository
	auditService      service.AuditService
}

func NewDoctorUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorProfileRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
) DoctorUsecase {
	return &doctorUsecase{
		db:                db,
		log:               log,
		doctorProfileRepo: doctorProfileRepo,
		auditService:      auditService,
	}
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorProfileResponse, error) {
	profile, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	return converter.DoctorProfileToResponse(profile), nil
}

// UpdateProfile updates the logged-in doctor's own profile fields
func (u *doctorUsecase) UpdateProfile(ctx context.Context, req *dto.UpdateDoctorProfileRequest) (*dto.DoctorProfileResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.doctorProfileRepo.FindByUserID(tx, userID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", userID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	if req.Specialization != "" {
		profile.Specialization = req.Specialization
	}
	if req.Biography != "" {
		profile.Biography = req.Biography
	}
	if req.ClinicName != "" {
		profile.ClinicName = req.ClinicName
	}
	if req.ClinicAddress != "" {
		profile.ClinicAddress = req.ClinicAddress
	}
	if req.ClinicLatitude != nil {
		profile.ClinicLatitude = req.ClinicLatitude
	}
	if req.ClinicLongitude != nil {
		profile.ClinicLongitude = req.ClinicLongitude
	}
	if req.ConsultationFee != nil {
		profile.ConsultationFee = decimal.NewFromFloat(*req.ConsultationFee)
	}

	if err := u.doctorProfileRepo.Update(tx, profile); err != nil {
		u.log.Warnf("Failed to update doctor profile %s: %+v", userID, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorProfileToResponse(profile), nil
}

// UpdateWorkingHours replaces the doctor's weekly schedule. Each open day
// must carry a valid HH:MM window with start strictly before end.
func (u *doctorUsecase) UpdateWorkingHours(ctx context.Context, req *dto.UpdateWorkingHoursRequest) (*dto.DoctorProfileResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	hours, err := workingHoursFromRequest(req.WorkingHours)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	profile, err := u.doctorProfileRepo.FindByUserID(tx, userID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", userID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	profile.WorkingHours = hours

	if err := u.doctorProfileRepo.Update(tx, profile); err != nil {
		u.log.Warnf("Failed to update working hours for %s: %+v", userID, err)
		return nil, err
	}

	u.auditService.Record(tx, &userID, entity.AuditActionWorkingHoursUpdate, entity.JSON{
		"doctor_id": userID.String(),
	})

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DoctorProfileToResponse(profile), nil
}

func workingHoursFromRequest(days map[string]dto.DayScheduleRequest) (entity.WorkingHours, error) {
	hours := make(entity.WorkingHours, len(days))
	for day, req := range days {
		if !schedule.IsWeekday(day) {
			return nil, ErrInvalidWorkingHours
		}
		if req.IsOpen && !schedule.IsValidWindow(req.Start, req.End) {
			return nil, ErrInvalidWorkingHours
		}
		hours[strings.ToLower(day)] = schedule.DaySchedule{
			IsOpen: req.IsOpen,
			Start:  req.Start,
			End:    req.End,
		}
	}
	return hours, nil
}
