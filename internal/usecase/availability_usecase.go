package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/harsh11x/pulsecal.web-sub000/internal/converter"
	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/dto"
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/repository"
	"github.com/harsh11x/pulsecal.web-sub000/pkg/geo"
	"github.com/harsh11x/pulsecal.web-sub000/pkg/schedule"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidDate   = errors.New("invalid date format, use YYYY-MM-DD")
	ErrInvalidRadius = errors.New("radius must be positive")
	ErrMissingOrigin = errors.New("latitude and longitude are both required for proximity search")
)

// DefaultSearchRadiusKm bounds proximity search when the caller gives
// coordinates but no radius.
const DefaultSearchRadiusKm = 10.0

const defaultSearchPageSize = 20

type AvailabilityUsecase interface {
	GetAvailability(ctx context.Context, doctorID uuid.UUID, date string) (*dto.AvailabilityResponse, error)
	SearchDoctors(ctx context.Context, req *dto.SearchDoctorsRequest) (*dto.DoctorSearchResponse, error)
}

// availabilityUsecase derives bookable slots from working hours minus booked
// appointments, and finds doctors by attributes and clinic proximity.
type availabilityUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	doctorProfileRepo repository.DoctorProfileRepository
	appointmentRepo   repository.AppointmentRepository
}

func NewAvailabilityUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorProfileRepo repository.DoctorProfileRepository,
	appointmentRepo repository.AppointmentRepository,
) AvailabilityUsecase {
	return &availabilityUsecase{
		db:                db,
		log:               log,
		doctorProfileRepo: doctorProfileRepo,
		appointmentRepo:   appointmentRepo,
	}
}

// GetAvailability returns the doctor's free slots for the given date.
// Slots that already started and slots overlapping an active appointment
// are excluded.
func (u *availabilityUsecase) GetAvailability(ctx context.Context, doctorID uuid.UUID, date string) (*dto.AvailabilityResponse, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return nil, ErrInvalidDate
	}

	profile, err := u.doctorProfileRepo.FindByUserID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrDoctorNotFound
	}

	response := &dto.AvailabilityResponse{
		DoctorID:            doctorID,
		Date:                date,
		SlotDurationMinutes: int(schedule.DefaultSlotDuration.Minutes()),
		Slots:               []string{},
	}

	start, end, open := schedule.OpenInterval(schedule.WeeklySchedule(profile.WorkingHours), day)
	if !open {
		return response, nil
	}
	response.IsOpen = true

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	appointments, err := u.appointmentRepo.FindActiveByDoctorAndDay(u.db.WithContext(ctx), doctorID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %s on %s: %+v", doctorID, date, err)
		return nil, err
	}

	booked := make([]schedule.Window, 0, len(appointments))
	for _, appointment := range appointments {
		booked = append(booked, schedule.Window{
			Start:    appointment.ScheduledAt,
			Duration: time.Duration(appointment.DurationMinutes) * time.Minute,
		})
	}

	for _, slot := range schedule.FreeSlots(start, end, schedule.DefaultSlotDuration, booked, time.Now()) {
		response.Slots = append(response.Slots, slot.Format(time.RFC3339))
	}

	return response, nil
}

// SearchDoctors filters doctors by attributes at the data source, then by
// clinic distance from the caller's coordinates when given. Results with a
// distance are ordered nearest first.
func (u *availabilityUsecase) SearchDoctors(ctx context.Context, req *dto.SearchDoctorsRequest) (*dto.DoctorSearchResponse, error) {
	hasOrigin := req.Latitude != nil && req.Longitude != nil
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, ErrMissingOrigin
	}
	if req.RadiusKm != nil && *req.RadiusKm <= 0 {
		return nil, ErrInvalidRadius
	}

	filter := &entity.DoctorFilter{
		Specialization: req.Specialization,
		ClinicName:     req.ClinicName,
		MinFee:         req.MinFee,
		MaxFee:         req.MaxFee,
		RequireCoords:  hasOrigin,
	}

	profiles, err := u.doctorProfileRepo.Search(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to search doctors: %+v", err)
		return nil, err
	}

	var doctors []dto.DoctorProfileResponse
	if hasOrigin {
		radius := DefaultSearchRadiusKm
		if req.RadiusKm != nil {
			radius = *req.RadiusKm
		}

		origin := geo.Coord{Lat: *req.Latitude, Lon: *req.Longitude}
		coords := make([]*geo.Coord, len(profiles))
		for i := range profiles {
			if profiles[i].HasLocation() {
				coords[i] = &geo.Coord{Lat: *profiles[i].ClinicLatitude, Lon: *profiles[i].ClinicLongitude}
			}
		}

		matches := geo.FilterByRadius(origin, coords, radius)
		doctors = make([]dto.DoctorProfileResponse, 0, len(matches))
		for _, match := range matches {
			distance := geo.Round1(match.DistanceKm)
			doctors = append(doctors, converter.DoctorProfileToSearchResult(&profiles[match.Index], &distance))
		}
	} else {
		doctors = make([]dto.DoctorProfileResponse, len(profiles))
		for i := range profiles {
			doctors[i] = converter.DoctorProfileToSearchResult(&profiles[i], nil)
		}
	}

	if req.Name != "" {
		needle := strings.ToLower(req.Name)
		filtered := doctors[:0]
		for _, doctor := range doctors {
			if strings.Contains(strings.ToLower(doctor.FullName), needle) {
				filtered = append(filtered, doctor)
			}
		}
		doctors = filtered
	}

	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultSearchPageSize
	}

	total := len(doctors)
	offset := (page - 1) * limit
	if offset > total {
		offset = total
	}
	pageEnd := offset + limit
	if pageEnd > total {
		pageEnd = total
	}

	return &dto.DoctorSearchResponse{
		Doctors: doctors[offset:pageEnd],
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}
