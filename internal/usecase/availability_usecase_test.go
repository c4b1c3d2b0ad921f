package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/dto"
	"github.com/harsh11x/pulsecal.web-sub000/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeDoctorProfileRepo struct {
	profiles map[uuid.UUID]*entity.DoctorProfile
	results  []entity.DoctorProfile
}

func (f *fakeDoctorProfileRepo) Create(db *gorm.DB, profile *entity.DoctorProfile) error {
	return nil
}

func (f *fakeDoctorProfileRepo) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	return f.profiles[userID], nil
}

func (f *fakeDoctorProfileRepo) Search(db *gorm.DB, filter *entity.DoctorFilter) ([]entity.DoctorProfile, error) {
	if filter.RequireCoords {
		located := make([]entity.DoctorProfile, 0, len(f.results))
		for _, p := range f.results {
			if p.HasLocation() {
				located = append(located, p)
			}
		}
		return located, nil
	}
	return f.results, nil
}

func (f *fakeDoctorProfileRepo) Update(db *gorm.DB, profile *entity.DoctorProfile) error {
	return nil
}

type fakeAppointmentRepo struct {
	appointments []entity.Appointment
}

func (f *fakeAppointmentRepo) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return nil
}

func (f *fakeAppointmentRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) FindActiveByDoctorAndDay(db *gorm.DB, doctorID uuid.UUID, dayStart, dayEnd time.Time) ([]entity.Appointment, error) {
	return f.appointments, nil
}

func (f *fakeAppointmentRepo) FindByPatient(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) error {
	return nil
}

func newAvailabilityUsecaseForTest(t *testing.T, doctors *fakeDoctorProfileRepo, appointments *fakeAppointmentRepo) AvailabilityUsecase {
	t.Helper()

	db, err := gorm.Open(nil, &gorm.Config{})
	require.NoError(t, err)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	return NewAvailabilityUsecase(db, log, doctors, appointments)
}

func weekdayName(t time.Time) string {
	return map[time.Weekday]string{
		time.Sunday:    "sunday",
		time.Monday:    "monday",
		time.Tuesday:   "tuesday",
		time.Wednesday: "wednesday",
		time.Thursday:  "thursday",
		time.Friday:    "friday",
		time.Saturday:  "saturday",
	}[t.Weekday()]
}

func TestGetAvailabilityOpenDay(t *testing.T) {
	doctorID := uuid.New()
	// A future date keeps every slot ahead of time.Now().
	day := time.Now().AddDate(0, 0, 7)
	date := day.Format("2006-01-02")

	doctors := &fakeDoctorProfileRepo{
		profiles: map[uuid.UUID]*entity.DoctorProfile{
			doctorID: {
				UserID: doctorID,
				WorkingHours: entity.WorkingHours{
					weekdayName(day): {IsOpen: true, Start: "09:00", End: "11:00"},
				},
			},
		},
	}

	u := newAvailabilityUsecaseForTest(t, doctors, &fakeAppointmentRepo{})

	response, err := u.GetAvailability(context.Background(), doctorID, date)
	require.NoError(t, err)
	assert.True(t, response.IsOpen)
	assert.Equal(t, 30, response.SlotDurationMinutes)
	// 09:00-11:00 at 30-minute granularity
	assert.Len(t, response.Slots, 4)
}

func TestGetAvailabilityBookedSlotsAreExcluded(t *testing.T) {
	doctorID := uuid.New()
	day := time.Now().AddDate(0, 0, 7)
	date := day.Format("2006-01-02")

	booked := time.Date(day.Year(), day.Month(), day.Day(), 9, 30, 0, 0, time.Local)
	doctors := &fakeDoctorProfileRepo{
		profiles: map[uuid.UUID]*entity.DoctorProfile{
			doctorID: {
				UserID: doctorID,
				WorkingHours: entity.WorkingHours{
					weekdayName(day): {IsOpen: true, Start: "09:00", End: "11:00"},
				},
			},
		},
	}
	appointments := &fakeAppointmentRepo{
		appointments: []entity.Appointment{
			{DoctorID: doctorID, ScheduledAt: booked, DurationMinutes: 30, Status: entity.AppointmentStatusScheduled},
		},
	}

	u := newAvailabilityUsecaseForTest(t, doctors, appointments)

	response, err := u.GetAvailability(context.Background(), doctorID, date)
	require.NoError(t, err)
	assert.Len(t, response.Slots, 3)
	assert.NotContains(t, response.Slots, booked.Format(time.RFC3339))
}

func TestGetAvailabilityClosedDay(t *testing.T) {
	doctorID := uuid.New()
	day := time.Now().AddDate(0, 0, 7)

	doctors := &fakeDoctorProfileRepo{
		profiles: map[uuid.UUID]*entity.DoctorProfile{
			doctorID: {UserID: doctorID, WorkingHours: entity.WorkingHours{}},
		},
	}

	u := newAvailabilityUsecaseForTest(t, doctors, &fakeAppointmentRepo{})

	response, err := u.GetAvailability(context.Background(), doctorID, day.Format("2006-01-02"))
	require.NoError(t, err)
	assert.False(t, response.IsOpen)
	assert.Empty(t, response.Slots)
}

func TestGetAvailabilityBadInput(t *testing.T) {
	doctors := &fakeDoctorProfileRepo{profiles: map[uuid.UUID]*entity.DoctorProfile{}}
	u := newAvailabilityUsecaseForTest(t, doctors, &fakeAppointmentRepo{})

	_, err := u.GetAvailability(context.Background(), uuid.New(), "02-03-2026")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = u.GetAvailability(context.Background(), uuid.New(), time.Now().Format("2006-01-02"))
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestSearchDoctorsByProximity(t *testing.T) {
	// Monas as the origin; one clinic ~1km away, one far outside the radius.
	nearLat, nearLon := -6.18, 106.83
	farLat, farLon := -6.9, 107.6
	fee := decimal.NewFromInt(100000)

	doctors := &fakeDoctorProfileRepo{
		results: []entity.DoctorProfile{
			{UserID: uuid.New(), ClinicName: "Near Clinic", ClinicLatitude: &nearLat, ClinicLongitude: &nearLon, ConsultationFee: fee},
			{UserID: uuid.New(), ClinicName: "Far Clinic", ClinicLatitude: &farLat, ClinicLongitude: &farLon, ConsultationFee: fee},
		},
	}

	u := newAvailabilityUsecaseForTest(t, doctors, &fakeAppointmentRepo{})

	lat, lon, radius := -6.175, 106.827, 25.0
	response, err := u.SearchDoctors(context.Background(), &dto.SearchDoctorsRequest{
		Latitude:  &lat,
		Longitude: &lon,
		RadiusKm:  &radius,
	})
	require.NoError(t, err)
	require.Equal(t, 1, response.Total)
	assert.Equal(t, "Near Clinic", response.Doctors[0].ClinicName)
	require.NotNil(t, response.Doctors[0].DistanceKm)
	assert.Less(t, *response.Doctors[0].DistanceKm, 25.0)
}

func TestSearchDoctorsWithoutOriginSkipsDistance(t *testing.T) {
	fee := decimal.NewFromInt(100000)
	doctors := &fakeDoctorProfileRepo{
		results: []entity.DoctorProfile{
			{UserID: uuid.New(), Specialization: "cardiology", ConsultationFee: fee},
		},
	}

	u := newAvailabilityUsecaseForTest(t, doctors, &fakeAppointmentRepo{})

	response, err := u.SearchDoctors(context.Background(), &dto.SearchDoctorsRequest{Specialization: "cardiology"})
	require.NoError(t, err)
	require.Equal(t, 1, response.Total)
	assert.Nil(t, response.Doctors[0].DistanceKm)
}

func TestSearchDoctorsNameFilterAndPaging(t *testing.T) {
	fee := decimal.NewFromInt(100000)
	doctors := &fakeDoctorProfileRepo{
		results: []entity.DoctorProfile{
			{UserID: uuid.New(), ConsultationFee: fee, User: entity.User{FullName: "Dr. Andi Wijaya"}},
			{UserID: uuid.New(), ConsultationFee: fee, User: entity.User{FullName: "Dr. Budi Santoso"}},
			{UserID: uuid.New(), ConsultationFee: fee, User: entity.User{FullName: "Dr. Andini Putri"}},
		},
	}

	u := newAvailabilityUsecaseForTest(t, doctors, &fakeAppointmentRepo{})

	response, err := u.SearchDoctors(context.Background(), &dto.SearchDoctorsRequest{Name: "andi"})
	require.NoError(t, err)
	assert.Equal(t, 2, response.Total)

	response, err = u.SearchDoctors(context.Background(), &dto.SearchDoctorsRequest{Name: "andi", Page: 2, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, response.Total)
	require.Len(t, response.Doctors, 1)
	assert.Equal(t, "Dr. Andini Putri", response.Doctors[0].FullName)
	assert.Equal(t, 2, response.Page)

	// Past the last page
	response, err = u.SearchDoctors(context.Background(), &dto.SearchDoctorsRequest{Name: "andi", Page: 5, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, response.Doctors)
}

func TestSearchDoctorsInvalidArguments(t *testing.T) {
	u := newAvailabilityUsecaseForTest(t, &fakeDoctorProfileRepo{}, &fakeAppointmentRepo{})

	lat := -6.175
	_, err := u.SearchDoctors(context.Background(), &dto.SearchDoctorsRequest{Latitude: &lat})
	assert.ErrorIs(t, err, ErrMissingOrigin)

	lon := 106.827
	zero := 0.0
	_, err = u.SearchDoctors(context.Background(), &dto.SearchDoctorsRequest{Latitude: &lat, Longitude: &lon, RadiusKm: &zero})
	assert.ErrorIs(t, err, ErrInvalidRadius)
}
