package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/harsh11x/pulsecal.web-sub000/internal/delivery/dto"
	"github.com/harsh11x/pulsecal.web-sub000/internal/usecase"
	"github.com/harsh11x/pulsecal.web-sub000/pkg/response"
	"github.com/harsh11x/pulsecal.web-sub000/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type DoctorHandler struct {
	doctorUsecase       usecase.DoctorUsecase
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
}

func NewDoctorHandler(
	doctorUsecase usecase.DoctorUsecase,
	availabilityUsecase usecase.AvailabilityUsecase,
	validator *validator.CustomValidator,
) *DoctorHandler {
	return &DoctorHandler{
		doctorUsecase:       doctorUsecase,
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
	}
}

// SearchDoctors finds doctors by attributes and optional clinic proximity
func (h *DoctorHandler) SearchDoctors(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := dto.SearchDoctorsRequest{
		Name:           query.Get("name"),
		Specialization: query.Get("specialization"),
		ClinicName:     query.Get("clinic_name"),
	}
	req.Page, _ = strconv.Atoi(query.Get("page"))
	req.Limit, _ = strconv.Atoi(query.Get("limit"))

	for param, target := range map[string]**float64{
		"min_fee":   &req.MinFee,
		"max_fee":   &req.MaxFee,
		"latitude":  &req.Latitude,
		"longitude": &req.Longitude,
		"radius_km": &req.RadiusKm,
	} {
		raw := query.Get(param)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid "+param, nil)
			return
		}
		*target = &value
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.availabilityUsecase.SearchDoctors(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrMissingOrigin:
			response.Error(w, http.StatusBadRequest, "Latitude and longitude are both required", nil)
		case usecase.ErrInvalidRadius:
			response.Error(w, http.StatusBadRequest, "Radius must be positive", nil)
		default:
			response.InternalServerError(w, "Failed to search doctors")
		}
		return
	}

	totalPages := 0
	if result.Limit > 0 {
		totalPages = (result.Total + result.Limit - 1) / result.Limit
	}
	response.SuccessWithMeta(w, http.StatusOK, "Doctors retrieved successfully", result, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		Total:      int64(result.Total),
		TotalPages: totalPages,
	})
}

// GetDoctor returns one doctor's public profile
func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	doctor, err := h.doctorUsecase.GetDoctor(r.Context(), doctorID)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		default:
			response.InternalServerError(w, "Failed to get doctor")
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctor retrieved successfully", doctor)
}

// GetAvailability returns a doctor's free slots for a date
func (h *DoctorHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		response.Error(w, http.StatusBadRequest, "date query parameter is required", nil)
		return
	}

	availability, err := h.availabilityUsecase.GetAvailability(r.Context(), doctorID, date)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		case usecase.ErrInvalidDate:
			response.Error(w, http.StatusBadRequest, "Invalid date format, use YYYY-MM-DD", nil)
		default:
			response.InternalServerError(w, "Failed to get availability")
		}
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", availability)
}

// UpdateProfile updates the logged-in doctor's profile
func (h *DoctorHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateDoctorProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	profile, err := h.doctorUsecase.UpdateProfile(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		default:
			response.InternalServerError(w, "Failed to update profile")
		}
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", profile)
}

// UpdateWorkingHours replaces the logged-in doctor's weekly schedule
func (h *DoctorHandler) UpdateWorkingHours(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateWorkingHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	profile, err := h.doctorUsecase.UpdateWorkingHours(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		case usecase.ErrInvalidWorkingHours:
			response.Error(w, http.StatusBadRequest, "Invalid working hours, use HH:MM with start before end", nil)
		default:
			response.InternalServerError(w, "Failed to update working hours")
		}
		return
	}

	response.Success(w, http.StatusOK, "Working hours updated successfully", profile)
}
