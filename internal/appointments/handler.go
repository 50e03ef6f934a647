package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clinicware/booking-platform/internal/scheduling"
	"github.com/clinicware/booking-platform/pkg/logging"
)

// Handler handles HTTP requests for appointments
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new appointments handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// AvailabilityResponse is the body of GET /availability.
type AvailabilityResponse struct {
	Slots []scheduling.TimeOfDay `json:"slots"`
}

// GetAvailability handles GET /availability?doctorId=&date=YYYY-MM-DD.
// Availability is advisory, so any problem collapses to an empty slot list.
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	doctorID := r.URL.Query().Get("doctorId")
	dateStr := r.URL.Query().Get("date")

	resp := AvailabilityResponse{Slots: []scheduling.TimeOfDay{}}
	if doctorID != "" && dateStr != "" {
		if date, err := time.ParseInLocation(dateLayout, dateStr, time.UTC); err == nil {
			if slots := h.service.Availability(r.Context(), doctorID, date); slots != nil {
				resp.Slots = slots
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateAppointment handles POST /appointments.
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	confirmation, err := h.service.Book(r.Context(), &req)
	if err != nil {
		h.renderBookingError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, confirmation)
}

// CancelAppointment handles POST /appointments/{id}/cancel.
func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PatientID == "" {
		writeError(w, http.StatusBadRequest, "patientId is required")
		return
	}

	if err := h.service.Cancel(r.Context(), id, req.PatientID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "appointment not found")
		case errors.Is(err, ErrForbidden):
			writeError(w, http.StatusForbidden, "not allowed to cancel this appointment")
		case errors.Is(err, ErrAlreadyPast):
			writeError(w, http.StatusBadRequest, "cannot cancel a past appointment")
		default:
			h.logger.Error("cancel failed", "appointment_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to cancel appointment")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "appointment cancelled"})
}

// ListAppointmentsResponse is the body of GET /appointments.
type ListAppointmentsResponse struct {
	Appointments []Appointment `json:"appointments"`
	Count        int           `json:"count"`
}

// ListAppointments handles GET /appointments?patientId=.
func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	patientID := r.URL.Query().Get("patientId")
	if patientID == "" {
		writeError(w, http.StatusBadRequest, "patientId is required")
		return
	}

	appts, err := h.service.ListForPatient(r.Context(), patientID)
	if err != nil {
		h.logger.Error("list appointments failed", "patient_id", patientID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}
	if appts == nil {
		appts = []Appointment{}
	}

	writeJSON(w, http.StatusOK, ListAppointmentsResponse{
		Appointments: appts,
		Count:        len(appts),
	})
}

// ListDoctorsResponse is the body of GET /doctors.
type ListDoctorsResponse struct {
	Doctors []DoctorAvailability `json:"doctors"`
}

// ListDoctors handles GET /doctors?specialty=&date=YYYY-MM-DD.
func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	specialty := r.URL.Query().Get("specialty")

	var date *time.Time
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		if parsed, err := time.ParseInLocation(dateLayout, dateStr, time.UTC); err == nil {
			date = &parsed
		}
	}

	doctors := h.service.FindDoctors(r.Context(), specialty, date)
	if doctors == nil {
		doctors = []DoctorAvailability{}
	}

	writeJSON(w, http.StatusOK, ListDoctorsResponse{Doctors: doctors})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) renderBookingError(w http.ResponseWriter, err error) {
	var conflict *SlotConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      "slot is already taken",
			"doctorId":   conflict.DoctorID,
			"doctorName": conflict.DoctorName,
			"date":       conflict.Date,
			"time":       conflict.Time,
			"patientId":  conflict.PatientID,
		})
	case errors.Is(err, ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor not found")
	case errors.Is(err, ErrDoctorInactive):
		writeError(w, http.StatusBadRequest, "doctor is not accepting appointments")
	case errors.Is(err, ErrPastSlot):
		writeError(w, http.StatusBadRequest, "cannot book an appointment in the past")
	case errors.Is(err, ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("booking failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to book appointment")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
