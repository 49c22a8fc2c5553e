package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"telecare/internal/appointments/service"
	apperrors "telecare/pkg/errors"
	httputil "telecare/pkg/http"
	"telecare/pkg/logger"
	"telecare/pkg/model"
	"telecare/pkg/sealer"

	"github.com/julienschmidt/httprouter"
)

// dayLayout is the wire format for the day query parameter. The booking
// body's day field is RFC 3339, decoded by encoding/json.
const dayLayout = "2006-01-02"

type AppointmentHandler struct {
	service service.AppointmentService
	log     *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		log:     log,
	}
}

func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var appt model.Appointment
	if err := json.NewDecoder(r.Body).Decode(&appt); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Book", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Book(r.Context(), &appt); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Book", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	reference, err := sealer.CreateConfirmationToken(appt.ID, appt.PatientID)
	if err != nil {
		// The booking already committed; the reference is a convenience.
		h.log.Error("failed to mint confirmation reference", "appointment_id", appt.ID, "error", err)
	}

	if err := httputil.WriteCreated(w, bookingResponse{
		Appointment:           appt,
		ConfirmationReference: reference,
	}); err != nil {
		h.log.Error("failed to write created response", "handler", "Book", "operation", "WriteCreated", "error", err)
	}
}

type bookingResponse struct {
	model.Appointment
	ConfirmationReference string `json:"confirmation_reference,omitempty"`
}

// GetByReference resolves an opaque confirmation reference to its
// appointment.
func (h *AppointmentHandler) GetByReference(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appointmentID, patientID, err := sealer.ParseConfirmationToken(ps.ByName("token"))
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid confirmation reference")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByReference", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	appt, err := h.service.GetByID(r.Context(), appointmentID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByReference", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	// A reference minted for another patient must not resolve.
	if appt.PatientID != patientID {
		if writeErr := httputil.WriteError(w, apperrors.NotFound("Appointment")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByReference", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, appt); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByReference", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	appt, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, appt); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var update model.StatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpdateStatus", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.UpdateStatus(r.Context(), id, update.Status); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateStatus", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

// BookedSlots serves the provider portal's schedule view: which labels are
// taken for a provider on a given day.
func (h *AppointmentHandler) BookedSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	providerID, day, ok := h.slotQueryParams(w, r, "BookedSlots")
	if !ok {
		return
	}

	labels, err := h.service.BookedSlots(r.Context(), providerID, day)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "BookedSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, labels); err != nil {
		h.log.Error("failed to write success response", "handler", "BookedSlots", "operation", "WriteSuccess", "error", err)
	}
}

// Availability serves the patient portal's slot picker: the period grid minus
// booked labels.
func (h *AppointmentHandler) Availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	providerID, day, ok := h.slotQueryParams(w, r, "Availability")
	if !ok {
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "'period' query parameter is required (morning, evening or night)",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Availability", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	labels, err := h.service.AvailableSlots(r.Context(), providerID, day, period)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Availability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, labels); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) ListByProvider(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.list(w, r, "ListByProvider", func(r *http.Request, limit int, offset int64) ([]*model.Appointment, int64, error) {
		return h.service.ListByProvider(r.Context(), ps.ByName("providerId"), limit, offset)
	})
}

func (h *AppointmentHandler) ListByPatient(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.list(w, r, "ListByPatient", func(r *http.Request, limit int, offset int64) ([]*model.Appointment, int64, error) {
		return h.service.ListByPatient(r.Context(), ps.ByName("patientId"), limit, offset)
	})
}

func (h *AppointmentHandler) list(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	fetch func(r *http.Request, limit int, offset int64) ([]*model.Appointment, int64, error),
) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	appts, total, err := fetch(r, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, appts, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", name, "operation", "WritePaginated", "error", err)
	}
}

// slotQueryParams parses the provider_id and day query parameters shared by
// the two slot lookup endpoints.
func (h *AppointmentHandler) slotQueryParams(w http.ResponseWriter, r *http.Request, name string) (string, time.Time, bool) {
	query := r.URL.Query()

	providerID := query.Get("provider_id")
	if providerID == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "'provider_id' query parameter is required",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", name, "operation", "WriteJSON", "error", writeErr)
		}
		return "", time.Time{}, false
	}

	dayStr := query.Get("day")
	if dayStr == "" {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "'day' query parameter is required",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", name, "operation", "WriteJSON", "error", writeErr)
		}
		return "", time.Time{}, false
	}

	day, err := time.ParseInLocation(dayLayout, dayStr, time.UTC)
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput(fmt.Sprintf("invalid day %q, must be YYYY-MM-DD", dayStr))); writeErr != nil {
			h.log.Error("failed to write error response", "handler", name, "operation", "WriteError", "error", writeErr)
		}
		return "", time.Time{}, false
	}

	return providerID, day, true
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/appointments", h.Book)
	router.GET("/api/v1/appointments/id/:id", h.GetByID)
	router.GET("/api/v1/appointments/reference/:token", h.GetByReference)
	router.PATCH("/api/v1/appointments/id/:id/status", h.UpdateStatus)
	router.GET("/api/v1/appointments/booked-slots", h.BookedSlots)
	router.GET("/api/v1/appointments/availability", h.Availability)
	router.GET("/api/v1/appointments/provider/:providerId", h.ListByProvider)
	router.GET("/api/v1/appointments/patient/:patientId", h.ListByPatient)
}
