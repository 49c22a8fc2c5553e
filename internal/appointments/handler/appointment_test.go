package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "telecare/pkg/errors"
	"telecare/pkg/logger"
	"telecare/pkg/model"
	"telecare/pkg/sealer"

	"github.com/julienschmidt/httprouter"
)

// Mock service for testing
type mockAppointmentService struct {
	bookFunc           func(ctx context.Context, appt *model.Appointment) error
	getByIDFunc        func(ctx context.Context, id string) (*model.Appointment, error)
	bookedSlotsFunc    func(ctx context.Context, providerID string, day time.Time) ([]string, error)
	availableSlotsFunc func(ctx context.Context, providerID string, day time.Time, period string) ([]string, error)
	updateStatusFunc   func(ctx context.Context, id string, status string) error
}

func (m *mockAppointmentService) Book(ctx context.Context, appt *model.Appointment) error {
	if m.bookFunc != nil {
		return m.bookFunc(ctx, appt)
	}
	return nil
}

func (m *mockAppointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, apperrors.NotFoundWithID("Appointment", id)
}

func (m *mockAppointmentService) BookedSlots(ctx context.Context, providerID string, day time.Time) ([]string, error) {
	if m.bookedSlotsFunc != nil {
		return m.bookedSlotsFunc(ctx, providerID, day)
	}
	return []string{}, nil
}

func (m *mockAppointmentService) AvailableSlots(ctx context.Context, providerID string, day time.Time, period string) ([]string, error) {
	if m.availableSlotsFunc != nil {
		return m.availableSlotsFunc(ctx, providerID, day, period)
	}
	return []string{}, nil
}

func (m *mockAppointmentService) UpdateStatus(ctx context.Context, id string, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *mockAppointmentService) ListByProvider(ctx context.Context, providerID string, limit int, offset int64) ([]*model.Appointment, int64, error) {
	return []*model.Appointment{}, 0, nil
}

func (m *mockAppointmentService) ListByPatient(ctx context.Context, patientID string, limit int, offset int64) ([]*model.Appointment, int64, error) {
	return []*model.Appointment{}, 0, nil
}

func testHandler(svc *mockAppointmentService) *AppointmentHandler {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return &AppointmentHandler{service: svc, log: log}
}

func TestBook_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantCode   int
	}{
		{
			name:     "successful booking",
			body:     `{"provider_id":"507f1f77bcf86cd799439011","patient_id":"507f1f77bcf86cd799439012","time_slot_label":"08:00 AM - 08:15 AM"}`,
			wantCode: http.StatusCreated,
		},
		{
			name:     "malformed JSON",
			body:     `{"provider_id":`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:       "slot conflict",
			body:       `{"provider_id":"507f1f77bcf86cd799439011"}`,
			serviceErr: apperrors.Conflict("slot taken"),
			wantCode:   http.StatusConflict,
		},
		{
			name:       "validation failure",
			body:       `{"provider_id":"507f1f77bcf86cd799439011"}`,
			serviceErr: apperrors.Validation("bad label", nil),
			wantCode:   http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testHandler(&mockAppointmentService{
				bookFunc: func(ctx context.Context, appt *model.Appointment) error {
					return tt.serviceErr
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.Book(w, req, httprouter.Params{})

			if w.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, w.Code)
			}
		})
	}
}

func TestBookedSlots_QueryValidation(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode int
	}{
		{"missing provider_id", "?day=2026-09-14", http.StatusBadRequest},
		{"missing day", "?provider_id=507f1f77bcf86cd799439011", http.StatusBadRequest},
		{"malformed day", "?provider_id=507f1f77bcf86cd799439011&day=14-09-2026", http.StatusBadRequest},
		{"valid request", "?provider_id=507f1f77bcf86cd799439011&day=2026-09-14", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testHandler(&mockAppointmentService{})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/booked-slots"+tt.query, nil)
			w := httptest.NewRecorder()

			h.BookedSlots(w, req, httprouter.Params{})

			if w.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, w.Code)
			}
		})
	}
}

func TestBookedSlots_ParsesDayAsUTC(t *testing.T) {
	var gotDay time.Time
	h := testHandler(&mockAppointmentService{
		bookedSlotsFunc: func(ctx context.Context, providerID string, day time.Time) ([]string, error) {
			gotDay = day
			return []string{"08:00 AM - 08:15 AM"}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/booked-slots?provider_id=p1&day=2026-09-14", nil)
	w := httptest.NewRecorder()

	h.BookedSlots(w, req, httprouter.Params{})

	want := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	if !gotDay.Equal(want) {
		t.Errorf("expected day %v, got %v", want, gotDay)
	}

	var resp struct {
		Data []string `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0] != "08:00 AM - 08:15 AM" {
		t.Errorf("unexpected response data: %v", resp.Data)
	}
}

func TestAvailability_RequiresPeriod(t *testing.T) {
	h := testHandler(&mockAppointmentService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/availability?provider_id=p1&day=2026-09-14", nil)
	w := httptest.NewRecorder()

	h.Availability(w, req, httprouter.Params{})

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 without period, got %d", w.Code)
	}
}

func TestAvailability_PassesPeriodThrough(t *testing.T) {
	var gotPeriod string
	h := testHandler(&mockAppointmentService{
		availableSlotsFunc: func(ctx context.Context, providerID string, day time.Time, period string) ([]string, error) {
			gotPeriod = period
			return []string{}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/availability?provider_id=p1&day=2026-09-14&period=evening", nil)
	w := httptest.NewRecorder()

	h.Availability(w, req, httprouter.Params{})

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if gotPeriod != "evening" {
		t.Errorf("expected period 'evening', got %q", gotPeriod)
	}
}

func TestBook_ReturnsConfirmationReference(t *testing.T) {
	h := testHandler(&mockAppointmentService{
		bookFunc: func(ctx context.Context, appt *model.Appointment) error {
			appt.ID = "507f1f77bcf86cd799439099"
			return nil
		},
	})

	body := `{"provider_id":"507f1f77bcf86cd799439011","patient_id":"507f1f77bcf86cd799439012","time_slot_label":"08:00 AM - 08:15 AM"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Book(w, req, httprouter.Params{})

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}

	var resp struct {
		Data struct {
			ID                    string `json:"id"`
			ConfirmationReference string `json:"confirmation_reference"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.ConfirmationReference == "" {
		t.Fatal("expected a confirmation reference in the response")
	}

	appointmentID, patientID, err := sealer.ParseConfirmationToken(resp.Data.ConfirmationReference)
	if err != nil {
		t.Fatalf("reference did not parse: %v", err)
	}
	if appointmentID != "507f1f77bcf86cd799439099" || patientID != "507f1f77bcf86cd799439012" {
		t.Errorf("reference resolved to (%s, %s)", appointmentID, patientID)
	}
}

func TestGetByReference(t *testing.T) {
	stored := &model.Appointment{
		ID:        "507f1f77bcf86cd799439099",
		PatientID: "507f1f77bcf86cd799439012",
	}
	h := testHandler(&mockAppointmentService{
		getByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			if id == stored.ID {
				return stored, nil
			}
			return nil, apperrors.NotFoundWithID("Appointment", id)
		},
	})

	token, err := sealer.CreateConfirmationToken(stored.ID, stored.PatientID)
	if err != nil {
		t.Fatalf("failed to create token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/reference/"+token, nil)
	w := httptest.NewRecorder()
	h.GetByReference(w, req, httprouter.Params{{Key: "token", Value: token}})
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	// A reference minted for a different patient must not resolve.
	foreign, err := sealer.CreateConfirmationToken(stored.ID, "507f1f77bcf86cd799439013")
	if err != nil {
		t.Fatalf("failed to create token: %v", err)
	}
	w = httptest.NewRecorder()
	h.GetByReference(w, req, httprouter.Params{{Key: "token", Value: foreign}})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for foreign reference, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.GetByReference(w, req, httprouter.Params{{Key: "token", Value: "garbage"}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for malformed reference, got %d", w.Code)
	}
}

func TestUpdateStatus_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantCode   int
	}{
		{"successful update", `{"status":"completed"}`, nil, http.StatusNoContent},
		{"malformed JSON", `{status}`, nil, http.StatusBadRequest},
		{"not found", `{"status":"completed"}`, apperrors.NotFoundWithID("Appointment", "x"), http.StatusNotFound},
		{"terminal state", `{"status":"cancelled"}`, apperrors.Conflict("already completed"), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testHandler(&mockAppointmentService{
				updateStatusFunc: func(ctx context.Context, id string, status string) error {
					return tt.serviceErr
				},
			})

			req := httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/id/abc/status", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.UpdateStatus(w, req, httprouter.Params{{Key: "id", Value: "abc"}})

			if w.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, w.Code)
			}
		})
	}
}
