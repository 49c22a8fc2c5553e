package appointments

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"telecare/pkg/model"
	"telecare/test/integration/testutil"
)

const day = "2026-09-14"

func newAppointmentBody(providerID, patientID, label string) map[string]any {
	return map[string]any{
		"provider_id":     providerID,
		"patient_id":      patientID,
		"day":             day + "T00:00:00Z",
		"time_slot_label": label,
		"reason":          "Recurring headache",
		"type":            "consultation",
		"urgency":         "normal",
	}
}

func decodeAppointment(t *testing.T, resp *testutil.Response) *model.Appointment {
	t.Helper()
	var result struct {
		Data model.Appointment `json:"data"`
	}
	if err := resp.DecodeJSON(&result); err != nil {
		t.Fatalf("failed to decode appointment: %v", err)
	}
	return &result.Data
}

func decodeLabels(t *testing.T, resp *testutil.Response) []string {
	t.Helper()
	var result struct {
		Data []string `json:"data"`
	}
	if err := resp.DecodeJSON(&result); err != nil {
		t.Fatalf("failed to decode labels: %v", err)
	}
	return result.Data
}

func TestAppointmentLifecycle(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	providerID := testutil.ProviderID(1)

	t.Run("booking claims the slot", func(t *testing.T) {
		resp := client.POST(t, "/api/v1/appointments",
			newAppointmentBody(providerID, testutil.PatientID(1), "08:00 AM - 08:15 AM"))
		testutil.AssertStatusCode(t, resp, http.StatusCreated)

		appt := decodeAppointment(t, resp)
		if appt.ID == "" {
			t.Fatal("expected appointment ID in response")
		}
		if appt.Status != model.StatusScheduled {
			t.Errorf("expected status scheduled, got %s", appt.Status)
		}

		booked := decodeLabels(t, client.GET(t,
			fmt.Sprintf("/api/v1/appointments/booked-slots?provider_id=%s&day=%s", providerID, day)))
		if len(booked) != 1 || booked[0] != "08:00 AM - 08:15 AM" {
			t.Errorf("unexpected booked slots: %v", booked)
		}
	})

	t.Run("double booking conflicts", func(t *testing.T) {
		resp := client.POST(t, "/api/v1/appointments",
			newAppointmentBody(providerID, testutil.PatientID(2), "08:00 AM - 08:15 AM"))
		testutil.AssertStatusCode(t, resp, http.StatusConflict)

		if count := mongo.CountDocuments(t, testutil.AppointmentsCollection); count != 1 {
			t.Errorf("expected 1 persisted appointment, got %d", count)
		}
	})

	t.Run("availability excludes the booked slot", func(t *testing.T) {
		free := decodeLabels(t, client.GET(t,
			fmt.Sprintf("/api/v1/appointments/availability?provider_id=%s&day=%s&period=morning", providerID, day)))
		if len(free) != 15 {
			t.Errorf("expected 15 free morning slots, got %d", len(free))
		}
		for _, label := range free {
			if label == "08:00 AM - 08:15 AM" {
				t.Error("booked slot listed as available")
			}
		}
	})

	t.Run("same slot next day is free", func(t *testing.T) {
		free := decodeLabels(t, client.GET(t,
			fmt.Sprintf("/api/v1/appointments/availability?provider_id=%s&day=2026-09-15&period=morning", providerID)))
		if len(free) != 16 {
			t.Errorf("expected a full morning grid on the next day, got %d slots", len(free))
		}
	})

	t.Run("cancelling frees the slot", func(t *testing.T) {
		resp := client.POST(t, "/api/v1/appointments",
			newAppointmentBody(providerID, testutil.PatientID(3), "09:00 AM - 09:15 AM"))
		testutil.AssertStatusCode(t, resp, http.StatusCreated)
		appt := decodeAppointment(t, resp)

		resp = client.PATCH(t,
			fmt.Sprintf("/api/v1/appointments/id/%s/status", appt.ID),
			map[string]string{"status": "cancelled"})
		testutil.AssertStatusCode(t, resp, http.StatusNoContent)

		resp = client.POST(t, "/api/v1/appointments",
			newAppointmentBody(providerID, testutil.PatientID(4), "09:00 AM - 09:15 AM"))
		testutil.AssertStatusCode(t, resp, http.StatusCreated)
	})

	t.Run("terminal status rejects transitions", func(t *testing.T) {
		resp := client.POST(t, "/api/v1/appointments",
			newAppointmentBody(providerID, testutil.PatientID(5), "10:00 AM - 10:15 AM"))
		testutil.AssertStatusCode(t, resp, http.StatusCreated)
		appt := decodeAppointment(t, resp)

		resp = client.PATCH(t,
			fmt.Sprintf("/api/v1/appointments/id/%s/status", appt.ID),
			map[string]string{"status": "completed"})
		testutil.AssertStatusCode(t, resp, http.StatusNoContent)

		resp = client.PATCH(t,
			fmt.Sprintf("/api/v1/appointments/id/%s/status", appt.ID),
			map[string]string{"status": "cancelled"})
		testutil.AssertStatusCode(t, resp, http.StatusConflict)
	})

	t.Run("unknown appointment returns 404", func(t *testing.T) {
		resp := client.PATCH(t,
			"/api/v1/appointments/id/a1b2c3d4e5f6a7b8c9d0e999/status",
			map[string]string{"status": "completed"})
		testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	})
}

func TestConcurrentBooking(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	providerID := testutil.ProviderID(2)
	const contenders = 10

	var wg sync.WaitGroup
	codes := make(chan int, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := client.POST(t, "/api/v1/appointments",
				newAppointmentBody(providerID, testutil.PatientID(10+i), "11:00 AM - 11:15 AM"))
			codes <- resp.StatusCode
		}(i)
	}

	wg.Wait()
	close(codes)

	created, conflicted := 0, 0
	for code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicted++
		default:
			t.Errorf("unexpected status code under contention: %d", code)
		}
	}

	if created != 1 {
		t.Errorf("expected exactly 1 created, got %d", created)
	}
	if conflicted != contenders-1 {
		t.Errorf("expected %d conflicts, got %d", contenders-1, conflicted)
	}

	if count := mongo.CountDocuments(t, testutil.AppointmentsCollection); count != 1 {
		t.Errorf("expected 1 persisted appointment, got %d", count)
	}
}
