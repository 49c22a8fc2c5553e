package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	appterrors "telecare/internal/appointments/errors"
	"telecare/internal/appointments/repository"
	"telecare/internal/appointments/validator"
	"telecare/pkg/config"
	apperrors "telecare/pkg/errors"
	"telecare/pkg/events"
	"telecare/pkg/model"
	"telecare/pkg/sanitizer"
	"telecare/pkg/slots"

	"go.mongodb.org/mongo-driver/mongo"
)

type AppointmentService interface {
	Book(ctx context.Context, appt *model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	BookedSlots(ctx context.Context, providerID string, day time.Time) ([]string, error)
	AvailableSlots(ctx context.Context, providerID string, day time.Time, periodName string) ([]string, error)
	UpdateStatus(ctx context.Context, id string, newStatus string) error
	ListByProvider(ctx context.Context, providerID string, limit int, offset int64) ([]*model.Appointment, int64, error)
	ListByPatient(ctx context.Context, patientID string, limit int, offset int64) ([]*model.Appointment, int64, error)
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	lockRepo  repository.SlotLockRepository
	validator *validator.AppointmentValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	lockRepo repository.SlotLockRepository,
	validator *validator.AppointmentValidator,
	publisher events.Publisher,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Book attempts to claim a slot for a patient. The conflict check and the
// insert run inside one transaction, so two concurrent attempts on the same
// (provider, day, label) triple resolve to exactly one success and one
// conflict. An advisory lock in front of the transaction keeps the common
// double-click case from ever opening two transactions.
func (s *appointmentService) Book(ctx context.Context, appt *model.Appointment) error {
	s.applyDefaults(appt)
	s.sanitize(appt)
	appt.Day = model.NormalizeDay(appt.Day)
	if err := s.validate(appt); err != nil {
		return err
	}

	lockID, err := s.acquireSlotLock(ctx, appt.ProviderID, appt.Day, appt.TimeSlotLabel)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifySlotFree(sessCtx, appt); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, appt); err != nil {
			if errors.Is(err, appterrors.ErrSlotTaken) {
				return slotTakenConflict(appt)
			}
			return apperrors.Internal("Failed to create appointment", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to book appointment",
			"provider_id", appt.ProviderID,
			"patient_id", appt.PatientID,
			"day", appt.Day,
			"time_slot_label", appt.TimeSlotLabel,
			"error", err,
		)
		return err
	}

	if err := s.publisher.AppointmentBooked(ctx, appt); err != nil {
		// Downstream billing/prescriptions catch up via reconciliation;
		// the booking itself already committed.
		s.cfg.Log.Warn("Failed to publish booked event", "appointment_id", appt.ID, "error", err)
	}

	s.cfg.Log.Info("Appointment booked successfully",
		"id", appt.ID,
		"provider_id", appt.ProviderID,
		"patient_id", appt.PatientID,
		"day", appt.Day,
		"time_slot_label", appt.TimeSlotLabel,
	)
	return nil
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	return appt, nil
}

// BookedSlots returns the slot labels already scheduled for a provider on a
// day. Cancelled, completed and no-show appointments free their slots.
func (s *appointmentService) BookedSlots(ctx context.Context, providerID string, day time.Time) ([]string, error) {
	if providerID == "" {
		return nil, apperrors.InvalidInput("Provider ID cannot be empty")
	}
	if day.IsZero() {
		return nil, apperrors.InvalidInput("Day must be a calendar date")
	}

	appts, err := s.repo.FindScheduledByProviderAndDay(ctx, providerID, day)
	if err != nil {
		s.cfg.Log.Error("Failed to query booked slots",
			"provider_id", providerID,
			"day", day,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve booked slots", err)
	}

	labels := make([]string, 0, len(appts))
	for _, a := range appts {
		labels = append(labels, a.TimeSlotLabel)
	}
	return labels, nil
}

// AvailableSlots is the period grid minus the booked labels.
func (s *appointmentService) AvailableSlots(ctx context.Context, providerID string, day time.Time, periodName string) ([]string, error) {
	period, ok := s.periodByName(periodName)
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Unknown period %q, want one of: morning, evening, night", periodName))
	}

	grid, err := slots.Generate(period.StartHour, period.EndHour)
	if err != nil {
		return nil, apperrors.Internal("Failed to generate slot grid", err)
	}

	booked, err := s.BookedSlots(ctx, providerID, day)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]struct{}, len(booked))
	for _, label := range booked {
		taken[label] = struct{}{}
	}

	free := make([]string, 0, len(grid))
	for _, label := range grid {
		if _, ok := taken[label]; !ok {
			free = append(free, label)
		}
	}
	return free, nil
}

// UpdateStatus moves an appointment through its lifecycle. Scheduled may
// transition to completed, cancelled or no_show; those three are terminal.
// The read-check and write run in one transaction so a concurrent
// transition cannot slip past the terminal guard.
func (s *appointmentService) UpdateStatus(ctx context.Context, id string, newStatus string) error {
	if id == "" {
		return apperrors.InvalidInput("Appointment ID cannot be empty")
	}
	if err := s.validator.ValidateStatusUpdate(&model.StatusUpdate{Status: newStatus}); err != nil {
		s.cfg.Log.Warn("Status update validation failed", "id", id, "status", newStatus, "error", err)
		return apperrors.Validation("Invalid status", map[string]any{"error": err.Error()})
	}

	var updated *model.Appointment
	var previousStatus string

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByID(sessCtx, id)
		if err != nil {
			return s.translateLookupError(err, id)
		}

		if model.TerminalStatus(existing.Status) {
			return apperrors.Conflict(fmt.Sprintf(
				"Appointment is already %s and cannot change status", existing.Status,
			))
		}

		if err := s.repo.UpdateStatus(sessCtx, id, newStatus); err != nil {
			if errors.Is(err, appterrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Appointment", id)
			}
			return apperrors.Internal("Failed to update appointment status", err)
		}

		previousStatus = existing.Status
		updated = existing
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update appointment status", "id", id, "status", newStatus, "error", err)
		return err
	}

	if previousStatus != newStatus {
		updated.Status = newStatus
		if err := s.publisher.AppointmentStatusChanged(ctx, updated, previousStatus); err != nil {
			s.cfg.Log.Warn("Failed to publish status change event", "appointment_id", id, "error", err)
		}
	}

	s.cfg.Log.Info("Appointment status updated",
		"id", id,
		"previous_status", previousStatus,
		"status", newStatus,
	)
	return nil
}

func (s *appointmentService) ListByProvider(ctx context.Context, providerID string, limit int, offset int64) ([]*model.Appointment, int64, error) {
	if providerID == "" {
		return nil, 0, apperrors.InvalidInput("Provider ID cannot be empty")
	}
	return s.list(ctx,
		func(ctx context.Context) ([]*model.Appointment, error) {
			return s.repo.FindByProvider(ctx, providerID, limit, offset)
		},
		func(ctx context.Context) (int64, error) {
			return s.repo.CountByProvider(ctx, providerID)
		},
	)
}

func (s *appointmentService) ListByPatient(ctx context.Context, patientID string, limit int, offset int64) ([]*model.Appointment, int64, error) {
	if patientID == "" {
		return nil, 0, apperrors.InvalidInput("Patient ID cannot be empty")
	}
	return s.list(ctx,
		func(ctx context.Context) ([]*model.Appointment, error) {
			return s.repo.FindByPatient(ctx, patientID, limit, offset)
		},
		func(ctx context.Context) (int64, error) {
			return s.repo.CountByPatient(ctx, patientID)
		},
	)
}

// list runs the find and count legs concurrently, the way every listing in
// this codebase does.
func (s *appointmentService) list(
	ctx context.Context,
	find func(ctx context.Context) ([]*model.Appointment, error),
	count func(ctx context.Context) (int64, error),
) ([]*model.Appointment, int64, error) {
	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var total int64
	var appts []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		total, err = count(sharedCtx)
		if err != nil {
			s.cfg.Log.Error("Failed to count appointments", "error", err)
			errCount = apperrors.Internal("Failed to count appointments", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		appts, err = find(sharedCtx)
		if err != nil {
			s.cfg.Log.Error("Failed to list appointments", "error", err)
			errFind = apperrors.Internal("Failed to retrieve appointments", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return appts, total, nil
}

// --- Helpers ---

func (s *appointmentService) applyDefaults(appt *model.Appointment) {
	// Status is fixed at creation; lifecycle changes only go through
	// UpdateStatus, so any client-supplied status is overwritten.
	appt.Status = model.StatusScheduled
	if appt.Type == "" {
		appt.Type = "consultation"
	}
	if appt.Urgency == "" {
		appt.Urgency = "normal"
	}
}

func (s *appointmentService) sanitize(appt *model.Appointment) {
	appt.Reason = sanitizer.SanitizeReason(appt.Reason)
	appt.Type = sanitizer.SanitizeEnumField(appt.Type)
	appt.Urgency = sanitizer.SanitizeEnumField(appt.Urgency)
	appt.ContactPhone = sanitizer.SanitizePhone(appt.ContactPhone)
}

func (s *appointmentService) validate(appt *model.Appointment) error {
	if err := s.validator.Validate(appt); err != nil {
		s.cfg.Log.Warn("Appointment validation failed", "error", err)
		return apperrors.Validation("Appointment validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *appointmentService) translateLookupError(err error, id string) error {
	if errors.Is(err, appterrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Appointment", id)
	}
	if errors.Is(err, appterrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid appointment ID format")
	}
	return apperrors.Internal("Failed to retrieve appointment", err)
}

// verifySlotFree is the conflict check. It must run on the transaction's
// session context so the read participates in the transaction.
func (s *appointmentService) verifySlotFree(ctx context.Context, appt *model.Appointment) error {
	existing, err := s.repo.FindScheduledBySlot(ctx, appt.ProviderID, appt.Day, appt.TimeSlotLabel)
	if err != nil {
		if errors.Is(err, appterrors.ErrNotFound) {
			return nil
		}
		return apperrors.Internal("Failed to check slot availability", err)
	}

	if existing != nil {
		return slotTakenConflict(appt)
	}
	return nil
}

func slotTakenConflict(appt *model.Appointment) error {
	return apperrors.Conflict(fmt.Sprintf(
		"Slot %q on %s is no longer available, please choose another slot",
		appt.TimeSlotLabel, appt.Day.Format("2006-01-02"),
	))
}

func (s *appointmentService) periodByName(name string) (slots.Period, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case slots.Morning.Name:
		return slots.Period{Name: slots.Morning.Name, StartHour: s.cfg.MorningStartHour, EndHour: s.cfg.MorningEndHour}, true
	case slots.Evening.Name:
		return slots.Period{Name: slots.Evening.Name, StartHour: s.cfg.EveningStartHour, EndHour: s.cfg.EveningEndHour}, true
	case slots.Night.Name:
		return slots.Period{Name: slots.Night.Name, StartHour: s.cfg.NightStartHour, EndHour: s.cfg.NightEndHour}, true
	}
	return slots.Period{}, false
}

// acquireSlotLock creates the advisory lock for a slot's coordinates. A
// duplicate key error means another request currently holds the slot.
func (s *appointmentService) acquireSlotLock(ctx context.Context, providerID string, day time.Time, timeSlotLabel string) (string, error) {
	lockID := fmt.Sprintf("slot_lock_%s_%s_%s",
		providerID,
		day.Format("2006-01-02"),
		strings.ReplaceAll(timeSlotLabel, " ", ""),
	)

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

func (s *appointmentService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}
