package validator

import (
	"errors"
	"fmt"
	"strings"

	"telecare/pkg/logger"
	"telecare/pkg/model"
	"telecare/pkg/slots"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type AppointmentValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAppointmentValidator(log *logger.Logger) *AppointmentValidator {
	v := validator.New()

	if err := v.RegisterValidation("slot_label", validateSlotLabel); err != nil {
		log.Fatal("Failed to register 'slot_label' validator",
			"error", err,
		)
	}

	return &AppointmentValidator{
		validate: v,
		logger:   log,
	}
}

func validateSlotLabel(fl validator.FieldLevel) bool {
	return slots.ValidLabel(fl.Field().String())
}

func (v *AppointmentValidator) Validate(appt *model.Appointment) error {
	if err := v.validate.Struct(appt); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if appt.Day.IsZero() {
		return ValidationErrors{
			ValidationError{
				Field:   "Day",
				Message: "day must be a calendar date",
			},
		}
	}

	if appt.ProviderID == appt.PatientID {
		return ValidationErrors{
			ValidationError{
				Field:   "PatientID",
				Message: "provider and patient must be different parties",
			},
		}
	}

	return nil
}

func (v *AppointmentValidator) ValidateStatusUpdate(update *model.StatusUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *AppointmentValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +919876543210)", err.Field())
		case "slot_label":
			message = fmt.Sprintf("%s must be a 15-minute slot label (e.g., \"08:00 AM - 08:15 AM\")", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
