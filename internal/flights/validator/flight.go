package validator

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"skybook/pkg/model"
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
	return fmt.Sprintf("validation failed: %d error(s)", len(v))
}

type FlightValidator struct {
	validate *validator.Validate
}

func NewFlightValidator() *FlightValidator {
	return &FlightValidator{
		validate: validator.New(),
	}
}

func (v *FlightValidator) ValidateCreate(fc *model.FlightCreate) error {
	if err := v.validate.Struct(fc); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	var errs ValidationErrors
	if fc.Origin == fc.Destination {
		errs = append(errs, ValidationError{
			Field:   "destination",
			Message: "destination must differ from origin",
		})
	}
	if !fc.DepartureTime.After(time.Now()) {
		errs = append(errs, ValidationError{
			Field:   "departure_time",
			Message: "departure time must be in the future",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *FlightValidator) ValidateUpdate(fu *model.FlightUpdate) error {
	if err := v.validate.Struct(fu); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	if fu.Price == nil && fu.AvailableSeats == nil && fu.Status == nil {
		return ValidationErrors{{
			Field:   "body",
			Message: "at least one field must be provided",
		}}
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors
	for _, err := range errs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: messageFor(err),
		})
	}
	return validationErrors
}

func messageFor(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "len":
		return fmt.Sprintf("must be exactly %s characters", err.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "gtfield":
		return fmt.Sprintf("must be after %s", err.Param())
	default:
		return fmt.Sprintf("failed %s validation", err.Tag())
	}
}
