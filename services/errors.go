package services

import (
	"SalvadoDental/models"
	"errors"
	"fmt"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ValidationError reports malformed or out-of-catalog input. The caller can
// correct the input and retry.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// InvalidStateError reports a transition the appointment lifecycle does not allow.
type InvalidStateError struct {
	AppointmentID string
	From          models.AppointmentStatus
	To            models.AppointmentStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("appointment %s cannot move from %s to %s", e.AppointmentID, e.From, e.To)
}

// PersistenceError reports a rejected read or write. Its message is the
// store's message, unchanged.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a reference to a record that does not exist or that
// the caller may not see.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// AuthError reports rejected credentials or sessions.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// ErrorKind names the category of err for metrics and logs.
func ErrorKind(err error) string {
	var (
		validationErr  *ValidationError
		stateErr       *InvalidStateError
		persistenceErr *PersistenceError
		notFoundErr    *NotFoundError
		authErr        *AuthError
	)
	switch {
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &stateErr):
		return "invalid_state"
	case errors.As(err, &notFoundErr):
		return "not_found"
	case errors.As(err, &authErr):
		return "auth"
	case errors.As(err, &persistenceErr):
		return "persistence"
	default:
		return "internal"
	}
}

// newValidationError converts an ozzo-validation result into a ValidationError.
func newValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for field := range fieldErrs {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		if len(fields) > 0 {
			return &ValidationError{Field: fields[0], Message: err.Error()}
		}
	}
	return &ValidationError{Message: err.Error()}
}
