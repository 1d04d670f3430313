package booking

import (
	"errors"
	"fmt"
)

// Error codes for the booking service. Handlers map these onto HTTP statuses.
const (
	CodeValidation        = "validationError"
	CodeAuthorization     = "authorizationError"
	CodeSlotConflict      = "slotConflict"
	CodeInvalidTransition = "invalidStateTransition"
	CodeUpstreamPayment   = "upstreamPaymentError"
	CodeNotFound          = "notFound"
)

// ServiceError is a typed business error raised by the booking core.
type ServiceError struct {
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(msg string) error {
	return &ServiceError{Code: CodeValidation, Message: msg}
}

func NewAuthorizationError(msg string) error {
	return &ServiceError{Code: CodeAuthorization, Message: msg}
}

func NewSlotConflictError(msg string) error {
	return &ServiceError{Code: CodeSlotConflict, Message: msg}
}

func NewInvalidTransitionError(msg string) error {
	return &ServiceError{Code: CodeInvalidTransition, Message: msg}
}

func NewUpstreamPaymentError(msg string) error {
	return &ServiceError{Code: CodeUpstreamPayment, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &ServiceError{Code: CodeNotFound, Message: msg}
}

// CodeOf extracts the service error code, or empty for plain errors.
func CodeOf(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
