package cli

import (
	stderrors "errors"
	"fmt"

	"clockedin/internal/errors"
	"clockedin/internal/logging"
	"clockedin/internal/validation"
)

// ErrorHandler provides centralized error handling for command handlers
type ErrorHandler struct{}

// NewErrorHandler creates a new error handler
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// Handle provides user-friendly error messages for validation and other errors
func (eh *ErrorHandler) Handle(operation string, err error) error {
	return fmt.Errorf("failed to %s: %s", operation, eh.message(err))
}

// HandleSimple provides user-friendly error messages without operation context
func (eh *ErrorHandler) HandleSimple(err error) error {
	return fmt.Errorf("%s", eh.message(err))
}

func (eh *ErrorHandler) message(err error) string {
	if ve, ok := err.(*validation.ValidationError); ok {
		return ve.GetUserFriendlyMessage()
	}
	if errors.IsAppError(err) {
		if errors.ShouldLogError(err) {
			logging.Error("command failed", "error", err)
		}
		return errors.GetUserMessage(err)
	}
	logging.Error("command failed", "error", err)
	return err.Error()
}

// IsValidationError checks if an error is a validation error
func (eh *ErrorHandler) IsValidationError(err error) bool {
	if validation.IsValidationError(err) {
		return true
	}
	return errors.IsErrorType(err, errors.ErrorTypeValidation)
}

// IsNotFoundError checks if an error is a not found error
func (eh *ErrorHandler) IsNotFoundError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeNotFound)
}

// GetErrorCode returns the error code for structured errors. Field
// validation failures report the application validation code.
func (eh *ErrorHandler) GetErrorCode(err error) string {
	var ve *validation.ValidationError
	if stderrors.As(err, &ve) {
		return ve.ToAppError().Code
	}
	return errors.GetErrorCode(err)
}
