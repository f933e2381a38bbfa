package server

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"clockedin/internal/errors"
	"clockedin/internal/logging"
	"clockedin/internal/validation"
)

// SuccessResponse wraps every successful payload
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse wraps every failure
type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(SuccessResponse{Success: true, Data: data})
}

func noContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func failure(c *fiber.Ctx, status int, code, message string, details interface{}) error {
	return c.Status(status).JSON(ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Code:    code,
		Message: message,
		Details: details,
	})
}

// respondError maps err onto a status code and the error envelope.
func respondError(c *fiber.Ctx, err error) error {
	var ve *validation.ValidationError
	if stderrors.As(err, &ve) {
		details := make(map[string]string, len(ve.Errors))
		for _, fe := range ve.Errors {
			if _, seen := details[fe.Field]; seen {
				continue
			}
			var messages []string
			for _, same := range ve.GetFieldErrors(fe.Field) {
				messages = append(messages, same.Message)
			}
			details[fe.Field] = strings.Join(messages, "; ")
		}
		return failure(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", ve.GetUserFriendlyMessage(), details)
	}

	var tagErrs validator.ValidationErrors
	if stderrors.As(err, &tagErrs) {
		details := make(map[string]string, len(tagErrs))
		for _, fe := range tagErrs {
			details[fe.Field()] = "failed on the '" + fe.Tag() + "' rule"
		}
		return failure(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", "Request validation failed", details)
	}

	var fe *fiber.Error
	if stderrors.As(err, &fe) {
		return failure(c, fe.Code, "", fe.Message, nil)
	}

	if appErr, ok := errors.AsAppError(err); ok {
		if errors.ShouldLogError(err) {
			logging.Error("request failed", "path", c.Path(), "error", err)
		}
		return failure(c, statusFor(appErr.Type), appErr.Code, errors.GetUserMessage(err), nil)
	}

	logging.Error("request failed", "path", c.Path(), "error", err)
	return failure(c, fiber.StatusInternalServerError, "", "An unexpected error occurred.", nil)
}

func statusFor(t errors.ErrorType) int {
	switch t {
	case errors.ErrorTypeValidation:
		return fiber.StatusUnprocessableEntity
	case errors.ErrorTypeInvalidInput:
		return fiber.StatusBadRequest
	case errors.ErrorTypeNotFound:
		return fiber.StatusNotFound
	case errors.ErrorTypeReferential, errors.ErrorTypeStale:
		return fiber.StatusConflict
	case errors.ErrorTypeUnauthenticated:
		return fiber.StatusUnauthorized
	case errors.ErrorTypeRemote:
		return fiber.StatusBadGateway
	case errors.ErrorTypeTimeout:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}
