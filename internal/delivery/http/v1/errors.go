package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-tracker/internal/policy"
	"github.com/adanyl0v/go-task-tracker/internal/services"
)

const (
	messageUnauthenticated    = "Unauthenticated."
	messageInvalidCredentials = "Invalid credentials"
	messageForbidden          = "Unauthorized access"
	messageValidationFailed   = "Validation failed"
	messageNotFound           = "Not Found"
	messageTaskNotFound       = "Task not found"
	messageListNotFound       = "List not found"
)

type apiError struct {
	Code    int
	Message string
	Fields  map[string][]string
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, envelope{
		Status:  statusError,
		Message: err.Message,
		Errors:  err.Fields,
	})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newForbiddenError() apiError {
	return newAPIError(http.StatusForbidden, messageForbidden)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newValidationError(fields map[string][]string) apiError {
	return apiError{
		Code:    http.StatusUnprocessableEntity,
		Message: messageValidationFailed,
		Fields:  fields,
	}
}

// HandleNotFound renders unknown routes in the error envelope.
func HandleNotFound(c *gin.Context) {
	abort(c, newNotFoundError(messageNotFound))
}

// abortWithServiceError maps service and policy errors onto HTTP statuses.
// Anything unrecognised is logged and hidden behind a 500.
func (h *handlerImpl) abortWithServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		abort(c, newValidationError(validationErr.Fields))
	case errors.Is(err, policy.ErrForbidden):
		abort(c, newForbiddenError())
	case errors.Is(err, services.ErrTaskNotFound):
		abort(c, newNotFoundError(messageTaskNotFound))
	case errors.Is(err, services.ErrListNotFound):
		abort(c, newNotFoundError(messageListNotFound))
	case errors.Is(err, services.ErrInvalidCredentials):
		abort(c, newUnauthorizedError(messageInvalidCredentials))
	case errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrSessionExpired),
		errors.Is(err, services.ErrUserNotFound):
		abort(c, newUnauthorizedError(messageUnauthenticated))
	default:
		h.logger.Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("unhandled service error")
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}
