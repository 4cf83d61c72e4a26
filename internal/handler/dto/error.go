package dto

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ideabank/server/internal/domain"
)

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error code and message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorResponse creates a new error response.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// MapDomainError maps domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code string, message string) {
	message = err.Error()

	switch {
	// Lookup errors
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, "TASK_NOT_FOUND", message
	case errors.Is(err, domain.ErrEpicNotFound):
		return http.StatusNotFound, "EPIC_NOT_FOUND", message
	case errors.Is(err, domain.ErrIdeaNotFound):
		return http.StatusNotFound, "IDEA_NOT_FOUND", message

	// Dependency errors
	case errors.Is(err, domain.ErrDependencyNotFound):
		return http.StatusUnprocessableEntity, "DEPENDENCY_NOT_FOUND", message
	case errors.Is(err, domain.ErrCyclicDependency):
		return http.StatusConflict, "CYCLIC_DEPENDENCY", message

	// Validation errors
	case errors.Is(err, domain.ErrSelfDependency),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidTaskType),
		errors.Is(err, domain.ErrInvalidNoteType),
		errors.Is(err, domain.ErrEmptyTaskID),
		errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, domain.ErrEmptyNote):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", message

	// Persistence errors
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusInternalServerError, "PERSISTENCE_ERROR", message

	// Default: internal server error
	default:
		slog.Error("unmapped domain error returned to client",
			"error", err,
			"error_type", fmt.Sprintf("%T", err),
		)
		return http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"
	}
}
