package mcp

import (
	"encoding/json"
	"errors"

	"github.com/ideabank/server/internal/domain"
	"github.com/mark3labs/mcp-go/mcp"
)

type ErrorCode string

const (
	ErrNotFound           ErrorCode = "not_found"
	ErrDependencyNotFound ErrorCode = "dependency_not_found"
	ErrCyclicDependency   ErrorCode = "cyclic_dependency"
	ErrValidation         ErrorCode = "validation"
	ErrPersistence        ErrorCode = "persistence"
	ErrRejected           ErrorCode = "update_rejected"
	ErrInternal           ErrorCode = "internal"
)

type ToolError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e ToolError) ToResult() *mcp.CallToolResult {
	data, _ := json.Marshal(e)
	return mcp.NewToolResultError(string(data))
}

// ValidationError reports a malformed tool argument.
func ValidationError(msg string) *mcp.CallToolResult {
	return ToolError{
		Code:    ErrValidation,
		Message: msg,
	}.ToResult()
}

// DomainError maps a domain error to a structured tool error payload.
func DomainError(err error) *mcp.CallToolResult {
	code := ErrInternal
	switch {
	case errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrEpicNotFound),
		errors.Is(err, domain.ErrIdeaNotFound):
		code = ErrNotFound
	case errors.Is(err, domain.ErrDependencyNotFound):
		code = ErrDependencyNotFound
	case errors.Is(err, domain.ErrCyclicDependency):
		code = ErrCyclicDependency
	case errors.Is(err, domain.ErrSelfDependency),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidTaskType),
		errors.Is(err, domain.ErrInvalidNoteType),
		errors.Is(err, domain.ErrEmptyTaskID),
		errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, domain.ErrEmptyNote):
		code = ErrValidation
	case errors.Is(err, domain.ErrPersistence):
		code = ErrPersistence
	}

	return ToolError{
		Code:    code,
		Message: err.Error(),
	}.ToResult()
}

// RejectedError reports an approval-gate rejection.
func RejectedError(err error) *mcp.CallToolResult {
	return ToolError{
		Code:    ErrRejected,
		Message: err.Error(),
	}.ToResult()
}
