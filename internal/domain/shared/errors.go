// Package shared contains common domain types and errors used across all
// domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation   = errors.New("validation error")
	ErrInvalidID    = errors.New("invalid ID")
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyValue   = errors.New("value cannot be empty")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrAlreadyPublished = errors.New("already published")
	ErrNotPublished     = errors.New("not published")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "lesson", "solution", "gitlab"
	Op      string // Operation that failed, e.g., "Publish", "Ingest"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Internship domain errors
var (
	ErrInternshipNotFound  = NewDomainError("internship", "Find", ErrNotFound, "internship not found")
	ErrInternshipNotOpen   = NewDomainError("internship", "CheckStatus", ErrInvalidState, "internship is not open")
	ErrInvalidStatus       = NewDomainError("internship", "ParseStatus", ErrInvalidInput, "unknown internship status")
	ErrInvalidDateRange    = NewDomainError("internship", "Validate", ErrInvalidInput, "invalid internship date range")
	ErrInternshipNoUsers   = NewDomainError("internship", "Report", ErrNotFound, "no users found for internship")
	ErrInternshipNoTasks   = NewDomainError("internship", "Report", ErrNotFound, "no tasks found for internship")
	ErrApplicationNotFound = NewDomainError("internship", "FindApplication", ErrNotFound, "application not found")
	ErrApplicationExists   = NewDomainError("internship", "Apply", ErrAlreadyExists, "application already exists")
)

// Lesson and task domain errors
var (
	ErrLessonNotFound        = NewDomainError("lesson", "Find", ErrNotFound, "lesson not found")
	ErrLessonAlreadyPublished = NewDomainError("lesson", "Publish", ErrAlreadyPublished, "lesson is already published")
	ErrLessonNotPublished    = NewDomainError("lesson", "CheckPublished", ErrNotPublished, "lesson is not published")
	ErrTaskNotFound          = NewDomainError("task", "Find", ErrNotFound, "task not found")
	ErrTaskAlreadyPublished  = NewDomainError("task", "Publish", ErrAlreadyPublished, "task is already published")
	ErrNoTasksToPublish      = NewDomainError("task", "PublishByLesson", ErrNotFound, "no unpublished tasks for lesson")
	ErrNoEligibleUsers       = NewDomainError("task", "Fork", ErrNotFound, "no eligible users to fork for")
)

// Solution domain errors
var (
	ErrSolutionNotFound       = NewDomainError("solution", "Find", ErrNotFound, "solution not found")
	ErrSolutionExists         = NewDomainError("solution", "Create", ErrAlreadyExists, "solution already exists for repository")
	ErrInvalidSolutionStatus  = NewDomainError("solution", "ParseStatus", ErrInvalidInput, "unknown solution status")
	ErrUntracedPush           = NewDomainError("solution", "Ingest", ErrNotFound, "push cannot be traced to a known user and task")
	ErrEmptyPush              = NewDomainError("solution", "Ingest", ErrInvalidInput, "push event carries no commits")
)

// User domain errors
var (
	ErrUserNotFound    = NewDomainError("user", "Find", ErrNotFound, "user not found")
	ErrUserExists      = NewDomainError("user", "Create", ErrAlreadyExists, "user already exists")
	ErrInvalidRole     = NewDomainError("user", "ParseRole", ErrInvalidInput, "unknown user role")
	ErrUserArchived    = NewDomainError("user", "CheckStatus", ErrInvalidState, "user is archived")
)

// External service errors
var (
	ErrProvisioning        = NewDomainError("gitlab", "Request", ErrExternalService, "GitLab request failed")
	ErrGitlabUnavailable   = NewDomainError("gitlab", "Request", ErrServiceUnavailable, "GitLab is unavailable")
	ErrGitlabTimeout       = NewDomainError("gitlab", "Request", ErrTimeout, "GitLab request timeout")
	ErrGitlabRateLimited   = NewDomainError("gitlab", "Request", ErrRateLimited, "GitLab rate limit exceeded")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsConflict reports publish state-machine precondition violations.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyPublished) ||
		errors.Is(err, ErrNotPublished) ||
		errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
