package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents a unified error code across the generation layer.
type ErrorCode string

// Generation error codes
const (
	ErrValidation              ErrorCode = "VALIDATION"
	ErrAuthentication          ErrorCode = "AUTHENTICATION"
	ErrRateLimited             ErrorCode = "RATE_LIMITED"
	ErrJobNotFound             ErrorCode = "JOB_NOT_FOUND"
	ErrServiceError            ErrorCode = "SERVICE_ERROR"
	ErrTransportTimeout        ErrorCode = "TRANSPORT_TIMEOUT"
	ErrPollingTimeout          ErrorCode = "POLLING_TIMEOUT"
	ErrJobFailed               ErrorCode = "JOB_FAILED"
	ErrJobCancelled            ErrorCode = "JOB_CANCELLED"
	ErrStatusLookupUnsupported ErrorCode = "STATUS_LOOKUP_UNSUPPORTED"
)

// Machine-readable service codes carried by SERVICE_ERROR.
const (
	ServiceCodeNetwork = "NETWORK_ERROR"
	ServiceCodeDecode  = "DECODE_ERROR"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`

	// Kind specific payload.
	Field       string            `json:"field,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
	JobID       string            `json:"job_id,omitempty"`
	ServiceCode string            `json:"service_code,omitempty"`
	RetryAfter  time.Duration     `json:"retry_after,omitempty"`
	Attempts    int               `json:"attempts,omitempty"`

	Cause error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(string(e.Code))
	if e.ServiceCode != "" {
		b.WriteString("/")
		b.WriteString(e.ServiceCode)
	}
	b.WriteString("] ")
	if e.Field != "" {
		b.WriteString(e.Field)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithProvider sets the provider name.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// WithDetails attaches structured provider details.
func (e *Error) WithDetails(details map[string]string) *Error {
	e.Details = details
	return e
}

// =============================================================================
// Kind constructors
// =============================================================================

// NewValidationError reports a client-caused problem with one request field.
func NewValidationError(field, reason string) *Error {
	return &Error{Code: ErrValidation, Field: field, Message: reason, HTTPStatus: 400}
}

// NewAuthenticationError reports rejected credentials.
func NewAuthenticationError(message string) *Error {
	return &Error{Code: ErrAuthentication, Message: message, HTTPStatus: 401}
}

// NewRateLimitError reports a 429. retryAfter is zero when the provider gave no hint.
func NewRateLimitError(message string, retryAfter time.Duration) *Error {
	return &Error{Code: ErrRateLimited, Message: message, HTTPStatus: 429, Retryable: true, RetryAfter: retryAfter}
}

// NewJobNotFoundError reports an unknown job on a job-scoped endpoint.
func NewJobNotFoundError(jobID string) *Error {
	return &Error{Code: ErrJobNotFound, Message: fmt.Sprintf("job %s not found", jobID), HTTPStatus: 404, JobID: jobID}
}

// NewServiceError reports a provider-side or unclassified failure.
func NewServiceError(serviceCode, message string) *Error {
	return &Error{Code: ErrServiceError, ServiceCode: serviceCode, Message: message, Retryable: true}
}

// NewTransportTimeoutError reports an exceeded per-attempt deadline.
func NewTransportTimeoutError(timeout time.Duration) *Error {
	return &Error{Code: ErrTransportTimeout, Message: fmt.Sprintf("request timed out after %s", timeout), Retryable: true}
}

// NewPollingTimeoutError is terminal: the job never reached a final state within budget.
func NewPollingTimeoutError(jobID string, attempts int) *Error {
	return &Error{
		Code:     ErrPollingTimeout,
		Message:  fmt.Sprintf("job %s did not finish after %d status checks", jobID, attempts),
		JobID:    jobID,
		Attempts: attempts,
	}
}

// NewJobFailedError carries the provider failure message of a failed job.
func NewJobFailedError(jobID, providerMessage string) *Error {
	if providerMessage == "" {
		providerMessage = "generation failed"
	}
	return &Error{Code: ErrJobFailed, Message: providerMessage, JobID: jobID}
}

// NewJobCancelledError reports a job that was cancelled before completion.
func NewJobCancelledError(jobID string) *Error {
	return &Error{Code: ErrJobCancelled, Message: fmt.Sprintf("job %s was cancelled", jobID), JobID: jobID}
}

// NewStatusLookupUnsupportedError is returned by backends that cannot replay job state.
func NewStatusLookupUnsupportedError(provider, jobID string) *Error {
	return &Error{
		Code:     ErrStatusLookupUnsupported,
		Message:  "status lookup not supported by this backend, use persisted state",
		Provider: provider,
		JobID:    jobID,
	}
}

// =============================================================================
// Helpers
// =============================================================================

// AsError extracts a *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsErrorCode reports whether err carries the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	e, ok := AsError(err)
	return ok && e.Code == code
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

func IsValidationError(err error) bool { return IsErrorCode(err, ErrValidation) }
func IsRateLimitError(err error) bool  { return IsErrorCode(err, ErrRateLimited) }
func IsJobNotFound(err error) bool     { return IsErrorCode(err, ErrJobNotFound) }
func IsPollingTimeout(err error) bool  { return IsErrorCode(err, ErrPollingTimeout) }
