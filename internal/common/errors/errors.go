// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInputParsing     ErrorCode = "INPUT_PARSING_FAILED"

	ErrCodeRateLimited              ErrorCode = "COLLABORATOR_RATE_LIMITED"
	ErrCodeInvalidLocation          ErrorCode = "INVALID_LOCATION"
	ErrCodeUpstreamValidationFailed ErrorCode = "UPSTREAM_VALIDATION_FAILED"
	ErrCodeMalformedResponse        ErrorCode = "MALFORMED_RESPONSE"
	ErrCodeCollaboratorTimeout      ErrorCode = "COLLABORATOR_TIMEOUT"
	ErrCodeCollaboratorUnavailable  ErrorCode = "COLLABORATOR_UNAVAILABLE"

	ErrCodeBreakevenUndefined ErrorCode = "BREAKEVEN_UNDEFINED"

	ErrCodeStaleResponse     ErrorCode = "STALE_RESPONSE"
	ErrCodeInvalidTransition ErrorCode = "INVALID_SESSION_TRANSITION"
	ErrCodeSessionNotFound   ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionConflict   ErrorCode = "SESSION_CONFLICT"
	ErrCodeSessionStore      ErrorCode = "SESSION_STORE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Domain Error Types
// ==========================

// ValidationError reports an input that failed a local check. It never reaches the
// generation collaborator.
type ValidationError struct {
	Field  string
	Value  interface{}
	Reason string
}

func NewValidationError(field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s (got %v)", e.Field, e.Reason, e.Value)
}

// Standard converts the error for the workflow engine.
func (e *ValidationError) Standard() *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   e.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"field": e.Field},
		Timestamp: time.Now().UTC(),
	}
}

// CollaboratorReason classifies failures of the generation estimation service.
type CollaboratorReason string

const (
	ReasonRateLimited        CollaboratorReason = "rate_limited"
	ReasonInvalidLocation    CollaboratorReason = "invalid_location"
	ReasonUpstreamValidation CollaboratorReason = "upstream_validation"
	ReasonMalformedResponse  CollaboratorReason = "malformed_response"
	ReasonTimeout            CollaboratorReason = "timeout"
	ReasonNetwork            CollaboratorReason = "network"
	ReasonHTTPStatus         CollaboratorReason = "http_status"
)

// CollaboratorError is any failure of the outbound generation lookup.
type CollaboratorError struct {
	Reason     CollaboratorReason
	StatusCode int
	Messages   []string
	Err        error
}

func (e *CollaboratorError) Error() string {
	var b strings.Builder
	b.WriteString("generation collaborator: ")
	b.WriteString(string(e.Reason))
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if len(e.Messages) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Messages, ", "))
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a later attempt may succeed. The caller owns the policy.
func (e *CollaboratorError) Retryable() bool {
	switch e.Reason {
	case ReasonRateLimited, ReasonTimeout, ReasonNetwork:
		return true
	case ReasonHTTPStatus:
		return e.StatusCode >= 500
	default:
		return false
	}
}

func (e *CollaboratorError) Code() ErrorCode {
	switch e.Reason {
	case ReasonRateLimited:
		return ErrCodeRateLimited
	case ReasonInvalidLocation:
		return ErrCodeInvalidLocation
	case ReasonUpstreamValidation:
		return ErrCodeUpstreamValidationFailed
	case ReasonMalformedResponse:
		return ErrCodeMalformedResponse
	case ReasonTimeout:
		return ErrCodeCollaboratorTimeout
	default:
		return ErrCodeCollaboratorUnavailable
	}
}

func (e *CollaboratorError) Standard() *StandardError {
	meta := map[string]interface{}{"reason": string(e.Reason)}
	if e.StatusCode != 0 {
		meta["statusCode"] = e.StatusCode
	}
	if len(e.Messages) > 0 {
		meta["messages"] = e.Messages
	}
	return &StandardError{
		Code:      e.Code(),
		Message:   "Generation lookup failed",
		Details:   e.Error(),
		Retryable: e.Retryable(),
		Metadata:  meta,
		Timestamp: time.Now().UTC(),
	}
}

// ComputationError marks a result that cannot be expressed as a number.
type ComputationError struct {
	Code   ErrorCode
	Reason string
}

func NewBreakevenUndefinedError(reason string) *ComputationError {
	return &ComputationError{Code: ErrCodeBreakevenUndefined, Reason: reason}
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation %s: %s", strings.ToLower(string(e.Code)), e.Reason)
}

func (e *ComputationError) Standard() *StandardError {
	return &StandardError{
		Code:      e.Code,
		Message:   "Computation undefined",
		Details:   e.Reason,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return stderrors.As(err, &v)
}

// ==========================
// 3. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 4. Error Constructors
// ==========================

func NewInputParsingError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputParsing,
		Message:   "Failed to parse job variables",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSchemaValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewStaleResponseError(sessionID, requestID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStaleResponse,
		Message:   "Lookup response no longer matches the active request",
		Details:   fmt.Sprintf("sessionId: %s, requestId: %s", sessionID, requestID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidTransitionError(sessionID, from, action string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidTransition,
		Message:   "Session cannot perform this step in its current state",
		Details:   fmt.Sprintf("sessionId: %s, state: %s, action: %s", sessionID, from, action),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSessionConflictError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionConflict,
		Message:   "Session was modified concurrently",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewSessionStoreError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStore,
		Message:   "Session store operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 5. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for the workflow engine.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCollaboratorUnavailable,
		ErrCodeSessionStore:
		return 3

	case ErrCodeCollaboratorTimeout,
		ErrCodeSessionConflict:
		return 2

	case ErrCodeRateLimited:
		return 1 // back off through the process timer, not tight retries

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"errorCategory":     GetErrorCategory(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ToStandardError normalizes any error returned by a worker.
func ToStandardError(err error) *StandardError {
	var (
		stdErr    *StandardError
		valErr    *ValidationError
		collabErr *CollaboratorError
		compErr   *ComputationError
	)
	switch {
	case stderrors.As(err, &stdErr):
		return stdErr
	case stderrors.As(err, &valErr):
		return valErr.Standard()
	case stderrors.As(err, &collabErr):
		return collabErr.Standard()
	case stderrors.As(err, &compErr):
		return compErr.Standard()
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 6. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeValidationFailed, ErrCodeInputParsing:
		return "VALIDATION"
	case ErrCodeRateLimited, ErrCodeInvalidLocation, ErrCodeUpstreamValidationFailed,
		ErrCodeMalformedResponse, ErrCodeCollaboratorTimeout, ErrCodeCollaboratorUnavailable:
		return "COLLABORATOR"
	case ErrCodeBreakevenUndefined:
		return "COMPUTATION"
	}
	if strings.HasPrefix(string(code), "SESSION") || code == ErrCodeStaleResponse || code == ErrCodeInvalidTransition {
		return "SESSION"
	}
	return "OTHER"
}
