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

// Request and generation errors
const (
	ErrCodePromptRequired        ErrorCode = "PROMPT_REQUIRED"
	ErrCodeInputValidationFailed ErrorCode = "INPUT_VALIDATION_FAILED"
	ErrCodeCatalogUnavailable    ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeHTMLValidationFailed  ErrorCode = "HTML_VALIDATION_FAILED"
	ErrCodeArtifactSaveFailed    ErrorCode = "ARTIFACT_SAVE_FAILED"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
	ErrCodeFallbackInvalid       ErrorCode = "FALLBACK_INVALID"
)

// Provider errors
const (
	ErrCodeProviderTransient   ErrorCode = "PROVIDER_TRANSIENT"
	ErrCodeProviderFatal       ErrorCode = "PROVIDER_FATAL"
	ErrCodeProviderRateLimited ErrorCode = "PROVIDER_RATE_LIMITED"
)

// Workflow engine errors
const (
	ErrCodeEngineUnavailable ErrorCode = "ENGINE_UNAVAILABLE"
	ErrCodeEngineRejected    ErrorCode = "ENGINE_REJECTED"
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

// AsStandardError reports whether err wraps a StandardError and returns it.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// ==========================
// 2. BPMN Error Integration
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
// 3. Error Constructors
// ==========================

// NewPromptRequiredError rejects an empty or blank prompt.
func NewPromptRequiredError() *StandardError {
	return &StandardError{
		Code:      ErrCodePromptRequired,
		Message:   "Please describe the page you want to build",
		Details:   "prompt is empty",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInputValidationError creates a non-retryable job input error.
func NewInputValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputValidationFailed,
		Message:   "Job variables failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogUnavailableError records a corpus that could not be read.
func NewCatalogUnavailableError(namespace string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogUnavailable,
		Message:   "Template catalog unavailable",
		Details:   fmt.Sprintf("namespace: %s, error: %s", namespace, err.Error()),
		Retryable: false,
		Metadata:  map[string]interface{}{"namespace": namespace},
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderTransientError creates a retryable provider error.
func NewProviderTransientError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderTransient,
		Message:   fmt.Sprintf("Provider '%s' failed", provider),
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"provider": provider},
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderFatalError marks a provider unusable for the rest of the process.
func NewProviderFatalError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderFatal,
		Message:   fmt.Sprintf("Provider '%s' is unusable", provider),
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"provider": provider},
		Timestamp: time.Now().UTC(),
	}
}

func NewProviderRateLimitedError(provider string, limit int) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderRateLimited,
		Message:   fmt.Sprintf("Provider '%s' rate limit reached", provider),
		Details:   fmt.Sprintf("limit: %d per window", limit),
		Retryable: true,
		Metadata:  map[string]interface{}{"provider": provider, "limit": limit},
		Timestamp: time.Now().UTC(),
	}
}

// NewHTMLValidationError lists the structural problems of a generated page.
func NewHTMLValidationError(source string, problems []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeHTMLValidationFailed,
		Message:   "Generated HTML failed validation",
		Details:   fmt.Sprintf("source: %s, problems: %s", source, strings.Join(problems, "; ")),
		Retryable: true,
		Metadata:  map[string]interface{}{"source": source},
		Timestamp: time.Now().UTC(),
	}
}

// NewFallbackInvalidError reports a local generator defect.
func NewFallbackInvalidError(problems []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFallbackInvalid,
		Message:   "Local generator produced invalid HTML",
		Details:   strings.Join(problems, "; "),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewArtifactSaveFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArtifactSaveFailed,
		Message:   "Could not save generated page",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEngineUnavailableError wraps a transient Zeebe gateway failure.
func NewEngineUnavailableError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEngineUnavailable,
		Message:   fmt.Sprintf("Zeebe operation '%s' failed", operation),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEngineRejectedError wraps a command the broker refused.
func NewEngineRejectedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEngineRejected,
		Message:   fmt.Sprintf("Zeebe rejected '%s'", operation),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodePromptRequired:        "PROMPT_REQUIRED",
	ErrCodeInputValidationFailed: "INPUT_VALIDATION_FAILED",
	ErrCodeCatalogUnavailable:    "CATALOG_UNAVAILABLE",
	ErrCodeProviderTransient:     "PROVIDER_ERROR",
	ErrCodeProviderFatal:         "PROVIDER_ERROR",
	ErrCodeProviderRateLimited:   "PROVIDER_ERROR",
	ErrCodeHTMLValidationFailed:  "HTML_VALIDATION_FAILED",
	ErrCodeFallbackInvalid:       "GENERATION_FAILED",
	ErrCodeArtifactSaveFailed:    "ARTIFACT_SAVE_FAILED",
	ErrCodeInternal:              "INTERNAL_ERROR",
	ErrCodeEngineUnavailable:     "ENGINE_UNAVAILABLE",
	ErrCodeEngineRejected:        "ENGINE_REJECTED",
}

// GetRetryCount returns the recommended job retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeArtifactSaveFailed,
		ErrCodeProviderTransient,
		ErrCodeEngineUnavailable:
		return 3

	case ErrCodeProviderRateLimited,
		ErrCodeHTMLValidationFailed:
		return 1

	default:
		return 0 // Input and defect errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PROMPT") || strings.Contains(codeStr, "INPUT"):
		return "INPUT"
	case strings.Contains(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "PROVIDER"):
		return "PROVIDER"
	case strings.Contains(codeStr, "HTML") || strings.Contains(codeStr, "FALLBACK"):
		return "GENERATION"
	case strings.Contains(codeStr, "ARTIFACT"):
		return "STORAGE"
	case strings.Contains(codeStr, "ENGINE"):
		return "ENGINE"
	default:
		return "OTHER"
	}
}
