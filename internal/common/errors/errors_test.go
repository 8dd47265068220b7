package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{"prompt required", NewPromptRequiredError(), "PROMPT_REQUIRED", 0},
		{"input validation", NewInputValidationError("prompt: required"), "INPUT_VALIDATION_FAILED", 0},
		{"provider transient", NewProviderTransientError("openai", fmt.Errorf("timeout")), "PROVIDER_ERROR", 3},
		{"provider fatal", NewProviderFatalError("anthropic", fmt.Errorf("401")), "PROVIDER_ERROR", 0},
		{"fallback invalid", NewFallbackInvalidError([]string{"missing </body>"}), "GENERATION_FAILED", 0},
		{"artifact save", NewArtifactSaveFailedError("/tmp/x.html", fmt.Errorf("disk full")), "ARTIFACT_SAVE_FAILED", 3},
		{"internal", NewInternalError(fmt.Errorf("boom")), "INTERNAL_ERROR", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)
			assert.Equal(t, tt.err.Retryable, bpmn.Retryable)

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
			assert.Equal(t, tt.wantCode, vars["errorCode"])
		})
	}
}

func TestConvertToBPMNError_UnmappedCode(t *testing.T) {
	bpmn := ConvertToBPMNError(&StandardError{Code: "SOMETHING_NEW", Message: "x"})
	assert.Equal(t, "SOMETHING_NEW", bpmn.Code)
	assert.Zero(t, bpmn.Retries)
}

func TestAsStandardError(t *testing.T) {
	wrapped := fmt.Errorf("pipeline: %w", NewPromptRequiredError())
	stdErr, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodePromptRequired, stdErr.Code)

	_, ok = AsStandardError(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "INPUT", GetErrorCategory(ErrCodePromptRequired))
	assert.Equal(t, "INPUT", GetErrorCategory(ErrCodeInputValidationFailed))
	assert.Equal(t, "CATALOG", GetErrorCategory(ErrCodeCatalogUnavailable))
	assert.Equal(t, "PROVIDER", GetErrorCategory(ErrCodeProviderRateLimited))
	assert.Equal(t, "GENERATION", GetErrorCategory(ErrCodeFallbackInvalid))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeArtifactSaveFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))

	assert.True(t, IsRetryableErrorCode(ErrCodeProviderTransient))
	assert.False(t, IsRetryableErrorCode(ErrCodeFallbackInvalid))
}
