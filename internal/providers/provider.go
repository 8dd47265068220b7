// Package providers adapts hosted text generation services to one capability.
package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// SystemPrompt frames every generation request.
const SystemPrompt = "You are a senior front-end engineer. Reply with a single complete HTML document " +
	"that starts with <!DOCTYPE html>, keeps all CSS in a <style> element and uses no external assets. " +
	"Do not wrap the document in code fences or add commentary."

// Provider generates one page from an instruction.
type Provider interface {
	Name() string
	Generate(ctx context.Context, instruction string) (string, error)
}

// SelfTester is implemented by providers that can verify credentials cheaply.
type SelfTester interface {
	SelfTest(ctx context.Context) error
}

// Kind tells the orchestrator whether a failure is worth retrying.
type Kind int

const (
	KindTransient Kind = iota
	KindFatal
)

func (k Kind) String() string {
	if k == KindFatal {
		return "fatal"
	}
	return "transient"
}

// Error is a classified provider failure.
type Error struct {
	Provider string
	Kind     Kind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Transient wraps err as a retryable failure of provider.
func Transient(provider string, err error) error {
	return &Error{Provider: provider, Kind: KindTransient, Err: err}
}

// Fatal wraps err as a failure that makes provider unusable for the process.
func Fatal(provider string, err error) error {
	return &Error{Provider: provider, Kind: KindFatal, Err: err}
}

// IsFatal reports whether err is a fatal provider failure. Unclassified
// errors are transient.
func IsFatal(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == KindFatal
}

var quotaPhrases = []string{"quota", "insufficient", "credit", "billing"}

// classifyStatus maps an HTTP status from any backend to an error kind.
// Authentication, payment and permission failures are fatal, as is a 429
// that reports exhausted quota rather than a burst limit.
func classifyStatus(provider string, status int, err error) error {
	switch status {
	case http.StatusUnauthorized, http.StatusPaymentRequired, http.StatusForbidden:
		return Fatal(provider, err)
	case http.StatusTooManyRequests:
		msg := strings.ToLower(err.Error())
		for _, p := range quotaPhrases {
			if strings.Contains(msg, p) {
				return Fatal(provider, err)
			}
		}
	}
	return Transient(provider, err)
}
