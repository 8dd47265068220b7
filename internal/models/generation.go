// internal/models/generation.go
package models

import "time"

const (
	ProviderLocalFallback = "local-fallback"
	ProviderNone          = "none"
)

// AttemptStatus values recorded per provider invocation.
const (
	AttemptSucceeded   = "succeeded"
	AttemptTransient   = "transient"
	AttemptFatal       = "fatal"
	AttemptInvalid     = "invalid"
	AttemptRateLimited = "rate_limited"
	AttemptUnavailable = "unavailable"
)

type Attempt struct {
	Provider string        `json:"provider"`
	Number   int           `json:"number"`
	Status   string        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Latency  time.Duration `json:"latency"`
}

// GenerationOutcome is the result of one orchestrated generation.
// Success is false only when the local fallback itself produced invalid markup.
type GenerationOutcome struct {
	HTML         string    `json:"html"`
	Success      bool      `json:"success"`
	ProviderUsed string    `json:"providerUsed"`
	Attempts     []Attempt `json:"attempts,omitempty"`
}
