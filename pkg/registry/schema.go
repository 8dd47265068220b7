// pkg/registry/schema.go
package registry

import (
	"fmt"
	"time"

	"pagegen-workers/internal/common/errors"
)

// Status tracks how far a registered activity is built.
type Status string

const (
	StatusImplemented Status = "implemented"
	StatusPlanned     Status = "planned"
	StatusDeprecated  Status = "deprecated"
)

// ActivityRegistry is the catalog of job types the workers serve, with
// the JSON schemas used to validate job variables.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus Status                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	ErrorCodes           []string               `json:"errorCodes"` // BPMN codes the worker may throw
	Timeout              string                 `json:"timeout"`    // Go duration, e.g. "120s"
	Retries              int                    `json:"retries"`
	Workflows            []string               `json:"workflows"`
	Tags                 []string               `json:"tags"`
}

// TimeoutDuration parses Timeout. An empty value yields zero.
func (a Activity) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("activity %s timeout %q: %w", a.ID, a.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("activity %s timeout %q must be positive", a.ID, a.Timeout)
	}
	return d, nil
}

// UnknownErrorCodes lists declared codes no worker can throw.
func (a Activity) UnknownErrorCodes() []string {
	known := make(map[string]bool, len(errors.BPMNErrorMapping))
	for _, code := range errors.BPMNErrorMapping {
		known[code] = true
	}

	var unknown []string
	for _, code := range a.ErrorCodes {
		if !known[code] {
			unknown = append(unknown, code)
		}
	}
	return unknown
}

func (s Status) valid() bool {
	switch s {
	case StatusImplemented, StatusPlanned, StatusDeprecated, "":
		return true
	}
	return false
}
