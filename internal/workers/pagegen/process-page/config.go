// internal/workers/pagegen/process-page/config.go
package processpage

import (
	"fmt"
	"time"

	"pagegen-workers/internal/common/config"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
	MaxRetries    int
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       120 * time.Second,
		MaxRetries:    3,
	}
}

// ConfigFromApp overlays the workers.page.process section, when present, on the defaults.
func ConfigFromApp(cfg *config.Config) *Config {
	c := DefaultConfig()
	w, ok := cfg.Workers[TaskType]
	if !ok {
		return c
	}
	c.Enabled = w.Enabled
	if w.MaxJobsActive > 0 {
		c.MaxJobsActive = w.MaxJobsActive
	}
	if w.Timeout > 0 {
		c.Timeout = config.GetDuration(w.Timeout)
	}
	if w.MaxRetries > 0 {
		c.MaxRetries = w.MaxRetries
	}
	return c
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	return nil
}
