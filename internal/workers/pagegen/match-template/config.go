// internal/workers/pagegen/match-template/config.go
package matchtemplate

import (
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
		MaxJobsActive: 10,
		Timeout:       10 * time.Second,
		MaxRetries:    3,
	}
}

func ConfigFromApp(cfg *config.Config) *Config {
	c := DefaultConfig()
	if w, ok := cfg.Workers[TaskType]; ok {
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
	}
	return c
}
