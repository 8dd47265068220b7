// internal/orchestrator/slots.go
package orchestrator

import (
	"pagegen-workers/internal/common/config"
	"pagegen-workers/internal/providers"
)

// Builder constructs a provider from its configuration.
type Builder func(cfg config.ProviderConfig) (providers.Provider, error)

// SlotsFromConfig keeps the configured order and skips disabled entries.
// A provider that fails to build still occupies its slot as unavailable.
func SlotsFromConfig(cfgs []config.ProviderConfig, build Builder) []Slot {
	if build == nil {
		build = providers.New
	}
	var slots []Slot
	for _, c := range cfgs {
		if !c.Enabled {
			continue
		}
		s := Slot{
			Name:    c.Name,
			Limit:   c.RateLimit,
			Timeout: config.GetDuration(c.Timeout),
		}
		p, err := build(c)
		if err != nil {
			s.Unavailable = err.Error()
		} else {
			s.Provider = p
		}
		slots = append(slots, s)
	}
	return slots
}
