// Package orchestrator drives the ordered provider chain and the local fallback.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"pagegen-workers/internal/common/errors"
	"pagegen-workers/internal/common/logger"
	"pagegen-workers/internal/common/metrics"
	"pagegen-workers/internal/fallback"
	"pagegen-workers/internal/htmlcheck"
	"pagegen-workers/internal/models"
	"pagegen-workers/internal/providers"
	"pagegen-workers/internal/ratelimit"
)

const (
	DefaultMaxAttempts = 2
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultTimeout     = 60 * time.Second
)

// Slot is one position in the provider chain. A nil Provider marks a slot
// that could not be constructed; Unavailable says why.
type Slot struct {
	Name        string
	Provider    providers.Provider
	Limit       int
	Timeout     time.Duration
	Unavailable string
}

// Options tunes retries and validation. Fallback replaces the local
// generator; nil uses fallback.Generate.
type Options struct {
	MaxAttempts   int
	RetryDelay    time.Duration
	MinHTMLLength int
	Fallback      func(req models.RequirementRecord, prompt string) string
}

type slot struct {
	Slot

	mu       sync.Mutex
	disabled bool
	reason   string
}

func (s *slot) available() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.disabled, s.reason
}

func (s *slot) disable(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disabled = true
	s.reason = reason
}

type Orchestrator struct {
	slots     []*slot
	limiter   ratelimit.Limiter
	validator *htmlcheck.Validator
	options   Options
	logger    logger.Logger
}

func New(slots []Slot, limiter ratelimit.Limiter, opts Options, log logger.Logger) *Orchestrator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	if opts.Fallback == nil {
		opts.Fallback = fallback.Generate
	}
	if limiter == nil {
		limiter = ratelimit.NewMemoryLimiter(ratelimit.DefaultWindow, nil)
	}

	o := &Orchestrator{
		limiter:   limiter,
		validator: htmlcheck.NewValidator(opts.MinHTMLLength),
		options:   opts,
		logger:    log.WithFields(map[string]interface{}{"component": "orchestrator"}),
	}
	for _, s := range slots {
		if s.Name == "" && s.Provider != nil {
			s.Name = s.Provider.Name()
		}
		if s.Timeout <= 0 {
			s.Timeout = DefaultTimeout
		}
		sl := &slot{Slot: s}
		if s.Provider == nil {
			reason := s.Unavailable
			if reason == "" {
				reason = "not configured"
			}
			sl.disable(reason)
		}
		o.slots = append(o.slots, sl)
	}
	return o
}

// SelfTest probes every available provider that supports it and disables the
// ones that fail. It returns the names still available.
func (o *Orchestrator) SelfTest(ctx context.Context) []string {
	for _, s := range o.slots {
		if ok, _ := s.available(); !ok {
			continue
		}
		tester, ok := s.Provider.(providers.SelfTester)
		if !ok {
			continue
		}
		callCtx, cancel := context.WithTimeout(ctx, s.Timeout)
		err := tester.SelfTest(callCtx)
		cancel()
		if err != nil {
			s.disable("self-test failed: " + err.Error())
			o.logger.Warn("provider failed self-test", map[string]interface{}{
				"provider": s.Name,
				"error":    err.Error(),
			})
		}
	}
	return o.Available()
}

// Available lists the providers that have not been disabled.
func (o *Orchestrator) Available() []string {
	var names []string
	for _, s := range o.slots {
		if ok, _ := s.available(); ok {
			names = append(names, s.Name)
		}
	}
	return names
}

// Generate walks the chain until a provider returns valid markup, then falls
// back to the local generator. The error is non-nil only when the local
// generator's output fails validation.
func (o *Orchestrator) Generate(ctx context.Context, instruction string, req models.RequirementRecord, prompt string) (models.GenerationOutcome, error) {
	var attempts []models.Attempt

	for _, s := range o.slots {
		if ctx.Err() != nil {
			break
		}
		html, tried, ok := o.trySlot(ctx, s, instruction)
		attempts = append(attempts, tried...)
		if ok {
			return models.GenerationOutcome{
				HTML:         html,
				Success:      true,
				ProviderUsed: s.Name,
				Attempts:     attempts,
			}, nil
		}
	}

	return o.local(req, prompt, attempts)
}

func (o *Orchestrator) trySlot(ctx context.Context, s *slot, instruction string) (string, []models.Attempt, bool) {
	var attempts []models.Attempt
	record := func(number int, status string, err error, latency time.Duration) {
		a := models.Attempt{Provider: s.Name, Number: number, Status: status, Latency: latency}
		if err != nil {
			a.Error = err.Error()
		}
		attempts = append(attempts, a)
	}

	if ok, reason := s.available(); !ok {
		metrics.ProviderSkipped.WithLabelValues(s.Name, "unavailable").Inc()
		o.logger.Debug("skipping unavailable provider", map[string]interface{}{"provider": s.Name, "reason": reason})
		record(0, models.AttemptUnavailable, nil, 0)
		return "", attempts, false
	}

	for n := 1; n <= o.options.MaxAttempts; n++ {
		if n > 1 && !sleep(ctx, o.options.RetryDelay) {
			return "", attempts, false
		}

		allowed, err := o.limiter.Allow(ctx, s.Name, s.Limit)
		if err != nil {
			metrics.ProviderSkipped.WithLabelValues(s.Name, "limiter_error").Inc()
			record(n, models.AttemptRateLimited, err, 0)
			o.logger.Warn("rate limiter unavailable, skipping provider", map[string]interface{}{"provider": s.Name, "error": err.Error()})
			return "", attempts, false
		}
		if !allowed {
			metrics.ProviderSkipped.WithLabelValues(s.Name, "rate_limited").Inc()
			record(n, models.AttemptRateLimited, errors.NewProviderRateLimitedError(s.Name, s.Limit), 0)
			return "", attempts, false
		}

		callCtx, cancel := context.WithTimeout(ctx, s.Timeout)
		start := time.Now()
		raw, err := s.Provider.Generate(callCtx, instruction)
		latency := time.Since(start)
		cancel()

		if err != nil {
			if providers.IsFatal(err) {
				s.disable(err.Error())
				metrics.ProviderCalls.WithLabelValues(s.Name, models.AttemptFatal).Inc()
				record(n, models.AttemptFatal, errors.NewProviderFatalError(s.Name, err), latency)
				o.logger.Warn("provider disabled after fatal error", map[string]interface{}{"provider": s.Name, "error": err.Error()})
				return "", attempts, false
			}
			metrics.ProviderCalls.WithLabelValues(s.Name, models.AttemptTransient).Inc()
			record(n, models.AttemptTransient, errors.NewProviderTransientError(s.Name, err), latency)
			o.logger.Info("provider attempt failed", map[string]interface{}{"provider": s.Name, "attempt": n, "error": err.Error()})
			continue
		}

		html, valid := o.validator.Repair(htmlcheck.Clean(raw))
		if !valid {
			problems := o.validator.Problems(html)
			metrics.ProviderCalls.WithLabelValues(s.Name, models.AttemptInvalid).Inc()
			record(n, models.AttemptInvalid, errors.NewHTMLValidationError(s.Name, problems), latency)
			o.logger.Info("provider returned invalid html", map[string]interface{}{"provider": s.Name, "attempt": n, "problems": problems})
			continue
		}

		metrics.ProviderCalls.WithLabelValues(s.Name, models.AttemptSucceeded).Inc()
		record(n, models.AttemptSucceeded, nil, latency)
		return html, attempts, true
	}
	return "", attempts, false
}

func (o *Orchestrator) local(req models.RequirementRecord, prompt string, attempts []models.Attempt) (models.GenerationOutcome, error) {
	metrics.FallbackGenerations.Inc()

	outcome := models.GenerationOutcome{
		HTML:         o.options.Fallback(req, prompt),
		ProviderUsed: models.ProviderLocalFallback,
		Attempts:     attempts,
	}
	if problems := o.validator.Problems(outcome.HTML); len(problems) > 0 {
		o.logger.Error("local generator produced invalid html", map[string]interface{}{"problems": problems})
		return outcome, errors.NewFallbackInvalidError(problems)
	}
	outcome.Success = true
	return outcome, nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
