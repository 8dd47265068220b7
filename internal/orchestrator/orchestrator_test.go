package orchestrator

import (
	"context"
	stderrors "errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"pagegen-workers/internal/common/config"
	"pagegen-workers/internal/common/errors"
	"pagegen-workers/internal/common/logger"
	"pagegen-workers/internal/htmlcheck"
	"pagegen-workers/internal/models"
	"pagegen-workers/internal/providers"
	"pagegen-workers/internal/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Provider Implementation
// ==========================

type MockProvider struct {
	mock.Mock
	name string
}

func (m *MockProvider) Name() string { return m.name }

func (m *MockProvider) Generate(ctx context.Context, instruction string) (string, error) {
	args := m.Called(ctx, instruction)
	return args.String(0), args.Error(1)
}

type MockSelfTestProvider struct {
	MockProvider
}

func (m *MockSelfTestProvider) SelfTest(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, int) (bool, error) {
	return false, stderrors.New("redis down")
}

// ==========================
// Test Helpers
// ==========================

var validPage = "<!DOCTYPE html>\n<html><head><title>Login</title></head><body>" +
	strings.Repeat("<p>content</p>", 20) + "</body></html>"

func testRequirement() models.RequirementRecord {
	return models.RequirementRecord{
		Style:          models.StyleModern,
		Colors:         []string{},
		Features:       []string{},
		Complexity:     models.ComplexityMedium,
		ThemeIntensity: "medium",
		Category:       "auth",
		WebsiteType:    "general",
	}
}

func newOrchestrator(t *testing.T, slots ...Slot) *Orchestrator {
	return New(slots, ratelimit.NewMemoryLimiter(time.Minute, nil), Options{RetryDelay: time.Millisecond}, logger.NewTestLogger(t))
}

func newMock(name string) *MockProvider {
	return &MockProvider{name: name}
}

// ==========================
// Provider chain
// ==========================

func TestGenerate_PrimarySucceeds(t *testing.T) {
	primary := newMock("primary")
	primary.On("Generate", mock.Anything, "instr").Return("```html\n"+validPage+"\n```", nil).Once()
	secondary := newMock("secondary")

	o := newOrchestrator(t, Slot{Provider: primary, Limit: 5}, Slot{Provider: secondary, Limit: 5})
	outcome, err := o.Generate(context.Background(), "instr", testRequirement(), "login")

	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, "primary", outcome.ProviderUsed)
	assert.Equal(t, validPage, outcome.HTML, "fences stripped")
	require.Len(t, outcome.Attempts, 1)
	assert.Equal(t, models.AttemptSucceeded, outcome.Attempts[0].Status)
	primary.AssertExpectations(t)
	secondary.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerate_TransientRetriedThenNextProvider(t *testing.T) {
	primary := newMock("primary")
	primary.On("Generate", mock.Anything, "instr").Return("", providers.Transient("primary", stderrors.New("503"))).Twice()
	secondary := newMock("secondary")
	secondary.On("Generate", mock.Anything, "instr").Return(validPage, nil).Once()

	o := newOrchestrator(t, Slot{Provider: primary, Limit: 5}, Slot{Provider: secondary, Limit: 5})
	outcome, err := o.Generate(context.Background(), "instr", testRequirement(), "login")

	require.NoError(t, err)
	assert.Equal(t, "secondary", outcome.ProviderUsed)
	require.Len(t, outcome.Attempts, 3)
	assert.Equal(t, models.AttemptTransient, outcome.Attempts[0].Status)
	assert.Equal(t, 2, outcome.Attempts[1].Number)
	primary.AssertExpectations(t)
	secondary.AssertExpectations(t)
}

func TestGenerate_InvalidOutputRetried(t *testing.T) {
	primary := newMock("primary")
	primary.On("Generate", mock.Anything, "instr").Return("<p>too short</p>", nil).Once()
	primary.On("Generate", mock.Anything, "instr").Return(validPage, nil).Once()

	o := newOrchestrator(t, Slot{Provider: primary, Limit: 5})
	outcome, err := o.Generate(context.Background(), "instr", testRequirement(), "login")

	require.NoError(t, err)
	assert.Equal(t, "primary", outcome.ProviderUsed)
	require.Len(t, outcome.Attempts, 2)
	assert.Equal(t, models.AttemptInvalid, outcome.Attempts[0].Status)
	assert.Contains(t, outcome.Attempts[0].Error, "HTML")
}

func TestGenerate_RepairsMissingClosingTags(t *testing.T) {
	truncated := strings.TrimSuffix(validPage, "</body></html>")
	primary := newMock("primary")
	primary.On("Generate", mock.Anything, "instr").Return(truncated, nil).Once()

	o := newOrchestrator(t, Slot{Provider: primary, Limit: 5})
	outcome, err := o.Generate(context.Background(), "instr", testRequirement(), "login")

	require.NoError(t, err)
	assert.Equal(t, "primary", outcome.ProviderUsed)
	assert.True(t, htmlcheck.NewValidator(0).Valid(outcome.HTML))
}

func TestGenerate_FatalDisablesProviderForProcess(t *testing.T) {
	primary := newMock("primary")
	primary.On("Generate", mock.Anything, "instr").Return("", providers.Fatal("primary", stderrors.New("insufficient quota"))).Once()
	secondary := newMock("secondary")
	secondary.On("Generate", mock.Anything, "instr").Return(validPage, nil).Twice()

	o := newOrchestrator(t, Slot{Provider: primary, Limit: 5}, Slot{Provider: secondary, Limit: 5})

	first, err := o.Generate(context.Background(), "instr", testRequirement(), "login")
	require.NoError(t, err)
	assert.Equal(t, "secondary", first.ProviderUsed)
	assert.Equal(t, models.AttemptFatal, first.Attempts[0].Status)
	assert.Equal(t, []string{"secondary"}, o.Available())

	second, err := o.Generate(context.Background(), "instr", testRequirement(), "login")
	require.NoError(t, err)
	assert.Equal(t, "secondary", second.ProviderUsed)
	assert.Equal(t, models.AttemptUnavailable, second.Attempts[0].Status)

	primary.AssertNumberOfCalls(t, "Generate", 1)
}

func TestGenerate_AllFatalFallsBackLocally(t *testing.T) {
	primary := newMock("primary")
	primary.On("Generate", mock.Anything, mock.Anything).Return("", providers.Fatal("primary", stderrors.New("401")))
	secondary := newMock("secondary")
	secondary.On("Generate", mock.Anything, mock.Anything).Return("", providers.Fatal("secondary", stderrors.New("402")))

	o := newOrchestrator(t, Slot{Provider: primary, Limit: 5}, Slot{Provider: secondary, Limit: 5})
	outcome, err := o.Generate(context.Background(), "instr", testRequirement(), "login page")

	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, models.ProviderLocalFallback, outcome.ProviderUsed)
	assert.True(t, htmlcheck.NewValidator(0).Valid(outcome.HTML))
	assert.Empty(t, o.Available())
}

func TestGenerate_NoProvidersUsesFallback(t *testing.T) {
	o := newOrchestrator(t)
	outcome, err := o.Generate(context.Background(), "instr", testRequirement(), "login")
	require.NoError(t, err)
	assert.Equal(t, models.ProviderLocalFallback, outcome.ProviderUsed)
	assert.Empty(t, outcome.Attempts)
}

func TestGenerate_UnavailableSlotIsSkipped(t *testing.T) {
	o := newOrchestrator(t, Slot{Name: "primary", Unavailable: "openai api key missing"})
	outcome, err := o.Generate(context.Background(), "instr", testRequirement(), "login")
	require.NoError(t, err)
	assert.Equal(t, models.ProviderLocalFallback, outcome.ProviderUsed)
	require.Len(t, outcome.Attempts, 1)
	assert.Equal(t, models.AttemptUnavailable, outcome.Attempts[0].Status)
}

// ==========================
// Rate limiting and timeouts
// ==========================

func TestGenerate_RateLimitSkipsProvider(t *testing.T) {
	primary := newMock("primary")
	primary.On("Generate", mock.Anything, "instr").Return(validPage, nil).Once()

	o := newOrchestrator(t, Slot{Provider: primary, Limit: 1})

	first, err := o.Generate(context.Background(), "instr", testRequirement(), "login")
	require.NoError(t, err)
	assert.Equal(t, "primary", first.ProviderUsed)

	second, err := o.Generate(context.Background(), "instr", testRequirement(), "login")
	require.NoError(t, err)
	assert.Equal(t, models.ProviderLocalFallback, second.ProviderUsed)
	assert.Equal(t, models.AttemptRateLimited, second.Attempts[0].Status)
	primary.AssertNumberOfCalls(t, "Generate", 1)
}

func TestGenerate_LimiterErrorSkipsProvider(t *testing.T) {
	primary := newMock("primary")
	o := New([]Slot{{Provider: primary, Limit: 5}}, failingLimiter{}, Options{}, logger.NewTestLogger(t))

	outcome, err := o.Generate(context.Background(), "instr", testRequirement(), "login")
	require.NoError(t, err)
	assert.Equal(t, models.ProviderLocalFallback, outcome.ProviderUsed)
	primary.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerate_TimeoutEnforced(t *testing.T) {
	primary := newMock("primary")
	primary.On("Generate", mock.Anything, "instr").
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return("", providers.Transient("primary", context.DeadlineExceeded))

	o := newOrchestrator(t, Slot{Provider: primary, Limit: 5, Timeout: 20 * time.Millisecond})

	start := time.Now()
	outcome, err := o.Generate(context.Background(), "instr", testRequirement(), "login")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, models.ProviderLocalFallback, outcome.ProviderUsed)
	primary.AssertNumberOfCalls(t, "Generate", 2)
}

func TestGenerate_CancelledContextSkipsToFallback(t *testing.T) {
	primary := newMock("primary")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := newOrchestrator(t, Slot{Provider: primary, Limit: 5})
	outcome, err := o.Generate(ctx, "instr", testRequirement(), "login")
	require.NoError(t, err)
	assert.Equal(t, models.ProviderLocalFallback, outcome.ProviderUsed)
	primary.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

// ==========================
// Fallback defect and self-test
// ==========================

func TestGenerate_InvalidFallbackIsDefect(t *testing.T) {
	o := New(nil, nil, Options{Fallback: func(models.RequirementRecord, string) string { return "<p>broken</p>" }}, logger.NewTestLogger(t))

	outcome, err := o.Generate(context.Background(), "instr", testRequirement(), "login")
	require.Error(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, models.ProviderLocalFallback, outcome.ProviderUsed)

	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeFallbackInvalid, stdErr.Code)
}

func TestSelfTest(t *testing.T) {
	healthy := &MockSelfTestProvider{MockProvider{name: "healthy"}}
	healthy.On("SelfTest", mock.Anything).Return(nil)
	broken := &MockSelfTestProvider{MockProvider{name: "broken"}}
	broken.On("SelfTest", mock.Anything).Return(providers.Fatal("broken", stderrors.New("401")))
	plain := newMock("plain")

	o := newOrchestrator(t,
		Slot{Provider: healthy, Limit: 1},
		Slot{Provider: broken, Limit: 1},
		Slot{Provider: plain, Limit: 1},
		Slot{Name: "missing", Unavailable: "no key"},
	)

	assert.Equal(t, []string{"healthy", "plain"}, o.SelfTest(context.Background()))
	healthy.AssertExpectations(t)
	broken.AssertExpectations(t)
}

func TestSlotsFromConfig(t *testing.T) {
	var built atomic.Int32
	build := func(c config.ProviderConfig) (providers.Provider, error) {
		built.Add(1)
		if c.APIKey == "" {
			return nil, stderrors.New("api key missing")
		}
		return newMock(c.Name), nil
	}

	slots := SlotsFromConfig([]config.ProviderConfig{
		{Name: "primary", Type: "openai", Enabled: true, APIKey: "k", RateLimit: 3, Timeout: 1500},
		{Name: "off", Type: "openai", Enabled: false, APIKey: "k"},
		{Name: "secondary", Type: "anthropic", Enabled: true},
	}, build)

	require.Len(t, slots, 2)
	assert.Equal(t, int32(2), built.Load())
	assert.Equal(t, "primary", slots[0].Name)
	assert.Equal(t, 3, slots[0].Limit)
	assert.Equal(t, 1500*time.Millisecond, slots[0].Timeout)
	assert.NotNil(t, slots[0].Provider)
	assert.Nil(t, slots[1].Provider)
	assert.Equal(t, "api key missing", slots[1].Unavailable)
}
