package matchtemplate

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"pagegen-workers/internal/catalog"
	"pagegen-workers/internal/common/errors"
	"pagegen-workers/internal/common/logger"
	"pagegen-workers/internal/matching"
	"pagegen-workers/internal/models"
	"pagegen-workers/internal/pipeline"
	"pagegen-workers/internal/requirements"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMatcher struct {
	mock.Mock
}

func (m *MockMatcher) Match(prompt string) (models.RequirementRecord, models.MatchResult, string, error) {
	args := m.Called(prompt)
	return args.Get(0).(models.RequirementRecord), args.Get(1).(models.MatchResult), args.String(2), args.Error(3)
}

// ==========================
// Test Helper Functions
// ==========================

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "page-generation",
		ElementId:          "Activity_MatchTemplate",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func createTestHandler(t *testing.T, matcher Matcher) *Handler {
	h, err := NewHandler(DefaultConfig(), matcher, logger.NewTestLogger(t))
	require.NoError(t, err)
	return h
}

// realMatcher wires a pipeline over a one-entry corpus.
func realMatcher(t *testing.T) Matcher {
	log := logger.NewTestLogger(t)
	table, err := requirements.DefaultTable()
	require.NoError(t, err)
	analyzer := requirements.NewKeywordAnalyzer(table)

	path := filepath.Join(t.TempDir(), "auth.txt")
	require.NoError(t, os.WriteFile(path, []byte("(1) Modern login signup form\n"), 0o644))
	cat := catalog.New(catalog.Config{
		DefaultNamespace: "auth",
		Namespaces:       map[string]catalog.Namespace{"auth": {Name: "auth", CorpusPath: path}},
	}, analyzer, log)

	p, err := pipeline.New(pipeline.Config{}, pipeline.Deps{
		Analyzer:  analyzer,
		Catalog:   cat,
		Scorer:    matching.NewScorer(matching.DefaultConfig(), log),
		Generator: noGenerator{},
	}, log)
	require.NoError(t, err)
	return p
}

// ==========================
// Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	handler := createTestHandler(t, new(MockMatcher))

	input, err := handler.parseInput(createMockJob(1, map[string]interface{}{"prompt": "login page"}))
	require.NoError(t, err)
	assert.Equal(t, "login page", input.Prompt)

	_, err = handler.parseInput(createMockJob(2, map[string]interface{}{}))
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInputValidationFailed, stdErr.Code)
}

func TestHandler_Execute_Mocked(t *testing.T) {
	matcher := new(MockMatcher)
	req := models.DefaultRequirement()
	match := models.MatchResult{
		Tier:       models.TierPartial,
		TemplateID: 7,
		Score:      0.55,
		Entry:      models.TemplateEntry{ID: 7, Description: "Glass login"},
	}
	matcher.On("Match", "glass login").Return(req, match, "auth", nil)

	out, err := createTestHandler(t, matcher).Execute(&Input{Prompt: "glass login"})
	require.NoError(t, err)
	assert.Equal(t, 7, out.TemplateID)
	assert.Equal(t, models.TierPartial, out.Tier)
	assert.Equal(t, 0.55, out.MatchScore)
	assert.Equal(t, "Glass login", out.Description)
	assert.Equal(t, "auth", out.Namespace)
	matcher.AssertExpectations(t)
}

func TestHandler_Execute_BlankPrompt(t *testing.T) {
	matcher := new(MockMatcher)
	_, err := createTestHandler(t, matcher).Execute(&Input{Prompt: " \t"})
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodePromptRequired, stdErr.Code)
	matcher.AssertNotCalled(t, "Match", mock.Anything)
}

func TestHandler_Execute_ModernScenario(t *testing.T) {
	out, err := createTestHandler(t, realMatcher(t)).Execute(&Input{Prompt: "a modern page"})
	require.NoError(t, err)

	assert.Equal(t, 1, out.TemplateID)
	assert.Equal(t, models.StyleModern, out.Requirement.Style)
	assert.InDelta(t, 0.25, out.Breakdown.Style, 1e-9)
	assert.Zero(t, out.Breakdown.Features)
	assert.Greater(t, out.MatchScore, 0.25)
}

type noGenerator struct{}

func (noGenerator) Generate(context.Context, string, models.RequirementRecord, string) (models.GenerationOutcome, error) {
	return models.GenerationOutcome{}, nil
}
