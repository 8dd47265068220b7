// Package pipeline composes analysis, matching, gap analysis and generation
// into one decision per prompt.
package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pagegen-workers/internal/catalog"
	"pagegen-workers/internal/common/errors"
	"pagegen-workers/internal/common/logger"
	"pagegen-workers/internal/common/metrics"
	"pagegen-workers/internal/fallback"
	"pagegen-workers/internal/gap"
	"pagegen-workers/internal/htmlcheck"
	"pagegen-workers/internal/matching"
	"pagegen-workers/internal/models"
	"pagegen-workers/internal/requirements"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	DefaultEnhancementThreshold = 0.70
	DefaultExcerptChars         = 4000
)

// Generator produces replacement markup; the orchestrator implements it.
type Generator interface {
	Generate(ctx context.Context, instruction string, req models.RequirementRecord, prompt string) (models.GenerationOutcome, error)
}

// ArtifactStore persists validated pages.
type ArtifactStore interface {
	Save(callerID, html string) (string, error)
}

type Config struct {
	EnhancementThreshold float64
	ExcerptChars         int
	MinHTMLLength        int
}

// Deps are the collaborators of a Pipeline. Store, Tracer and Fallback are
// optional.
type Deps struct {
	Analyzer  requirements.Analyzer
	Catalog   *catalog.Catalog
	Scorer    *matching.Scorer
	Generator Generator
	Store     ArtifactStore
	Tracer    trace.Tracer
	Fallback  func(req models.RequirementRecord, prompt string) string
}

// Result is the decision taken for one prompt.
type Result struct {
	RequestID    string                   `json:"requestId"`
	TemplateID   int                      `json:"templateId"`
	Tier         models.MatchTier         `json:"tier"`
	MatchScore   float64                  `json:"matchScore"`
	Requirement  models.RequirementRecord `json:"requirement"`
	Narrative    string                   `json:"narrative"`
	Enhanced     bool                     `json:"enhanced"`
	ProviderUsed string                   `json:"providerUsed"`
	HTML         string                   `json:"html,omitempty"`
	ArtifactPath string                   `json:"artifactPath,omitempty"`
	Gap          *models.GapReport        `json:"gap,omitempty"`
	Attempts     []models.Attempt         `json:"attempts,omitempty"`
	Degraded     bool                     `json:"degraded"`
}

type Pipeline struct {
	config    Config
	deps      Deps
	validator *htmlcheck.Validator
	logger    logger.Logger
}

func New(config Config, deps Deps, log logger.Logger) (*Pipeline, error) {
	switch {
	case deps.Analyzer == nil:
		return nil, fmt.Errorf("pipeline: analyzer is required")
	case deps.Catalog == nil:
		return nil, fmt.Errorf("pipeline: catalog is required")
	case deps.Scorer == nil:
		return nil, fmt.Errorf("pipeline: scorer is required")
	case deps.Generator == nil:
		return nil, fmt.Errorf("pipeline: generator is required")
	}
	if config.EnhancementThreshold <= 0 {
		config.EnhancementThreshold = DefaultEnhancementThreshold
	}
	if config.ExcerptChars <= 0 {
		config.ExcerptChars = DefaultExcerptChars
	}
	if deps.Tracer == nil {
		deps.Tracer = noop.NewTracerProvider().Tracer("pipeline")
	}
	if deps.Fallback == nil {
		deps.Fallback = fallback.Generate
	}
	return &Pipeline{
		config:    config,
		deps:      deps,
		validator: htmlcheck.NewValidator(config.MinHTMLLength),
		logger:    log.WithFields(map[string]interface{}{"component": "pipeline"}),
	}, nil
}

// Match runs analysis and matching only.
func (p *Pipeline) Match(prompt string) (models.RequirementRecord, models.MatchResult, string, error) {
	if strings.TrimSpace(prompt) == "" {
		return models.RequirementRecord{}, models.MatchResult{}, "", errors.NewPromptRequiredError()
	}
	req := p.deps.Analyzer.Analyze(prompt)
	namespace := p.deps.Catalog.Resolve(req.Category)
	match := p.deps.Scorer.FindBest(req, p.deps.Catalog.Load(namespace))
	return req, match, namespace, nil
}

// Process decides whether the best template is good enough and generates a
// replacement when it is not. Only a blank prompt or a local generator
// defect produce an error; every other failure degrades to local generation.
func (p *Pipeline) Process(ctx context.Context, prompt, callerID string) (res *Result, err error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.NewPromptRequiredError()
	}

	start := time.Now()
	requestID := uuid.NewString()
	log := p.logger.WithFields(map[string]interface{}{"requestId": requestID, "callerId": callerID})

	ctx, span := p.deps.Tracer.Start(ctx, "pipeline.Process", trace.WithAttributes(
		attribute.String("request.id", requestID),
	))

	req := models.DefaultRequirement()
	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline panic recovered", map[string]interface{}{"panic": fmt.Sprint(r)})
			res, err = p.degraded(requestID, prompt, callerID, req, fmt.Errorf("panic: %v", r))
		}
		p.finish(span, res, err, start)
	}()

	req = p.deps.Analyzer.Analyze(prompt)
	namespace := p.deps.Catalog.Resolve(req.Category)
	match := p.deps.Scorer.FindBest(req, p.deps.Catalog.Load(namespace))

	res = &Result{
		RequestID:    requestID,
		TemplateID:   match.TemplateID,
		Tier:         match.Tier,
		MatchScore:   match.Score,
		Requirement:  req,
		ProviderUsed: models.ProviderNone,
	}

	log.Info("template matched", map[string]interface{}{
		"namespace":  namespace,
		"templateId": match.TemplateID,
		"tier":       string(match.Tier),
		"score":      match.Score,
		"style":      req.Style,
		"category":   req.Category,
	})

	if match.Score >= p.config.EnhancementThreshold {
		res.Narrative = fmt.Sprintf("Template %d is a %s match (score %.2f); returning it unchanged.",
			match.TemplateID, match.Tier, match.Score)
		return res, nil
	}

	report := gap.Diff(req, match.Entry)
	res.Gap = &report
	excerpt := gap.Excerpt(p.deps.Catalog.Markup(namespace, match.TemplateID), p.config.ExcerptChars)
	instruction := gap.BuildInstruction(prompt, excerpt, report)

	outcome, genErr := p.deps.Generator.Generate(ctx, instruction, req, prompt)
	res.Enhanced = true
	res.ProviderUsed = outcome.ProviderUsed
	res.Attempts = outcome.Attempts
	if genErr != nil {
		res.Narrative = fmt.Sprintf("Template %d scored %.2f; generation failed: %s.", match.TemplateID, match.Score, genErr.Error())
		return res, genErr
	}

	res.HTML = outcome.HTML
	res.Narrative = p.narrate(match, report, outcome.ProviderUsed)
	res.ArtifactPath = p.save(log, callerID, outcome.HTML)
	return res, nil
}

func (p *Pipeline) narrate(match models.MatchResult, report models.GapReport, provider string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Template %d is a %s match (score %.2f, below %.2f)", match.TemplateID, match.Tier, match.Score, p.config.EnhancementThreshold)
	if !report.IsEmpty() {
		b.WriteString("; changes requested: ")
		b.WriteString(strings.Join(gap.Instructions(report), " "))
	} else {
		b.WriteString(".")
	}
	if provider == models.ProviderLocalFallback {
		b.WriteString(" No provider was available, so the page was generated locally.")
	} else {
		fmt.Fprintf(&b, " Generated by %s.", provider)
	}
	return b.String()
}

// degraded recovers from an internal failure by generating locally.
func (p *Pipeline) degraded(requestID, prompt, callerID string, req models.RequirementRecord, cause error) (*Result, error) {
	res := &Result{
		RequestID:    requestID,
		TemplateID:   catalog.FallbackID,
		Tier:         models.TierNone,
		Requirement:  req,
		Enhanced:     true,
		ProviderUsed: models.ProviderLocalFallback,
		Degraded:     true,
		Narrative:    fmt.Sprintf("Degraded operation: an internal error occurred (%s); the page was generated locally.", cause.Error()),
	}

	html := p.deps.Fallback(req, prompt)
	metrics.FallbackGenerations.Inc()
	if problems := p.validator.Problems(html); len(problems) > 0 {
		return res, errors.NewFallbackInvalidError(problems)
	}
	res.HTML = html
	res.ArtifactPath = p.save(p.logger.WithFields(map[string]interface{}{"requestId": requestID}), callerID, html)
	return res, nil
}

func (p *Pipeline) save(log logger.Logger, callerID, html string) string {
	if p.deps.Store == nil {
		return ""
	}
	path, err := p.deps.Store.Save(callerID, html)
	if err != nil {
		log.Warn("artifact save failed", map[string]interface{}{"error": errors.NewArtifactSaveFailedError(path, err).Details})
		return ""
	}
	return path
}

func (p *Pipeline) finish(span trace.Span, res *Result, err error, start time.Time) {
	defer span.End()
	metrics.PipelineDuration.Observe(time.Since(start).Seconds())

	if res != nil {
		metrics.Decisions.WithLabelValues(string(res.Tier), strconv.FormatBool(res.Enhanced)).Inc()
		span.SetAttributes(
			attribute.Int("template.id", res.TemplateID),
			attribute.String("match.tier", string(res.Tier)),
			attribute.Float64("match.score", res.MatchScore),
			attribute.String("provider", res.ProviderUsed),
			attribute.Bool("degraded", res.Degraded),
		)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
