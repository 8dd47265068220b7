// internal/pipeline/builder.go
package pipeline

import (
	"fmt"
	"time"

	"pagegen-workers/internal/artifacts"
	"pagegen-workers/internal/catalog"
	"pagegen-workers/internal/common/config"
	"pagegen-workers/internal/common/logger"
	"pagegen-workers/internal/matching"
	"pagegen-workers/internal/orchestrator"
	"pagegen-workers/internal/ratelimit"
	"pagegen-workers/internal/requirements"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

// BuildOptions carries process-wide collaborators the config cannot describe.
type BuildOptions struct {
	// Redis backs the shared rate limiter when ratelimit.backend is redis.
	Redis redis.Scripter
	// Tracer defaults to a noop tracer.
	Tracer trace.Tracer
	// Providers overrides provider construction, mainly for tests.
	Providers orchestrator.Builder
}

// Service bundles a Pipeline with the parts callers still need to reach.
type Service struct {
	*Pipeline
	Orchestrator *orchestrator.Orchestrator
	Catalog      *catalog.Catalog
	Analyzer     requirements.Analyzer
}

// Build assembles every component from configuration.
func Build(cfg *config.Config, log logger.Logger, opts BuildOptions) (*Service, error) {
	analyzer, err := requirements.NewAnalyzer(requirements.Options{
		KeywordsPath: cfg.Analyzer.KeywordsPath,
		LexiconPath:  cfg.Analyzer.LexiconPath,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("build analyzer: %w", err)
	}

	table, err := requirements.LoadTable(cfg.Analyzer.KeywordsPath)
	if err != nil {
		return nil, fmt.Errorf("build catalog analyzer: %w", err)
	}
	cat := catalog.New(catalogConfig(cfg.Catalog), requirements.NewKeywordAnalyzer(table), log)

	matchCfg := matching.Config{
		Weights: matching.Weights{
			StyleExact: cfg.Matching.Weights.StyleExact,
			StyleGroup: cfg.Matching.Weights.StyleGroup,
			Features:   cfg.Matching.Weights.Features,
			Theme:      cfg.Matching.Weights.Theme,
			Complexity: cfg.Matching.Weights.Complexity,
			SingleForm: cfg.Matching.Weights.SingleForm,
		},
		Thresholds: matching.Thresholds{
			Exact:         cfg.Matching.Thresholds.Exact,
			ExactComplex:  cfg.Matching.Thresholds.ExactComplex,
			Partial:       cfg.Matching.Thresholds.Partial,
			PartialSimple: cfg.Matching.Thresholds.PartialSimple,
		},
	}
	if err := matchCfg.Validate(); err != nil {
		return nil, fmt.Errorf("build scorer: %w", err)
	}
	scorer := matching.NewScorer(matchCfg, log)

	limiter, err := buildLimiter(cfg.RateLimit, opts.Redis)
	if err != nil {
		return nil, err
	}

	orch := orchestrator.New(
		orchestrator.SlotsFromConfig(cfg.Providers, opts.Providers),
		limiter,
		orchestrator.Options{
			MaxAttempts:   cfg.Orchestrator.MaxAttempts,
			RetryDelay:    config.GetDuration(cfg.Orchestrator.RetryDelay),
			MinHTMLLength: cfg.Orchestrator.MinHTMLLength,
		},
		log,
	)

	deps := Deps{
		Analyzer:  analyzer,
		Catalog:   cat,
		Scorer:    scorer,
		Generator: orch,
		Tracer:    opts.Tracer,
	}
	if cfg.Artifacts.Enabled {
		store, err := artifacts.NewStore(cfg.Artifacts.Dir, time.Now)
		if err != nil {
			return nil, fmt.Errorf("build artifact store: %w", err)
		}
		deps.Store = store
	}

	p, err := New(Config{
		EnhancementThreshold: cfg.Matching.EnhancementThreshold,
		ExcerptChars:         cfg.Orchestrator.ExcerptChars,
		MinHTMLLength:        cfg.Orchestrator.MinHTMLLength,
	}, deps, log)
	if err != nil {
		return nil, err
	}

	log.Info("pipeline ready", map[string]interface{}{
		"analyzer":   analyzer.Name(),
		"namespaces": cat.Namespaces(),
		"providers":  orch.Available(),
		"limiter":    cfg.RateLimit.Backend,
		"artifacts":  cfg.Artifacts.Enabled,
	})

	return &Service{Pipeline: p, Orchestrator: orch, Catalog: cat, Analyzer: analyzer}, nil
}

func catalogConfig(cfg config.CatalogConfig) catalog.Config {
	out := catalog.Config{
		DefaultNamespace: cfg.DefaultNamespace,
		Namespaces:       make(map[string]catalog.Namespace, len(cfg.Namespaces)),
	}
	for name, ns := range cfg.Namespaces {
		out.Namespaces[name] = catalog.Namespace{
			Name:         name,
			CorpusPath:   ns.CorpusPath,
			TemplatesDir: ns.TemplatesDir,
		}
	}
	return out
}

func buildLimiter(cfg config.RateLimitConfig, client redis.Scripter) (ratelimit.Limiter, error) {
	window := config.GetDuration(cfg.Window)
	switch cfg.Backend {
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("ratelimit backend redis needs a redis client")
		}
		return ratelimit.NewRedisLimiter(client, cfg.KeyPrefix, window), nil
	default:
		return ratelimit.NewMemoryLimiter(window, nil), nil
	}
}
