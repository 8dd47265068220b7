// internal/matching/scorer.go
package matching

import (
	"math"
	"regexp"

	"pagegen-workers/internal/catalog"
	"pagegen-workers/internal/common/logger"
	"pagegen-workers/internal/models"
)

var (
	styleAliases = map[string]string{
		models.StyleMinimalist:    "minimal",
		models.StyleGlassmorphism: "glass",
	}

	compatibilityGroups = [][]string{
		{"modern", "minimal", "clean"},
		{"dark", "cyberpunk", "tech"},
		{"glass", "modern", "blur"},
		{"retro", "vintage", "colorful"},
	}

	// medium is what both sides fall back to without a keyword, so the
	// medium/medium pair is left to the unlisted credit.
	complexityFit = map[[2]string]float64{
		{models.ComplexitySimple, models.ComplexitySimple}:   1.0,
		{models.ComplexityComplex, models.ComplexityComplex}: 1.0,
		{models.ComplexitySimple, models.ComplexityMedium}:   0.7,
		{models.ComplexityMedium, models.ComplexitySimple}:   0.7,
		{models.ComplexityMedium, models.ComplexityComplex}:  0.7,
		{models.ComplexityComplex, models.ComplexityMedium}:  0.7,
	}

	singleWord = regexp.MustCompile(`(?i)\bsingle\b`)
)

const unlistedComplexityFit = 0.5

type Scorer struct {
	config Config
	logger logger.Logger
}

func NewScorer(config Config, log logger.Logger) *Scorer {
	return &Scorer{
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "matching"}),
	}
}

// FindBest scores every entry in ascending id order and keeps the first maximum.
// The result always names a candidate; only the tier says whether it is usable.
func (s *Scorer) FindBest(req models.RequirementRecord, entries map[int]models.TemplateEntry) models.MatchResult {
	var best models.MatchResult
	found := false

	for _, id := range catalog.IDs(entries) {
		entry := entries[id]
		breakdown := s.Breakdown(req, entry)
		score := total(breakdown)
		if !found || score > best.Score {
			best = models.MatchResult{TemplateID: id, Entry: entry, Score: score, Breakdown: breakdown}
			found = true
		}
	}

	if !found {
		best = models.MatchResult{TemplateID: catalog.FallbackID, Entry: models.TemplateEntry{ID: catalog.FallbackID}}
	}
	best.Tier = s.Classify(req, best.Score)

	s.logger.Debug("best template selected", map[string]interface{}{
		"templateId": best.TemplateID,
		"score":      best.Score,
		"tier":       string(best.Tier),
		"candidates": len(entries),
	})
	return best
}

// Score is the clamped weighted similarity of one entry.
func (s *Scorer) Score(req models.RequirementRecord, entry models.TemplateEntry) float64 {
	return total(s.Breakdown(req, entry))
}

// Breakdown scores each weighted component. Theme credit compares the tone
// implied by the requested colors (black or white) with the entry theme, so
// a style keyword such as "dark" earns style credit only.
func (s *Scorer) Breakdown(req models.RequirementRecord, entry models.TemplateEntry) models.ScoreBreakdown {
	w := s.config.Weights
	b := models.ScoreBreakdown{
		Style:      s.styleCredit(req.Style, entry.PrimaryTheme),
		Features:   w.Features * jaccard(req.Features, entry.SupportedFeatures),
		Complexity: w.Complexity * complexityCredit(req.Complexity, entry.DifficultyLevel),
	}
	if tone := req.Tone(); tone != "" && tone == entry.PrimaryTheme {
		b.Theme = w.Theme
	}
	if req.SingleFormRequest && singleWord.MatchString(entry.Description) {
		b.SingleForm = w.SingleForm
	}
	return b
}

// Classify applies the complexity-dependent thresholds.
func (s *Scorer) Classify(req models.RequirementRecord, score float64) models.MatchTier {
	exact, partial := s.Thresholds(req)
	switch {
	case score >= exact:
		return models.TierExact
	case score >= partial:
		return models.TierPartial
	default:
		return models.TierNone
	}
}

// Thresholds returns the exact and partial thresholds for a requirement.
func (s *Scorer) Thresholds(req models.RequirementRecord) (exact, partial float64) {
	th := s.config.Thresholds
	exact, partial = th.Exact, th.Partial
	if req.Complexity == models.ComplexityComplex {
		exact = th.ExactComplex
	}
	if req.Complexity == models.ComplexitySimple {
		partial = th.PartialSimple
	}
	return exact, partial
}

func (s *Scorer) styleCredit(requested, current string) float64 {
	if requested == "" || current == "" {
		return 0
	}
	if requested == current {
		return s.config.Weights.StyleExact
	}
	a, b := canonicalStyle(requested), canonicalStyle(current)
	if a == b {
		return s.config.Weights.StyleExact
	}
	for _, group := range compatibilityGroups {
		if inGroup(group, a) && inGroup(group, b) {
			return s.config.Weights.StyleGroup
		}
	}
	return 0
}

func canonicalStyle(style string) string {
	if alias, ok := styleAliases[style]; ok {
		return alias
	}
	return style
}

func inGroup(group []string, style string) bool {
	for _, g := range group {
		if g == style {
			return true
		}
	}
	return false
}

func complexityCredit(requested, difficulty string) float64 {
	if v, ok := complexityFit[[2]string{requested, difficulty}]; ok {
		return v
	}
	return unlistedComplexityFit
}

// jaccard is |a∩b| / |a∪b|, and 0 when both sets are empty.
func jaccard(a, b []string) float64 {
	union := make(map[string]bool, len(a)+len(b))
	inA := make(map[string]bool, len(a))
	for _, v := range a {
		union[v] = true
		inA[v] = true
	}
	inter := 0
	seen := make(map[string]bool, len(b))
	for _, v := range b {
		if seen[v] {
			continue
		}
		seen[v] = true
		if inA[v] {
			inter++
		}
		union[v] = true
	}
	if len(union) == 0 {
		return 0
	}
	return float64(inter) / float64(len(union))
}

// total sums the components, clamps to [0,1] and rounds to four decimals.
func total(b models.ScoreBreakdown) float64 {
	sum := b.Style + b.Features + b.Theme + b.Complexity + b.SingleForm
	sum = math.Max(0, math.Min(1, sum))
	return math.Round(sum*10000) / 10000
}
