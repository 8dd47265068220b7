// internal/models/match.go
package models

// MatchTier is the coarse classification of how well a template fits.
type MatchTier string

const (
	TierExact   MatchTier = "exact"
	TierPartial MatchTier = "partial"
	TierNone    MatchTier = "none"
)

type ScoreBreakdown struct {
	Style      float64 `json:"style"`
	Features   float64 `json:"features"`
	Theme      float64 `json:"theme"`
	Complexity float64 `json:"complexity"`
	SingleForm float64 `json:"singleForm"`
}

// MatchResult always carries a candidate, even when Tier is TierNone.
type MatchResult struct {
	Tier       MatchTier      `json:"tier"`
	TemplateID int            `json:"templateId"`
	Entry      TemplateEntry  `json:"entry"`
	Score      float64        `json:"score"`
	Breakdown  ScoreBreakdown `json:"breakdown"`
}

type StyleDifference struct {
	Requested string `json:"requested"`
	Current   string `json:"current"`
}

// GapReport lists what generation has to add on top of the chosen template.
type GapReport struct {
	MissingFeatures  []string          `json:"missingFeatures"`
	StyleDifferences []StyleDifference `json:"styleDifferences"`
	ColorMismatches  []string          `json:"colorMismatches"`
}

func (g GapReport) IsEmpty() bool {
	return len(g.MissingFeatures) == 0 && len(g.StyleDifferences) == 0 && len(g.ColorMismatches) == 0
}
