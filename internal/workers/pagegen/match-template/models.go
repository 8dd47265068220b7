// internal/workers/pagegen/match-template/models.go
package matchtemplate

import "pagegen-workers/internal/models"

type Input struct {
	Prompt string `json:"prompt"`
}

type Output struct {
	TemplateID  int                      `json:"templateId"`
	Tier        models.MatchTier         `json:"tier"`
	MatchScore  float64                  `json:"matchScore"`
	Breakdown   models.ScoreBreakdown    `json:"breakdown"`
	Description string                   `json:"description"`
	Namespace   string                   `json:"namespace"`
	Requirement models.RequirementRecord `json:"requirement"`
}
