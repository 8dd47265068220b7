// internal/workers/pagegen/process-page/models.go
package processpage

import "pagegen-workers/internal/models"

type Input struct {
	Prompt   string `json:"prompt"`
	CallerID string `json:"callerId,omitempty"`
}

// Output is written back as process variables. HTML is only set when no
// artifact was stored, so the page is never lost.
type Output struct {
	RequestID    string                   `json:"requestId"`
	TemplateID   int                      `json:"templateId"`
	Tier         models.MatchTier         `json:"tier"`
	MatchScore   float64                  `json:"matchScore"`
	Requirement  models.RequirementRecord `json:"requirement"`
	Narrative    string                   `json:"narrative"`
	Enhanced     bool                     `json:"enhanced"`
	ProviderUsed string                   `json:"providerUsed"`
	ArtifactPath string                   `json:"artifactPath,omitempty"`
	HTMLLength   int                      `json:"htmlLength"`
	HTML         string                   `json:"html,omitempty"`
	Degraded     bool                     `json:"degraded"`
}
