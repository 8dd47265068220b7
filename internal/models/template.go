// internal/models/template.go
package models

// TemplateEntry is the metadata of one catalog template, immutable once loaded.
type TemplateEntry struct {
	ID                int      `json:"id"`
	Namespace         string   `json:"namespace"`
	Description       string   `json:"description"`
	PrimaryTheme      string   `json:"primaryTheme"`
	SupportedFeatures []string `json:"supportedFeatures"`
	DifficultyLevel   string   `json:"difficultyLevel"`
}

// Supports reports whether the template already provides the feature tag.
func (t TemplateEntry) Supports(tag string) bool {
	for _, f := range t.SupportedFeatures {
		if f == tag {
			return true
		}
	}
	return false
}
