// internal/models/requirement.go
package models

// Style tags recognised by the analyzer.
const (
	StyleModern        = "modern"
	StyleClassic       = "classic"
	StyleCreative      = "creative"
	StyleProfessional  = "professional"
	StyleDark          = "dark"
	StyleLight         = "light"
	StyleCyberpunk     = "cyberpunk"
	StyleGlassmorphism = "glassmorphism"
	StyleNeumorphism   = "neumorphism"
	StyleRetro         = "retro"
	StyleMinimalist    = "minimalist"
)

const (
	ComplexitySimple  = "simple"
	ComplexityMedium  = "medium"
	ComplexityComplex = "complex"
)

const (
	FeatureSocialLogin    = "social_login"
	FeatureForgotPassword = "forgot_password"
	FeatureRememberMe     = "remember_me"
	FeatureAnimated       = "animated"
	FeatureResponsive     = "responsive"
	FeatureSingleForm     = "single_form"
	FeatureToggle         = "toggle"
)

// RequirementRecord is the structured reading of a free-text page request.
// Every field is always populated; Colors and Features may be empty but are never nil.
type RequirementRecord struct {
	Style             string   `json:"style"`
	Colors            []string `json:"colors"`
	Features          []string `json:"features"`
	Complexity        string   `json:"complexity"`
	ThemeIntensity    string   `json:"themeIntensity"`
	Category          string   `json:"category"`
	WebsiteType       string   `json:"websiteType"`
	SingleFormRequest bool     `json:"singleFormRequest"`
}

// HasFeature reports whether the record asks for the given feature tag.
func (r RequirementRecord) HasFeature(tag string) bool {
	for _, f := range r.Features {
		if f == tag {
			return true
		}
	}
	return false
}

// Tone collapses the requested colors into a light/dark theme string.
// It returns "" when the colors say nothing about brightness.
func (r RequirementRecord) Tone() string {
	for _, c := range r.Colors {
		switch c {
		case "black", "dark":
			return StyleDark
		}
	}
	for _, c := range r.Colors {
		switch c {
		case "white", "light":
			return StyleLight
		}
	}
	return ""
}

// DefaultRequirement is the reading of a prompt that matched nothing.
func DefaultRequirement() RequirementRecord {
	return RequirementRecord{
		Style:          StyleModern,
		Colors:         []string{},
		Features:       []string{},
		Complexity:     ComplexityMedium,
		ThemeIntensity: "medium",
		Category:       "auth",
		WebsiteType:    "general",
	}
}
