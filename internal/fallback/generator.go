// internal/fallback/generator.go
package fallback

import (
	"bytes"
	_ "embed"
	"html/template"
	"strings"

	"pagegen-workers/internal/models"
)

//go:embed page.html.tmpl
var pageTemplate string

var page = template.Must(template.New("page").Parse(pageTemplate))

var agricultureKeywords = []string{"farm", "agri", "crop", "harvest", "organic", "tractor", "soil", "kisan"}

var signinSingleTriggers = []string{"only signin", "only login", "just signin", "only sign in", "just login"}

type categoryCopy struct {
	Title      string
	Heading    string
	Subheading string
	Icon       string
	Highlights []string
}

var categories = map[string]categoryCopy{
	"auth":      {"Account access", "Welcome", "Sign in or create an account to continue.", "🔐", nil},
	"homepage":  {"Home", "Build something great", "Everything you need to launch, in one place.", "🚀", []string{"Fast setup", "Secure by default", "Friendly support"}},
	"about":     {"About us", "Our story", "A small team with a big mission.", "👋", []string{"Who we are", "What we value", "Where we are going"}},
	"contact":   {"Contact", "Get in touch", "We usually reply within one business day.", "✉️", []string{"Email us", "Call us", "Visit us"}},
	"dashboard": {"Dashboard", "Your overview", "Key numbers at a glance.", "📊", []string{"Activity", "Revenue", "Users"}},
	"ecommerce": {"Shop", "New arrivals", "Hand-picked products, shipped fast.", "🛍️", []string{"Featured", "Best sellers", "On sale"}},
	"chatbot":   {"Assistant", "How can we help?", "Ask a question and get an answer right away.", "💬", []string{"Ask anything", "Instant answers", "Human handoff"}},
	"footer":    {"Footer", "Stay connected", "Links, social profiles and the fine print.", "🔗", []string{"Company", "Resources", "Legal"}},
	"sales":     {"Pricing", "Simple pricing", "Pick the plan that fits your team.", "💼", []string{"Starter", "Growth", "Enterprise"}},
}

type pageData struct {
	Title      string
	Heading    string
	Subheading string
	Icon       string
	Highlights []string
	Theme      string
	CSS        template.CSS

	Auth           bool
	SingleForm     bool
	ShowSignin     bool
	ShowSignup     bool
	SocialLogin    bool
	ForgotPassword bool
	RememberMe     bool
	Animated       bool
}

// Generate renders a complete HTML document for the requirement. The output
// depends only on its inputs.
func Generate(req models.RequirementRecord, prompt string) string {
	lower := strings.ToLower(prompt)

	text, ok := categories[req.Category]
	if !ok {
		text = categories["auth"]
	}
	pal := paletteFor(req.Style)
	theme := req.Style
	if theme == "" {
		theme = models.StyleModern
	}

	if isAgriculture(lower) {
		pal = agriculturePalette
		theme = "agriculture"
		text.Icon = "🌾"
		if req.Category == "auth" || !ok {
			text.Heading = "Welcome to your farm portal"
			text.Subheading = "Sign in to track crops, harvests and market prices."
		} else {
			text.Heading = "Growing together"
			text.Subheading = "Fresh from the field: tools and produce for every farmer."
		}
	}

	data := pageData{
		Title:          text.Title,
		Heading:        text.Heading,
		Subheading:     text.Subheading,
		Icon:           text.Icon,
		Highlights:     text.Highlights,
		Theme:          theme,
		CSS:            template.CSS(buildCSS(pal, req.Style, req.HasFeature(models.FeatureAnimated), req.HasFeature(models.FeatureResponsive))),
		Auth:           req.Category == "auth" || !ok,
		SingleForm:     req.SingleFormRequest,
		SocialLogin:    req.HasFeature(models.FeatureSocialLogin),
		ForgotPassword: req.HasFeature(models.FeatureForgotPassword),
		RememberMe:     req.HasFeature(models.FeatureRememberMe),
		Animated:       req.HasFeature(models.FeatureAnimated),
	}

	data.ShowSignin, data.ShowSignup = true, true
	if data.SingleForm {
		if containsAny(lower, signinSingleTriggers) {
			data.ShowSignup = false
		} else {
			data.ShowSignin = false
		}
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

func isAgriculture(lower string) bool {
	return containsAny(lower, agricultureKeywords)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
