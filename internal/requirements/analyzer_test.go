package requirements

import (
	"os"
	"path/filepath"
	"testing"

	"pagegen-workers/internal/common/logger"
	"pagegen-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestAnalyzer(t *testing.T) *KeywordAnalyzer {
	table, err := DefaultTable()
	require.NoError(t, err)
	return NewKeywordAnalyzer(table)
}

func writeLexicon(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func assertPopulated(t *testing.T, rec models.RequirementRecord) {
	assert.NotEmpty(t, rec.Style)
	assert.NotNil(t, rec.Colors)
	assert.NotNil(t, rec.Features)
	assert.NotEmpty(t, rec.Complexity)
	assert.NotEmpty(t, rec.ThemeIntensity)
	assert.NotEmpty(t, rec.Category)
	assert.NotEmpty(t, rec.WebsiteType)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestKeywordAnalyzer_Scenarios(t *testing.T) {
	a := createTestAnalyzer(t)

	tests := []struct {
		name     string
		prompt   string
		validate func(t *testing.T, rec models.RequirementRecord)
	}{
		{
			name:   "simple clean signup page",
			prompt: "I want a simple, clean signup page",
			validate: func(t *testing.T, rec models.RequirementRecord) {
				assert.Equal(t, models.StyleModern, rec.Style)
				assert.Equal(t, models.ComplexitySimple, rec.Complexity)
				assert.Equal(t, "auth", rec.Category)
				assert.Empty(t, rec.Features)
			},
		},
		{
			name:   "cyberpunk outranks dark",
			prompt: "dark cyberpunk login with google sign in",
			validate: func(t *testing.T, rec models.RequirementRecord) {
				assert.Equal(t, models.StyleCyberpunk, rec.Style)
				assert.Contains(t, rec.Features, models.FeatureSocialLogin)
				assert.Equal(t, "auth", rec.Category)
			},
		},
		{
			name:   "single form trigger adds feature",
			prompt: "Only signup please, nothing else",
			validate: func(t *testing.T, rec models.RequirementRecord) {
				assert.True(t, rec.SingleFormRequest)
				assert.Contains(t, rec.Features, models.FeatureSingleForm)
			},
		},
		{
			name:   "colors and features are sorted sets",
			prompt: "responsive blue and white login with remember me, forgot password and facebook",
			validate: func(t *testing.T, rec models.RequirementRecord) {
				assert.Equal(t, []string{"blue", "white"}, rec.Colors)
				assert.Equal(t, []string{"forgot_password", "remember_me", "responsive", "social_login"}, rec.Features)
				assert.Equal(t, "light", rec.Tone())
			},
		},
		{
			name:   "red is matched as a word only",
			prompt: "a featured red dashboard",
			validate: func(t *testing.T, rec models.RequirementRecord) {
				assert.Equal(t, []string{"red"}, rec.Colors)
				assert.Equal(t, "dashboard", rec.Category)
			},
		},
		{
			name:   "website type and intensity",
			prompt: "bold vibrant landing page for my saas startup",
			validate: func(t *testing.T, rec models.RequirementRecord) {
				assert.Equal(t, "high", rec.ThemeIntensity)
				assert.Equal(t, "saas", rec.WebsiteType)
				assert.Equal(t, "homepage", rec.Category)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.Analyze(tt.prompt)
			assertPopulated(t, rec)
			tt.validate(t, rec)
		})
	}
}

func TestKeywordAnalyzer_DefaultsOnNoHits(t *testing.T) {
	a := createTestAnalyzer(t)

	for _, prompt := range []string{"", "   ", "xyzzy", "!!!???"} {
		rec := a.Analyze(prompt)
		assertPopulated(t, rec)
		assert.Equal(t, models.StyleModern, rec.Style)
		assert.Equal(t, models.ComplexityMedium, rec.Complexity)
		assert.Equal(t, "medium", rec.ThemeIntensity)
		assert.Equal(t, "auth", rec.Category)
		assert.Equal(t, "general", rec.WebsiteType)
		assert.False(t, rec.SingleFormRequest)
	}
}

func TestKeywordAnalyzer_TieResolvesToDefault(t *testing.T) {
	a := createTestAnalyzer(t)

	// one hit each for classic and retro
	rec := a.Analyze("classic retro page")
	assert.Equal(t, models.StyleModern, rec.Style)
}

func TestKeywordAnalyzer_Deterministic(t *testing.T) {
	a := createTestAnalyzer(t)
	prompts := []string{
		"dark cyberpunk login with google sign in",
		"minimal glass dashboard with charts, animated and responsive",
		"vintage retro shop with cart and newsletter",
	}
	for _, p := range prompts {
		first := a.Analyze(p)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, a.Analyze(p))
		}
	}
}

// ==========================
// Table Tests
// ==========================

func TestParseTable_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "invalid yaml", yaml: "dimensions: [", wantErr: "parse keyword table"},
		{name: "missing dimension", yaml: "dimensions: {}", wantErr: "is missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadTable_EmptyPathUsesEmbedded(t *testing.T) {
	table, err := LoadTable("")
	require.NoError(t, err)
	assert.Contains(t, table.Tags(DimStyle), models.StyleCyberpunk)
	assert.Len(t, table.SingleFormTriggers, 6)
}

// ==========================
// Strategy Selection Tests
// ==========================

func TestNewAnalyzer_FallsBackWithoutLexicon(t *testing.T) {
	log := logger.NewTestLogger(t)

	a, err := NewAnalyzer(Options{}, log)
	require.NoError(t, err)
	assert.Equal(t, "keyword", a.Name())

	a, err = NewAnalyzer(Options{LexiconPath: filepath.Join(t.TempDir(), "missing.yaml")}, log)
	require.NoError(t, err)
	assert.Equal(t, "keyword", a.Name())
}

func TestNewAnalyzer_UsesLexicon(t *testing.T) {
	path := writeLexicon(t, `
synonyms:
  gmail: google
  signon: signin
lemmas:
  animations: animation
`)
	a, err := NewAnalyzer(Options{LexiconPath: path}, logger.NewTestLogger(t))
	require.NoError(t, err)
	require.Equal(t, "lexicon", a.Name())

	rec := a.Analyze("signon page with gmail and animations")
	assert.Equal(t, []string{"animated", "social_login"}, rec.Features)
	assert.Equal(t, "auth", rec.Category)
}

func TestLoadLexicon_Empty(t *testing.T) {
	_, err := LoadLexicon(writeLexicon(t, "synonyms: {}\n"))
	require.Error(t, err)
}
