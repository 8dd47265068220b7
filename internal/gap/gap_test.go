package gap

import (
	"strings"
	"testing"

	"pagegen-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func testRequirement(style string, colors, features []string) models.RequirementRecord {
	return models.RequirementRecord{
		Style: style, Colors: colors, Features: features,
		Complexity: "medium", ThemeIntensity: "medium", Category: "auth", WebsiteType: "general",
	}
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name     string
		req      models.RequirementRecord
		entry    models.TemplateEntry
		expected models.GapReport
	}{
		{
			name:  "subset of supported features yields no missing features",
			req:   testRequirement("modern", []string{}, []string{"social_login"}),
			entry: models.TemplateEntry{PrimaryTheme: "modern", SupportedFeatures: []string{"animated", "social_login"}},
			expected: models.GapReport{
				MissingFeatures: []string{}, StyleDifferences: []models.StyleDifference{}, ColorMismatches: []string{},
			},
		},
		{
			name:  "missing features, style and colors",
			req:   testRequirement("cyberpunk", []string{"purple", "black"}, []string{"toggle", "animated", "social_login"}),
			entry: models.TemplateEntry{PrimaryTheme: "modern", SupportedFeatures: []string{"social_login"}},
			expected: models.GapReport{
				MissingFeatures:  []string{"animated", "toggle"},
				StyleDifferences: []models.StyleDifference{{Requested: "cyberpunk", Current: "modern"}},
				ColorMismatches:  []string{"purple", "black"},
			},
		},
		{
			name:  "empty template theme is not a style difference",
			req:   testRequirement("dark", []string{}, []string{}),
			entry: models.TemplateEntry{},
			expected: models.GapReport{
				MissingFeatures: []string{}, StyleDifferences: []models.StyleDifference{}, ColorMismatches: []string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Diff(tt.req, tt.entry)
			assert.Equal(t, tt.expected, report)
			assert.Equal(t, report, Diff(tt.req, tt.entry), "stable across calls")
		})
	}
}

func TestGapReport_IsEmpty(t *testing.T) {
	req := testRequirement("modern", []string{}, []string{})
	assert.True(t, Diff(req, models.TemplateEntry{PrimaryTheme: "modern"}).IsEmpty())
	assert.False(t, Diff(req, models.TemplateEntry{PrimaryTheme: "retro"}).IsEmpty())
}

func TestBuildInstruction(t *testing.T) {
	report := models.GapReport{
		MissingFeatures:  []string{"forgot_password", "social_login"},
		StyleDifferences: []models.StyleDifference{{Requested: "dark", Current: "modern"}},
		ColorMismatches:  []string{"black", "gold"},
	}

	got := BuildInstruction("  dark login with google  ", "<html>...</html>", report)

	assert.Contains(t, got, "dark login with google\n")
	assert.Contains(t, got, "<html>...</html>")
	assert.Contains(t, got, "- Change the visual theme to dark (currently modern).")
	assert.Contains(t, got, "- Replace colors with black, gold.")
	assert.Contains(t, got, "- Add features: forgot password, social login.")
	assert.Contains(t, got, "<!DOCTYPE html>")
}

func TestBuildInstruction_NoGapNoExcerpt(t *testing.T) {
	got := BuildInstruction("a page", "", models.GapReport{})
	assert.NotContains(t, got, "Current template")
	assert.Contains(t, got, "- Polish the template")
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", Excerpt("short", 10))
	assert.Equal(t, "whole", Excerpt("whole", 0))

	long := strings.Repeat("é", 20)
	got := Excerpt(long, 5)
	assert.True(t, strings.HasPrefix(got, "ééééé\n"))
	assert.Contains(t, got, "truncated")
}
