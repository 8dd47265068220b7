// internal/gap/gap.go
package gap

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"pagegen-workers/internal/models"
)

// Diff lists what the entry lacks relative to the requirement.
func Diff(req models.RequirementRecord, entry models.TemplateEntry) models.GapReport {
	report := models.GapReport{
		MissingFeatures:  []string{},
		StyleDifferences: []models.StyleDifference{},
		ColorMismatches:  []string{},
	}

	for _, f := range req.Features {
		if !entry.Supports(f) {
			report.MissingFeatures = append(report.MissingFeatures, f)
		}
	}
	sort.Strings(report.MissingFeatures)

	if req.Style != "" && entry.PrimaryTheme != "" && req.Style != entry.PrimaryTheme {
		report.StyleDifferences = append(report.StyleDifferences, models.StyleDifference{
			Requested: req.Style,
			Current:   entry.PrimaryTheme,
		})
	}

	if len(req.Colors) > 0 {
		report.ColorMismatches = append(report.ColorMismatches, req.Colors...)
	}
	return report
}

// Instructions renders the report as imperative change requests, one per line.
func Instructions(report models.GapReport) []string {
	var lines []string
	for _, d := range report.StyleDifferences {
		lines = append(lines, fmt.Sprintf("Change the visual theme to %s (currently %s).", d.Requested, d.Current))
	}
	if len(report.ColorMismatches) > 0 {
		lines = append(lines, fmt.Sprintf("Replace colors with %s.", strings.Join(report.ColorMismatches, ", ")))
	}
	if len(report.MissingFeatures) > 0 {
		names := make([]string, len(report.MissingFeatures))
		for i, f := range report.MissingFeatures {
			names[i] = strings.ReplaceAll(f, "_", " ")
		}
		lines = append(lines, fmt.Sprintf("Add features: %s.", strings.Join(names, ", ")))
	}
	return lines
}

// BuildInstruction composes the single instruction sent to a generation provider.
func BuildInstruction(prompt, markupExcerpt string, report models.GapReport) string {
	var b strings.Builder
	b.WriteString("You are improving an HTML page template.\n\n")
	b.WriteString("User request:\n")
	b.WriteString(strings.TrimSpace(prompt))
	b.WriteString("\n\n")

	if markupExcerpt != "" {
		b.WriteString("Current template (excerpt):\n")
		b.WriteString(markupExcerpt)
		b.WriteString("\n\n")
	}

	lines := Instructions(report)
	if len(lines) == 0 {
		lines = []string{"Polish the template so it matches the user request."}
	}
	b.WriteString("Required changes:\n")
	for _, l := range lines {
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteString("\n")
	}

	b.WriteString("\nReturn one complete HTML document starting with <!DOCTYPE html>, ")
	b.WriteString("with inline CSS and JavaScript, and no explanations or code fences.")
	return b.String()
}

// Excerpt truncates markup to at most n runes.
func Excerpt(markup string, n int) string {
	if n <= 0 || utf8.RuneCountInString(markup) <= n {
		return markup
	}
	r := []rune(markup)
	return string(r[:n]) + "\n<!-- truncated -->"
}
