// internal/htmlcheck/htmlcheck.go
package htmlcheck

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMinLength is the character floor a document must exceed.
const DefaultMinLength = 200

const doctype = "<!DOCTYPE html>"

var (
	fencePattern      = regexp.MustCompile("(?s)^\\s*```[a-zA-Z0-9_-]*\\s*\\n?(.*?)\\n?\\s*```\\s*$")
	innerFencePattern = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*[ \\t]*\\n(.*?)\\n\\s*```")

	doctypePattern   = regexp.MustCompile(`(?i)^\s*<!doctype\s+html`)
	markupStart      = regexp.MustCompile(`(?i)<!doctype\s+html|<html[\s>]`)
	htmlOpenPattern  = regexp.MustCompile(`(?i)<html[\s>]`)
	htmlClosePattern = regexp.MustCompile(`(?i)</html\s*>`)
	headOpenPattern  = regexp.MustCompile(`(?i)<head[\s>]`)
	headClosePattern = regexp.MustCompile(`(?i)</head\s*>`)
	bodyOpenPattern  = regexp.MustCompile(`(?i)<body[\s>]`)
	bodyClosePattern = regexp.MustCompile(`(?i)</body\s*>`)
)

// Validator enforces the structural checks on candidate markup.
type Validator struct {
	MinLength int
}

func NewValidator(minLength int) *Validator {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	return &Validator{MinLength: minLength}
}

// Problems lists every failed check; an empty result means the markup is accepted.
func (v *Validator) Problems(html string) []string {
	var problems []string
	if n := utf8.RuneCountInString(html); n <= v.MinLength {
		problems = append(problems, fmt.Sprintf("too short: %d characters", n))
	}
	checks := []struct {
		name    string
		pattern *regexp.Regexp
	}{
		{"leading doctype", doctypePattern},
		{"<html>", htmlOpenPattern},
		{"</html>", htmlClosePattern},
		{"<head>", headOpenPattern},
		{"<body>", bodyOpenPattern},
		{"</body>", bodyClosePattern},
	}
	for _, c := range checks {
		if !c.pattern.MatchString(html) {
			problems = append(problems, "missing "+c.name)
		}
	}
	return problems
}

func (v *Validator) Valid(html string) bool {
	return len(v.Problems(html)) == 0
}

// Repair inserts missing </head>, </body> and </html> closing tags and re-checks.
// Valid input is returned unchanged.
func (v *Validator) Repair(html string) (string, bool) {
	if v.Valid(html) {
		return html, true
	}

	var missing []string
	if headOpenPattern.MatchString(html) && !headClosePattern.MatchString(html) {
		missing = append(missing, "</head>")
	}
	if !bodyClosePattern.MatchString(html) {
		missing = append(missing, "</body>")
	}
	if len(missing) > 0 {
		insert := strings.Join(missing, "\n") + "\n"
		if loc := htmlClosePattern.FindStringIndex(html); loc != nil {
			html = html[:loc[0]] + insert + html[loc[0]:]
		} else {
			html = strings.TrimRight(html, "\n") + "\n" + insert
		}
	}
	if !htmlClosePattern.MatchString(html) {
		html = strings.TrimRight(html, "\n") + "\n</html>\n"
	}
	return html, v.Valid(html)
}

// StripCodeFences removes a surrounding ``` fence, with or without a language tag.
// When prose surrounds the fence, the first fenced block is returned.
func StripCodeFences(s string) string {
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if m := innerFencePattern.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return strings.TrimSpace(s)
}

// EnsureDoctype drops any text before the markup and prepends a doctype
// declaration when the document does not start with one.
func EnsureDoctype(s string) string {
	trimmed := strings.TrimSpace(s)
	if loc := markupStart.FindStringIndex(trimmed); loc != nil {
		trimmed = trimmed[loc[0]:]
	}
	if doctypePattern.MatchString(trimmed) {
		return trimmed
	}
	return doctype + "\n" + trimmed
}

// Clean applies fence stripping and doctype insertion.
func Clean(s string) string {
	return EnsureDoctype(StripCodeFences(s))
}
