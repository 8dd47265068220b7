// internal/requirements/table.go
package requirements

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Dimension names in the keyword table.
const (
	DimStyle          = "style"
	DimColors         = "colors"
	DimFeatures       = "features"
	DimComplexity     = "complexity"
	DimThemeIntensity = "theme_intensity"
	DimCategory       = "category"
	DimWebsiteType    = "website_type"
)

const (
	ModeSingle = "single"
	ModeMulti  = "multi"
)

//go:embed keywords.yaml
var embeddedTable []byte

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// Dimension is one row of the table: a set of tags, each with its trigger keywords.
type Dimension struct {
	Mode    string              `yaml:"mode"`
	Default string              `yaml:"default"`
	Tags    map[string][]string `yaml:"tags"`

	order []string
}

// Table is the single declarative keyword configuration read once at startup.
type Table struct {
	SingleFormTriggers []string             `yaml:"single_form_triggers"`
	Dimensions         map[string]Dimension `yaml:"dimensions"`
}

// DefaultTable returns the embedded table, parsed once per process.
func DefaultTable() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = ParseTable(embeddedTable)
	})
	return defaultTable, defaultErr
}

// LoadTable reads a table from path, or the embedded one when path is empty.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword table: %w", err)
	}
	return ParseTable(data)
}

func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse keyword table: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	for name, dim := range t.Dimensions {
		dim.order = make([]string, 0, len(dim.Tags))
		for tag, keywords := range dim.Tags {
			for i, kw := range keywords {
				// leading/trailing spaces are significant: they anchor on word edges
				keywords[i] = strings.ToLower(kw)
			}
			dim.order = append(dim.order, tag)
		}
		sort.Strings(dim.order)
		t.Dimensions[name] = dim
	}
	for i, trigger := range t.SingleFormTriggers {
		t.SingleFormTriggers[i] = strings.ToLower(trigger)
	}
	return &t, nil
}

func (t *Table) validate() error {
	required := map[string]string{
		DimStyle:          ModeSingle,
		DimColors:         ModeMulti,
		DimFeatures:       ModeMulti,
		DimComplexity:     ModeSingle,
		DimThemeIntensity: ModeSingle,
		DimCategory:       ModeSingle,
		DimWebsiteType:    ModeSingle,
	}
	for name, mode := range required {
		dim, ok := t.Dimensions[name]
		if !ok {
			return fmt.Errorf("keyword table: dimension %q is missing", name)
		}
		if dim.Mode != mode {
			return fmt.Errorf("keyword table: dimension %q must be %s, got %q", name, mode, dim.Mode)
		}
		if mode == ModeSingle && dim.Default == "" {
			return fmt.Errorf("keyword table: dimension %q needs a default", name)
		}
	}
	return nil
}

// Single returns the tag of dim with the unique highest hit count in text.
// No hits or a tie at the top yields the dimension default.
func (t *Table) Single(dim, text string) string {
	d := t.Dimensions[dim]
	best, bestHits, tied := "", 0, false
	for _, tag := range d.order {
		hits := countHits(text, d.Tags[tag])
		switch {
		case hits > bestHits:
			best, bestHits, tied = tag, hits, false
		case hits == bestHits && hits > 0:
			tied = true
		}
	}
	if bestHits == 0 || tied {
		return d.Default
	}
	return best
}

// Multi returns every tag of dim with at least one hit in text, sorted.
func (t *Table) Multi(dim, text string) []string {
	d := t.Dimensions[dim]
	out := []string{}
	for _, tag := range d.order {
		if countHits(text, d.Tags[tag]) > 0 {
			out = append(out, tag)
		}
	}
	return out
}

// Triggered reports whether text contains a single-form trigger phrase.
func (t *Table) Triggered(text string) bool {
	for _, trigger := range t.SingleFormTriggers {
		if strings.Contains(text, trigger) {
			return true
		}
	}
	return false
}

// Tags lists the tags of a dimension in sorted order.
func (t *Table) Tags(dim string) []string {
	return append([]string(nil), t.Dimensions[dim].order...)
}

func countHits(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

// normalize lower-cases text, turns punctuation into spaces and pads both ends
// so that space-anchored keywords can match at the edges.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 2)
	b.WriteByte(' ')
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == ' ', r > 127:
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	b.WriteByte(' ')
	return b.String()
}
