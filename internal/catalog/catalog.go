// internal/catalog/catalog.go
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"pagegen-workers/internal/common/logger"
	"pagegen-workers/internal/models"
	"pagegen-workers/internal/requirements"
)

// SeparatorLength is the number of underscores in a corpus record separator line.
const SeparatorLength = 87

// FallbackID is the id of the built-in entry used when a corpus is unavailable.
const FallbackID = 1

const fallbackDescription = "Modern login and signup form"

var (
	separator     = strings.Repeat("_", SeparatorLength)
	recordPattern = regexp.MustCompile(`(?s)^\((\d+)\)\.?\s*(.*)$`)
	idLikePattern = regexp.MustCompile(`^\(([^)]*)\)`)
)

// Namespace points at one template family: its corpus file and markup directory.
type Namespace struct {
	Name         string
	CorpusPath   string
	TemplatesDir string
}

type Config struct {
	DefaultNamespace string
	Namespaces       map[string]Namespace
}

type namespaceCache struct {
	once    sync.Once
	entries map[int]models.TemplateEntry
}

// Catalog loads each namespace at most once and serves it read-only afterwards.
type Catalog struct {
	config   Config
	analyzer *requirements.KeywordAnalyzer
	logger   logger.Logger

	mu     sync.Mutex
	caches map[string]*namespaceCache
}

func New(config Config, analyzer *requirements.KeywordAnalyzer, log logger.Logger) *Catalog {
	if config.Namespaces == nil {
		config.Namespaces = map[string]Namespace{}
	}
	return &Catalog{
		config:   config,
		analyzer: analyzer,
		logger:   log.WithFields(map[string]interface{}{"component": "catalog"}),
		caches:   make(map[string]*namespaceCache),
	}
}

// Resolve maps a requirement category onto a configured namespace.
func (c *Catalog) Resolve(category string) string {
	if _, ok := c.config.Namespaces[category]; ok {
		return category
	}
	if c.config.DefaultNamespace != "" {
		return c.config.DefaultNamespace
	}
	return category
}

// Namespaces returns the configured namespace names, sorted.
func (c *Catalog) Namespaces() []string {
	names := make([]string, 0, len(c.config.Namespaces))
	for name := range c.config.Namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load returns the entries of a namespace. The map is shared and must not be modified.
// It is never empty.
func (c *Catalog) Load(namespace string) map[int]models.TemplateEntry {
	c.mu.Lock()
	cache, ok := c.caches[namespace]
	if !ok {
		cache = &namespaceCache{}
		c.caches[namespace] = cache
	}
	c.mu.Unlock()

	cache.once.Do(func() {
		cache.entries = c.load(namespace)
	})
	return cache.entries
}

func (c *Catalog) load(namespace string) map[int]models.TemplateEntry {
	ns := c.config.Namespaces[namespace]
	log := c.logger.WithFields(map[string]interface{}{"namespace": namespace, "corpus": ns.CorpusPath})

	if ns.CorpusPath == "" {
		log.Warn("no corpus configured, using built-in template", nil)
		return c.fallback(namespace)
	}

	data, err := os.ReadFile(ns.CorpusPath)
	if err != nil {
		log.Warn("corpus unavailable, using built-in template", map[string]interface{}{"error": err.Error()})
		return c.fallback(namespace)
	}

	entries, skipped := Parse(namespace, string(data), c.analyzer)
	for _, s := range skipped {
		log.Debug("skipped malformed corpus section", map[string]interface{}{"section": s})
	}
	if len(entries) == 0 {
		log.Warn("corpus has no usable sections, using built-in template", nil)
		return c.fallback(namespace)
	}

	log.Info("catalog loaded", map[string]interface{}{"templates": len(entries), "skipped": len(skipped)})
	return entries
}

func (c *Catalog) fallback(namespace string) map[int]models.TemplateEntry {
	return map[int]models.TemplateEntry{
		FallbackID: describe(c.analyzer, namespace, FallbackID, fallbackDescription),
	}
}

// Markup returns the stored HTML of a template, or "" when none exists.
func (c *Catalog) Markup(namespace string, id int) string {
	ns, ok := c.config.Namespaces[namespace]
	if !ok || ns.TemplatesDir == "" {
		return ""
	}
	path := filepath.Join(ns.TemplatesDir, fmt.Sprintf("%d.html", id))
	data, err := os.ReadFile(path)
	if err != nil {
		c.logger.Debug("template markup not found", map[string]interface{}{
			"namespace": namespace,
			"path":      path,
		})
		return ""
	}
	return string(data)
}

// Parse splits a corpus into entries. Sections whose header is not "(<integer>)."
// are returned as skipped, trimmed to a short preview.
func Parse(namespace, corpus string, analyzer *requirements.KeywordAnalyzer) (map[int]models.TemplateEntry, []string) {
	entries := make(map[int]models.TemplateEntry)
	var skipped []string

	for _, section := range splitSections(corpus) {
		if section == "" {
			continue
		}
		m := recordPattern.FindStringSubmatch(section)
		if m == nil {
			if idLikePattern.MatchString(section) {
				skipped = append(skipped, preview(section))
			}
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			skipped = append(skipped, preview(section))
			continue
		}
		entries[id] = describe(analyzer, namespace, id, strings.TrimSpace(m[2]))
	}
	return entries, skipped
}

func splitSections(corpus string) []string {
	var sections []string
	var current []string
	flush := func() {
		sections = append(sections, strings.TrimSpace(strings.Join(current, "\n")))
		current = current[:0]
	}
	for _, line := range strings.Split(corpus, "\n") {
		if strings.TrimSpace(line) == separator {
			flush()
			continue
		}
		current = append(current, strings.TrimRight(line, "\r"))
	}
	flush()
	return sections
}

func describe(analyzer *requirements.KeywordAnalyzer, namespace string, id int, description string) models.TemplateEntry {
	rec := analyzer.Analyze(description)
	return models.TemplateEntry{
		ID:                id,
		Namespace:         namespace,
		Description:       description,
		PrimaryTheme:      rec.Style,
		SupportedFeatures: rec.Features,
		DifficultyLevel:   rec.Complexity,
	}
}

// IDs returns the entry ids in ascending order.
func IDs(entries map[int]models.TemplateEntry) []int {
	ids := make([]int, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func preview(s string) string {
	const max = 40
	if r := []rune(s); len(r) > max {
		return string(r[:max]) + "..."
	}
	return s
}
