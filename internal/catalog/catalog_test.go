package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"pagegen-workers/internal/common/logger"
	"pagegen-workers/internal/models"
	"pagegen-workers/internal/requirements"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func testAnalyzer(t *testing.T) *requirements.KeywordAnalyzer {
	table, err := requirements.DefaultTable()
	require.NoError(t, err)
	return requirements.NewKeywordAnalyzer(table)
}

func buildCorpus(sections ...string) string {
	sep := "\n" + strings.Repeat("_", SeparatorLength) + "\n"
	return strings.Join(sections, sep)
}

func writeFile(t *testing.T, dir, name, body string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func createTestCatalog(t *testing.T, ns Namespace) *Catalog {
	return New(Config{
		DefaultNamespace: ns.Name,
		Namespaces:       map[string]Namespace{ns.Name: ns},
	}, testAnalyzer(t), logger.NewTestLogger(t))
}

// ==========================
// Parse Tests
// ==========================

func TestParse(t *testing.T) {
	corpus := buildCorpus(
		"(1). Modern login signup form",
		"(2). Dark cyberpunk login with google sign in and animated neon borders",
		"(abc). not a template",
		"(3) Simple minimal single form signup",
		"",
	)

	entries, skipped := Parse("auth", corpus, testAnalyzer(t))

	require.Len(t, entries, 3)
	assert.Len(t, skipped, 1)
	assert.Equal(t, []int{1, 2, 3}, IDs(entries))

	first := entries[1]
	assert.Equal(t, "Modern login signup form", first.Description)
	assert.Equal(t, models.StyleModern, first.PrimaryTheme)
	assert.Empty(t, first.SupportedFeatures)
	assert.Equal(t, models.ComplexityMedium, first.DifficultyLevel)
	assert.Equal(t, "auth", first.Namespace)

	second := entries[2]
	assert.Equal(t, models.StyleCyberpunk, second.PrimaryTheme)
	assert.Equal(t, []string{"animated", "social_login"}, second.SupportedFeatures)

	third := entries[3]
	assert.Equal(t, models.ComplexitySimple, third.DifficultyLevel)
	assert.Contains(t, third.SupportedFeatures, models.FeatureSingleForm)
}

func TestParse_MultilineDescription(t *testing.T) {
	corpus := buildCorpus("(7). Glass login\nwith frosted panels\r\nand remember me")
	entries, _ := Parse("auth", corpus, testAnalyzer(t))

	require.Contains(t, entries, 7)
	assert.Equal(t, "Glass login\nwith frosted panels\nand remember me", entries[7].Description)
	assert.Equal(t, models.StyleGlassmorphism, entries[7].PrimaryTheme)
	assert.Equal(t, []string{"remember_me"}, entries[7].SupportedFeatures)
}

// ==========================
// Load Tests
// ==========================

func TestCatalog_Load_MissingCorpusUsesFallback(t *testing.T) {
	c := createTestCatalog(t, Namespace{Name: "auth", CorpusPath: filepath.Join(t.TempDir(), "missing.txt")})

	entries := c.Load("auth")
	require.Len(t, entries, 1)
	assert.Equal(t, FallbackID, entries[FallbackID].ID)
	assert.NotEmpty(t, entries[FallbackID].Description)
}

func TestCatalog_Load_UnknownNamespaceUsesFallback(t *testing.T) {
	c := createTestCatalog(t, Namespace{Name: "auth"})
	assert.Len(t, c.Load("homepage"), 1)
}

func TestCatalog_Load_OnlyMalformedSections(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "auth.txt", buildCorpus("(x). broken", "(y). broken too"))
	c := createTestCatalog(t, Namespace{Name: "auth", CorpusPath: path})

	entries := c.Load("auth")
	require.Len(t, entries, 1)
	assert.Contains(t, entries, FallbackID)
}

func TestCatalog_Load_CachedOnce(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "auth.txt", buildCorpus("(1). Modern login", "(2). Retro login"))
	c := createTestCatalog(t, Namespace{Name: "auth", CorpusPath: path})

	var wg sync.WaitGroup
	results := make([]map[int]models.TemplateEntry, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Load("auth")
		}(i)
	}
	wg.Wait()

	// rewriting the corpus after the first load has no effect
	writeFile(t, dir, "auth.txt", buildCorpus("(9). Something else"))
	again := c.Load("auth")

	for _, r := range results {
		assert.Len(t, r, 2)
	}
	assert.Equal(t, []int{1, 2}, IDs(again))
}

// ==========================
// Lookup Tests
// ==========================

func TestCatalog_Markup(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "4.html", "<html>four</html>")
	c := createTestCatalog(t, Namespace{Name: "auth", TemplatesDir: dir})

	assert.Equal(t, "<html>four</html>", c.Markup("auth", 4))
	assert.Equal(t, "", c.Markup("auth", 5))
	assert.Equal(t, "", c.Markup("homepage", 4))
}

func TestCatalog_Resolve(t *testing.T) {
	c := New(Config{
		DefaultNamespace: "auth",
		Namespaces: map[string]Namespace{
			"auth":     {Name: "auth"},
			"homepage": {Name: "homepage"},
		},
	}, testAnalyzer(t), logger.NewNoOpLogger())

	assert.Equal(t, "homepage", c.Resolve("homepage"))
	assert.Equal(t, "auth", c.Resolve("footer"))
	assert.Equal(t, []string{"auth", "homepage"}, c.Namespaces())
}
