// internal/requirements/analyzer.go
package requirements

import (
	"sort"

	"pagegen-workers/internal/common/logger"
	"pagegen-workers/internal/models"
)

// Analyzer turns a free-text prompt into a RequirementRecord.
// Implementations are pure and deterministic.
type Analyzer interface {
	Name() string
	Analyze(prompt string) models.RequirementRecord
}

// Options selects the analyzer strategy at startup.
type Options struct {
	KeywordsPath string
	LexiconPath  string
}

// NewAnalyzer builds the lexicon-assisted analyzer when its lexicon loads and
// the plain keyword analyzer otherwise. The choice is made once.
func NewAnalyzer(opts Options, log logger.Logger) (Analyzer, error) {
	log = log.WithFields(map[string]interface{}{"component": "requirements"})

	table, err := LoadTable(opts.KeywordsPath)
	if err != nil {
		return nil, err
	}
	keyword := NewKeywordAnalyzer(table)

	if opts.LexiconPath == "" {
		log.Debug("lexicon not configured, using keyword analyzer", nil)
		return keyword, nil
	}

	lex, err := LoadLexicon(opts.LexiconPath)
	if err != nil {
		log.Debug("lexicon unavailable, using keyword analyzer", map[string]interface{}{
			"path":  opts.LexiconPath,
			"error": err.Error(),
		})
		return keyword, nil
	}

	log.Info("lexicon analyzer enabled", map[string]interface{}{
		"path":    opts.LexiconPath,
		"entries": lex.Size(),
	})
	return NewLexiconAnalyzer(table, lex), nil
}

type KeywordAnalyzer struct {
	table *Table
}

func NewKeywordAnalyzer(table *Table) *KeywordAnalyzer {
	return &KeywordAnalyzer{table: table}
}

func (a *KeywordAnalyzer) Name() string { return "keyword" }

func (a *KeywordAnalyzer) Analyze(prompt string) models.RequirementRecord {
	return a.analyzeNormalized(normalize(prompt))
}

func (a *KeywordAnalyzer) analyzeNormalized(text string) models.RequirementRecord {
	single := a.table.Triggered(text)

	features := a.table.Multi(DimFeatures, text)
	if single && !contains(features, models.FeatureSingleForm) {
		features = append(features, models.FeatureSingleForm)
		sort.Strings(features)
	}

	return models.RequirementRecord{
		Style:             a.table.Single(DimStyle, text),
		Colors:            a.table.Multi(DimColors, text),
		Features:          features,
		Complexity:        a.table.Single(DimComplexity, text),
		ThemeIntensity:    a.table.Single(DimThemeIntensity, text),
		Category:          a.table.Single(DimCategory, text),
		WebsiteType:       a.table.Single(DimWebsiteType, text),
		SingleFormRequest: single,
	}
}

// LexiconAnalyzer maps synonyms and inflections onto the keyword vocabulary
// before running the keyword pass.
type LexiconAnalyzer struct {
	keyword *KeywordAnalyzer
	lexicon *Lexicon
}

func NewLexiconAnalyzer(table *Table, lex *Lexicon) *LexiconAnalyzer {
	return &LexiconAnalyzer{keyword: NewKeywordAnalyzer(table), lexicon: lex}
}

func (a *LexiconAnalyzer) Name() string { return "lexicon" }

func (a *LexiconAnalyzer) Analyze(prompt string) models.RequirementRecord {
	return a.keyword.analyzeNormalized(a.lexicon.Normalize(normalize(prompt)))
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
