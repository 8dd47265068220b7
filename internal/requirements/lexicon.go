// internal/requirements/lexicon.go
package requirements

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon is a small linguistic artifact: phrase synonyms plus word lemmas.
type Lexicon struct {
	Synonyms map[string]string `yaml:"synonyms"`
	Lemmas   map[string]string `yaml:"lemmas"`
}

func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	if len(lex.Synonyms) == 0 && len(lex.Lemmas) == 0 {
		return nil, fmt.Errorf("lexicon %s is empty", path)
	}
	return &lex, nil
}

func (l *Lexicon) Size() int {
	return len(l.Synonyms) + len(l.Lemmas)
}

// Normalize rewrites every word of an already normalized text through the
// lemma table and then the synonym table. Padding is preserved.
func (l *Lexicon) Normalize(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		if lemma, ok := l.Lemmas[w]; ok {
			w = lemma
		}
		if syn, ok := l.Synonyms[w]; ok {
			w = syn
		}
		words[i] = w
	}
	return " " + strings.Join(words, " ") + " "
}
