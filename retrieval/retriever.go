// Package retrieval implements a lightweight document retriever used by the
// policy agents. Documents are split into paragraph passages and scored by
// keyword overlap with the question. Suitable for the small, curated policy
// corpora this system ships with; swap for a vector index when the corpus
// outgrows keyword matching.
package retrieval

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/hupe1980/salesmesh/core"
)

// KeywordRetriever scores stored passages by keyword overlap. Safe for
// concurrent queries; indexing happens at construction and never after.
type KeywordRetriever struct {
	passages []indexedPassage
}

type indexedPassage struct {
	text   string
	source string
	tokens map[string]struct{}
}

// stopwords carry no signal for policy lookups and are dropped before scoring.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "how": {}, "in": {}, "is": {}, "it": {},
	"of": {}, "on": {}, "or": {}, "that": {}, "the": {}, "to": {}, "what": {},
	"which": {}, "with": {}, "you": {}, "your": {},
}

// New builds a retriever over in-code documents. Each document is split into
// paragraph passages indexed under the given source label.
func New(documents map[string]string) *KeywordRetriever {
	r := &KeywordRetriever{}
	for source, text := range documents {
		r.index(source, text)
	}
	return r
}

// NewFromDir builds a retriever over all .md and .txt files in dir. The file
// name (without extension) becomes the passage source.
func NewFromDir(dir string) (*KeywordRetriever, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read policy dir %s: %w", dir, err)
	}

	r := &KeywordRetriever{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".md" && ext != ".txt" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read policy file %s: %w", entry.Name(), err)
		}
		r.index(strings.TrimSuffix(entry.Name(), ext), string(data))
	}
	return r, nil
}

func (r *KeywordRetriever) index(source, text string) {
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		tokens := make(map[string]struct{})
		for _, tok := range tokenize(para) {
			tokens[tok] = struct{}{}
		}
		r.passages = append(r.passages, indexedPassage{text: para, source: source, tokens: tokens})
	}
}

// Len returns the number of indexed passages.
func (r *KeywordRetriever) Len() int { return len(r.passages) }

// Query implements core.Retriever. Passages scoring zero are never returned;
// an empty result means the corpus holds nothing relevant to the question.
func (r *KeywordRetriever) Query(_ context.Context, question string, topK int) ([]core.Passage, error) {
	terms := tokenize(question)
	keywords := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, stop := stopwords[t]; !stop {
			keywords = append(keywords, t)
		}
	}
	if len(keywords) == 0 {
		return nil, nil
	}

	var results []core.Passage
	for _, p := range r.passages {
		hits := 0
		for _, kw := range keywords {
			if _, ok := p.tokens[kw]; ok {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		results = append(results, core.Passage{
			Text:   p.text,
			Score:  float64(hits) / float64(len(keywords)),
			Source: p.source,
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
