// Package skills holds the technical skill vocabulary and the keyword extractor
// that scans free text for it.
package skills

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

var defaultTerms = []string{
	"react", "node.js", "nodejs", "mongodb", "express", "javascript", "typescript", "python", "java", "c++", "c#", "sql", "nosql",
	"aws", "azure", "docker", "kubernetes", "html", "css", "tailwind", "redux", "next.js", "nextjs", "git", "github", "devops",
	"machine learning", "ai", "data science", "rust", "go", "php", "laravel", "flutter", "react native", "vue", "angular",
}

// Vocabulary is an immutable ordered set of lowercase skill terms.
// The zero value is an empty vocabulary.
type Vocabulary struct {
	terms []string
}

// NewVocabulary normalizes terms to lowercase, drops blanks and keeps the first
// occurrence of duplicates.
func NewVocabulary(terms ...string) Vocabulary {
	seen := make(map[string]struct{}, len(terms))
	normalized := make([]string, 0, len(terms))

	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		normalized = append(normalized, term)
	}

	return Vocabulary{terms: normalized}
}

// DefaultVocabulary returns the built-in DevHire vocabulary.
func DefaultVocabulary() Vocabulary {
	return NewVocabulary(defaultTerms...)
}

// LoadVocabulary reads a vocabulary from a yaml, json or toml file with a
// top-level "skills" list.
func LoadVocabulary(path string) (Vocabulary, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Vocabulary{}, fmt.Errorf("reading vocabulary file %q: %w", path, err)
	}

	vocab := NewVocabulary(v.GetStringSlice("skills")...)
	if vocab.Len() == 0 {
		return Vocabulary{}, fmt.Errorf("vocabulary file %q has no skills", path)
	}

	return vocab, nil
}

// Terms returns a copy of the vocabulary terms in order.
func (v Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

func (v Vocabulary) Len() int {
	return len(v.terms)
}

// Contains reports whether term, case-insensitively, is in the vocabulary.
func (v Vocabulary) Contains(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	for _, t := range v.terms {
		if t == term {
			return true
		}
	}
	return false
}

// Extract returns every term that occurs as a substring of the lowercased text,
// in vocabulary order. There is no word-boundary check, so "java" is found in
// "javascript".
func (v Vocabulary) Extract(text string) []string {
	found := make([]string, 0)
	if text == "" {
		return found
	}

	lower := strings.ToLower(text)
	for _, term := range v.terms {
		if strings.Contains(lower, term) {
			found = append(found, term)
		}
	}

	return found
}
