// Package bias detects gender-coded vocabulary in job-description text.
package bias

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyVocabulary is returned when a vocabulary file defines no terms at all.
var ErrEmptyVocabulary = errors.New("vocabulary defines no terms")

// Vocabulary is the keyword table the classifier matches against.
// Terms are checked in list order, which is also the order they are reported in.
type Vocabulary struct {
	Masculine []string `yaml:"masculine"`
	Feminine  []string `yaml:"feminine"`
}

// DefaultVocabulary returns the built-in term lists.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Masculine: []string{
			"aggressive", "dominant", "competitive", "assertive", "rockstar",
			"ninja", "guru", "warrior", "champion", "leader", "decisive",
			"confident", "ambitious", "driven", "forceful", "commanding",
		},
		Feminine: []string{
			"nurturing", "supportive", "caring", "collaborative", "empathetic",
			"gentle", "patient", "understanding", "helpful", "cooperative",
			"warm", "compassionate", "sensitive", "kind", "thoughtful",
		},
	}
}

// LoadVocabulary reads a YAML vocabulary file of the form
//
//	masculine: [aggressive, ninja]
//	feminine: [nurturing]
func LoadVocabulary(path string) (Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary file: %w", err)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary decodes YAML vocabulary data and normalizes its terms.
func ParseVocabulary(data []byte) (Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary: %w", err)
	}
	v = v.normalize()
	if len(v.Masculine) == 0 && len(v.Feminine) == 0 {
		return Vocabulary{}, ErrEmptyVocabulary
	}
	return v, nil
}

func (v Vocabulary) normalize() Vocabulary {
	return Vocabulary{
		Masculine: normalizeTerms(v.Masculine),
		Feminine:  normalizeTerms(v.Feminine),
	}
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}
