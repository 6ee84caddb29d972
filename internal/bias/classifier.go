package bias

import (
	"strings"

	"github.com/ashureev/biaslens/internal/domain"
)

// Result is the outcome of classifying one piece of text.
type Result struct {
	Terms    []string
	Category domain.BiasCategory
}

// Classifier matches text against a fixed vocabulary.
type Classifier struct {
	vocab Vocabulary
}

// NewClassifier creates a classifier over the given vocabulary.
func NewClassifier(vocab Vocabulary) *Classifier {
	return &Classifier{vocab: vocab.normalize()}
}

// Vocabulary returns the classifier's term table.
func (c *Classifier) Vocabulary() Vocabulary {
	return c.vocab
}

// Classify reports which vocabulary terms occur in text and the resulting category.
//
// Matching is a plain substring test on the lower-cased text, so "kind" also
// matches "kindergarten". When both lists match, the larger count wins and a
// tie goes to masculine; the reported terms are then the masculine matches
// followed by the feminine ones.
func (c *Classifier) Classify(text string) Result {
	lower := strings.ToLower(text)
	masculine := matchTerms(lower, c.vocab.Masculine)
	feminine := matchTerms(lower, c.vocab.Feminine)

	switch {
	case len(masculine) > 0 && len(feminine) == 0:
		return Result{Terms: masculine, Category: domain.BiasMasculine}
	case len(feminine) > 0 && len(masculine) == 0:
		return Result{Terms: feminine, Category: domain.BiasFeminine}
	case len(masculine) > 0 && len(feminine) > 0:
		terms := append(masculine, feminine...)
		if len(masculine) >= len(feminine) {
			return Result{Terms: terms, Category: domain.BiasMasculine}
		}
		return Result{Terms: terms, Category: domain.BiasFeminine}
	default:
		return Result{Terms: []string{}, Category: domain.BiasNeutral}
	}
}

func matchTerms(lower string, terms []string) []string {
	var found []string
	for _, t := range terms {
		if strings.Contains(lower, t) {
			found = append(found, t)
		}
	}
	return found
}
