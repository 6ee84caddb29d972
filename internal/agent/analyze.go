package agent

import (
	"context"
	"errors"

	"github.com/ashureev/biaslens/internal/domain"
	"github.com/ashureev/biaslens/internal/llm"
)

// ErrIncompleteDescription is returned by Analyze for text too short to analyze.
var ErrIncompleteDescription = errors.New(ClarificationPrompt)

// Analysis is the result of a single-shot analysis.
type Analysis struct {
	BiasType             domain.BiasCategory `json:"bias_type"`
	BiasedTerms          []string            `json:"biased_terms"`
	BiasExplanation      string              `json:"bias_explanation"`
	InclusiveAlternative string              `json:"inclusive_alternative"`
	FallbackUsed         bool                `json:"fallback_used"`
	Message              string              `json:"message"`
}

// Analyze classifies text and generates an explanation without touching the
// repository or notifier.
func (g *Graph) Analyze(ctx context.Context, text string) (Analysis, error) {
	if !descriptionUsable(text) {
		return Analysis{}, ErrIncompleteDescription
	}

	result := g.classifier.Classify(text)
	br := branches[result.Category.OrNeutral()]

	terms := result.Terms
	if br.category == domain.BiasNeutral {
		terms = []string{}
	}

	out := g.generator.GenerateDetailed(ctx, br.category, terms)
	if out.Err != nil {
		g.logger.Warn("explanation generation failed, using fallback",
			"bias_type", br.category,
			"transient", llm.IsTransient(out.Err),
			"error", out.Err)
	}

	return Analysis{
		BiasType:             br.category,
		BiasedTerms:          terms,
		BiasExplanation:      out.Explanation,
		InclusiveAlternative: out.Alternative,
		FallbackUsed:         out.FallbackUsed,
		Message:              br.format(terms, out.Explanation, out.Alternative),
	}, nil
}
