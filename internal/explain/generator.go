// Package explain produces the explanation and inclusive rewrite for a classified description.
package explain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ashureev/biaslens/internal/domain"
	"github.com/ashureev/biaslens/internal/llm"
)

// ErrNoClient is reported when generation is requested without a configured model.
var ErrNoClient = errors.New("no language model configured")

// ErrMalformedResponse is reported when the model response has no usable explanation.
var ErrMalformedResponse = errors.New("malformed model response")

const (
	explanationLabel = "EXPLANATION:"
	alternativeLabel = "ALTERNATIVE:"

	systemPrompt = "You are an expert in inclusive language and gender bias detection in job descriptions."

	neutralExplanation = "The job description appears to use neutral, inclusive language."
	neutralAlternative = "No changes needed. The language is already inclusive."

	genericAlternative = "Consider using more neutral language that focuses on skills and outcomes."
)

// Outcome is the result of one generation attempt.
// Err is set when the model call failed or could not be made; the text
// fields then hold the deterministic fallback.
type Outcome struct {
	Explanation  string
	Alternative  string
	FallbackUsed bool
	Err          error
}

// Options configures model parameters for generation.
type Options struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// DefaultOptions returns the parameters used when none are configured.
func DefaultOptions() Options {
	return Options{Temperature: 0.7, MaxTokens: 512, Timeout: 30 * time.Second}
}

// Generator produces explanations using a language model, falling back to
// templated text whenever the model is unavailable.
type Generator struct {
	client llm.Client
	opts   Options
}

// NewGenerator creates a generator. A nil client is allowed and always
// yields the fallback text.
func NewGenerator(client llm.Client, opts Options) *Generator {
	return &Generator{client: client, opts: opts}
}

// Generate returns the explanation and alternative for the given category and terms.
func (g *Generator) Generate(ctx context.Context, category domain.BiasCategory, terms []string) (string, string) {
	out := g.GenerateDetailed(ctx, category, terms)
	return out.Explanation, out.Alternative
}

// GenerateDetailed is Generate with failure information attached.
func (g *Generator) GenerateDetailed(ctx context.Context, category domain.BiasCategory, terms []string) Outcome {
	if category.OrNeutral() == domain.BiasNeutral {
		return Outcome{Explanation: neutralExplanation, Alternative: neutralAlternative}
	}

	if g.client == nil {
		return fallback(category, terms, ErrNoClient)
	}

	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	content, err := g.client.Complete(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      BuildPrompt(category, terms),
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
	})
	if err != nil {
		return fallback(category, terms, fmt.Errorf("generate explanation: %w", err))
	}

	explanation, alternative := ParseResponse(content)
	if explanation == "" || alternative == "" {
		return fallback(category, terms, ErrMalformedResponse)
	}
	return Outcome{Explanation: explanation, Alternative: alternative}
}

// BuildPrompt renders the user prompt sent to the model.
func BuildPrompt(category domain.BiasCategory, terms []string) string {
	return fmt.Sprintf(`The following job description contains %s language with these terms: %s

Please provide:
1. A clear explanation (2-3 sentences) of why these terms may create gender bias and discourage certain applicants.
2. A suggested inclusive, gender-neutral alternative phrasing that maintains the same meaning but appeals to all candidates.

Format your response as:
%s [your explanation]
%s [your alternative phrasing]`,
		category.Direction(), strings.Join(terms, ", "), explanationLabel, alternativeLabel)
}

// ParseResponse splits a labelled model response into explanation and alternative.
// A response without the alternative label gets a generic alternative.
func ParseResponse(content string) (string, string) {
	before, after, found := strings.Cut(content, alternativeLabel)
	explanation := strings.TrimSpace(strings.ReplaceAll(before, explanationLabel, ""))
	if !found {
		return explanation, genericAlternative
	}
	// Only the text up to a repeated label belongs to the first alternative.
	alternative, _, _ := strings.Cut(after, alternativeLabel)
	return explanation, strings.TrimSpace(alternative)
}

func fallback(category domain.BiasCategory, terms []string, err error) Outcome {
	direction := category.Direction()
	return Outcome{
		Explanation: fmt.Sprintf("These %s terms may unconsciously signal that the role is better suited for one gender, "+
			"potentially discouraging qualified candidates from applying.", direction),
		Alternative: fmt.Sprintf("Replace terms like '%s' with neutral alternatives that focus on skills, behaviors, "+
			"and outcomes rather than personality traits.", strings.Join(terms, ", ")),
		FallbackUsed: true,
		Err:          err,
	}
}
