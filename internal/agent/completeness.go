package agent

import (
	"strings"
	"unicode/utf8"

	"github.com/ashureev/biaslens/internal/domain"
)

// MinDescriptionLength is the shortest trimmed job description that is analyzed.
const MinDescriptionLength = 10

// ClarificationPrompt asks the user for a usable job description.
const ClarificationPrompt = "Can you provide the complete job description text? The current input seems incomplete."

// CompletenessKind says what a branch must do next.
type CompletenessKind int

const (
	// Ready means the state holds everything needed to answer.
	Ready CompletenessKind = iota
	// NeedsUserInput means the user must supply more text before anything else runs.
	NeedsUserInput
	// NeedsGeneration means the explanation or alternative must still be generated.
	NeedsGeneration
)

func (k CompletenessKind) String() string {
	switch k {
	case Ready:
		return "ready"
	case NeedsUserInput:
		return "needs_user_input"
	case NeedsGeneration:
		return "needs_generation"
	default:
		return "unknown"
	}
}

// Completeness is the result of CheckCompleteness. Prompt is set only for
// NeedsUserInput.
type Completeness struct {
	Kind   CompletenessKind
	Prompt string
}

// CheckCompleteness decides whether the conversation can be answered.
// A too-short description wins over every other field.
func CheckCompleteness(state *domain.ConversationState) Completeness {
	if !descriptionUsable(state.JobDescription) {
		return Completeness{Kind: NeedsUserInput, Prompt: ClarificationPrompt}
	}
	if state.BiasExplanation == "" || state.InclusiveAlternative == "" {
		return Completeness{Kind: NeedsGeneration}
	}
	return Completeness{Kind: Ready}
}

func descriptionUsable(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= MinDescriptionLength
}
