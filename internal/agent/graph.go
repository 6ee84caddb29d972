package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ashureev/biaslens/internal/bias"
	"github.com/ashureev/biaslens/internal/domain"
	"github.com/ashureev/biaslens/internal/explain"
	"github.com/ashureev/biaslens/internal/llm"
	"github.com/ashureev/biaslens/internal/notify"
	"github.com/ashureev/biaslens/internal/store"
)

// ErrNoUserMessage is returned when a pass runs on a state without user input.
var ErrNoUserMessage = errors.New("conversation has no user message")

// Generator produces the explanation and inclusive alternative for a category.
type Generator interface {
	GenerateDetailed(ctx context.Context, category domain.BiasCategory, terms []string) explain.Outcome
}

// categoryBranch holds what differs between the per-category branches.
type categoryBranch struct {
	category         domain.BiasCategory
	heading          string
	showTerms        bool
	explanationLabel string
	alternativeLabel string
}

var branches = map[domain.BiasCategory]categoryBranch{
	domain.BiasMasculine: {
		category:         domain.BiasMasculine,
		heading:          "Masculine-Coded Bias Detected",
		showTerms:        true,
		explanationLabel: "Explanation",
		alternativeLabel: "Inclusive Alternative",
	},
	domain.BiasFeminine: {
		category:         domain.BiasFeminine,
		heading:          "Feminine-Coded Bias Detected",
		showTerms:        true,
		explanationLabel: "Explanation",
		alternativeLabel: "Inclusive Alternative",
	},
	domain.BiasNeutral: {
		category:         domain.BiasNeutral,
		heading:          "Neutral/Inclusive Language Detected",
		explanationLabel: "Analysis",
		alternativeLabel: "Recommendation",
	},
}

func (b categoryBranch) format(terms []string, explanation, alternative string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**\n\n", b.heading)
	if b.showTerms {
		fmt.Fprintf(&sb, "**Biased Terms Found:** %s\n\n", strings.Join(terms, ", "))
	}
	fmt.Fprintf(&sb, "**%s:**\n%s\n\n", b.explanationLabel, explanation)
	fmt.Fprintf(&sb, "**%s:**\n%s", b.alternativeLabel, alternative)
	return sb.String()
}

// GraphConfig wires the collaborators of a Graph. Nil collaborators are
// replaced with no-op implementations.
type GraphConfig struct {
	Classifier *bias.Classifier
	Generator  Generator
	Repository store.AnalysisRepository
	Notifier   notify.Notifier
	Logger     *slog.Logger
}

// Graph runs the start, route, branch and end steps for one turn.
type Graph struct {
	classifier *bias.Classifier
	generator  Generator
	repo       store.AnalysisRepository
	notifier   notify.Notifier
	logger     *slog.Logger
}

// NewGraph creates a graph from cfg.
func NewGraph(cfg GraphConfig) *Graph {
	g := &Graph{
		classifier: cfg.Classifier,
		generator:  cfg.Generator,
		repo:       cfg.Repository,
		notifier:   cfg.Notifier,
		logger:     cfg.Logger,
	}
	if g.classifier == nil {
		g.classifier = bias.NewClassifier(bias.DefaultVocabulary())
	}
	if g.generator == nil {
		g.generator = explain.NewGenerator(nil, explain.DefaultOptions())
	}
	if g.repo == nil {
		g.repo = store.NopRepository{}
	}
	if g.notifier == nil {
		g.notifier = notify.Nop{}
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Run executes one pass over state. The turn's user message must already be
// appended. State is modified in place.
func (g *Graph) Run(ctx context.Context, state *domain.ConversationState) error {
	if err := g.start(state); err != nil {
		return err
	}
	return g.branch(ctx, g.route(state), state)
}

func (g *Graph) start(state *domain.ConversationState) error {
	msg, ok := state.LastMessage(domain.RoleUser)
	if !ok {
		return ErrNoUserMessage
	}

	state.RequiresClarification = false

	// A description too short to analyze is replaced by the next message.
	if !descriptionUsable(state.JobDescription) {
		state.JobDescription = msg.Content
	}

	result := g.classifier.Classify(msg.Content)
	g.logger.Debug("classified message",
		"conversation_id", state.ConversationID,
		"bias_type", result.Category,
		"terms", len(result.Terms))

	// The analysis is fixed once it has been delivered.
	if !state.AnalysisComplete {
		state.BiasedTerms = result.Terms
		state.BiasCategory = result.Category
	}
	return nil
}

func (g *Graph) route(state *domain.ConversationState) categoryBranch {
	return branches[state.BiasCategory.OrNeutral()]
}

func (g *Graph) branch(ctx context.Context, br categoryBranch, state *domain.ConversationState) error {
	check := CheckCompleteness(state)
	switch check.Kind {
	case NeedsUserInput:
		state.RequiresClarification = true
		state.AppendMessage(domain.RoleAssistant, check.Prompt)
		return nil
	case NeedsGeneration:
		terms := state.BiasedTerms
		if br.category == domain.BiasNeutral {
			terms = nil
		}
		out := g.generator.GenerateDetailed(ctx, br.category, terms)
		if out.Err != nil {
			g.logger.Warn("explanation generation failed, using fallback",
				"conversation_id", state.ConversationID,
				"bias_type", br.category,
				"transient", llm.IsTransient(out.Err),
				"error", out.Err)
		}
		state.BiasExplanation = out.Explanation
		state.InclusiveAlternative = out.Alternative
	case Ready:
	}

	if !state.AnalysisComplete {
		g.finalize(ctx, br, state)
	}

	state.AppendMessage(domain.RoleAssistant,
		br.format(state.BiasedTerms, state.BiasExplanation, state.InclusiveAlternative))
	return nil
}

// finalize persists and notifies the analysis. Failures are logged and the
// analysis is marked complete either way. Both side effects run detached
// from cancellation of ctx.
func (g *Graph) finalize(ctx context.Context, br categoryBranch, state *domain.ConversationState) {
	ctx = context.WithoutCancel(ctx)
	record := domain.NewAnalysisRecord(state, br.category)

	if err := g.repo.SaveAnalysis(ctx, &record); err != nil {
		g.logger.Error("failed to store analysis",
			"conversation_id", state.ConversationID,
			"bias_type", br.category,
			"error", err)
	} else {
		g.logger.Info("analysis stored",
			"conversation_id", state.ConversationID,
			"bias_type", br.category,
			"analysis_id", record.ID)
	}

	if err := g.notifier.Notify(ctx, record); err != nil {
		g.logger.Error("failed to notify analysis",
			"conversation_id", state.ConversationID,
			"bias_type", br.category,
			"error", err)
	}

	state.AnalysisComplete = true
}
