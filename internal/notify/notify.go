// Package notify delivers finalized analyses to external consumers.
package notify

import (
	"context"
	"errors"

	"github.com/ashureev/biaslens/internal/domain"
)

// Notifier delivers one finalized analysis.
type Notifier interface {
	Notify(ctx context.Context, record domain.AnalysisRecord) error
}

// Payload is the wire form of a finalized analysis.
type Payload struct {
	ConversationID       string   `json:"conversation_id,omitempty"`
	JobDescription       string   `json:"job_description"`
	BiasedTerms          []string `json:"biased_terms"`
	BiasType             string   `json:"bias_type"`
	BiasExplanation      string   `json:"bias_explanation"`
	InclusiveAlternative string   `json:"inclusive_alternative"`
}

// NewPayload converts a record into its wire form.
func NewPayload(record domain.AnalysisRecord) Payload {
	terms := record.BiasedTerms
	if terms == nil {
		terms = []string{}
	}
	return Payload{
		ConversationID:       record.ConversationID,
		JobDescription:       record.JobDescription,
		BiasedTerms:          terms,
		BiasType:             string(record.BiasType),
		BiasExplanation:      record.BiasExplanation,
		InclusiveAlternative: record.InclusiveAlternative,
	}
}

// Nop discards notifications.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, domain.AnalysisRecord) error { return nil }

// Multi notifies each notifier in order and joins their errors.
type Multi []Notifier

// Notify calls every notifier even when an earlier one fails.
func (m Multi) Notify(ctx context.Context, record domain.AnalysisRecord) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
