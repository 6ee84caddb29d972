package domain

import "time"

// AnalysisRecord is the finalized analysis persisted and notified once per conversation.
type AnalysisRecord struct {
	ID                   int64        `json:"id,omitempty"`
	ConversationID       string       `json:"conversation_id,omitempty"`
	JobDescription       string       `json:"job_description"`
	BiasedTerms          []string     `json:"biased_terms"`
	BiasType             BiasCategory `json:"bias_type"`
	BiasExplanation      string       `json:"bias_explanation"`
	InclusiveAlternative string       `json:"inclusive_alternative"`
	CreatedAt            time.Time    `json:"created_at"`
}

// NewAnalysisRecord flattens a finalized conversation into a record.
// Neutral analyses never carry terms.
func NewAnalysisRecord(s *ConversationState, category BiasCategory) AnalysisRecord {
	terms := append([]string{}, s.BiasedTerms...)
	if category == BiasNeutral {
		terms = []string{}
	}
	return AnalysisRecord{
		ConversationID:       s.ConversationID,
		JobDescription:       s.JobDescription,
		BiasedTerms:          terms,
		BiasType:             category,
		BiasExplanation:      s.BiasExplanation,
		InclusiveAlternative: s.InclusiveAlternative,
		CreatedAt:            time.Now().UTC(),
	}
}
