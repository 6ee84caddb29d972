package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ashureev/biaslens/internal/domain"
	"github.com/supabase-community/postgrest-go"
)

const (
	supabaseTable   = "job_analyses"
	supabaseColumns = "job_description,biased_terms,bias_type,bias_explanation,inclusive_alternative,created_at"
)

// SupabaseStore implements AnalysisRepository on a Supabase project through
// its PostgREST endpoint.
type SupabaseStore struct {
	client *postgrest.Client
}

type supabaseRow struct {
	JobDescription       string     `json:"job_description"`
	BiasedTerms          []string   `json:"biased_terms"`
	BiasType             string     `json:"bias_type"`
	BiasExplanation      string     `json:"bias_explanation"`
	InclusiveAlternative string     `json:"inclusive_alternative"`
	CreatedAt            *time.Time `json:"created_at,omitempty"`
}

// NewSupabase creates a Supabase-backed repository for the project at
// projectURL, authenticated with apiKey.
func NewSupabase(projectURL, apiKey string) (*SupabaseStore, error) {
	projectURL = strings.TrimRight(strings.TrimSpace(projectURL), "/")
	if projectURL == "" || apiKey == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}
	if _, err := url.ParseRequestURI(projectURL); err != nil {
		return nil, fmt.Errorf("invalid supabase url: %w", err)
	}

	client := postgrest.NewClient(projectURL+"/rest/v1", "public", map[string]string{
		"apikey":        apiKey,
		"Authorization": "Bearer " + apiKey,
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("create postgrest client: %w", client.ClientError)
	}
	return &SupabaseStore{client: client}, nil
}

// SaveAnalysis inserts the record's analysis fields into the job_analyses table.
func (s *SupabaseStore) SaveAnalysis(ctx context.Context, record *domain.AnalysisRecord) error {
	terms := record.BiasedTerms
	if terms == nil {
		terms = []string{}
	}
	row := supabaseRow{
		JobDescription:       record.JobDescription,
		BiasedTerms:          terms,
		BiasType:             string(record.BiasType),
		BiasExplanation:      record.BiasExplanation,
		InclusiveAlternative: record.InclusiveAlternative,
	}

	_, _, err := s.client.From(supabaseTable).
		Insert(row, false, "", "minimal", "").
		ExecuteWithContext(ctx)
	if err != nil {
		return fmt.Errorf("supabase insert: %w", err)
	}
	return nil
}

// ListAnalyses returns the most recent records, newest first.
func (s *SupabaseStore) ListAnalyses(ctx context.Context, limit int) ([]domain.AnalysisRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var rows []supabaseRow
	_, err := s.client.From(supabaseTable).
		Select(supabaseColumns, "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Limit(limit, "").
		ExecuteToWithContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("supabase select: %w", err)
	}

	records := make([]domain.AnalysisRecord, 0, len(rows))
	for _, row := range rows {
		rec := domain.AnalysisRecord{
			JobDescription:       row.JobDescription,
			BiasedTerms:          row.BiasedTerms,
			BiasType:             domain.BiasCategory(row.BiasType),
			BiasExplanation:      row.BiasExplanation,
			InclusiveAlternative: row.InclusiveAlternative,
		}
		if row.CreatedAt != nil {
			rec.CreatedAt = row.CreatedAt.UTC()
		}
		records = append(records, rec)
	}
	return records, nil
}

// Ping reads one row to check that the table is reachable with the key.
func (s *SupabaseStore) Ping(ctx context.Context) error {
	_, _, err := s.client.From(supabaseTable).
		Select("bias_type", "", false).
		Limit(1, "").
		ExecuteWithContext(ctx)
	if err != nil {
		return fmt.Errorf("supabase ping: %w", err)
	}
	return nil
}

// Close is a no-op; the client holds no resources.
func (s *SupabaseStore) Close() error { return nil }
