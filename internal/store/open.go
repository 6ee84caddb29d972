package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ashureev/biaslens/internal/domain"
)

// RepositoryOptions selects the analysis backends.
type RepositoryOptions struct {
	SQLitePath  string
	SupabaseURL string
	SupabaseKey string
}

// OpenAnalysisRepository builds the repository for the configured backends.
// With nothing configured it returns a NopRepository. With both configured,
// writes go to each and reads come from SQLite.
func OpenAnalysisRepository(opts RepositoryOptions) (AnalysisRepository, error) {
	var repos []AnalysisRepository

	if opts.SQLitePath != "" {
		s, err := NewSQLite(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		repos = append(repos, s)
	}

	if opts.SupabaseURL != "" && opts.SupabaseKey != "" {
		s, err := NewSupabase(opts.SupabaseURL, opts.SupabaseKey)
		if err != nil {
			for _, r := range repos {
				_ = r.Close()
			}
			return nil, err
		}
		repos = append(repos, s)
	}

	switch len(repos) {
	case 0:
		return NopRepository{}, nil
	case 1:
		return repos[0], nil
	default:
		return fanoutRepository(repos), nil
	}
}

// fanoutRepository writes to every backend and reads from the first.
type fanoutRepository []AnalysisRepository

func (f fanoutRepository) SaveAnalysis(ctx context.Context, record *domain.AnalysisRecord) error {
	var errs []error
	for _, r := range f {
		if err := r.SaveAnalysis(ctx, record); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", r, err))
		}
	}
	return errors.Join(errs...)
}

func (f fanoutRepository) ListAnalyses(ctx context.Context, limit int) ([]domain.AnalysisRecord, error) {
	return f[0].ListAnalyses(ctx, limit)
}

func (f fanoutRepository) Ping(ctx context.Context) error {
	var errs []error
	for _, r := range f {
		errs = append(errs, r.Ping(ctx))
	}
	return errors.Join(errs...)
}

func (f fanoutRepository) Close() error {
	var errs []error
	for _, r := range f {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}
