package store

import (
	"context"

	"github.com/ashureev/biaslens/internal/domain"
)

// NopRepository discards analyses. It is used when no persistence is configured.
type NopRepository struct{}

// SaveAnalysis does nothing.
func (NopRepository) SaveAnalysis(context.Context, *domain.AnalysisRecord) error { return nil }

// ListAnalyses always returns an empty list.
func (NopRepository) ListAnalyses(context.Context, int) ([]domain.AnalysisRecord, error) {
	return []domain.AnalysisRecord{}, nil
}

// Ping always succeeds.
func (NopRepository) Ping(context.Context) error { return nil }

// Close does nothing.
func (NopRepository) Close() error { return nil }
