package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ashureev/biaslens/internal/domain"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "biaslens.db"))
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteSaveAndList(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	ctx := context.Background()

	first := &domain.AnalysisRecord{
		ConversationID:       "conv-1",
		JobDescription:       "We want a rockstar ninja developer.",
		BiasedTerms:          []string{"rockstar", "ninja"},
		BiasType:             domain.BiasMasculine,
		BiasExplanation:      "masculine explanation",
		InclusiveAlternative: "skilled developer",
	}
	if err := s.SaveAnalysis(ctx, first); err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}
	if first.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}
	if first.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}

	second := &domain.AnalysisRecord{
		JobDescription: "Plain description of the role.",
		BiasType:       domain.BiasNeutral,
	}
	if err := s.SaveAnalysis(ctx, second); err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}

	got, err := s.ListAnalyses(ctx, 10)
	if err != nil {
		t.Fatalf("ListAnalyses() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(ListAnalyses()) = %d, want 2", len(got))
	}
	if got[0].ID != second.ID {
		t.Errorf("expected newest first, got ID %d", got[0].ID)
	}
	if got[0].BiasedTerms == nil || len(got[0].BiasedTerms) != 0 {
		t.Errorf("neutral record terms = %#v, want empty slice", got[0].BiasedTerms)
	}
	if got[0].ConversationID != "" {
		t.Errorf("ConversationID = %q, want empty", got[0].ConversationID)
	}

	rec := got[1]
	if rec.ConversationID != "conv-1" || rec.BiasType != domain.BiasMasculine {
		t.Errorf("unexpected record %+v", rec)
	}
	if len(rec.BiasedTerms) != 2 || rec.BiasedTerms[0] != "rockstar" || rec.BiasedTerms[1] != "ninja" {
		t.Errorf("BiasedTerms = %v, want [rockstar ninja]", rec.BiasedTerms)
	}
}

func TestSQLiteListLimit(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.SaveAnalysis(ctx, &domain.AnalysisRecord{JobDescription: "jd", BiasType: domain.BiasNeutral}); err != nil {
			t.Fatalf("SaveAnalysis() error = %v", err)
		}
	}

	got, err := s.ListAnalyses(ctx, 3)
	if err != nil {
		t.Fatalf("ListAnalyses() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}

	got, err = s.ListAnalyses(ctx, 0)
	if err != nil {
		t.Fatalf("ListAnalyses() error = %v", err)
	}
	if len(got) != 5 {
		t.Errorf("len with default limit = %d, want 5", len(got))
	}
}

func TestSQLitePing(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestNopRepository(t *testing.T) {
	t.Parallel()

	var repo AnalysisRepository = NopRepository{}
	if err := repo.SaveAnalysis(context.Background(), &domain.AnalysisRecord{}); err != nil {
		t.Errorf("SaveAnalysis() error = %v", err)
	}
	got, err := repo.ListAnalyses(context.Background(), 10)
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("ListAnalyses() = %v, %v; want empty slice", got, err)
	}
}

func TestSQLiteUsesWAL(t *testing.T) {
	t.Parallel()

	s := newTestSQLite(t)
	var mode string
	if err := s.db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	var timeout int
	if err := s.db.QueryRowContext(context.Background(), "PRAGMA busy_timeout").Scan(&timeout); err != nil {
		t.Fatalf("query busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", timeout)
	}
}
