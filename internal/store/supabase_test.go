package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ashureev/biaslens/internal/domain"
)

func TestNewSupabaseRequiresConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewSupabase("", "key"); err == nil {
		t.Error("expected error for empty url")
	}
	if _, err := NewSupabase("https://example.supabase.co", ""); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestSupabaseSaveAnalysis(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	var gotPath, gotKey, gotAuth, gotPrefer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		gotPrefer = r.Header.Get("Prefer")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s, err := NewSupabase(srv.URL+"/", "secret")
	if err != nil {
		t.Fatalf("NewSupabase() error = %v", err)
	}

	err = s.SaveAnalysis(context.Background(), &domain.AnalysisRecord{
		ConversationID:       "c1",
		JobDescription:       "We want a ninja.",
		BiasedTerms:          []string{"ninja"},
		BiasType:             domain.BiasMasculine,
		BiasExplanation:      "expl",
		InclusiveAlternative: "alt",
	})
	if err != nil {
		t.Fatalf("SaveAnalysis() error = %v", err)
	}

	if gotPath != "/rest/v1/job_analyses" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "secret" || gotAuth != "Bearer secret" {
		t.Errorf("auth headers = %q / %q", gotKey, gotAuth)
	}
	if !strings.Contains(gotPrefer, "return=minimal") {
		t.Errorf("Prefer = %q, want return=minimal", gotPrefer)
	}
	if len(gotBody) != 5 {
		t.Errorf("expected exactly 5 fields, got %v", gotBody)
	}
	if gotBody["bias_type"] != "masculine" || gotBody["job_description"] != "We want a ninja." {
		t.Errorf("unexpected body %v", gotBody)
	}
	if _, ok := gotBody["conversation_id"]; ok {
		t.Error("conversation_id should not be sent")
	}
}

func TestSupabaseSaveAnalysisErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"42P01","message":"relation \"job_analyses\" does not exist"}`))
	}))
	defer srv.Close()

	s, err := NewSupabase(srv.URL, "secret")
	if err != nil {
		t.Fatalf("NewSupabase() error = %v", err)
	}
	if err := s.SaveAnalysis(context.Background(), &domain.AnalysisRecord{BiasType: domain.BiasNeutral}); err == nil {
		t.Error("expected error on 404")
	}
}

func TestSupabaseListAnalyses(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/job_analyses" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "2" {
			t.Errorf("limit = %q, want 2", r.URL.Query().Get("limit"))
		}
		if !strings.HasPrefix(r.URL.Query().Get("order"), "created_at.desc") {
			t.Errorf("order = %q, want created_at.desc", r.URL.Query().Get("order"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"job_description":"a","biased_terms":["nurturing"],"bias_type":"feminine","bias_explanation":"e","inclusive_alternative":"i","created_at":"2024-05-01T10:00:00.123456+00:00"},
			{"job_description":"b","biased_terms":[],"bias_type":"neutral","bias_explanation":"e","inclusive_alternative":"i"}
		]`))
	}))
	defer srv.Close()

	s, err := NewSupabase(srv.URL, "secret")
	if err != nil {
		t.Fatalf("NewSupabase() error = %v", err)
	}

	got, err := s.ListAnalyses(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListAnalyses() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].BiasType != domain.BiasFeminine || got[0].CreatedAt.Year() != 2024 {
		t.Errorf("unexpected first record %+v", got[0])
	}
	if !got[1].CreatedAt.IsZero() {
		t.Errorf("expected zero CreatedAt, got %v", got[1].CreatedAt)
	}
}
