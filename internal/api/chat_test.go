package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ashureev/biaslens/internal/agent"
	"github.com/ashureev/biaslens/internal/domain"
	"github.com/ashureev/biaslens/internal/explain"
	"github.com/ashureev/biaslens/internal/llm"
	"github.com/ashureev/biaslens/internal/store"
	"github.com/go-chi/chi/v5"
)

func newTestRouter(t *testing.T, chat agent.Processor, repo store.AnalysisRepository) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(chat, repo, []string{"*"}).RegisterRoutes(r)
	NewHealthHandler(nil, 0).RegisterHealth(r)
	return r
}

func newTestService() *agent.Service {
	graph := agent.NewGraph(agent.GraphConfig{
		Generator: explain.NewGenerator(llm.NewMockClient(""), explain.DefaultOptions()),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return agent.NewService(graph, store.NewMemoryConversationStore(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func postChat(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestChatEndpoint(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, newTestService(), nil)
	w := postChat(t, h, `{"message":"Looking for a rockstar ninja developer"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp agent.ChatResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !strings.Contains(resp.Response, "Masculine-Coded Bias Detected") {
		t.Errorf("unexpected response: %q", resp.Response)
	}
	if resp.ConversationID == "" || resp.RequiresClarification {
		t.Errorf("unexpected response fields: %+v", resp)
	}

	// The conversation is retrievable afterwards.
	req := httptest.NewRequest(http.MethodGet, "/api/conversations/"+resp.ConversationID, nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var state domain.ConversationState
	if err := json.NewDecoder(w.Body).Decode(&state); err != nil {
		t.Fatalf("Failed to decode conversation: %v", err)
	}
	if len(state.Messages) != 2 || state.BiasCategory != domain.BiasMasculine {
		t.Errorf("unexpected conversation: %+v", state)
	}
}

func TestChatEndpointClarification(t *testing.T) {
	t.Parallel()

	w := postChat(t, newTestRouter(t, newTestService(), nil), `{"message":"hi","conversation_id":"abc"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp agent.ChatResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.RequiresClarification || resp.ConversationID != "abc" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestChatEndpointBadRequests(t *testing.T) {
	t.Parallel()

	w := postChat(t, newTestRouter(t, newTestService(), nil), `not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestChatEndpointEmptyMessageAsksForDescription(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, newTestService(), nil)
	for _, body := range []string{`{"message":""}`, `{"message":"   "}`, `{}`} {
		w := postChat(t, h, body)
		if w.Code != http.StatusOK {
			t.Fatalf("body %q: expected status 200, got %d: %s", body, w.Code, w.Body.String())
		}
		var resp agent.ChatResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("body %q: failed to decode response: %v", body, err)
		}
		if !resp.RequiresClarification || resp.Response != agent.ClarificationPrompt {
			t.Errorf("body %q: unexpected response %+v", body, resp)
		}
		if resp.ConversationID == "" {
			t.Errorf("body %q: missing conversation id", body)
		}
	}
}

type failingProcessor struct{}

func (failingProcessor) Chat(context.Context, agent.ChatRequest) (*agent.ChatResponse, error) {
	return nil, errors.New("state machine exploded")
}

func (failingProcessor) Conversation(context.Context, string) (*domain.ConversationState, error) {
	return nil, errors.New("store exploded")
}

func TestChatEndpointInternalError(t *testing.T) {
	t.Parallel()

	h := newTestRouter(t, failingProcessor{}, nil)
	w := postChat(t, h, `{"message":"Looking for a rockstar ninja developer"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "state machine exploded") {
		t.Errorf("expected error text in body, got %s", w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/x", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}

func TestGetConversationNotFound(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/missing", nil)
	w := httptest.NewRecorder()
	newTestRouter(t, newTestService(), nil).ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

type staticRepo struct {
	store.NopRepository
	records   []domain.AnalysisRecord
	lastLimit int
}

func (s *staticRepo) ListAnalyses(_ context.Context, limit int) ([]domain.AnalysisRecord, error) {
	s.lastLimit = limit
	return s.records, nil
}

func TestListAnalyses(t *testing.T) {
	t.Parallel()

	repo := &staticRepo{records: []domain.AnalysisRecord{{ID: 1, JobDescription: "jd", BiasType: domain.BiasNeutral, BiasedTerms: []string{}}}}
	h := newTestRouter(t, newTestService(), repo)

	req := httptest.NewRequest(http.MethodGet, "/api/analyses?limit=5", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if repo.lastLimit != 5 {
		t.Errorf("limit = %d, want 5", repo.lastLimit)
	}
	var got struct {
		Analyses []domain.AnalysisRecord `json:"analyses"`
	}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(got.Analyses) != 1 || got.Analyses[0].ID != 1 {
		t.Errorf("unexpected analyses: %+v", got.Analyses)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/analyses?limit=abc", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestListAnalysesDefaultRepository(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/analyses", nil)
	w := httptest.NewRecorder()
	newTestRouter(t, newTestService(), nil).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"analyses":[]`) {
		t.Errorf("expected empty list, got %s", w.Body.String())
	}
}
