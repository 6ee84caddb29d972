package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/ashureev/biaslens/internal/domain"
	"github.com/ashureev/biaslens/internal/store"
)

type captureLogger struct {
	mu     sync.Mutex
	events []ConversationLogEvent
}

func (c *captureLogger) Log(e ConversationLogEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureLogger) Close() error { return nil }

func newTestService(t *testing.T) (*Service, *testGraph, *captureLogger) {
	t.Helper()
	tg := newTestGraph(t, nil)
	transcript := &captureLogger{}
	svc := NewService(tg.graph, store.NewMemoryConversationStore(), transcript, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, tg, transcript
}

func TestServiceChatEndToEnd(t *testing.T) {
	t.Parallel()

	svc, tg, transcript := newTestService(t)
	resp, err := svc.Chat(context.Background(), ChatRequest{Message: "Looking for a rockstar ninja developer"})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.ConversationID == "" {
		t.Fatal("expected a generated conversation id")
	}
	if !strings.Contains(resp.Response, "Masculine-Coded Bias Detected") {
		t.Errorf("Response = %q", resp.Response)
	}
	if resp.RequiresClarification {
		t.Error("RequiresClarification should be false")
	}

	state, err := svc.Conversation(context.Background(), resp.ConversationID)
	if err != nil {
		t.Fatalf("Conversation() error = %v", err)
	}
	if strings.Join(state.BiasedTerms, ",") != "rockstar,ninja" {
		t.Errorf("BiasedTerms = %v", state.BiasedTerms)
	}
	if tg.repo.count() != 1 {
		t.Errorf("stored analyses = %d, want 1", tg.repo.count())
	}

	transcript.mu.Lock()
	defer transcript.mu.Unlock()
	if len(transcript.events) != 2 {
		t.Fatalf("transcript events = %d, want 2", len(transcript.events))
	}
	if transcript.events[0].Direction != "inbound" || transcript.events[1].Direction != "outbound" {
		t.Errorf("unexpected transcript order: %+v", transcript.events)
	}
}

func TestServiceChatClarification(t *testing.T) {
	t.Parallel()

	svc, tg, _ := newTestService(t)
	resp, err := svc.Chat(context.Background(), ChatRequest{Message: "hi", ConversationID: "given-id"})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.ConversationID != "given-id" {
		t.Errorf("ConversationID = %q, want given-id", resp.ConversationID)
	}
	if !resp.RequiresClarification || resp.Response != ClarificationPrompt {
		t.Errorf("unexpected response %+v", resp)
	}
	if tg.repo.count() != 0 {
		t.Errorf("stored analyses = %d, want 0", tg.repo.count())
	}
}

func TestServiceChatEmptyMessageAsksForDescription(t *testing.T) {
	t.Parallel()

	svc, tg, _ := newTestService(t)
	for _, msg := range []string{"", "   "} {
		resp, err := svc.Chat(context.Background(), ChatRequest{Message: msg, ConversationID: "empty"})
		if err != nil {
			t.Fatalf("Chat(%q) error = %v", msg, err)
		}
		if !resp.RequiresClarification || resp.Response != ClarificationPrompt {
			t.Errorf("Chat(%q) = %+v, want clarification", msg, resp)
		}
	}
	if tg.repo.count() != 0 {
		t.Errorf("stored analyses = %d, want 0", tg.repo.count())
	}

	resp, err := svc.Chat(context.Background(), ChatRequest{Message: "Looking for a rockstar ninja developer", ConversationID: "empty"})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.RequiresClarification || tg.repo.count() != 1 {
		t.Errorf("follow-up turn = %+v, stored = %d", resp, tg.repo.count())
	}
}

func TestServiceConversationNotFound(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	if _, err := svc.Conversation(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Conversation() error = %v, want ErrNotFound", err)
	}
}

func TestServiceConcurrentTurnsStoreOnce(t *testing.T) {
	t.Parallel()

	svc, tg, _ := newTestService(t)
	ctx := context.Background()

	const turns = 20
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Chat(ctx, ChatRequest{Message: "Looking for a rockstar ninja developer", ConversationID: "shared"}); err != nil {
				t.Errorf("Chat() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if tg.repo.count() != 1 || tg.notifier.count() != 1 {
		t.Errorf("side effects = %d stores, %d notifies; want 1 each", tg.repo.count(), tg.notifier.count())
	}
	state, err := svc.Conversation(ctx, "shared")
	if err != nil {
		t.Fatalf("Conversation() error = %v", err)
	}
	if len(state.Messages) != 2*turns {
		t.Errorf("messages = %d, want %d", len(state.Messages), 2*turns)
	}
	for i, m := range state.Messages {
		want := domain.RoleUser
		if i%2 == 1 {
			want = domain.RoleAssistant
		}
		if m.Role != want {
			t.Fatalf("message %d role = %q, want %q", i, m.Role, want)
		}
	}
}

func TestChannelFromContext(t *testing.T) {
	t.Parallel()

	if got := channelFromContext(context.Background()); got != "chat" {
		t.Errorf("default channel = %q", got)
	}
	if got := channelFromContext(WithChannel(context.Background(), "ws")); got != "ws" {
		t.Errorf("channel = %q, want ws", got)
	}
}
