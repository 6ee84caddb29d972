package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	antoption "github.com/anthropics/anthropic-sdk-go/option"
	oaoption "github.com/openai/openai-go/option"
)

func failingServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProviderClientsDoNotRetry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		client func(url string) (Client, error)
	}{
		{
			name: "openai",
			client: func(url string) (Client, error) {
				return NewOpenAIClient("k", "gpt-3.5-turbo", oaoption.WithBaseURL(url))
			},
		},
		{
			name: "anthropic",
			client: func(url string) (Client, error) {
				return NewAnthropicClient("k", "claude-3-5-haiku-latest", antoption.WithBaseURL(url))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var hits atomic.Int32
			srv := failingServer(t, &hits)

			c, err := tt.client(srv.URL + "/")
			if err != nil {
				t.Fatalf("create client: %v", err)
			}
			_, err = c.Complete(context.Background(), Request{Prompt: "hello", Temperature: 0.7})
			if err == nil {
				t.Fatal("Complete() error = nil, want provider error")
			}

			var provErr *ProviderError
			if !errors.As(err, &provErr) || provErr.Status != http.StatusServiceUnavailable {
				t.Errorf("error = %v, want ProviderError with status 503", err)
			}
			if !IsTransient(err) {
				t.Errorf("IsTransient(%v) = false, want true", err)
			}
			if got := hits.Load(); got != 1 {
				t.Errorf("requests = %d, want 1", got)
			}
		})
	}
}
