package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ashureev/biaslens/internal/agent"
	"github.com/ashureev/biaslens/internal/api"
	"github.com/ashureev/biaslens/internal/bias"
	"github.com/ashureev/biaslens/internal/config"
	"github.com/ashureev/biaslens/internal/explain"
	"github.com/ashureev/biaslens/internal/llm"
	"github.com/ashureev/biaslens/internal/notify"
	"github.com/ashureev/biaslens/internal/store"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// setup loads .env and configuration and installs the JSON logger on w.
func setup(w io.Writer) (*config.Config, *slog.Logger, error) {
	envErr := godotenv.Load(envFile)

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	if envErr != nil {
		slog.Info("No .env file found, using environment variables")
	}
	return cfg, logger, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildClassifier(cfg *config.Config) (*bias.Classifier, error) {
	vocab := bias.DefaultVocabulary()
	source := "builtin"
	if cfg.VocabularyFile != "" {
		loaded, err := bias.LoadVocabulary(cfg.VocabularyFile)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		vocab = loaded
		source = cfg.VocabularyFile
	}

	classifier := bias.NewClassifier(vocab)
	terms := classifier.Vocabulary()
	slog.Debug("Vocabulary loaded", "source", source,
		"masculine", len(terms.Masculine), "feminine", len(terms.Feminine))
	return classifier, nil
}

// buildGenerator creates the explanation generator. A provider without
// credentials still works and answers with fallback text.
func buildGenerator(ctx context.Context, cfg *config.Config) *explain.Generator {
	opts := explain.Options{
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}

	client, err := llm.New(ctx, llm.Options{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey(),
		Model:    cfg.LLM.Model,
	})
	if err != nil {
		if errors.Is(err, llm.ErrMissingAPIKey) {
			slog.Warn("No API key for language model, explanations will use fallback text", "provider", cfg.LLM.Provider)
		} else {
			slog.Error("Failed to create language model client, explanations will use fallback text", "provider", cfg.LLM.Provider, "error", err)
		}
		return explain.NewGenerator(nil, opts)
	}

	slog.Info("Language model configured", "provider", client.Name(), "model", cfg.LLM.Model)
	return explain.NewGenerator(client, opts)
}

// closers collects cleanup functions and runs them in reverse order.
type closers []func() error

func (c *closers) add(fn func() error) { *c = append(*c, fn) }

func (c closers) close() {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			slog.Error("Failed to close resource", "error", err)
		}
	}
}

// backends holds the stateful collaborators of the chat service.
type backends struct {
	repo          store.AnalysisRepository
	conversations store.ConversationStore
	notifier      notify.Notifier
	pingers       map[string]api.Pinger
}

func buildBackends(ctx context.Context, cfg *config.Config, logger *slog.Logger, cleanup *closers) (*backends, error) {
	b := &backends{pingers: map[string]api.Pinger{}}

	repo, err := store.OpenAnalysisRepository(store.RepositoryOptions{
		SQLitePath:  cfg.Storage.DBPath,
		SupabaseURL: cfg.Storage.SupabaseURL,
		SupabaseKey: cfg.Storage.SupabaseKey,
	})
	if err != nil {
		return nil, fmt.Errorf("open analysis repository: %w", err)
	}
	cleanup.add(repo.Close)
	if _, nop := repo.(store.NopRepository); nop {
		slog.Info("Analysis persistence disabled (DB_PATH and Supabase credentials not set)")
	} else {
		if err := repo.Ping(ctx); err != nil {
			slog.Warn("Analysis repository health check failed", "error", err)
		}
		b.pingers["database"] = repo
	}
	b.repo = repo

	if cfg.Storage.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Storage.RedisAddr, err)
		}
		rcfg := store.DefaultRedisConfig()
		rcfg.TTL = cfg.Storage.ConversationTTL
		rs := store.NewRedisConversationStore(client, rcfg)
		cleanup.add(rs.Close)
		b.conversations = rs
		b.pingers["redis"] = rs
		slog.Info("Conversation store: redis", "addr", cfg.Storage.RedisAddr, "ttl", cfg.Storage.ConversationTTL)
	} else {
		b.conversations = store.NewMemoryConversationStore()
		slog.Info("Conversation store: memory")
	}

	var notifiers notify.Multi
	if cfg.Notification.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhook(cfg.Notification.WebhookURL, cfg.Notification.WebhookTimeout, nil))
		slog.Info("Webhook notifications enabled")
	}
	if cfg.Notification.RedisStreamAddr != "" {
		streamClient := redis.NewClient(&redis.Options{Addr: cfg.Notification.RedisStreamAddr})
		pub, err := notify.NewRedisStreamPublisher(streamClient, cfg.Notification.RedisStreamTopic, logger)
		if err != nil {
			_ = streamClient.Close()
			return nil, err
		}
		cleanup.add(streamClient.Close)
		cleanup.add(pub.Close)
		notifiers = append(notifiers, pub)
		slog.Info("Stream notifications enabled", "addr", cfg.Notification.RedisStreamAddr, "topic", cfg.Notification.RedisStreamTopic)
	}
	b.notifier = notifiers

	return b, nil
}

func buildTranscriptLogger(cfg *config.Config, logger *slog.Logger, cleanup *closers) (agent.ConversationLogger, error) {
	l, err := agent.NewConversationLogger(agent.ConversationLogConfig{
		Enabled:       cfg.ConversationLog.Enabled,
		Dir:           cfg.ConversationLog.Dir,
		GlobalEnabled: cfg.ConversationLog.GlobalEnabled,
		GlobalPath:    cfg.ConversationLog.GlobalPath,
		QueueSize:     cfg.ConversationLog.QueueSize,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize conversation logger: %w", err)
	}
	cleanup.add(l.Close)
	return l, nil
}
