package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ashureev/biaslens/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix  = "biaslens:conversation:"
	redisLockSuffix = ":lock"
)

// releaseLockScript deletes the lock only if it still carries our token.
var releaseLockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisConfig configures a RedisConversationStore.
type RedisConfig struct {
	// TTL is how long an idle conversation is kept. Zero keeps it forever.
	TTL time.Duration
	// LockTTL bounds how long one update may hold the conversation lock.
	LockTTL time.Duration
	// LockWait bounds how long an update waits for the lock before ErrConflict.
	LockWait time.Duration
	// LockRetry is the polling interval while waiting for the lock.
	LockRetry time.Duration
}

// DefaultRedisConfig returns the default store settings.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		TTL:       24 * time.Hour,
		LockTTL:   2 * time.Minute,
		LockWait:  2 * time.Minute,
		LockRetry: 25 * time.Millisecond,
	}
}

// RedisConversationStore keeps conversations as JSON values in Redis.
// Updates take a per-conversation lock so concurrent turns are serialized
// across processes.
type RedisConversationStore struct {
	client *redis.Client
	cfg    RedisConfig
}

// NewRedisConversationStore creates a store on an existing client.
func NewRedisConversationStore(client *redis.Client, cfg RedisConfig) *RedisConversationStore {
	def := DefaultRedisConfig()
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = def.LockTTL
	}
	if cfg.LockWait <= 0 {
		cfg.LockWait = def.LockWait
	}
	if cfg.LockRetry <= 0 {
		cfg.LockRetry = def.LockRetry
	}
	return &RedisConversationStore{client: client, cfg: cfg}
}

func conversationKey(conversationID string) string {
	return redisKeyPrefix + conversationID
}

// Get returns the stored conversation.
func (s *RedisConversationStore) Get(ctx context.Context, conversationID string) (*domain.ConversationState, error) {
	data, err := s.client.Get(ctx, conversationKey(conversationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	var state domain.ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", conversationID, err)
	}
	return &state, nil
}

// Update locks the conversation, applies fn and writes the result back.
func (s *RedisConversationStore) Update(ctx context.Context, conversationID string, fn UpdateFunc) (*domain.ConversationState, error) {
	key := conversationKey(conversationID)
	lockKey := key + redisLockSuffix

	token, err := s.acquire(ctx, lockKey)
	if err != nil {
		return nil, err
	}
	defer s.release(lockKey, token)

	state, err := s.Get(ctx, conversationID)
	if errors.Is(err, ErrNotFound) {
		state = domain.NewConversationState(conversationID)
	} else if err != nil {
		return nil, err
	}

	if err := fn(state); err != nil {
		return nil, err
	}
	state.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode conversation: %w", err)
	}
	// A successful fn is kept even when ctx was cancelled meanwhile.
	if err := s.client.Set(context.WithoutCancel(ctx), key, data, s.cfg.TTL).Err(); err != nil {
		return nil, fmt.Errorf("store conversation: %w", err)
	}
	return state.Clone(), nil
}

func (s *RedisConversationStore) acquire(ctx context.Context, lockKey string) (string, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(s.cfg.LockWait)

	for {
		ok, err := s.client.SetNX(ctx, lockKey, token, s.cfg.LockTTL).Result()
		if err != nil {
			return "", fmt.Errorf("acquire conversation lock: %w", err)
		}
		if ok {
			return token, nil
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("acquire conversation lock: %w", ErrConflict)
		}

		timer := time.NewTimer(s.cfg.LockRetry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *RedisConversationStore) release(lockKey, token string) {
	// Release even when the request context is already done.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = releaseLockScript.Run(ctx, s.client, []string{lockKey}, token).Err()
}

// Ping verifies Redis connectivity.
func (s *RedisConversationStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisConversationStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("close redis client: %w", err)
	}
	return nil
}
