package risk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "tradewind:risk:"

// RedisStore shares risk state between orchestrator replicas. Cross-replica
// updates are last-writer-wins; replicas handling the same user should be
// avoided by routing, the store does not add distributed locking.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func NewRedisStoreFromURL(url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return &RedisStore{client: redis.NewClient(opts)}, nil
}

func (s *RedisStore) Get(ctx context.Context, userID string) (*UserRiskState, error) {
	payload, err := s.client.Get(ctx, redisKeyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to load risk state for %s: %w", userID, err)
	}

	state := &UserRiskState{}

	err = json.Unmarshal(payload, state)
	if err != nil {
		return nil, fmt.Errorf("failed to decode risk state for %s: %w", userID, err)
	}

	return state, nil
}

func (s *RedisStore) Save(ctx context.Context, state *UserRiskState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode risk state for %s: %w", state.UserID, err)
	}

	err = s.client.Set(ctx, redisKeyPrefix+state.UserID, payload, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to save risk state for %s: %w", state.UserID, err)
	}

	return nil
}

func (s *RedisStore) Users(ctx context.Context) ([]string, error) {
	var (
		users  []string
		cursor uint64
	)

	for {
		keys, next, err := s.client.Scan(ctx, cursor, redisKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan risk states: %w", err)
		}

		for _, key := range keys {
			users = append(users, strings.TrimPrefix(key, redisKeyPrefix))
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return users, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
