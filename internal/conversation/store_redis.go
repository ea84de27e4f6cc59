package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"village-gate/pkg/platform/sentinel"
)

const keyPrefix = "conversation:"

// Redis persists conversation state in Redis so parked conversations survive
// process restarts. States are stored as JSON without expiry: the design has
// no conversation timeout.
type Redis struct {
	client redis.UniversalClient
}

// NewRedis constructs a Redis-backed conversation store.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Get(ctx context.Context, id int64) (*State, error) {
	raw, err := s.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get conversation %d: %w", id, err)
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode conversation %d: %w", id, err)
	}
	return &state, nil
}

func (s *Redis) Set(ctx context.Context, id int64, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode conversation %d: %w", id, err)
	}
	if err := s.client.Set(ctx, key(id), raw, 0).Err(); err != nil {
		return fmt.Errorf("set conversation %d: %w", id, err)
	}
	return nil
}

func (s *Redis) Clear(ctx context.Context, id int64) error {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("clear conversation %d: %w", id, err)
	}
	return nil
}

func key(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}
