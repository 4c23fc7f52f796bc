package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionPrefix      = "session:"
	presentationPrefix = "presentation:"
)

// RedisStore is a Redis-backed coordination store. Sessions live under
// "session:<code>" with a TTL; presentation state lives under
// "presentation:<token>" with no expiry of its own (it becomes
// unreachable once the session is gone).
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) sessionKey(code string) string {
	return sessionPrefix + code
}

func (r *RedisStore) presentationKey(token string) string {
	return presentationPrefix + token
}

func (r *RedisStore) CreateIfAbsent(ctx context.Context, code string, info Info, ttl time.Duration) (bool, error) {
	if code == "" || info.Token == "" {
		return false, fmt.Errorf("session: missing code or token")
	}
	if ttl <= 0 {
		return false, fmt.Errorf("session: ttl must be positive")
	}

	data, err := json.Marshal(info)
	if err != nil {
		return false, fmt.Errorf("session: failed to marshal: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.sessionKey(code), data, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("session: failed to create: %w", err)
	}
	return ok, nil
}

func (r *RedisStore) Get(ctx context.Context, code string) (*Info, error) {
	val, err := r.client.Get(ctx, r.sessionKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}

	var info Info
	if err := json.Unmarshal([]byte(val), &info); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	return &info, nil
}

func (r *RedisStore) Renew(ctx context.Context, code string, info Info, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("session: ttl must be positive")
	}

	expected, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	key := r.sessionKey(code)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return ErrConflict
		}
		if err != nil {
			return err
		}
		if current != string(expected) {
			return ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, expected, ttl)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	return err
}

func (r *RedisStore) DeleteIfUnchanged(ctx context.Context, code string, info Info) error {
	expected, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	key := r.sessionKey(code)
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return ErrConflict
		}
		if err != nil {
			return err
		}
		if current != string(expected) {
			return ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	return err
}

func (r *RedisStore) SetState(ctx context.Context, token string, state PresentationState) error {
	if token == "" {
		return fmt.Errorf("session: missing token")
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("session: failed to marshal state: %w", err)
	}

	return r.client.Set(ctx, r.presentationKey(token), data, 0).Err()
}

func (r *RedisStore) GetState(ctx context.Context, token string) (*PresentationState, error) {
	val, err := r.client.Get(ctx, r.presentationKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}

	var state PresentationState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal state: %w", err)
	}
	return &state, nil
}
