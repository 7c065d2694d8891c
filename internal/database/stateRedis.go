package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ds124wfegd/negative-web/internal/entity"

	"github.com/redis/go-redis/v9"
)

type RedisSnapshotRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSnapshotRepository(client *redis.Client, ttl time.Duration) *RedisSnapshotRepository {
	return &RedisSnapshotRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisSnapshotRepository) SaveSnapshot(ctx context.Context, sessionID string, state entity.UIState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, snapshotKey(sessionID), data, r.ttl).Err()
}

// LoadSnapshot returns nil, nil when the session has no stored snapshot.
func (r *RedisSnapshotRepository) LoadSnapshot(ctx context.Context, sessionID string) (*entity.UIState, error) {
	data, err := r.client.Get(ctx, snapshotKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var state entity.UIState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *RedisSnapshotRepository) DeleteSnapshot(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, snapshotKey(sessionID)).Err()
}

func snapshotKey(sessionID string) string {
	return "session:" + sessionID
}

// NopSnapshotRepository is used when redis is not configured.
type NopSnapshotRepository struct{}

func (NopSnapshotRepository) SaveSnapshot(context.Context, string, entity.UIState) error {
	return nil
}

func (NopSnapshotRepository) LoadSnapshot(context.Context, string) (*entity.UIState, error) {
	return nil, nil
}

func (NopSnapshotRepository) DeleteSnapshot(context.Context, string) error {
	return nil
}
