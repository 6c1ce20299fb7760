package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Krimson/sportscan/pkg/models"
)

// RedisStore реализует SlotStore для Redis (Infrastructure Layer)
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// NewRedisStoreFromAddr подключается к Redis и проверяет соединение
func NewRedisStoreFromAddr(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return NewRedisStore(client, ttl), nil
}

func (r *RedisStore) Set(ctx context.Context, session *models.AnalysisSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, slotKey(session.SessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: failed to store session: %v", models.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, sessionID string) (*models.AnalysisSession, error) {
	data, err := r.client.Get(ctx, slotKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: session %s", models.ErrNotFound, sessionID)
		}
		return nil, fmt.Errorf("%w: failed to get session: %v", models.ErrStorageUnavailable, err)
	}

	var session models.AnalysisSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	deleted, err := r.client.Del(ctx, slotKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("%w: failed to delete session: %v", models.ErrStorageUnavailable, err)
	}
	if deleted == 0 {
		return fmt.Errorf("%w: session %s", models.ErrNotFound, sessionID)
	}
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *RedisStore) Stats(ctx context.Context) map[string]interface{} {
	stats := map[string]interface{}{
		"backend": "redis",
		"ttl":     r.ttl.String(),
	}

	var count int
	iter := r.client.Scan(ctx, 0, slotKey("*"), 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		stats["error"] = err.Error()
		return stats
	}
	stats["active_sessions"] = count
	return stats
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
