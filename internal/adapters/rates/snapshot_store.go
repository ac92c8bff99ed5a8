package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/p2p_ledger/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultSnapshotKey is the Redis key holding the shared snapshot.
const DefaultSnapshotKey = "p2p_ledger:rates:usd"

// SnapshotStore shares the last good snapshot between service instances.
type SnapshotStore interface {
	Load(ctx context.Context) (domain.RateSnapshot, bool, error)
	Save(ctx context.Context, snapshot domain.RateSnapshot) error
}

// RedisSnapshotStore keeps the snapshot as JSON under a single key.
type RedisSnapshotStore struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

var _ SnapshotStore = (*RedisSnapshotStore)(nil)

// NewRedisSnapshotStore creates a store. ttl bounds how long Redis keeps a snapshot and
// should match the cache's max staleness.
func NewRedisSnapshotStore(client redis.Cmdable, key string, ttl time.Duration) *RedisSnapshotStore {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &RedisSnapshotStore{client: client, key: key, ttl: ttl}
}

func (s *RedisSnapshotStore) Load(ctx context.Context) (domain.RateSnapshot, bool, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.RateSnapshot{}, false, nil
	}
	if err != nil {
		return domain.RateSnapshot{}, false, fmt.Errorf("failed to read rate snapshot: %w", err)
	}
	var snap domain.RateSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.RateSnapshot{}, false, fmt.Errorf("failed to decode rate snapshot: %w", err)
	}
	return snap, !snap.IsZero(), nil
}

func (s *RedisSnapshotStore) Save(ctx context.Context, snapshot domain.RateSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode rate snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write rate snapshot: %w", err)
	}
	return nil
}
