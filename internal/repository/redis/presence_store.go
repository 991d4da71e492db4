package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const presenceKey = "presence:online"

// PresenceStore mirrors the online set into a Redis ZSET keyed by user id,
// scored by the last check-in time. Entries older than the window are
// treated as stale and pruned on read.
type PresenceStore struct {
	rdb    *redis.Client
	window time.Duration
}

func NewPresenceStore(rdb *redis.Client, window time.Duration) *PresenceStore {
	return &PresenceStore{rdb: rdb, window: window}
}

func (s *PresenceStore) SetOnline(ctx context.Context, userID uuid.UUID, ttl time.Duration) error {
	err := s.rdb.ZAdd(ctx, presenceKey, redis.Z{
		Score:  float64(time.Now().Unix()),
		Member: userID.String(),
	}).Err()
	if err != nil {
		return err
	}
	// Expire the whole set so an idle deployment does not leak the key.
	return s.rdb.Expire(ctx, presenceKey, ttl*2).Err()
}

func (s *PresenceStore) SetOffline(ctx context.Context, userID uuid.UUID) error {
	return s.rdb.ZRem(ctx, presenceKey, userID.String()).Err()
}

func (s *PresenceStore) Online(ctx context.Context) ([]uuid.UUID, error) {
	threshold := time.Now().Add(-s.window).Unix()
	if err := s.rdb.ZRemRangeByScore(ctx, presenceKey, "-inf", strconv.FormatInt(threshold, 10)).Err(); err != nil {
		return nil, err
	}

	members, err := s.rdb.ZRange(ctx, presenceKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	online := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			continue
		}
		online = append(online, id)
	}
	return online, nil
}
