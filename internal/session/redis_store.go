package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore keeps each session as a JSON value under session:<id>, with the
// key TTL doing the expiry.
type RedisStore struct {
	rdb redis.Cmdable
	now func() time.Time
}

func NewRedisStore(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb, now: time.Now}
}

func (s *RedisStore) Save(ctx context.Context, sess Session, ttl time.Duration) error {
	sess.ExpiresAt = s.now().Add(ttl)

	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := s.rdb.Set(ctx, redisKeyPrefix+sess.ID, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}

	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (Session, bool, error) {
	raw, err := s.rdb.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, false, nil
		}
		return Session{}, false, fmt.Errorf("redis get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, false, fmt.Errorf("decode session: %w", err)
	}

	if sess.Expired(s.now()) {
		return Session{}, false, nil
	}

	return sess, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
