package cart

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultSessionTTL = 7 * 24 * time.Hour

// RedisStore keeps one hash per session: field = product id, value = quantity.
// Redis removes a hash once its last field is deleted, which collapses the cart to EMPTY.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStore{client: client, ttl: ttl, prefix: "cart:"}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *RedisStore) Incr(ctx context.Context, sessionID string, productID uint) (int, error) {
	key := s.key(sessionID)

	pipe := s.client.TxPipeline()
	incr := pipe.HIncrBy(ctx, key, strconv.FormatUint(uint64(productID), 10), 1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis incr cart: %w", err)
	}
	return int(incr.Val()), nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string, productID uint) (bool, error) {
	n, err := s.client.HDel(ctx, s.key(sessionID), strconv.FormatUint(uint64(productID), 10)).Result()
	if err != nil {
		return false, fmt.Errorf("redis delete cart item: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) All(ctx context.Context, sessionID string) (map[uint]int, error) {
	raw, err := s.client.HGetAll(ctx, s.key(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read cart: %w", err)
	}
	return decodeHash(raw)
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis clear cart: %w", err)
	}
	return nil
}

func decodeHash(raw map[string]string) (map[uint]int, error) {
	out := make(map[uint]int, len(raw))
	for field, value := range raw {
		id, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad cart field %q: %w", field, err)
		}
		q, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("bad cart quantity %q: %w", value, err)
		}
		if q < 1 {
			continue
		}
		out[uint(id)] = q
	}
	return out, nil
}
