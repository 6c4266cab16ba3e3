package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Lixing-Zhang/broffee-bot/internal/models"
	"github.com/go-redis/redis/v8"
)

const defaultKeyPrefix = "broffee:cart:"

// addItemScript increments the quantity hash and records first insertions in
// the order list, refreshing the TTL of both keys when one is set.
// It returns -1 without writing when the line would pass the limit.
// KEYS[1] quantities hash, KEYS[2] order list
// ARGV[1] item, ARGV[2] quantity, ARGV[3] ttl seconds, ARGV[4] line limit
var addItemScript = redis.NewScript(`
local current = tonumber(redis.call('HGET', KEYS[1], ARGV[1]) or '0')
if current + tonumber(ARGV[2]) > tonumber(ARGV[4]) then
	return -1
end
local n = redis.call('HINCRBY', KEYS[1], ARGV[1], ARGV[2])
if current == 0 then
	redis.call('RPUSH', KEYS[2], ARGV[1])
end
local ttl = tonumber(ARGV[3])
if ttl > 0 then
	redis.call('EXPIRE', KEYS[1], ttl)
	redis.call('EXPIRE', KEYS[2], ttl)
end
return n
`)

// RedisCartStore implements CartStore on Redis so several bot replicas can share carts
type RedisCartStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCartStore creates a Redis-backed cart store.
// A zero ttl keeps carts until they are cleared.
func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{
		client: client,
		prefix: defaultKeyPrefix,
		ttl:    ttl,
	}
}

// WithPrefix returns a copy of the store using a different key prefix
func (r *RedisCartStore) WithPrefix(prefix string) *RedisCartStore {
	clone := *r
	clone.prefix = prefix
	return &clone
}

// NewRedisClient connects to Redis and verifies the connection with a ping
func NewRedisClient(ctx context.Context, options *redis.Options) (*redis.Client, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	client := redis.NewClient(options)
	if _, err := client.Ping(pingCtx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("error setting up redis client: %w", err)
	}

	return client, nil
}

func (r *RedisCartStore) quantitiesKey(sessionID string) string {
	return r.prefix + sessionID + ":qty"
}

func (r *RedisCartStore) orderKey(sessionID string) string {
	return r.prefix + sessionID + ":order"
}

// Add atomically increments item in the session's cart
func (r *RedisCartStore) Add(ctx context.Context, sessionID, item string, quantity int) (int, error) {
	if sessionID == "" {
		return 0, ErrInvalidSession
	}

	if quantity <= 0 || quantity > MaxLineQuantity {
		return 0, ErrInvalidQuantity
	}

	keys := []string{r.quantitiesKey(sessionID), r.orderKey(sessionID)}
	n, err := addItemScript.Run(ctx, r.client, keys, item, quantity, int64(r.ttl/time.Second), MaxLineQuantity).Int()
	if err != nil {
		return 0, fmt.Errorf("error adding item to cart: %w", err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %s would exceed %d", ErrInvalidQuantity, item, MaxLineQuantity)
	}

	return n, nil
}

// Get reads the session's cart lines in insertion order
func (r *RedisCartStore) Get(ctx context.Context, sessionID string) ([]models.CartLine, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	pipe := r.client.TxPipeline()
	orderCmd := pipe.LRange(ctx, r.orderKey(sessionID), 0, -1)
	qtyCmd := pipe.HGetAll(ctx, r.quantitiesKey(sessionID))
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("error reading cart from redis: %w", err)
	}

	quantities := qtyCmd.Val()
	lines := make([]models.CartLine, 0, len(quantities))
	for _, item := range orderCmd.Val() {
		raw, ok := quantities[item]
		if !ok {
			continue
		}
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("error parsing quantity for %s: %w", item, err)
		}
		lines = append(lines, models.CartLine{Item: item, Quantity: qty})
	}

	return lines, nil
}

// Clear deletes the session's cart keys
func (r *RedisCartStore) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidSession
	}

	if err := r.client.Del(ctx, r.quantitiesKey(sessionID), r.orderKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("error clearing cart: %w", err)
	}
	return nil
}

// Ping checks that Redis is reachable
func (r *RedisCartStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
