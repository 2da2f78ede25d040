package kvstore

import (
	"context"
	"errors"
	"time"

	redisclient "github.com/angelmondragon/storefront-client/pkg/redis"
)

type redisBackend interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	KVKey(key string) string
}

// Redis stores values in redis under the "sf:kv:" namespace without expiry.
type Redis struct {
	client redisBackend
}

// NewRedis returns a store that namespaces keys through client.
func NewRedis(client *redisclient.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.client.KVKey(key))
	if errors.Is(err, redisclient.ErrNil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.client.KVKey(key), value, 0)
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.client.KVKey(key))
}
