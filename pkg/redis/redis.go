// Package redis wraps a go-redis universal client behind the small set of
// list and key operations the run history uses. Every key is prefixed.
package redis

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
)

var NilError = goredis.Nil

type Options = goredis.UniversalOptions

type RedisAdapter interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// MGet returns a nil entry for every key that does not exist.
	MGet(ctx context.Context, keys ...string) ([][]byte, error)
	LRange(ctx context.Context, list string, start, stop int64) ([]string, error)
	// LRem removes every occurrence of member from list.
	LRem(ctx context.Context, list string, member string) error
	// PushCapped stores value under key and pushes id onto the head of
	// list, trimming list to max entries, in one MULTI/EXEC.
	PushCapped(ctx context.Context, list, id, key string, value []byte, ttl time.Duration, max int64) error
	Ping(ctx context.Context) error
	Close() error
}

type redisAdapter struct {
	name   string
	prefix string
	conn   goredis.UniversalClient
}

var (
	registryMu sync.Mutex
	registry   = map[string]*redisAdapter{}
)

// NewRedisAdapter returns the adapter registered under connName, dialing and
// pinging a new client the first time a name is seen.
func NewRedisAdapter(connName string, keysPrefix string, opts *Options) (RedisAdapter, error) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if a, ok := registry[connName]; ok {
		return a, nil
	}

	c := goredis.NewUniversalClient(opts)
	if err := c.Ping(context.Background()).Err(); err != nil {
		_ = c.Close()
		return nil, errors.Wrapf(err, "redis %s: ping", connName)
	}
	a := &redisAdapter{name: connName, prefix: keysPrefix, conn: c}
	registry[connName] = a
	return a, nil
}

func (r *redisAdapter) key(k string) string {
	return r.prefix + k
}

func (r *redisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	return r.conn.Get(ctx, r.key(key)).Bytes()
}

func (r *redisAdapter) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = r.key(k)
	}
	vals, err := r.conn.MGet(ctx, prefixed...).Result()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[i] = []byte(s)
		}
	}
	return out, nil
}

func (r *redisAdapter) LRange(ctx context.Context, list string, start, stop int64) ([]string, error) {
	return r.conn.LRange(ctx, r.key(list), start, stop).Result()
}

func (r *redisAdapter) LRem(ctx context.Context, list string, member string) error {
	return r.conn.LRem(ctx, r.key(list), 0, member).Err()
}

func (r *redisAdapter) PushCapped(ctx context.Context, list, id, key string, value []byte, ttl time.Duration, max int64) error {
	_, err := r.conn.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, r.key(key), value, ttl)
		p.LPush(ctx, r.key(list), id)
		if max > 0 {
			p.LTrim(ctx, r.key(list), 0, max-1)
		}
		return nil
	})
	return err
}

func (r *redisAdapter) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx).Err()
}

// Close closes the client and forgets the registered name.
func (r *redisAdapter) Close() error {
	registryMu.Lock()
	if registry[r.name] == r {
		delete(registry, r.name)
	}
	registryMu.Unlock()
	return r.conn.Close()
}
