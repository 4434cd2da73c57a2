package redisclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrViewMiss is returned when a view has no cached payload
var ErrViewMiss = errors.New("view not cached")

type Client struct {
	rdb     *redis.Client
	viewTTL time.Duration
}

// NewClient creates a new Redis client for the view cache
func NewClient(addr, password string, db int, viewTTL time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewClientFromRedis(rdb, viewTTL), nil
}

// NewClientFromRedis wraps an existing redis connection
func NewClientFromRedis(rdb *redis.Client, viewTTL time.Duration) *Client {
	return &Client{rdb: rdb, viewTTL: viewTTL}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks the Redis connection
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func viewKey(path string) string {
	return fmt.Sprintf("view:%s", path)
}

func viewVersionKey(path string) string {
	return fmt.Sprintf("view:ver:%s", path)
}

// setViewIfCurrent stores the payload only while the view version still equals ARGV[1]
var setViewIfCurrent = redis.NewScript(`
local current = redis.call("GET", KEYS[2]) or "0"
if current ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
else
	redis.call("SET", KEYS[1], ARGV[2])
end
return 1
`)

// GetView returns the cached payload of a view
func (c *Client) GetView(ctx context.Context, path string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, viewKey(path)).Bytes()
	if err == redis.Nil {
		return nil, ErrViewMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get view %s: %w", path, err)
	}
	return data, nil
}

// ViewVersion returns how many times the view was marked stale
func (c *Client) ViewVersion(ctx context.Context, path string) (int64, error) {
	v, err := c.rdb.Get(ctx, viewVersionKey(path)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get view version %s: %w", path, err)
	}
	return v, nil
}

// SetView caches the payload of a view read at version. It reports false without writing
// when the view was marked stale since then.
func (c *Client) SetView(ctx context.Context, path string, version int64, data []byte) (bool, error) {
	stored, err := setViewIfCurrent.Run(ctx, c.rdb,
		[]string{viewKey(path), viewVersionKey(path)},
		strconv.FormatInt(version, 10), data, c.viewTTL.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("set view %s: %w", path, err)
	}
	return stored == 1, nil
}

// MarkStale bumps the view version and drops the cached payload, so the next read goes to the store
// and reads already in flight cannot cache what they fetched
func (c *Client) MarkStale(ctx context.Context, path string) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, viewVersionKey(path))
		pipe.Del(ctx, viewKey(path))
		return nil
	})
	return err
}
