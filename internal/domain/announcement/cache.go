package announcement

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"pixelforge-server-go/internal/platform/errors"
)

const (
	pointerKey  = "announcement:active"
	valuePrefix = "announcement:"
)

type Config struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}

// Cache holds the active announcement as a two-key pair: a pointer key whose
// value is the active announcement id, and a per-id value key holding the
// serialized body. Expiry is enforced lazily on read, there is no sweeper.
type Cache struct {
	client *redis.Client
	prefix string
}

// NewCache connects to redis and verifies the connection.
func NewCache(cfg Config) (*Cache, error) {
	if cfg.Addr == "" {
		return nil, errors.New(errors.KindConfig, "announcement.new", "redis address required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, errors.Wrap(errors.KindCache, "announcement.new", "redis ping failed", err)
	}

	return &Cache{
		client: client,
		prefix: cfg.Prefix,
	}, nil
}

func (c *Cache) activeKey() string {
	return c.prefix + pointerKey
}

func (c *Cache) valueKey(id string) string {
	return c.prefix + valuePrefix + id
}

// GetActive returns the currently active announcement, or nil when there is
// none. Stale state found along the way (dangling pointer, expired window)
// is cleaned up before returning; a not-yet-started announcement is left
// untouched.
func (c *Cache) GetActive(ctx context.Context) (*Announcement, error) {
	id, err := c.client.Get(ctx, c.activeKey()).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.KindCache, "announcement.get", "failed to read pointer key", err)
	}

	raw, err := c.client.Get(ctx, c.valueKey(id)).Bytes()
	if err == redis.Nil {
		// Pointer without a body: heal by dropping the pointer.
		if delErr := c.client.Del(ctx, c.activeKey()).Err(); delErr != nil {
			return nil, errors.Wrap(errors.KindCache, "announcement.get", "failed to drop dangling pointer", delErr)
		}
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.KindCache, "announcement.get", "failed to read announcement body", err)
	}

	var ann Announcement
	if err := sonic.Unmarshal(raw, &ann); err != nil {
		return nil, errors.Wrap(errors.KindCache, "announcement.get", "failed to decode announcement", err)
	}

	now := time.Now()
	if ann.StartAt != nil && ann.StartAt.After(now) {
		// Scheduled but not yet active. Keep the keys.
		return nil, nil
	}
	if ann.EndAt != nil && ann.EndAt.Before(now) {
		if err := c.client.Del(ctx, c.activeKey(), c.valueKey(id)).Err(); err != nil {
			return nil, errors.Wrap(errors.KindCache, "announcement.get", "failed to expire announcement", err)
		}
		return nil, nil
	}

	return &ann, nil
}

// Publish stores the announcement body and repoints the pointer key at it.
// The body is written first so that a failure in between leaves only a
// dangling pointer, which GetActive heals.
func (c *Cache) Publish(ctx context.Context, ann *Announcement) error {
	raw, err := sonic.Marshal(ann)
	if err != nil {
		return errors.Wrap(errors.KindCache, "announcement.publish", "failed to encode announcement", err)
	}

	var ttl time.Duration
	if ann.EndAt != nil {
		ttl = time.Until(*ann.EndAt)
		if ttl <= 0 {
			return errors.New(errors.KindValidation, "announcement.publish", "endAt is already in the past")
		}
	}

	if err := c.client.Set(ctx, c.valueKey(ann.ID), raw, ttl).Err(); err != nil {
		return errors.Wrap(errors.KindCache, "announcement.publish", "failed to store announcement body", err)
	}
	if err := c.client.Set(ctx, c.activeKey(), ann.ID, ttl).Err(); err != nil {
		return errors.Wrap(errors.KindCache, "announcement.publish", "failed to store pointer key", err)
	}
	return nil
}

// Clear removes the active announcement, deleting both keys. Clearing an
// already-empty cache is a no-op.
func (c *Cache) Clear(ctx context.Context) error {
	id, err := c.client.Get(ctx, c.activeKey()).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.KindCache, "announcement.clear", "failed to read pointer key", err)
	}

	if err := c.client.Del(ctx, c.activeKey(), c.valueKey(id)).Err(); err != nil {
		return errors.Wrap(errors.KindCache, "announcement.clear", "failed to delete announcement keys", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
