package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/hxrushing/sdk-platform/internal/config"
)

// DefinitionCache remembers which (project, event name) pairs already
// have a registered definition, short-circuiting the metadata store
// check on the hot ingestion path. It is strictly best-effort: with
// FailOpen set, any Redis failure reads as a miss and writes are
// dropped, so ingestion falls back to the store.
type DefinitionCache struct {
	client   *redis.Client
	ttl      time.Duration
	failOpen bool
	log      *zap.Logger
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg config.Redis, log *zap.Logger) (*DefinitionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connection established successfully", zap.String("addr", cfg.Addr))

	return &DefinitionCache{
		client:   client,
		ttl:      time.Duration(cfg.TTLSec) * time.Second,
		failOpen: cfg.FailOpen,
		log:      log,
	}, nil
}

func definitionKey(projectID, eventName string) string {
	return fmt.Sprintf("evtdef:%s:%s", projectID, eventName)
}

// Known reports whether the pair was previously marked as registered. A
// miss means "check the store", never "definition absent".
func (c *DefinitionCache) Known(ctx context.Context, projectID, eventName string) (bool, error) {
	err := c.client.Get(ctx, definitionKey(projectID, eventName)).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		if c.failOpen {
			c.log.Warn("Definition cache read failed, falling back to store", zap.Error(err))
			return false, nil
		}
		return false, fmt.Errorf("definition cache read failed: %w", err)
	}
	return true, nil
}

// Mark records the pair as registered.
func (c *DefinitionCache) Mark(ctx context.Context, projectID, eventName string) error {
	err := c.client.Set(ctx, definitionKey(projectID, eventName), "1", c.ttl).Err()
	if err != nil {
		if c.failOpen {
			c.log.Warn("Definition cache write failed", zap.Error(err))
			return nil
		}
		return fmt.Errorf("definition cache write failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *DefinitionCache) Close() error {
	return c.client.Close()
}
