// Package cache keeps assembled course trees in Redis
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/flowitec/gogrow/internal/models"
	"github.com/go-redis/redis/v8"
)

const keyPrefix = "gogrow:course:"

// CourseCache stores course trees as JSON under gogrow:course:<id>
type CourseCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCourseCache creates a new Redis-backed course cache
func NewCourseCache(rdb *redis.Client, ttl time.Duration) *CourseCache {
	return &CourseCache{rdb: rdb, ttl: ttl}
}

// Key returns the Redis key of a course tree
func Key(id models.CourseID) string {
	return keyPrefix + string(id)
}

// Get returns the cached tree, or nil on a miss
func (c *CourseCache) Get(ctx context.Context, id models.CourseID) (*models.CourseTree, error) {
	data, err := c.rdb.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read course cache: %w", err)
	}

	var tree models.CourseTree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode cached course: %w", err)
	}
	return &tree, nil
}

// Set stores the tree for the configured TTL
func (c *CourseCache) Set(ctx context.Context, tree *models.CourseTree) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to encode course: %w", err)
	}
	if err := c.rdb.Set(ctx, Key(tree.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write course cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached tree
func (c *CourseCache) Invalidate(ctx context.Context, id models.CourseID) error {
	if err := c.rdb.Del(ctx, Key(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate course cache: %w", err)
	}
	return nil
}

// Noop is used when caching is disabled
type Noop struct{}

func (Noop) Get(ctx context.Context, id models.CourseID) (*models.CourseTree, error) { return nil, nil }
func (Noop) Set(ctx context.Context, tree *models.CourseTree) error                  { return nil }
func (Noop) Invalidate(ctx context.Context, id models.CourseID) error                { return nil }
