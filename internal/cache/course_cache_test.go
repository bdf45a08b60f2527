package cache

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/flowitec/gogrow/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "gogrow:course:c1", Key("c1"))
}

func TestNoop(t *testing.T) {
	var c Noop
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &models.CourseTree{Course: models.Course{ID: "c1"}}))
	tree, err := c.Get(ctx, "c1")
	assert.NoError(t, err)
	assert.Nil(t, tree)
	assert.NoError(t, c.Invalidate(ctx, "c1"))
}

func TestCourseCache_Unreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()
	c := NewCourseCache(rdb, time.Minute)
	ctx := context.Background()

	tree, err := c.Get(ctx, "c1")
	assert.ErrorContains(t, err, "failed to read course cache")
	assert.Nil(t, tree)

	assert.ErrorContains(t, c.Set(ctx, &models.CourseTree{Course: models.Course{ID: "c1"}}), "failed to write course cache")
	assert.ErrorContains(t, c.Invalidate(ctx, "c1"), "failed to invalidate course cache")
}

// TestCourseCache_Redis runs against a real Redis when TEST_REDIS_HOST is set
func TestCourseCache_Redis(t *testing.T) {
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		t.Skip("TEST_REDIS_HOST not set")
	}
	port := 6379
	if p, err := strconv.Atoi(os.Getenv("TEST_REDIS_PORT")); err == nil {
		port = p
	}

	rdb := redis.NewClient(&redis.Options{Addr: host + ":" + strconv.Itoa(port)})
	defer rdb.Close()
	ctx := context.Background()
	require.NoError(t, rdb.Ping(ctx).Err())

	c := NewCourseCache(rdb, time.Minute)
	id := models.NewCourseID()
	defer rdb.Del(ctx, Key(id))

	tree, err := c.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, tree)

	stored := &models.CourseTree{
		Course: models.Course{ID: id, Title: "Pump Basics", IsPublished: true},
		Modules: []models.ModuleTree{{
			Module:  models.Module{ID: "m1", CourseID: id, Title: "Fundamentals"},
			Lessons: []models.Lesson{{ID: "l1", ModuleID: "m1", Title: "Intro", ContentType: models.ContentTypeText}},
			Quizzes: []models.Quiz{},
		}},
	}
	require.NoError(t, c.Set(ctx, stored))

	tree, err = c.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, tree)
	assert.Equal(t, "Pump Basics", tree.Title)
	assert.Equal(t, 1, tree.LessonCount())

	ttl, err := rdb.TTL(ctx, Key(id)).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	require.NoError(t, c.Invalidate(ctx, id))
	tree, err = c.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, tree)
}
