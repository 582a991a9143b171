package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"learn-persona/internal/domain"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisCacheAdapter_Get(t *testing.T) {
	db, mock := redismock.NewClientMock()
	adapter := NewRedisCacheAdapter(db, time.Minute)
	ctx := context.Background()

	key := "learnpersona:recommendation:user:1"

	t.Run("Success", func(t *testing.T) {
		mock.ExpectGet(key).SetVal("payload")
		val, err := adapter.Get(ctx, key)
		assert.NoError(t, err)
		assert.Equal(t, "payload", val)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CacheMiss", func(t *testing.T) {
		mock.ExpectGet(key).SetErr(redis.Nil)
		val, err := adapter.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
		assert.Empty(t, val)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RedisError", func(t *testing.T) {
		redisErr := errors.New("connection refused")
		mock.ExpectGet(key).SetErr(redisErr)
		_, err := adapter.Get(ctx, key)
		assert.ErrorIs(t, err, redisErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisCacheAdapter_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	adapter := NewRedisCacheAdapter(db, 10*time.Minute)
	ctx := context.Background()

	t.Run("explicit expiration", func(t *testing.T) {
		mock.ExpectSet("k", "v", time.Hour).SetVal("OK")
		assert.NoError(t, adapter.Set(ctx, "k", "v", time.Hour))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero expiration uses default", func(t *testing.T) {
		mock.ExpectSet("k", "v", 10*time.Minute).SetVal("OK")
		assert.NoError(t, adapter.Set(ctx, "k", "v", 0))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisCacheAdapter_DeleteAndPing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	adapter := NewRedisCacheAdapter(db, time.Minute)
	ctx := context.Background()

	mock.ExpectDel("k").SetVal(1)
	assert.NoError(t, adapter.Delete(ctx, "k"))

	mock.ExpectDel("gone").SetVal(0)
	assert.NoError(t, adapter.Delete(ctx, "gone"))

	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, adapter.Ping(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}
