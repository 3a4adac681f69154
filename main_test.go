package main

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"inkbook/internal/cache"
	"inkbook/internal/config"
	"inkbook/pkg/logger"
	"inkbook/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Silence(io.Discard)
	os.Exit(m.Run())
}

func TestBuildCacheDefaultsToMemory(t *testing.T) {
	c, closeCache, err := buildCache(context.Background(), config.CacheConfig{TTL: time.Minute, Capacity: 10})
	require.NoError(t, err)
	defer closeCache()

	_, ok := c.(*cache.MemoryCache)
	assert.True(t, ok)
	assert.Equal(t, 10, c.Stats(context.Background()).Capacity)
}

func TestBuildCacheFailsOnUnreachableRedis(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := buildCache(ctx, config.CacheConfig{TTL: time.Minute, Capacity: 10, RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestBuildStoreDefaultsToMemory(t *testing.T) {
	s, err := buildStore(context.Background(), config.StorageConfig{})
	require.NoError(t, err)
	_, ok := s.(*storage.MemoryStorage)
	assert.True(t, ok)
}

func TestConnectBrokerDisabledWithoutURL(t *testing.T) {
	client, err := connectBroker(config.BrokerConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}
