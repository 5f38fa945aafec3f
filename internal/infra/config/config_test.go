package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults with mongo uri", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://localhost:27017")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "dev", cfg.Env)
		assert.Equal(t, ":8080", cfg.HTTPAddr)
		assert.Equal(t, "socialnet", cfg.MongoDB)
		assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
		assert.Equal(t, 5*time.Second, cfg.PushTimeout)
		assert.Equal(t, []time.Duration{100 * time.Millisecond, 500 * time.Millisecond, 2 * time.Second}, cfg.RetryBackoff)
		assert.Empty(t, cfg.KafkaBrokers)
	})

	t.Run("missing mongo uri fails", func(t *testing.T) {
		t.Setenv("MONGO_URI", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("kafka brokers split on comma", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://localhost:27017")
		t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	})

	t.Run("custom retry backoff", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://localhost:27017")
		t.Setenv("RETRY_BACKOFF", "50ms, 1s")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, []time.Duration{50 * time.Millisecond, time.Second}, cfg.RetryBackoff)
	})

	t.Run("invalid retry backoff fails", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://localhost:27017")
		t.Setenv("RETRY_BACKOFF", "soon")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("invalid session ttl fails", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://localhost:27017")
		t.Setenv("SESSION_TTL", "whenever")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("s3 public endpoint falls back to endpoint", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://localhost:27017")
		t.Setenv("S3_ENDPOINT", "http://minio:9000")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "http://minio:9000", cfg.S3PublicEndpoint)
	})
}
