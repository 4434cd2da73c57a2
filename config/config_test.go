package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("LATEST_USERS_LIMIT", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Dashboard.LatestUsersLimit)
	assert.Equal(t, "Asia/Manila", cfg.Dashboard.DisplayTimezone)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 300, cfg.Redis.ViewTTLSeconds)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LATEST_USERS_LIMIT", "10")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Dashboard.LatestUsersLimit)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestValidateJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	t.Setenv("ENV", "development")
	assert.NoError(t, Load().Validate())

	t.Setenv("ENV", "production")
	assert.ErrorIs(t, Load().Validate(), ErrDefaultJWTSecret)

	t.Setenv("JWT_SECRET", "a-real-secret")
	assert.NoError(t, Load().Validate())
}
