package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("SESSION_DRIVER", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, DriverMemory, cfg.Session.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Deadline.Threshold)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Contains(t, cfg.Database.URL, "secret@localhost:5432")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Bolt")
	t.Setenv("SESSION_DRIVER", "redis")
	t.Setenv("DEADLINE_CHECK_INTERVAL", "30")
	t.Setenv("DEADLINE_THRESHOLD", "2h")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverBolt, cfg.Storage.Driver)
	assert.Equal(t, DriverRedis, cfg.Session.Driver)
	assert.Equal(t, 30*time.Second, cfg.Deadline.CheckInterval)
	assert.Equal(t, 2*time.Hour, cfg.Deadline.Threshold)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "0.0.0.0:9090", cfg.Address())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_DRIVER")
}

func TestLoadReportsMalformedValues(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("SESSION_DRIVER", "")
	t.Setenv("SERVER_MAX_CONN", "many")
	t.Setenv("SESSION_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_MAX_CONN")
	assert.Contains(t, err.Error(), "SESSION_TTL")
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("SESSION_DRIVER", "")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Production())
}
