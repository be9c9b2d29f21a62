package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultsApplied() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := defaultsApplied()

	assert.Equal(t, "sheetflow-listener", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, int64(3), cfg.Transform.ReorderTarget)
	assert.Equal(t, "inventory", cfg.Transform.InventorySlug)
	assert.Equal(t, "orders", cfg.Transform.OrdersSlug)
	assert.Equal(t, "workbook:map", cfg.Transform.TriggerJobKind)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "sheetflow.db", cfg.Database.DSN)
	assert.Equal(t, 24*time.Hour, cfg.Event.IdempotencyTTL)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
}

func TestApplyDefaults_DoesNotOverrideExplicit(t *testing.T) {
	cfg := &Config{}
	cfg.Transform.ReorderTarget = 10
	cfg.Transform.InventorySlug = "stock-levels"
	applyDefaults(cfg)

	assert.Equal(t, int64(10), cfg.Transform.ReorderTarget)
	assert.Equal(t, "stock-levels", cfg.Transform.InventorySlug)
}

func TestValidate_Defaults(t *testing.T) {
	require.NoError(t, defaultsApplied().validate())
}

func TestValidate_SlugCollision(t *testing.T) {
	cfg := defaultsApplied()
	cfg.Transform.OrdersSlug = cfg.Transform.InventorySlug

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := defaultsApplied()
	cfg.Database.Driver = "mysql"

	require.Error(t, cfg.validate())
}

func TestValidate_PostgresNeedsDSN(t *testing.T) {
	cfg := defaultsApplied()
	cfg.Database.Driver = "postgres"
	cfg.Database.DSN = ""

	require.Error(t, cfg.validate())
}

func TestValidate_StorageNeedsBucketAndCredentials(t *testing.T) {
	cfg := defaultsApplied()
	cfg.Storage.Enabled = true

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.bucket")

	cfg.Storage.Bucket = "egress"
	err = cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials")

	cfg.Storage.AccessKey = "key"
	cfg.Storage.SecretKey = "secret"
	require.NoError(t, cfg.validate())
}

func TestValidate_ProductionRequirements(t *testing.T) {
	cfg := defaultsApplied()
	cfg.App.Env = "production"

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "platform.base_url")

	cfg.Platform.BaseURL = "https://platform.example.com"
	cfg.Platform.APIToken = "token"
	cfg.HTTP.WebhookSecret = "secret"
	err = cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mail.recipient")

	cfg.Mail.Recipient = "orders@example.com"
	require.NoError(t, cfg.validate())
}

func TestValidate_SamplingRatio(t *testing.T) {
	cfg := defaultsApplied()
	cfg.Telemetry.SamplingRatio = 1.5

	require.Error(t, cfg.validate())
}

func TestRedisAddr(t *testing.T) {
	r := RedisConfig{Host: "redis.internal", Port: 6380}
	assert.Equal(t, "redis.internal:6380", r.RedisAddr())
}
