package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"solar-roi-workers/pkg/roi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const baseConfig = `
app:
  name: solar-roi-workers
  environment: test
camunda:
  broker_address: localhost:26500
database:
  redis:
    address: localhost:6379
session:
  store: redis
  ttl: 900
apis:
  pvwatts:
    base_url: https://developer.nrel.gov/api/pvwatts/v8.json
    api_key: ${TEST_PVWATTS_KEY}
workers:
  generation-lookup:
    enabled: true
    max_jobs_active: 4
  session-reset:
    enabled: false
`

func TestLoadFromFile(t *testing.T) {
	t.Setenv("TEST_PVWATTS_KEY", "expanded-key")

	cfg, err := LoadFromFile(writeConfig(t, baseConfig))
	require.NoError(t, err)

	assert.Equal(t, "localhost:26500", cfg.Camunda.BrokerAddress)
	assert.Equal(t, "expanded-key", cfg.APIs.PVWatts.APIKey)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL())
	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)

	// defaults
	assert.Equal(t, 30000, cfg.APIs.PVWatts.Timeout)
	assert.Equal(t, roi.DefaultExportRate, *cfg.Finance.ExportRate)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "configs/activity-registry.json", cfg.RegistryPath)

	lookup := GetWorkerConfig(cfg, "generation-lookup")
	assert.Equal(t, 4, lookup.MaxJobsActive)
	assert.Equal(t, 30000, lookup.Timeout)
	assert.Equal(t, 3, lookup.MaxRetries)

	assert.True(t, IsWorkerEnabled(cfg, "generation-lookup"))
	assert.False(t, IsWorkerEnabled(cfg, "session-reset"))
	assert.True(t, IsWorkerEnabled(cfg, "roi-calculate"))
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("PVWATTS_API_KEY", "from-env")
	t.Setenv("REDIS_ADDRESS", "redis:6379")

	cfg, err := LoadFromFile(writeConfig(t, `
camunda:
  broker_address: zeebe:26500
`))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.APIs.PVWatts.APIKey)
	assert.Equal(t, "redis:6379", cfg.Database.Redis.Address)
}

func TestLoadFromFile_ExportRate(t *testing.T) {
	t.Setenv("PVWATTS_API_KEY", "k")

	cfg, err := LoadFromFile(writeConfig(t, `
camunda:
  broker_address: zeebe:26500
session:
  store: memory
finance:
  export_rate: 2.5
`))
	require.NoError(t, err)
	assert.Equal(t, 2.5, *cfg.Finance.ExportRate)

	zero, err := LoadFromFile(writeConfig(t, `
camunda:
  broker_address: zeebe:26500
session:
  store: memory
finance:
  export_rate: 0
`))
	require.NoError(t, err)
	assert.Equal(t, 0.0, *zero.Finance.ExportRate)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	t.Setenv("PVWATTS_API_KEY", "k")
	t.Setenv("REDIS_ADDRESS", "")

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing broker",
			body:    "session:\n  store: memory\n",
			wantErr: "camunda.broker_address",
		},
		{
			name:    "redis store without address",
			body:    "camunda:\n  broker_address: zeebe:26500\n",
			wantErr: "database.redis.address",
		},
		{
			name:    "unknown store",
			body:    "camunda:\n  broker_address: zeebe:26500\nsession:\n  store: etcd\n",
			wantErr: "session.store",
		},
		{
			name:    "negative export rate",
			body:    "camunda:\n  broker_address: zeebe:26500\nsession:\n  store: memory\nfinance:\n  export_rate: -1\n",
			wantErr: "finance.export_rate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
