// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig               `mapstructure:"app"`
	Camunda      CamundaConfig           `mapstructure:"camunda"`
	Database     DatabaseConfig          `mapstructure:"database"`
	Session      SessionConfig           `mapstructure:"session"`
	APIs         APIsConfig              `mapstructure:"apis"`
	Finance      FinanceConfig           `mapstructure:"finance"`
	Workers      map[string]WorkerConfig `mapstructure:"workers"`
	Logging      LoggingConfig           `mapstructure:"logging"`
	Server       ServerConfig            `mapstructure:"server"`
	RegistryPath string                  `mapstructure:"registry_path"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SessionConfig selects where calculator sessions live. Sessions are transient;
// the TTL is refreshed on every transition.
type SessionConfig struct {
	Store string `mapstructure:"store"` // redis | memory
	TTL   int    `mapstructure:"ttl"`   // seconds
}

const (
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	PVWatts struct {
		BaseURL string `mapstructure:"base_url"`
		APIKey  string `mapstructure:"api_key"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"pvwatts"`
}

// FinanceConfig holds the tariff inputs that are not part of a calculation request.
type FinanceConfig struct {
	// ExportRate is paid per exported kWh. Nil means the built-in rate.
	ExportRate *float64 `mapstructure:"export_rate"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ServerConfig is the health and metrics listener.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}
