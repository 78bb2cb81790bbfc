package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	APIURL         string        `env:"HUB_API_URL,          default=http://localhost:4006"`
	Env            string        `env:"HUB_ENV,              default=development"`
	LogLevel       string        `env:"HUB_LOG_LEVEL,        default=info"`
	LogPretty      bool          `env:"HUB_LOG_PRETTY,       default=false"`
	RequestTimeout time.Duration `env:"HUB_REQUEST_TIMEOUT,  default=30s"`

	Refresh RefreshConfig
	Storage StorageConfig
	Redis   RedisConfig
	Mongo   MongoConfig
}

type RefreshConfig struct {
	Interval time.Duration `env:"HUB_REFRESH_INTERVAL, default=60s"`
	Grace    time.Duration `env:"HUB_REFRESH_GRACE,    default=5m"`
}

type StorageConfig struct {
	Backend  string `env:"HUB_STORAGE_BACKEND, default=file"`
	Key      string `env:"HUB_STORAGE_KEY,     default=sertantai_token"`
	FilePath string `env:"HUB_STORAGE_FILE"`
}

type RedisConfig struct {
	Addr string `env:"HUB_REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"HUB_REDIS_DB,   default=0"`
}

type MongoConfig struct {
	URI      string `env:"HUB_MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"HUB_MONGO_DB,  default=sertantai_client"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through the given lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load for process start: it panics on invalid configuration.
func MustLoad() *Config {
	cfg, err := Load(context.Background())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// CredentialFile resolves the file backend path, defaulting to
// <user config dir>/sertantai/<key>.
func (c *Config) CredentialFile() (string, error) {
	if c.Storage.FilePath != "" {
		return c.Storage.FilePath, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve credential file: %w", err)
	}
	return filepath.Join(dir, "sertantai", c.Storage.Key), nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendMemory, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("config: storage key must not be empty")
	}
	if c.Refresh.Interval <= 0 {
		return fmt.Errorf("config: refresh interval must be positive")
	}
	if c.Refresh.Grace < 0 {
		return fmt.Errorf("config: refresh grace must not be negative")
	}
	return nil
}
