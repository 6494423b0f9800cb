package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMongo  = "mongo"
)

type Config struct {
	Env       string `env:"ENV,default=development"`
	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogPretty bool   `env:"LOG_PRETTY,default=true"`

	API     APIConfig
	Storage StorageConfig
	Redis   RedisConfig
	Mongo   MongoConfig
	View    ViewConfig
	DevAPI  DevAPIConfig
}

// APIConfig points the HTTP client adapter at the REST backend.
type APIConfig struct {
	BaseURL           string        `env:"API_BASE_URL,default=http://localhost:5000/api/v1"`
	Timeout           time.Duration `env:"API_TIMEOUT,default=10s"`
	ProfilePath       string        `env:"API_PROFILE_PATH,default=/auth/me"`
	ProfileUpdatePath string        `env:"API_PROFILE_UPDATE_PATH,default=/auth/profile"`
}

// StorageConfig selects where the credential is persisted.
type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER,default=file"`
	// Path of the credential file; empty means ~/.travelreviews/credentials.json.
	Path string `env:"STORAGE_PATH"`
}

type RedisConfig struct {
	Addr   string `env:"REDIS_ADDR,default=localhost:6379"`
	DB     int    `env:"REDIS_DB,default=0"`
	Prefix string `env:"REDIS_PREFIX,default=travelreviews:"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI,default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,default=travelreviews"`
}

// ViewConfig configures the local view server started by `travelctl serve`.
type ViewConfig struct {
	Addr string `env:"VIEW_ADDR,default=127.0.0.1:3000"`
}

// DevAPIConfig configures the development backend.
type DevAPIConfig struct {
	Addr          string        `env:"DEVAPI_ADDR,default=:5000"`
	BasePath      string        `env:"DEVAPI_BASE_PATH,default=/api/v1"`
	JWTSecret     string        `env:"JWT_SECRET,default=dev-secret-change-me"`
	TokenTTL      time.Duration `env:"TOKEN_TTL,default=24h"`
	UserStore     string        `env:"DEVAPI_STORE,default=memory"`
	AdminEmail    string        `env:"DEVAPI_ADMIN_EMAIL,default=admin@example.com"`
	AdminPassword string        `env:"DEVAPI_ADMIN_PASSWORD"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from an arbitrary lookuper, used by tests.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = defaultStoragePath()
	}
	return &cfg, nil
}

// MustLoad is Load that panics on error.
func MustLoad(ctx context.Context) *Config {
	cfg, err := Load(ctx)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StorageFile, StorageRedis, StorageMongo:
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	switch c.DevAPI.UserStore {
	case StorageMemory, StorageMongo:
	default:
		return fmt.Errorf("config: unknown DEVAPI_STORE %q", c.DevAPI.UserStore)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: API_TIMEOUT must be positive")
	}
	return nil
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.TempDir()
	}
	return filepath.Join(home, ".travelreviews", "credentials.json")
}
