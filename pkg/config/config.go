package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "VENDAOPS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Duplicates   DuplicatesConfig
	Inventory    InventoryConfig
	Imports      ImportsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VENDAOPS_APP_ENV" default:"dev"`
	Port         string `envconfig:"VENDAOPS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"VENDAOPS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VENDAOPS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VENDAOPS_DB_DSN"`
	Driver string `envconfig:"VENDAOPS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"VENDAOPS_DB_HOST"`
	Port     int    `envconfig:"VENDAOPS_DB_PORT" default:"5432"`
	User     string `envconfig:"VENDAOPS_DB_USER"`
	Password string `envconfig:"VENDAOPS_DB_PASSWORD"`
	Name     string `envconfig:"VENDAOPS_DB_NAME"`
	SSLMode  string `envconfig:"VENDAOPS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VENDAOPS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VENDAOPS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VENDAOPS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VENDAOPS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if strings.EqualFold(d.Driver, "sqlite") {
		d.DSN = "file::memory:?cache=shared"
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either VENDAOPS_DB_DSN or host/user/name settings are required")
	}
	d.DSN = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"VENDAOPS_REDIS_URL"`
	Address      string        `envconfig:"VENDAOPS_REDIS_ADDR"`
	Password     string        `envconfig:"VENDAOPS_REDIS_PASSWORD"`
	DB           int           `envconfig:"VENDAOPS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VENDAOPS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VENDAOPS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VENDAOPS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VENDAOPS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VENDAOPS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured at all. The broadcast
// channel degrades to a no-op when it is absent.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"VENDAOPS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"VENDAOPS_AUTO_MIGRATE" default:"false"`
}

type DuplicatesConfig struct {
	// Tolerance is the relative sale-value tolerance applied against the
	// existing order's value when flagging possible duplicates.
	Tolerance float64 `envconfig:"VENDAOPS_DUPLICATE_TOLERANCE" default:"0.05"`
}

type InventoryConfig struct {
	DefaultMinimumLevel int `envconfig:"VENDAOPS_INVENTORY_DEFAULT_MINIMUM_LEVEL" default:"50"`
}

type ImportsConfig struct {
	MaxRows int `envconfig:"VENDAOPS_IMPORT_MAX_ROWS" default:"20000"`
}
