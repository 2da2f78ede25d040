package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig
	API      APIConfig
	Storage  StorageConfig
	DB       DBConfig
	Redis    RedisConfig
	Checkout CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	if cfg.Storage.Driver == StorageDriverSQL {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if err := cfg.Checkout.loadRates(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDB reads only the app and database settings, for tools that never call the storefront API.
func LoadDB() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg.App); err != nil {
		return nil, fmt.Errorf("parsing app config: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg.DB); err != nil {
		return nil, fmt.Errorf("parsing db config: %w", err)
	}
	cfg.Storage.Driver = StorageDriverSQL
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" default:"dev"`
	BridgePort   string `envconfig:"STOREFRONT_BRIDGE_PORT" default:"8787"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
}

// ConsoleLogs reports whether logs should be written for a human reading a terminal.
func (a AppConfig) ConsoleLogs() bool {
	return strings.EqualFold(a.LogFormat, "console")
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig points the catalog client at the remote storefront backend.
type APIConfig struct {
	BaseURL string        `envconfig:"STOREFRONT_API_URL" required:"true"`
	Timeout time.Duration `envconfig:"STOREFRONT_API_TIMEOUT" default:"10s"`
}

func (a APIConfig) validate() error {
	u, err := url.Parse(strings.TrimSpace(a.BaseURL))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvAPIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url", EnvAPIURL)
	}
	return nil
}

// StorageConfig selects the key-value backend that holds session and collection state.
type StorageConfig struct {
	Driver string `envconfig:"STOREFRONT_STORAGE_DRIVER" default:"sql"`
}

func (s StorageConfig) validate() error {
	switch s.Driver {
	case StorageDriverMemory, StorageDriverRedis, StorageDriverSQL:
		return nil
	}
	return fmt.Errorf("unsupported %s %q", EnvStorageDriver, s.Driver)
}

type DBConfig struct {
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"STOREFRONT_DB_DSN"`
	Path   string `envconfig:"STOREFRONT_DB_PATH" default:"storefront.db"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"4"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CheckoutConfig holds the shipping fee table. Fees are whole currency units keyed by city.
type CheckoutConfig struct {
	RatesFile  string `envconfig:"STOREFRONT_SHIPPING_RATES_FILE"`
	DefaultFee int64  `envconfig:"STOREFRONT_SHIPPING_DEFAULT_FEE" default:"50000"`

	Rates map[string]int64 `ignored:"true"`
}

type shippingRatesFile struct {
	DefaultFee *int64           `yaml:"default_fee"`
	Cities     map[string]int64 `yaml:"cities"`
}

// DefaultShippingRates is the built-in city fee table used when no rates file is configured.
func DefaultShippingRates() map[string]int64 {
	return map[string]int64{
		"Hà Nội": 20000,
		"TP.HCM": 30000,
	}
}

func (c *CheckoutConfig) loadRates() error {
	c.Rates = DefaultShippingRates()
	if strings.TrimSpace(c.RatesFile) == "" {
		return nil
	}
	raw, err := os.ReadFile(c.RatesFile)
	if err != nil {
		return fmt.Errorf("reading shipping rates: %w", err)
	}
	return c.applyRates(raw)
}

func (c *CheckoutConfig) applyRates(raw []byte) error {
	var file shippingRatesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parsing shipping rates: %w", err)
	}
	if len(file.Cities) > 0 {
		c.Rates = make(map[string]int64, len(file.Cities))
		for city, fee := range file.Cities {
			if fee < 0 {
				return fmt.Errorf("shipping fee for %q must not be negative", city)
			}
			c.Rates[strings.TrimSpace(city)] = fee
		}
	}
	if file.DefaultFee != nil {
		if *file.DefaultFee < 0 {
			return fmt.Errorf("default shipping fee must not be negative")
		}
		c.DefaultFee = *file.DefaultFee
	}
	return nil
}

func (db *DBConfig) ensureDSN() error {
	switch db.Driver {
	case DBDriverSQLite:
		if db.DSN == "" {
			if strings.TrimSpace(db.Path) == "" {
				return fmt.Errorf("either %s or %s is required for sqlite", EnvDBDSN, EnvDBPath)
			}
			db.DSN = fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", db.Path)
		}
		return nil
	case DBDriverPostgres:
		if db.DSN == "" {
			return fmt.Errorf("%s is required for postgres", EnvDBDSN)
		}
		return nil
	}
	return fmt.Errorf("unsupported %s %q", EnvDBDriver, db.Driver)
}
