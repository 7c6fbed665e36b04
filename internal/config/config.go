package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultEnvFile is the env file read when --env is not given.
const DefaultEnvFile = ".env"

const (
	KeyDBDriver      = "DB_DRIVER"
	KeyDBHost        = "DB_HOST"
	KeyDBPort        = "DB_PORT"
	KeyDBName        = "DB_NAME"
	KeyDBUser        = "DB_USER"
	KeyDBPassword    = "DB_PASSWORD"
	KeyDBCharset     = "DB_CHARSET"
	KeyDBTimeout     = "DB_TIMEOUT"
	KeyCacheDriver   = "CACHE_DRIVER"
	KeyCacheHost     = "CACHE_HOST"
	KeyCachePort     = "CACHE_PORT"
	KeyCachePassword = "CACHE_PASSWORD"
	KeyCacheIndex    = "CACHE_INDEX"
	KeyCachePath     = "CACHE_PATH"
	KeyCacheURI      = "CACHE_URI"
	KeyCacheDatabase = "CACHE_DATABASE"
	KeyCachePrefix   = "CACHE_PREFIX"
	KeyCacheTimeout  = "CACHE_TIMEOUT"
	KeyLogLevel      = "LOG_LEVEL"
)

var knownKeys = []string{
	KeyDBDriver, KeyDBHost, KeyDBPort, KeyDBName, KeyDBUser, KeyDBPassword, KeyDBCharset, KeyDBTimeout,
	KeyCacheDriver, KeyCacheHost, KeyCachePort, KeyCachePassword, KeyCacheIndex, KeyCachePath,
	KeyCacheURI, KeyCacheDatabase, KeyCachePrefix, KeyCacheTimeout,
	KeyLogLevel,
}

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	LogLevel string         `yaml:"log_level"`
}

// DatabaseConfig represents the relational connection settings
type DatabaseConfig struct {
	Driver   string        `yaml:"driver"` // sqlite, mysql
	Host     string        `yaml:"host,omitempty"`
	Port     int           `yaml:"port,omitempty"`
	Name     string        `yaml:"name"` // schema name, or file path for sqlite
	User     string        `yaml:"user,omitempty"`
	Password string        `yaml:"password,omitempty"`
	Charset  string        `yaml:"charset,omitempty"`
	Timeout  time.Duration `yaml:"timeout"`
}

// CacheConfig represents the key-value cache connection settings
type CacheConfig struct {
	Driver   string        `yaml:"driver"` // redis, bolt, mongodb
	Host     string        `yaml:"host,omitempty"`
	Port     int           `yaml:"port,omitempty"`
	Password string        `yaml:"password,omitempty"`
	Index    int           `yaml:"index"`
	Path     string        `yaml:"path,omitempty"`
	URI      string        `yaml:"uri,omitempty"`
	Database string        `yaml:"database,omitempty"`
	Prefix   string        `yaml:"prefix"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:  "sqlite",
			Host:    "127.0.0.1",
			Port:    3306,
			Name:    "dbconsole.db",
			Charset: "utf8mb4",
			Timeout: 5 * time.Second,
		},
		Cache: CacheConfig{
			Driver:   "redis",
			Host:     "127.0.0.1",
			Port:     6379,
			Path:     "dbconsole.cache",
			URI:      "mongodb://localhost:27017",
			Database: "dbconsole",
			Prefix:   "dbconsole:",
			Timeout:  5 * time.Second,
		},
		LogLevel: "info",
	}
}

// FromEnv builds a configuration from env entries, falling back to defaults
func FromEnv(env Env) (*Config, error) {
	cfg := DefaultConfig()
	var errs []error

	intValue := func(key string, target *int) {
		v, err := env.Int(key, *target)
		if err != nil {
			errs = append(errs, err)
			return
		}
		*target = v
	}
	durationValue := func(key string, target *time.Duration) {
		v, err := env.Duration(key, *target)
		if err != nil {
			errs = append(errs, err)
			return
		}
		*target = v
	}

	db := &cfg.Database
	db.Driver = env.Get(KeyDBDriver, db.Driver)
	db.Host = env.Get(KeyDBHost, db.Host)
	intValue(KeyDBPort, &db.Port)
	db.Name = env.Get(KeyDBName, db.Name)
	db.User = env.Get(KeyDBUser, db.User)
	db.Password = env.Get(KeyDBPassword, db.Password)
	db.Charset = env.Get(KeyDBCharset, db.Charset)
	durationValue(KeyDBTimeout, &db.Timeout)

	c := &cfg.Cache
	c.Driver = env.Get(KeyCacheDriver, c.Driver)
	c.Host = env.Get(KeyCacheHost, c.Host)
	intValue(KeyCachePort, &c.Port)
	c.Password = env.Get(KeyCachePassword, c.Password)
	intValue(KeyCacheIndex, &c.Index)
	c.Path = env.Get(KeyCachePath, c.Path)
	c.URI = env.Get(KeyCacheURI, c.URI)
	c.Database = env.Get(KeyCacheDatabase, c.Database)
	if prefix, ok := env.Lookup(KeyCachePrefix); ok {
		c.Prefix = prefix
	}
	durationValue(KeyCacheTimeout, &c.Timeout)

	cfg.LogLevel = env.Get(KeyLogLevel, cfg.LogLevel)

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load loads configuration from an env file
func Load(path string) (*Config, error) {
	env, err := LoadEnv(path)
	if err != nil {
		return nil, err
	}
	return FromEnv(env)
}

// Validate checks driver names and numeric ranges
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Database.Name == "" {
		return fmt.Errorf("%s is required", KeyDBName)
	}
	if c.Database.Driver == "mysql" && (c.Database.Port < 1 || c.Database.Port > 65535) {
		return fmt.Errorf("%s out of range: %d", KeyDBPort, c.Database.Port)
	}

	switch c.Cache.Driver {
	case "redis":
		if c.Cache.Port < 1 || c.Cache.Port > 65535 {
			return fmt.Errorf("%s out of range: %d", KeyCachePort, c.Cache.Port)
		}
		if c.Cache.Index < 0 {
			return fmt.Errorf("%s must not be negative", KeyCacheIndex)
		}
	case "bolt":
		if c.Cache.Path == "" {
			return fmt.Errorf("%s is required for the bolt cache", KeyCachePath)
		}
	case "mongodb":
		if c.Cache.URI == "" {
			return fmt.Errorf("%s is required for the mongodb cache", KeyCacheURI)
		}
	default:
		return fmt.Errorf("unsupported cache driver: %s", c.Cache.Driver)
	}

	return nil
}

// Env converts the configuration back into env entries
func (c *Config) Env() Env {
	return Env{
		KeyDBDriver:      c.Database.Driver,
		KeyDBHost:        c.Database.Host,
		KeyDBPort:        strconv.Itoa(c.Database.Port),
		KeyDBName:        c.Database.Name,
		KeyDBUser:        c.Database.User,
		KeyDBPassword:    c.Database.Password,
		KeyDBCharset:     c.Database.Charset,
		KeyDBTimeout:     c.Database.Timeout.String(),
		KeyCacheDriver:   c.Cache.Driver,
		KeyCacheHost:     c.Cache.Host,
		KeyCachePort:     strconv.Itoa(c.Cache.Port),
		KeyCachePassword: c.Cache.Password,
		KeyCacheIndex:    strconv.Itoa(c.Cache.Index),
		KeyCachePath:     c.Cache.Path,
		KeyCacheURI:      c.Cache.URI,
		KeyCacheDatabase: c.Cache.Database,
		KeyCachePrefix:   c.Cache.Prefix,
		KeyCacheTimeout:  c.Cache.Timeout.String(),
		KeyLogLevel:      c.LogLevel,
	}
}

// Save saves configuration to an env file
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return WriteEnvFile(path, c.Env())
}

// Masked returns a copy with secrets replaced
func (c *Config) Masked() *Config {
	out := *c
	if out.Database.Password != "" {
		out.Database.Password = "********"
	}
	if out.Cache.Password != "" {
		out.Cache.Password = "********"
	}
	return &out
}

// YAML renders the configuration with secrets masked
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c.Masked())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Exists checks if config file exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
