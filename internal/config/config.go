package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// minSecretLength applies to session and JWT secrets in production
const minSecretLength = 32

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type SessionConfig struct {
	// Store is "redis" or "cookie"
	Store    string        `yaml:"store"`
	Secrets  []string      `yaml:"secrets"`
	MaxAge   time.Duration `yaml:"max_age"`
	HTTPOnly bool          `yaml:"http_only"`
	Secure   bool          `yaml:"secure"`
	Rolling  bool          `yaml:"rolling"`
}

type JWTConfig struct {
	// Secret enables bearer tokens when non-empty
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	Audience string        `yaml:"audience"`
	Expiry   time.Duration `yaml:"expiry"`
}

type Config struct {
	Env           string         `yaml:"-"`
	Addr          string         `yaml:"addr"`
	LogLevel      string         `yaml:"log_level"`
	EnableMetrics bool           `yaml:"enable_metrics"`
	PasswordCost  int            `yaml:"password_cost"`
	MaxUploadMB   int64          `yaml:"max_upload_mb"`
	Database      DatabaseConfig `yaml:"database"`
	Redis         RedisConfig    `yaml:"redis"`
	Session       SessionConfig  `yaml:"session"`
	JWT           JWTConfig      `yaml:"jwt"`
}

// Default returns the built-in settings for env
func Default(env string) *Config {
	cfg := &Config{
		Env:          env,
		Addr:         ":8080",
		LogLevel:     "info",
		PasswordCost: 10,
		MaxUploadMB:  10,
		Database: DatabaseConfig{
			Driver:          "sqlite",
			DSN:             "inventory.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Session: SessionConfig{
			Store:    "cookie",
			Secrets:  []string{"development-session-secret-change-me"},
			MaxAge:   24 * time.Hour,
			HTTPOnly: true,
			Rolling:  true,
		},
		JWT: JWTConfig{
			Issuer:   "computer-inventory-api",
			Audience: "computer-inventory-api",
			Expiry:   24 * time.Hour,
		},
	}
	switch env {
	case EnvDevelopment:
		cfg.LogLevel = "debug"
	case EnvTest:
		// bcrypt.MinCost keeps test suites fast
		cfg.PasswordCost = 4
		cfg.Database.DSN = ":memory:"
	case EnvProduction:
		cfg.Database.Driver = "postgres"
		cfg.Database.DSN = ""
		cfg.Session.Store = "redis"
		cfg.Session.Secrets = nil
		cfg.Session.Secure = true
		cfg.PasswordCost = 12
	}
	return cfg
}

// Load builds the configuration for APP_ENV from the defaults, the optional
// YAML file named by CONFIG_FILE (config.yaml when unset) and environment
// variable overrides, in that order.
func Load() (*Config, error) {
	env := getEnv("APP_ENV", EnvDevelopment)
	cfg := Default(env)

	path, explicit := os.LookupEnv("CONFIG_FILE")
	if !explicit {
		path = "config.yaml"
	}
	if err := cfg.LoadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadAndValidate is Load followed by Validate
func LoadAndValidate() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the section for cfg.Env of a YAML file shaped as
//
//	development: {...}
//	production: {...}
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var sections map[string]yaml.Node
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	section, ok := sections[c.Env]
	if !ok {
		return nil
	}
	if err := section.Decode(c); err != nil {
		return fmt.Errorf("parse %s section of %s: %w", c.Env, path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Addr = getEnv("ADDR", c.Addr)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("DB_DSN", c.Database.DSN)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Session.Store = getEnv("SESSION_STORE", c.Session.Store)
	c.JWT.Secret = getEnv("JWT_SECRET", c.JWT.Secret)
	c.JWT.Issuer = getEnv("JWT_ISS", c.JWT.Issuer)
	c.JWT.Audience = getEnv("JWT_AUD", c.JWT.Audience)

	if s := os.Getenv("SESSION_SECRET"); s != "" {
		// comma separated to allow key rotation, newest first
		c.Session.Secrets = strings.Split(s, ",")
	}

	var err error
	if c.EnableMetrics, err = boolEnv("ENABLE_METRICS", c.EnableMetrics); err != nil {
		return err
	}
	if c.Session.Secure, err = boolEnv("SESSION_SECURE", c.Session.Secure); err != nil {
		return err
	}
	if c.Redis.DB, err = intEnv("REDIS_DB", c.Redis.DB); err != nil {
		return err
	}
	if c.PasswordCost, err = intEnv("PASSWORD_COST", c.PasswordCost); err != nil {
		return err
	}
	if c.Session.MaxAge, err = durationEnv("SESSION_MAX_AGE", c.Session.MaxAge); err != nil {
		return err
	}
	if c.JWT.Expiry, err = durationEnv("JWT_EXPIRY", c.JWT.Expiry); err != nil {
		return err
	}
	return nil
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		return fmt.Errorf("unknown APP_ENV %q", c.Env)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("DB_DSN is required")
	}
	switch c.Session.Store {
	case "cookie":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR is required for the redis session store")
		}
	default:
		return fmt.Errorf("unsupported session store %q", c.Session.Store)
	}
	if len(c.Session.Secrets) == 0 {
		return errors.New("SESSION_SECRET is required")
	}
	if c.Session.MaxAge <= 0 {
		return errors.New("session max age must be positive")
	}
	if c.PasswordCost < 4 || c.PasswordCost > 31 {
		return fmt.Errorf("password cost %d out of range [4, 31]", c.PasswordCost)
	}
	if c.IsProduction() {
		for _, s := range c.Session.Secrets {
			if len(s) < minSecretLength {
				return fmt.Errorf("session secrets must be at least %d characters in production", minSecretLength)
			}
		}
		if c.JWT.Secret != "" && len(c.JWT.Secret) < minSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters in production", minSecretLength)
		}
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

// SessionKeys returns the secrets as securecookie hash keys
func (c *Config) SessionKeys() [][]byte {
	keys := make([][]byte, 0, len(c.Session.Secrets))
	for _, s := range c.Session.Secrets {
		keys = append(keys, []byte(s))
	}
	return keys
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func boolEnv(key string, defaultValue bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func intEnv(key string, defaultValue int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
