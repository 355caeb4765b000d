// Package config loads service settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
	StorageDriverMemory   = "memory"

	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"

	RecorderModeSync  = "sync"
	RecorderModeAsync = "async"
	RecorderModeNATS  = "nats"
)

type Config struct {
	Env        string `yaml:"env"`
	Domain     string `yaml:"domain"`
	HTTPServer `yaml:"http_server"`
	Storage    `yaml:"storage"`
	Cache      `yaml:"cache"`
	Recorder   `yaml:"recorder"`
}

type HTTPServer struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
}

var defaultHTTPServer = HTTPServer{
	Port:           5000,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type Storage struct {
	Driver   string   `yaml:"driver"`
	Postgres Postgres `yaml:"postgres"`
	SQLite   SQLite   `yaml:"sqlite"`
}

type Postgres struct {
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	DB              string        `yaml:"db"`
	SSLMode         string        `yaml:"sslmode"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
}

var defaultPostgres = Postgres{
	Host:            "localhost",
	Port:            5432,
	SSLMode:         "disable",
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

type SQLite struct {
	Path        string        `yaml:"path"`
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

var defaultSQLite = SQLite{
	Path:        "shortlink.db",
	BusyTimeout: 5 * time.Second,
}

// DSN enables foreign keys so access records cascade with their link.
func (s *SQLite) DSN() string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=%d",
		s.Path, s.BusyTimeout.Milliseconds())
}

// MigrateURL is the database URL understood by the golang-migrate sqlite3 driver.
func (s *SQLite) MigrateURL() string {
	return "sqlite3://" + s.Path + "?_foreign_keys=on"
}

type Cache struct {
	Driver string        `yaml:"driver"`
	TTL    time.Duration `yaml:"ttl"`
	Redis  Redis         `yaml:"redis"`
	Memory MemoryCache   `yaml:"memory"`
}

type Redis struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	PoolSize     int           `yaml:"pool_size"`
}

var defaultRedis = Redis{
	Host:         "localhost",
	Port:         6379,
	DialTimeout:  5 * time.Second,
	ReadTimeout:  3 * time.Second,
	WriteTimeout: 3 * time.Second,
	PoolSize:     10,
}

func (r *Redis) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

type MemoryCache struct {
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

type Recorder struct {
	Mode        string        `yaml:"mode"`
	Workers     int           `yaml:"workers"`
	QueueSize   int           `yaml:"queue_size"`
	SaveTimeout time.Duration `yaml:"save_timeout"`
	NATS        NATS          `yaml:"nats"`
}

type NATS struct {
	URL        string `yaml:"url"`
	Subject    string `yaml:"subject"`
	QueueGroup string `yaml:"queue_group"`
}

var defaultRecorder = Recorder{
	Mode:        RecorderModeSync,
	Workers:     4,
	QueueSize:   1024,
	SaveTimeout: 5 * time.Second,
	NATS: NATS{
		URL:        "nats://localhost:4222",
		Subject:    "shortlink.access",
		QueueGroup: "shortlink-recorder",
	},
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	var cfg Config
	setDefaults(&cfg)

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.Domain = "http://localhost:5000"
	cfg.HTTPServer = defaultHTTPServer
	cfg.Storage = Storage{
		Driver:   StorageDriverPostgres,
		Postgres: defaultPostgres,
		SQLite:   defaultSQLite,
	}
	cfg.Cache = Cache{
		Driver: CacheDriverRedis,
		TTL:    time.Hour,
		Redis:  defaultRedis,
		Memory: MemoryCache{CleanupInterval: 10 * time.Minute},
	}
	cfg.Recorder = defaultRecorder
}

// applyEnv overrides file settings with the variables the service has always
// been deployed with. Empty variables are ignored.
func applyEnv(cfg *Config) error {
	lookupString("DOMAIN", &cfg.Domain)
	lookupString("REDIS_HOST", &cfg.Cache.Redis.Host)
	lookupString("REDIS_PASSWORD", &cfg.Cache.Redis.Password)
	lookupString("POSTGRES_HOST", &cfg.Storage.Postgres.Host)
	lookupString("POSTGRES_USER", &cfg.Storage.Postgres.User)
	lookupString("POSTGRES_PASSWORD", &cfg.Storage.Postgres.Password)
	lookupString("POSTGRES_DB", &cfg.Storage.Postgres.DB)
	lookupString("NATS_URL", &cfg.Recorder.NATS.URL)

	for key, dst := range map[string]*int{
		"PORT":          &cfg.HTTPServer.Port,
		"REDIS_PORT":    &cfg.Cache.Redis.Port,
		"POSTGRES_PORT": &cfg.Storage.Postgres.Port,
	} {
		if err := lookupInt(key, dst); err != nil {
			return err
		}
	}

	return nil
}

func lookupString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func lookupInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}

	*dst = n
	return nil
}

var (
	ErrEmptyDomain           = errors.New("domain must not be empty")
	ErrUnknownStorageDriver  = errors.New("unknown storage driver")
	ErrUnknownCacheDriver    = errors.New("unknown cache driver")
	ErrUnknownRecorderMode   = errors.New("unknown recorder mode")
	ErrInvalidPort           = errors.New("invalid port")
	ErrNonPositiveCacheTTL   = errors.New("cache ttl must be positive")
	ErrInvalidRecorderBounds = errors.New("recorder workers and queue size must be positive")
)

func (c *Config) Validate() error {
	if c.Domain == "" {
		return ErrEmptyDomain
	}

	if c.HTTPServer.Port <= 0 || c.HTTPServer.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.HTTPServer.Port)
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverSQLite, StorageDriverMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorageDriver, c.Storage.Driver)
	}

	switch c.Cache.Driver {
	case CacheDriverRedis, CacheDriverMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCacheDriver, c.Cache.Driver)
	}

	if c.Cache.TTL <= 0 {
		return ErrNonPositiveCacheTTL
	}

	switch c.Recorder.Mode {
	case RecorderModeSync, RecorderModeNATS:
	case RecorderModeAsync:
		if c.Recorder.Workers <= 0 || c.Recorder.QueueSize <= 0 {
			return ErrInvalidRecorderBounds
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRecorderMode, c.Recorder.Mode)
	}

	return nil
}
