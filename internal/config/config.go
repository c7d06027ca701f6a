package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage and session drivers selectable through configuration.
const (
	DriverMemory   = "memory"
	DriverBolt     = "bolt"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

const EnvProduction = "production"

// Config is the full runtime configuration of the server.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Storage     StorageConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Session     SessionConfig
	Deadline    DeadlineConfig
	Kafka       KafkaConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxConn      int
}

// StorageConfig selects where tasks, projects and users live.
type StorageConfig struct {
	Driver   string
	BoltPath string
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type SessionConfig struct {
	Driver string
	TTL    time.Duration
}

// DeadlineConfig drives the background deadline scan.
type DeadlineConfig struct {
	CheckInterval time.Duration
	Threshold     time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether the event relay should be started.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.Topic != ""
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

// Load reads the environment, after merging an optional .env file, and falls
// back to defaults that boot the server with in-memory storage only. Values
// that are present but malformed are reported rather than ignored.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	var e env
	cfg := &Config{
		AppName:     e.str("APP_NAME", "taskboard"),
		Environment: strings.ToLower(e.str("APP_ENV", "development")),
		HTTP: HTTPConfig{
			Host:         e.str("SERVER_HOST", "0.0.0.0"),
			Port:         e.str("SERVER_PORT", "8080"),
			ReadTimeout:  e.duration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: e.duration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  e.duration("SERVER_IDLE_TIMEOUT", 2*time.Minute),
			MaxConn:      e.integer("SERVER_MAX_CONN", 0),
		},
		Storage: StorageConfig{
			Driver:   strings.ToLower(e.str("STORAGE_DRIVER", DriverMemory)),
			BoltPath: e.str("BOLTDB_PATH", "./data/taskboard.db"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            e.str("DB_HOST", "localhost"),
			Port:            e.str("DB_PORT", "5432"),
			Name:            e.str("DB_NAME", "taskboard"),
			User:            e.str("DB_USER", "taskboard"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    e.integer("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    e.integer("DB_MAX_IDLE_CONNS", 10),
			MaxConnLifetime: e.duration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         e.str("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      e.str("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       e.integer("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: e.str("JWT_ISSUER", "taskboard"),
		},
		Session: SessionConfig{
			Driver: strings.ToLower(e.str("SESSION_DRIVER", DriverMemory)),
			TTL:    e.duration("SESSION_TTL", 24*time.Hour),
		},
		Deadline: DeadlineConfig{
			CheckInterval: e.duration("DEADLINE_CHECK_INTERVAL", time.Minute),
			Threshold:     e.duration("DEADLINE_THRESHOLD", 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers: e.list("KAFKA_BROKERS"),
			Topic:   e.str("KAFKA_TOPIC", "taskboard.task-events"),
		},
		Context: ContextConfig{
			RequestTimeout:  e.duration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: e.duration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    e.str("LOG_LEVEL", "info"),
			Encoding: e.str("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: e.boolean("RUN_MIGRATIONS", true),
			Path:    e.str("MIGRATIONS_PATH", "./assets/migrations"),
		},
	}
	if cfg.Database.URL == "" {
		cfg.Database.URL = cfg.Database.dsn()
	}

	if err := errors.Join(append(e.errs, cfg.validate())...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Production reports whether APP_ENV selects production.
func (c *Config) Production() bool {
	return c.Environment == EnvProduction
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return net.JoinHostPort(c.HTTP.Host, c.HTTP.Port)
}

func (c *Config) validate() error {
	var errs []error
	switch c.Storage.Driver {
	case DriverMemory, DriverBolt, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver))
	}
	switch c.Session.Driver {
	case DriverMemory, DriverRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_DRIVER %q", c.Session.Driver))
	}
	if c.Deadline.Threshold <= 0 {
		errs = append(errs, errors.New("DEADLINE_THRESHOLD must be positive"))
	}
	if c.Production() && c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	return errors.Join(errs...)
}

func (d DatabaseConfig) dsn() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// env reads typed variables and remembers every malformed one.
type env struct {
	errs []error
}

func (e *env) str(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func (e *env) integer(key string, fallback int) int {
	val := e.str(key, "")
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return parsed
}

func (e *env) boolean(key string, fallback bool) bool {
	val := e.str(key, "")
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return parsed
}

// duration accepts Go duration syntax or a bare number of seconds.
func (e *env) duration(key string, fallback time.Duration) time.Duration {
	val := e.str(key, "")
	if val == "" {
		return fallback
	}
	if parsed, err := time.ParseDuration(val); err == nil {
		return parsed
	}
	if seconds, err := strconv.Atoi(val); err == nil {
		return time.Duration(seconds) * time.Second
	}
	e.errs = append(e.errs, fmt.Errorf("%s: invalid duration %q", key, val))
	return fallback
}

// list splits a comma separated variable, dropping blanks.
func (e *env) list(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
