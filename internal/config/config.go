// Package config reads application settings from the environment and an optional .env file
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/UnendingLoop/ResizedImage/internal/model"
	"github.com/spf13/cast"
	wbfconfig "github.com/wb-go/wbf/config"
)

// Cache backends
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendMinio    = "minio"
	BackendPostgres = "postgres"
)

type Settings struct {
	AppPort      string
	GinMode      string
	LogLevel     string
	DocumentRoot string
	FetchTimeout time.Duration
	JPEGQuality  int

	MaxDimension       int
	MaxPixels          int
	AllowRemoteSources bool
	ConfineToRoot      bool

	CacheBackend string
	CacheSize    int
	CacheTTL     time.Duration
	CachePrefix  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PostgresDSN    string
	MigrationsPath string

	MinioEndpoint string
	MinioUser     string
	MinioPass     string
	MinioSecure   bool
	Bucket        string

	KafkaBroker  string
	KafkaTopic   string
	KafkaGroupID string

	TaskRetries    int
	TaskRetryDelay time.Duration

	ConnectRetries int
	ConnectDelay   time.Duration
}

// Getter is the read side of wbf config, narrowed for tests.
type Getter interface {
	GetString(key string) string
}

// Load reads the environment, plus envFile when it exists.
func Load(envFile string) (*Settings, error) {
	appConfig := wbfconfig.New()
	appConfig.EnableEnv("")

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := appConfig.LoadEnvFiles(envFile); err != nil {
				return nil, fmt.Errorf("failed to load envs from %q: %w", envFile, err)
			}
		}
	}

	return FromGetter(appConfig)
}

func FromGetter(g Getter) (*Settings, error) {
	s := &Settings{
		AppPort:      str(g, "APP_PORT", "8080"),
		GinMode:      str(g, "GIN_MODE", "release"),
		LogLevel:     str(g, "LOG_LEVEL", "info"),
		DocumentRoot: str(g, "DOCUMENT_ROOT", workDir()),
		CacheBackend: strings.ToLower(str(g, "CACHE_BACKEND", BackendMemory)),
		CachePrefix:  str(g, "CACHE_PREFIX", ""),

		RedisAddr:     str(g, "REDIS_ADDR", "localhost:6379"),
		RedisPassword: g.GetString("REDIS_PASSWORD"),

		PostgresDSN:    g.GetString("POSTGRES_DSN"),
		MigrationsPath: str(g, "MIGRATIONS_PATH", "./migrations"),

		MinioEndpoint: str(g, "MINIO_ENDPOINT", "localhost:9000"),
		MinioUser:     g.GetString("MINIO_USER"),
		MinioPass:     g.GetString("MINIO_PASS"),
		Bucket:        str(g, "BUCKET_NAME", "resized-images"),

		KafkaBroker:  g.GetString("KAFKA_BROKER"),
		KafkaTopic:   str(g, "KAFKA_TOPIC", "resized-image-warmup"),
		KafkaGroupID: str(g, "KAFKA_GROUPID", "resized-image-worker"),
	}

	var errs []error
	s.FetchTimeout = duration(g, "FETCH_TIMEOUT", 15*time.Second, &errs)
	s.CacheTTL = duration(g, "CACHE_TTL", 0, &errs)
	s.ConnectDelay = duration(g, "CONNECT_DELAY", 5*time.Second, &errs)
	s.JPEGQuality = integer(g, "JPEG_QUALITY", 90, &errs)
	s.CacheSize = integer(g, "CACHE_SIZE", 1024, &errs)
	s.RedisDB = integer(g, "REDIS_DB", 0, &errs)
	s.ConnectRetries = integer(g, "CONNECT_RETRIES", 5, &errs)
	s.MinioSecure = boolean(g, "MINIO_SECURE", false, &errs)
	s.MaxDimension = integer(g, "MAX_DIMENSION", 8192, &errs)
	s.MaxPixels = integer(g, "MAX_PIXELS", 40_000_000, &errs)
	s.AllowRemoteSources = boolean(g, "ALLOW_REMOTE_SOURCES", false, &errs)
	s.ConfineToRoot = boolean(g, "CONFINE_TO_DOCUMENT_ROOT", true, &errs)
	s.TaskRetries = integer(g, "TASK_RETRIES", 3, &errs)
	s.TaskRetryDelay = duration(g, "TASK_RETRY_DELAY", time.Second, &errs)

	if s.MaxDimension < 0 {
		errs = append(errs, fmt.Errorf("MAX_DIMENSION must not be negative, got %d", s.MaxDimension))
	}
	if s.MaxPixels < 0 {
		errs = append(errs, fmt.Errorf("MAX_PIXELS must not be negative, got %d", s.MaxPixels))
	}

	switch s.CacheBackend {
	case BackendMemory, BackendRedis, BackendMinio, BackendPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown CACHE_BACKEND %q", s.CacheBackend))
	}
	if s.CacheBackend == BackendPostgres && s.PostgresDSN == "" {
		errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres cache backend"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return s, nil
}

// Limits are the per-request caps. Zero disables a cap.
func (s *Settings) Limits() model.Limits {
	return model.Limits{MaxDimension: s.MaxDimension, MaxPixels: s.MaxPixels}
}

// SourceRoot is the directory file sources are confined to, empty when they are not.
func (s *Settings) SourceRoot() string {
	if !s.ConfineToRoot {
		return ""
	}
	return s.DocumentRoot
}

// WarmupEnabled reports whether a kafka broker is configured.
func (s *Settings) WarmupEnabled() bool {
	return s.KafkaBroker != ""
}

func str(g Getter, key, def string) string {
	if v := strings.TrimSpace(g.GetString(key)); v != "" {
		return v
	}
	return def
}

func duration(g Getter, key string, def time.Duration, errs *[]error) time.Duration {
	v := strings.TrimSpace(g.GetString(key))
	if v == "" {
		return def
	}
	d, err := cast.ToDurationE(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return d
}

func integer(g Getter, key string, def int, errs *[]error) int {
	v := strings.TrimSpace(g.GetString(key))
	if v == "" {
		return def
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return n
}

func boolean(g Getter, key string, def bool, errs *[]error) bool {
	v := strings.TrimSpace(g.GetString(key))
	if v == "" {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return b
}

func workDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
