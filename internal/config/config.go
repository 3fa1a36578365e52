// config реализует конфигурацию forum-store: загрузка из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Драйверы хранилища документа.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMinIO    = "minio"
	DriverRedis    = "redis"
)

// Политики перечитывания документа.
const (
	ReloadOnMiss = "on_miss"
	ReloadNever  = "never"
)

// Config - корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
//
// Перед чтением подхватывается ./.env (уже заданные переменные не перезаписываются).
type Config struct {
	Env      string        `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig    `yaml:"http"`
	GRPC     GRPCConfig    `yaml:"grpc"`
	Storage  StorageConfig `yaml:"storage"`
	Feed     FeedConfig    `yaml:"feed"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// HTTPConfig - HTTP API для внешних потребителей плюс health/metrics.
type HTTPConfig struct {
	Host     string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port     string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	Timeout  time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
	BasePath string        `yaml:"base_path" env:"HTTP_BASE_PATH" env-default:"/api"`
}

// GRPCConfig - gRPC-сервер health-проверок.
type GRPCConfig struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50090"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// Addr возвращает адрес в формате host:port.
func (g GRPCConfig) Addr() string {
	return net.JoinHostPort(g.Host, g.Port)
}

// StorageConfig - где и как хранится документ форума.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"file"`
	// Document - имя документа (ключ строки/записи) для sqlite, postgres и mongo.
	Document string `yaml:"document" env:"STORAGE_DOCUMENT" env-default:"posts"`
	// ReloadPolicy - on_miss: при промахе поиска по id перечитать документ один раз; never - нет.
	ReloadPolicy string `yaml:"reload_policy" env:"STORAGE_RELOAD_POLICY" env-default:"on_miss"`
	// StrictSave - ошибка сохранения возвращается клиенту, а не только логируется.
	StrictSave bool `yaml:"strict_save" env:"STORAGE_STRICT_SAVE"`

	File     FileConfig     `yaml:"file"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	Mongo    MongoConfig    `yaml:"mongo"`
	MinIO    MinIOConfig    `yaml:"minio"`
	Redis    RedisConfig    `yaml:"redis"`
}

// ReloadOnMiss сообщает, включено ли перечитывание документа при промахе.
func (s StorageConfig) ReloadOnMiss() bool {
	return s.ReloadPolicy == ReloadOnMiss
}

type FileConfig struct {
	Path string `yaml:"path" env:"FILE_PATH" env-default:"data/posts.json"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" env:"SQLITE_PATH" env-default:"data/forum.db"`
}

type PostgresConfig struct {
	URL string `yaml:"url" env:"POSTGRES_URL"`
}

type MongoConfig struct {
	URL string `yaml:"url" env:"MONGO_URL"`
}

type MinIOConfig struct {
	Endpoint     string `yaml:"endpoint" env:"MINIO_ENDPOINT"`
	RootUser     string `yaml:"root_user" env:"MINIO_ROOT_USER"`
	RootPassword string `yaml:"root_password" env:"MINIO_ROOT_PASSWORD"`
	Bucket       string `yaml:"bucket" env:"MINIO_BUCKET" env-default:"forum"`
	Object       string `yaml:"object" env:"MINIO_OBJECT" env-default:"posts.json"`
}

type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL"`
	Key string `yaml:"key" env:"REDIS_KEY" env-default:"forum:posts"`
}

// FeedConfig - Atom-лента последних постов.
type FeedConfig struct {
	Title string `yaml:"title" env:"FEED_TITLE" env-default:"Forum"`
	Link  string `yaml:"link" env:"FEED_LINK" env-default:"http://localhost:8080"`
	Limit int    `yaml:"limit" env:"FEED_LIMIT" env-default:"20"`
}

// TimeoutConfig - сервисные таймауты (общий дедлайн обработки запроса).
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
}

// MustLoad - обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	if path == "" {
		if _, err := os.Stat("local.yaml"); err == nil {
			path = "local.yaml"
		}
	}

	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", path, err)
		}

		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// ReadConfig уже наложил ENV, но для ветки "только ENV" читаем явно.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to overlay env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadDotEnv подхватывает .env, если он есть.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	return nil
}

// validate - базовая валидация значений.
func (c *Config) validate() error {
	switch c.Env {
	case "local", "dev", "prod":
	default:
		return fmt.Errorf("env must be one of local|dev|prod, got %q", c.Env)
	}

	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be > 0")
	}

	if c.Timeouts.Service <= 0 {
		return fmt.Errorf("timeouts.service must be > 0")
	}

	if c.Feed.Limit <= 0 {
		return fmt.Errorf("feed.limit must be > 0")
	}

	switch c.Storage.ReloadPolicy {
	case ReloadOnMiss, ReloadNever:
	default:
		return fmt.Errorf("storage.reload_policy must be on_miss|never, got %q", c.Storage.ReloadPolicy)
	}

	s := c.Storage
	switch s.Driver {
	case DriverFile:
		if s.File.Path == "" {
			return fmt.Errorf("storage.file.path is required")
		}
	case DriverSQLite:
		if s.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required")
		}
	case DriverPostgres:
		if s.Postgres.URL == "" {
			return fmt.Errorf("storage.postgres.url is required")
		}
	case DriverMongo:
		if s.Mongo.URL == "" {
			return fmt.Errorf("storage.mongo.url is required")
		}
	case DriverMinIO:
		if s.MinIO.Endpoint == "" || s.MinIO.Bucket == "" || s.MinIO.Object == "" {
			return fmt.Errorf("storage.minio.endpoint, bucket and object are required")
		}
	case DriverRedis:
		if s.Redis.URL == "" || s.Redis.Key == "" {
			return fmt.Errorf("storage.redis.url and key are required")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", s.Driver)
	}

	return nil
}
