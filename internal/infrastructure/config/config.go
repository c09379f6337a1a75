package config

import (
	"os"
	"time"

	"github.com/spf13/cast"
)

type Config struct {
	Server   ServerConfig
	OTLP     OTLPConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port                 string
	Host                 string
	ShutdownTimeout      time.Duration
	UploadMaxMemory      int64
	UploadMaxSize        int64
	DurationMillisMetric bool
}

type OTLPConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	Environment string
}

type DatabaseConfig struct {
	Driver      string
	DSN         string
	LogLevel    string
	AutoMigrate bool
}

type StorageConfig struct {
	Driver    string
	LocalDir  string
	PublicURL string
	S3        S3Config
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                 getEnv("SERVER_HOST", "0.0.0.0"),
			Port:                 getEnv("SERVER_PORT", "8080"),
			ShutdownTimeout:      cast.ToDuration(getEnv("SERVER_SHUTDOWN_TIMEOUT", "10s")),
			UploadMaxMemory:      cast.ToInt64(getEnv("UPLOAD_MAX_MEMORY_MB", "10")) << 20,
			UploadMaxSize:        cast.ToInt64(getEnv("UPLOAD_MAX_SIZE_MB", "20")) << 20,
			DurationMillisMetric: cast.ToBool(getEnv("HTTP_DURATION_MS_METRIC", "false")),
		},
		OTLP: OTLPConfig{
			Enabled:     cast.ToBool(getEnv("OTEL_ENABLED", "true")),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "produtos-api"),
			Environment: getEnv("OTEL_ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Driver:      getEnv("DB_DRIVER", "sqlite"),
			DSN:         getEnv("DB_DSN", "produtos.db"),
			LogLevel:    getEnv("DB_LOG_LEVEL", "warn"),
			AutoMigrate: cast.ToBool(getEnv("DB_AUTO_MIGRATE", "true")),
		},
		Storage: StorageConfig{
			Driver:    getEnv("STORAGE_DRIVER", "local"),
			LocalDir:  getEnv("STORAGE_LOCAL_DIR", "./imagens"),
			PublicURL: getEnv("STORAGE_PUBLIC_URL", "/imagens"),
			S3: S3Config{
				Bucket:    getEnv("S3_BUCKET", ""),
				Region:    getEnv("S3_REGION", "us-east-1"),
				Endpoint:  getEnv("S3_ENDPOINT", ""),
				AccessKey: getEnv("S3_ACCESS_KEY", ""),
				SecretKey: getEnv("S3_SECRET_KEY", ""),
				Prefix:    getEnv("S3_PREFIX", "produtos"),
			},
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  cast.ToInt(getEnv("LOG_MAX_SIZE_MB", "64")),
			MaxBackups: cast.ToInt(getEnv("LOG_MAX_BACKUPS", "7")),
			MaxAgeDays: cast.ToInt(getEnv("LOG_MAX_AGE_DAYS", "7")),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
