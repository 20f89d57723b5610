package config

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/caarlos0/env/v11"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	StorageMinIO = "minio"
	StorageS3    = "s3"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DatabaseConfig holds relational store connection settings.
type DatabaseConfig struct {
	Driver             string `env:"DB_DRIVER" envDefault:"postgres"`
	Host               string `env:"DB_HOST"`
	Port               string `env:"DB_PORT" envDefault:"5432"`
	User               string `env:"DB_USER"`
	Password           string `env:"DB_PASSWORD"`
	Name               string `env:"DB_NAME"`
	SSLMode            string `env:"DB_SSLMODE" envDefault:"disable"`
	Path               string `env:"DB_PATH" envDefault:"photos.db"`
	Table              string `env:"DB_TABLE" envDefault:"photos"`
	MaxOpenConns       int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns       int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetimeSec int    `env:"DB_CONN_MAX_LIFETIME_SEC" envDefault:"300"`
}

// StorageConfig holds object storage settings shared by the MinIO and S3 backends.
type StorageConfig struct {
	Driver    string `env:"STORAGE_DRIVER" envDefault:"s3"`
	Bucket    string `env:"S3_BUCKET"`
	Endpoint  string `env:"S3_ENDPOINT"`
	Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	UseSSL    bool   `env:"S3_USE_SSL" envDefault:"true"`
	// PublicHost is the host part of public object URLs: http://{bucket}.{PublicHost}/{key}.
	PublicHost string `env:"S3_PUBLIC_HOST" envDefault:"s3.amazonaws.com"`
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port          string `env:"PORT" envDefault:"8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	Timezone      string `env:"TZ_NAME" envDefault:"UTC"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
	// BodyLimitMB caps the request body, and so the largest photo accepted.
	BodyLimitMB int `env:"BODY_LIMIT_MB" envDefault:"10"`
	Database    DatabaseConfig
	Storage     StorageConfig
}

// Load reads configuration from environment variables and validates it.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() (*AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *AppConfig) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver))
	}
	// The table name is interpolated into SQL, so only plain identifiers are accepted.
	if !identifierRe.MatchString(c.Database.Table) {
		errs = append(errs, fmt.Errorf("invalid DB_TABLE %q", c.Database.Table))
	}

	switch c.Storage.Driver {
	case StorageMinIO, StorageS3:
	default:
		errs = append(errs, fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver))
	}
	if c.Storage.Bucket == "" {
		errs = append(errs, errors.New("S3_BUCKET is required"))
	}
	if c.BodyLimitMB <= 0 {
		errs = append(errs, fmt.Errorf("BODY_LIMIT_MB must be positive, got %d", c.BodyLimitMB))
	}

	return errors.Join(errs...)
}
