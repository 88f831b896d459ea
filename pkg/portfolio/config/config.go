// Package config loads server settings from defaults, an optional file,
// the environment and functional options, and builds the runtime pieces
// (store, image storage, uploader, session gate) from them.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults, then resolves and validates the result.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:           "8080",
		Environment:    "development",
		LogLevel:       "info",
		DatabaseURL:    "memory",
		DBSchema:       "portfolio",
		StorageURL:     "memory://",
		PublicBaseURL:  "http://localhost:8080",
		MaxUploadBytes: 10 << 20,
		S3: S3Config{
			Region: "us-east-1",
		},
	}
}

// ServerConfig represents server configuration for the portfolio service.
// Tags drive cleanenv for WithEnv and WithFile; env-default values mirror
// defaults().
type ServerConfig struct {
	Port        string `yaml:"port" env:"PORT" env-default:"8080"`
	Environment string `yaml:"environment" env:"ENVIRONMENT" env-default:"development"` // development, production, testing
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	// Database configuration. DatabaseURL is "memory" or a postgres:// URL.
	DatabaseURL  string `yaml:"database_url" env:"DATABASE_URL" env-default:"memory"`
	DatabaseType string `yaml:"-"`
	DBSchema     string `yaml:"db_schema" env:"DB_SCHEMA" env-default:"portfolio"`
	AutoMigrate  bool   `yaml:"auto_migrate" env:"AUTO_MIGRATE" env-default:"false"`

	// Image storage. StorageURL is memory://, file:///dir or s3://bucket.
	StorageURL string        `yaml:"storage_url" env:"STORAGE_URL" env-default:"memory://"`
	Storage    StorageConfig `yaml:"-"`
	S3         S3Config      `yaml:"s3"`

	// PublicBaseURL is where the server is reachable; memory and
	// filesystem images are served under PublicBaseURL/media.
	PublicBaseURL  string `yaml:"public_base_url" env:"PUBLIC_BASE_URL" env-default:"http://localhost:8080"`
	UploadPreset   string `yaml:"upload_preset" env:"UPLOAD_PRESET"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"10485760"`

	// Admin session gate. Both must be set to enable admin writes.
	AdminPasswordSHA256 string `yaml:"admin_password_sha256" env:"ADMIN_PASSWORD_SHA256"`
	JWTSecret           string `yaml:"jwt_secret" env:"JWT_SECRET"`
}

// S3Config holds credentials and addressing for s3:// storage. Bucket comes
// from STORAGE_URL; region, endpoint and path_style may also be given as
// query parameters there.
type S3Config struct {
	Region          string `yaml:"region" env:"AWS_REGION" env-default:"us-east-1"`
	AccessKeyID     string `yaml:"access_key_id" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint        string `yaml:"endpoint" env:"AWS_S3_ENDPOINT"`
	UsePathStyle    bool   `yaml:"use_path_style" env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
	PublicBaseURL   string `yaml:"public_base_url" env:"AWS_S3_PUBLIC_BASE_URL"`
	CreateBucket    bool   `yaml:"create_bucket" env:"AWS_S3_CREATE_BUCKET" env-default:"false"`
}

// StorageConfig is the parsed form of StorageURL
type StorageConfig struct {
	Type    string // "memory", "fs", "s3"
	BaseDir string
	Bucket  string
}

// IsProduction reports whether the server runs in production
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// AdminEnabled reports whether the admin session gate can be built
func (c *ServerConfig) AdminEnabled() bool {
	return c.AdminPasswordSHA256 != ""
}

// ServesMedia reports whether the server itself must serve stored images
func (c *ServerConfig) ServesMedia() bool {
	return c.Storage.Type == "memory" || c.Storage.Type == "fs"
}

// MediaURLPrefix is the public prefix of images served by this server
func (c *ServerConfig) MediaURLPrefix() string {
	return strings.TrimSuffix(c.PublicBaseURL, "/") + "/media"
}

// resolve derives DatabaseType and Storage from their URLs.
func (c *ServerConfig) resolve() error {
	switch {
	case c.DatabaseURL == "" || c.DatabaseURL == "memory":
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
	case strings.HasPrefix(c.DatabaseURL, "postgresql://"), strings.HasPrefix(c.DatabaseURL, "postgres://"):
		c.DatabaseType = "postgres"
	default:
		return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory' or 'postgres://...')", redact(c.DatabaseURL))
	}

	storage, err := parseStorageURL(c.StorageURL, &c.S3)
	if err != nil {
		return err
	}
	c.Storage = storage
	return nil
}

func parseStorageURL(raw string, s3 *S3Config) (StorageConfig, error) {
	switch {
	case raw == "" || raw == "memory" || raw == "memory://":
		return StorageConfig{Type: "memory"}, nil
	case strings.HasPrefix(raw, "file://"):
		path := strings.TrimPrefix(raw, "file://")
		if path == "" {
			return StorageConfig{}, errors.New("filesystem path cannot be empty in STORAGE_URL")
		}
		return StorageConfig{Type: "fs", BaseDir: path}, nil
	case strings.HasPrefix(raw, "s3://"):
		u, err := url.Parse(raw)
		if err != nil {
			return StorageConfig{}, fmt.Errorf("invalid STORAGE_URL: %w", err)
		}
		if u.Host == "" {
			return StorageConfig{}, errors.New("S3 bucket name cannot be empty in STORAGE_URL")
		}
		q := u.Query()
		if v := q.Get("region"); v != "" {
			s3.Region = v
		}
		if v := q.Get("endpoint"); v != "" {
			s3.Endpoint = v
		}
		if v := q.Get("path_style"); v == "true" || v == "1" {
			s3.UsePathStyle = true
		}
		return StorageConfig{Type: "s3", Bucket: u.Host}, nil
	}
	return StorageConfig{}, fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", raw)
}

// redact hides the password of a connection URL for error messages.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparsable>"
	}
	return u.Redacted()
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.Environment, validation.Required, validation.In("development", "production", "testing")),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.DatabaseType, validation.In("memory", "postgres")),
		validation.Field(&c.DBSchema, validation.Required, validation.Match(schemaPattern)),
		validation.Field(&c.PublicBaseURL, validation.Required, is.URL),
		validation.Field(&c.MaxUploadBytes, validation.Min(int64(1))),
		validation.Field(&c.AdminPasswordSHA256, validation.Length(64, 64), is.Hexadecimal),
		validation.Field(&c.JWTSecret, validation.When(c.IsProduction() && c.AdminEnabled(), validation.Required, validation.Length(32, 0))),
	)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Storage.Type == "s3" && c.Storage.Bucket == "" {
		return errors.New("invalid configuration: s3 storage needs a bucket")
	}
	return nil
}
