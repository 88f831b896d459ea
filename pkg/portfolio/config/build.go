package config

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/tendant/simple-portfolio/pkg/portfolio"
	"github.com/tendant/simple-portfolio/pkg/portfolio/api"
	"github.com/tendant/simple-portfolio/pkg/portfolio/media"
	"github.com/tendant/simple-portfolio/pkg/portfolio/migrations"
	"github.com/tendant/simple-portfolio/pkg/portfolio/repo/memory"
	repopg "github.com/tendant/simple-portfolio/pkg/portfolio/repo/postgres"
	fsstorage "github.com/tendant/simple-portfolio/pkg/portfolio/storage/fs"
	memorystorage "github.com/tendant/simple-portfolio/pkg/portfolio/storage/memory"
	s3storage "github.com/tendant/simple-portfolio/pkg/portfolio/storage/s3"
)

// ErrAdminDisabled indicates no admin password is configured
var ErrAdminDisabled = errors.New("admin password not configured")

// BuildPool opens a pgx pool whose sessions use the configured schema
func (c *ServerConfig) BuildPool(ctx context.Context) (*pgxpool.Pool, error) {
	if c.DatabaseType != "postgres" {
		return nil, errors.New("database_url is required for postgres")
	}
	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	schema := c.DBSchema
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if schema == "" {
			return nil
		}
		_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
		return err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	return pool, nil
}

// PingPostgres verifies connectivity with a short timeout
func PingPostgres(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// EnsureSchema creates the configured schema when it is missing
func (c *ServerConfig) EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{c.DBSchema}.Sanitize())
	if err != nil {
		return fmt.Errorf("create schema %s: %w", c.DBSchema, err)
	}
	return nil
}

// OpenDB wraps pool as a database/sql handle for migrations
func OpenDB(pool *pgxpool.Pool) *sql.DB {
	return stdlib.OpenDBFromPool(pool)
}

// BuildRepository creates the row store. The returned cleanup releases any
// connection pool and is never nil.
func (c *ServerConfig) BuildRepository(ctx context.Context) (portfolio.Repository, func(), error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), func() {}, nil
	case "postgres":
		pool, err := c.BuildPool(ctx)
		if err != nil {
			return nil, nil, err
		}
		if err := PingPostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		if err := c.prepareSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repopg.NewWithPool(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// prepareSchema applies pending migrations when AutoMigrate is set and
// otherwise refuses to start against an outdated schema.
func (c *ServerConfig) prepareSchema(ctx context.Context, pool *pgxpool.Pool) error {
	db := OpenDB(pool)
	if c.AutoMigrate {
		if err := c.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		return migrations.MigrateUp(db, c.DBSchema)
	}
	if err := migrations.CheckDBMigrationStatus(db, c.DBSchema); err != nil {
		return fmt.Errorf("%w; run `portfolio migrate up` or set AUTO_MIGRATE=true", err)
	}
	return nil
}

// BuildService wires a gateway over repo
func (c *ServerConfig) BuildService(repo portfolio.Repository, sink portfolio.EventSink, logger *slog.Logger) (portfolio.Service, error) {
	options := []portfolio.Option{portfolio.WithRepository(repo)}
	if sink != nil {
		options = append(options, portfolio.WithEventSink(sink))
	}
	if logger != nil {
		options = append(options, portfolio.WithLogger(logger))
	}
	return portfolio.New(options...)
}

// BuildBlobStore creates the image store named by StorageURL
func (c *ServerConfig) BuildBlobStore(ctx context.Context) (portfolio.BlobStore, error) {
	switch c.Storage.Type {
	case "memory":
		return memorystorage.New(c.MediaURLPrefix()), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   c.Storage.BaseDir,
			URLPrefix: c.MediaURLPrefix(),
		})
	case "s3":
		return s3storage.New(ctx, s3storage.Config{
			Region:                 c.S3.Region,
			Bucket:                 c.Storage.Bucket,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			PublicBaseURL:          c.S3.PublicBaseURL,
			CreateBucketIfNotExist: c.S3.CreateBucket,
		})
	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", c.Storage.Type)
	}
}

// BuildUploader creates the image uploader over store
func (c *ServerConfig) BuildUploader(store portfolio.BlobStore, logger *slog.Logger) *media.Uploader {
	return media.NewUploader(store, media.Config{
		Preset:   c.UploadPreset,
		MaxBytes: c.MaxUploadBytes,
	}, logger)
}

// BuildAuth creates the admin session gate. Without a JWT secret a random
// one is generated, so sessions do not survive a restart.
func (c *ServerConfig) BuildAuth(logger *slog.Logger) (*api.Auth, error) {
	if !c.AdminEnabled() {
		return nil, ErrAdminDisabled
	}
	secret := c.JWTSecret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		secret = hex.EncodeToString(buf)
		if logger != nil {
			logger.Warn("JWT_SECRET not set, using a random secret for this process")
		}
	}
	return api.NewAuth(api.AuthConfig{
		PasswordSHA256: c.AdminPasswordSHA256,
		Secret:         secret,
		SecureCookie:   c.IsProduction(),
	})
}
