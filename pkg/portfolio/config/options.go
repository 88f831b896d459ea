package config

import (
	"fmt"
	"regexp"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/simple-portfolio/pkg/portfolio/api"
)

var schemaPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// WithEnv reads every tagged field from the environment. Unset variables fall
// back to their env-default.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("read environment: %w", err)
		}
		return nil
	}
}

// WithFile reads a YAML, TOML, JSON or .env file, then the environment on
// top of it.
func WithFile(path string) Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadConfig(path, c); err != nil {
			return fmt.Errorf("read config file %s: %w", path, err)
		}
		return nil
	}
}

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase sets the database URL ("memory" or postgres://...)
func WithDatabase(url string) Option {
	return func(c *ServerConfig) error {
		c.DatabaseURL = url
		return nil
	}
}

// WithDBSchema sets the Postgres schema
func WithDBSchema(schema string) Option {
	return func(c *ServerConfig) error {
		if schema == "" {
			return fmt.Errorf("schema cannot be empty")
		}
		c.DBSchema = schema
		return nil
	}
}

// WithStorageURL sets where images are stored
func WithStorageURL(url string) Option {
	return func(c *ServerConfig) error {
		c.StorageURL = url
		return nil
	}
}

// WithPublicBaseURL sets the externally visible server origin
func WithPublicBaseURL(url string) Option {
	return func(c *ServerConfig) error {
		c.PublicBaseURL = url
		return nil
	}
}

// WithUploadPreset sets the token image uploads must carry
func WithUploadPreset(preset string) Option {
	return func(c *ServerConfig) error {
		c.UploadPreset = preset
		return nil
	}
}

// WithAdminPassword sets the admin password from its plain text
func WithAdminPassword(password string) Option {
	return func(c *ServerConfig) error {
		if password == "" {
			return fmt.Errorf("admin password cannot be empty")
		}
		c.AdminPasswordSHA256 = api.HashPassword(password)
		return nil
	}
}

// WithJWTSecret sets the session signing secret
func WithJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.JWTSecret = secret
		return nil
	}
}
