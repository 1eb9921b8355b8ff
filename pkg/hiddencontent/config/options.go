package config

import (
	"fmt"
	"time"
)

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

// WithDatabase configures the database backend. For sqlite, url is the file path.
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		switch dbType {
		case "memory":
			c.DatabaseURL = ""
		case "postgres":
			if url == "" {
				return fmt.Errorf("database URL is required for postgres")
			}
			c.DatabaseURL = url
		case "sqlite":
			if url == "" {
				return fmt.Errorf("database path is required for sqlite")
			}
			c.SQLitePath = url
		default:
			return fmt.Errorf("database type must be 'memory', 'postgres' or 'sqlite', got: %s", dbType)
		}
		c.DatabaseType = dbType
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithNonce sets the edit form token secret and lifetime
func WithNonce(secret string, lifetime time.Duration) Option {
	return func(c *ServerConfig) error {
		c.NonceSecret = secret
		if lifetime > 0 {
			c.NonceLifetime = lifetime
		}
		return nil
	}
}

// WithJWTSecret sets the admin bearer token key
func WithJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.JWTSecret = secret
		return nil
	}
}

// WithFilesystemMedia stores media under dir
func WithFilesystemMedia(dir string) Option {
	return func(c *ServerConfig) error {
		if dir == "" {
			return fmt.Errorf("media directory cannot be empty")
		}
		c.Media = MediaStorageConfig{Type: "fs", BaseDir: dir}
		return nil
	}
}

// WithMarkdown enables the Markdown render filter
func WithMarkdown(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.RenderMarkdown = enabled
		return nil
	}
}

// WithContainerMarkers toggles the footer comment markers
func WithContainerMarkers(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.ContainerMarkers = enabled
		return nil
	}
}

// WithMetrics toggles the Prometheus recorder and /metrics endpoint
func WithMetrics(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableMetrics = enabled
		return nil
	}
}
