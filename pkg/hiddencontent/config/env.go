package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvConfig is the environment surface of the server. Defaults match defaults().
type EnvConfig struct {
	Port        string `env:"PORT" env-default:"8080" env-description:"HTTP listen port"`
	Environment string `env:"ENVIRONMENT" env-default:"development" env-description:"development, production or testing"`

	DatabaseURL string `env:"DATABASE_URL" env-default:"memory" env-description:"memory, postgres://... or sqlite://path"`
	DBSchema    string `env:"DB_SCHEMA" env-default:"hidden_content" env-description:"Postgres schema (search_path)"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" env-default:"true" env-description:"Create tables on startup"`

	NonceSecret   string        `env:"NONCE_SECRET" env-description:"HMAC key for edit form tokens"`
	NonceLifetime time.Duration `env:"NONCE_LIFETIME" env-default:"24h" env-description:"Edit form token lifetime"`
	JWTSecret     string        `env:"JWT_SECRET" env-description:"HS256 key for admin bearer tokens"`

	MediaStorageURL   string `env:"MEDIA_STORAGE_URL" env-default:"memory://" env-description:"memory://, file:///dir or s3://bucket"`
	S3Region          string `env:"S3_REGION" env-default:"us-east-1"`
	S3Endpoint        string `env:"S3_ENDPOINT" env-description:"Custom endpoint for S3-compatible services"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`

	RenderMarkdown   bool `env:"RENDER_MARKDOWN" env-default:"false" env-description:"Run hidden content through Markdown"`
	ContainerMarkers bool `env:"CONTAINER_MARKERS" env-default:"false" env-description:"Wrap the footer container in HTML comment markers"`
	EnableMetrics    bool `env:"ENABLE_METRICS" env-default:"true"`
}

// WithEnv reads the process environment. Options after it override env values.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env EnvConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return env.apply(c)
	}
}

// Usage returns the description of every environment variable.
func Usage() string {
	var env EnvConfig
	desc, err := cleanenv.GetDescription(&env, nil)
	if err != nil {
		return ""
	}
	return desc
}

func (e EnvConfig) apply(c *ServerConfig) error {
	c.Port = e.Port
	c.Environment = e.Environment
	c.DBSchema = e.DBSchema
	c.AutoMigrate = e.AutoMigrate
	c.NonceSecret = e.NonceSecret
	c.NonceLifetime = e.NonceLifetime
	c.JWTSecret = e.JWTSecret
	c.RenderMarkdown = e.RenderMarkdown
	c.ContainerMarkers = e.ContainerMarkers
	c.EnableMetrics = e.EnableMetrics

	if err := applyDatabaseURL(e.DatabaseURL, c); err != nil {
		return err
	}
	return applyMediaStorageURL(e, c)
}

// applyDatabaseURL detects the database type from the URL scheme
func applyDatabaseURL(dbURL string, c *ServerConfig) error {
	switch {
	case dbURL == "" || dbURL == "memory":
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
	case strings.HasPrefix(dbURL, "postgresql://"), strings.HasPrefix(dbURL, "postgres://"):
		c.DatabaseType = "postgres"
		c.DatabaseURL = dbURL
	case strings.HasPrefix(dbURL, "sqlite://"):
		path := strings.TrimPrefix(dbURL, "sqlite://")
		if path == "" {
			return fmt.Errorf("sqlite path cannot be empty in DATABASE_URL")
		}
		c.DatabaseType = "sqlite"
		c.DatabaseURL = dbURL
		c.SQLitePath = path
	default:
		return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory', 'postgres://...' or 'sqlite://...')", dbURL)
	}
	return nil
}

// applyMediaStorageURL configures the media blob store from MEDIA_STORAGE_URL
func applyMediaStorageURL(e EnvConfig, c *ServerConfig) error {
	raw := e.MediaStorageURL
	switch {
	case raw == "" || raw == "memory" || raw == "memory://":
		c.Media = MediaStorageConfig{Type: "memory"}
		return nil

	case strings.HasPrefix(raw, "file://"):
		dir := strings.TrimPrefix(raw, "file://")
		if dir == "" {
			return fmt.Errorf("filesystem path cannot be empty in MEDIA_STORAGE_URL")
		}
		c.Media = MediaStorageConfig{Type: "fs", BaseDir: dir}
		return nil

	case strings.HasPrefix(raw, "s3://"):
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid MEDIA_STORAGE_URL: %w", err)
		}
		if u.Host == "" {
			return fmt.Errorf("bucket cannot be empty in MEDIA_STORAGE_URL")
		}
		region := e.S3Region
		if r := u.Query().Get("region"); r != "" {
			region = r
		}
		c.Media = MediaStorageConfig{
			Type:              "s3",
			S3Bucket:          u.Host,
			S3Region:          region,
			S3Endpoint:        e.S3Endpoint,
			S3AccessKeyID:     e.S3AccessKeyID,
			S3SecretAccessKey: e.S3SecretAccessKey,
			S3UsePathStyle:    e.S3UsePathStyle,
		}
		return nil
	}

	return fmt.Errorf("unsupported MEDIA_STORAGE_URL format: %s (use 'memory://', 'file://...' or 's3://...')", raw)
}
