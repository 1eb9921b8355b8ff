package config

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/tendant/hidden-content/pkg/hiddencontent"
	"github.com/tendant/hidden-content/pkg/hiddencontent/media"
	"github.com/tendant/hidden-content/pkg/hiddencontent/metrics"
	"github.com/tendant/hidden-content/pkg/hiddencontent/nonce"
	"github.com/tendant/hidden-content/pkg/hiddencontent/render"
	"github.com/tendant/hidden-content/pkg/hiddencontent/repo/memory"
	repopg "github.com/tendant/hidden-content/pkg/hiddencontent/repo/postgres"
	reposqlite "github.com/tendant/hidden-content/pkg/hiddencontent/repo/sqlite"
	fsstorage "github.com/tendant/hidden-content/pkg/hiddencontent/storage/fs"
	memorystorage "github.com/tendant/hidden-content/pkg/hiddencontent/storage/memory"
	s3storage "github.com/tendant/hidden-content/pkg/hiddencontent/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:          "8080",
		Environment:   "development",
		DatabaseType:  "memory",
		DBSchema:      "hidden_content",
		AutoMigrate:   true,
		NonceLifetime: 24 * time.Hour,
		Media: MediaStorageConfig{
			Type: "memory",
		},
		EnableMetrics: true,
	}
}

// ServerConfig represents server configuration for the hidden content host
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres", "sqlite"
	DBSchema     string // Postgres schema to use (default: hidden_content)
	SQLitePath   string
	AutoMigrate  bool

	// Request authenticity and admin identity
	NonceSecret   string
	NonceLifetime time.Duration
	JWTSecret     string

	Media MediaStorageConfig

	// Rendering
	RenderMarkdown   bool
	ContainerMarkers bool

	EnableMetrics bool
}

// MediaStorageConfig selects the blob store behind the media library
type MediaStorageConfig struct {
	Type    string // "memory", "fs", "s3"
	BaseDir string

	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3UsePathStyle    bool
}

// IsProduction reports whether the server runs with production safeguards
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("database_url is required when using postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("sqlite path is required when using sqlite")
		}
	default:
		return errors.New("database_type must be 'memory', 'postgres' or 'sqlite'")
	}

	switch c.Media.Type {
	case "memory":
	case "fs":
		if c.Media.BaseDir == "" {
			return errors.New("media base directory is required for fs storage")
		}
	case "s3":
		if c.Media.S3Bucket == "" {
			return errors.New("media bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported media storage type: %s", c.Media.Type)
	}

	if c.NonceLifetime <= 0 {
		return errors.New("nonce lifetime must be positive")
	}

	if c.IsProduction() {
		if c.NonceSecret == "" {
			return errors.New("nonce secret is required in production")
		}
		if c.JWTSecret == "" {
			return errors.New("jwt secret is required in production")
		}
	}

	return nil
}

// Components is everything the HTTP host needs, built from one ServerConfig.
type Components struct {
	Service    hiddencontent.Service
	Hooks      *hiddencontent.Hooks
	Repository hiddencontent.Repository
	Media      *media.Library
	Tokens     *nonce.Signer

	// Nil when metrics are disabled
	Registry *prom.Registry
	Metrics  *metrics.PrometheusRecorder

	closers []func()
}

// Close releases database handles.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build wires repository, media library, metrics, service and hooks.
func (c *ServerConfig) Build(ctx context.Context, logger *slog.Logger) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}
	comp := &Components{}

	repo, closeRepo, err := c.BuildRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}
	comp.Repository = repo
	comp.closers = append(comp.closers, closeRepo)

	comp.Media, err = c.BuildMedia(ctx, logger)
	if err != nil {
		comp.Close()
		return nil, fmt.Errorf("failed to build media library: %w", err)
	}

	var recorder hiddencontent.Recorder = hiddencontent.NoopRecorder{}
	if c.EnableMetrics {
		comp.Registry = prom.NewRegistry()
		comp.Metrics = metrics.NewPrometheusRecorder(comp.Registry)
		recorder = comp.Metrics
	}

	comp.Tokens = c.BuildTokens(logger)

	comp.Service, err = c.BuildService(repo, comp.Tokens, recorder, logger)
	if err != nil {
		comp.Close()
		return nil, err
	}

	comp.Hooks = hiddencontent.NewHooks()
	if comp.Metrics != nil {
		comp.Hooks.Merge(hiddencontent.MetricsHook(comp.Metrics))
	}
	comp.Hooks.Merge(hiddencontent.LoggingHook(logger))
	comp.Hooks.Register(comp.Service)

	return comp, nil
}

// BuildTokens creates the nonce signer. Outside production a missing secret
// is replaced with a random one, so tokens do not survive a restart.
func (c *ServerConfig) BuildTokens(logger *slog.Logger) *nonce.Signer {
	secret := c.NonceSecret
	if secret == "" {
		buf := make([]byte, 32)
		_, _ = rand.Read(buf)
		secret = hex.EncodeToString(buf)
		logger.Warn("NONCE_SECRET not set, using an ephemeral secret")
	}
	return nonce.New(nonce.WithSecretKey(secret), nonce.WithLifetime(c.NonceLifetime))
}

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService(repo hiddencontent.Repository, tokens hiddencontent.TokenIssuer, recorder hiddencontent.Recorder, logger *slog.Logger) (hiddencontent.Service, error) {
	return hiddencontent.New(
		hiddencontent.WithRepository(repo),
		hiddencontent.WithTokens(tokens),
		hiddencontent.WithRenderer(render.NewDefault(c.RenderMarkdown)),
		hiddencontent.WithRecorder(recorder),
		hiddencontent.WithLogger(logger),
		hiddencontent.WithContainerMarkers(c.ContainerMarkers),
	)
}

// BuildRepository creates a Repository based on the configuration. The
// returned func releases it.
func (c *ServerConfig) BuildRepository(ctx context.Context) (hiddencontent.Repository, func(), error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), func() {}, nil

	case "postgres":
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		schema := c.DBSchema
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			if schema == "" {
				return nil
			}
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", pgx.Identifier{schema}.Sanitize()))
			return err
		}
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		repo := repopg.NewWithPool(pool)
		if c.AutoMigrate {
			if err := repo.Migrate(ctx, schema); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		return repo, pool.Close, nil

	case "sqlite":
		repo, err := reposqlite.Open(c.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// BuildMedia creates the media library over the configured blob store
func (c *ServerConfig) BuildMedia(ctx context.Context, logger *slog.Logger) (*media.Library, error) {
	store, err := c.buildBlobStore(ctx)
	if err != nil {
		return nil, err
	}
	return media.New(store, media.WithLogger(logger)), nil
}

func (c *ServerConfig) buildBlobStore(ctx context.Context) (hiddencontent.BlobStore, error) {
	switch c.Media.Type {
	case "memory":
		return memorystorage.New(), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{BaseDir: c.Media.BaseDir})
	case "s3":
		return s3storage.New(ctx, s3storage.Config{
			Region:                 c.Media.S3Region,
			Bucket:                 c.Media.S3Bucket,
			AccessKeyID:            c.Media.S3AccessKeyID,
			SecretAccessKey:        c.Media.S3SecretAccessKey,
			Endpoint:               c.Media.S3Endpoint,
			UsePathStyle:           c.Media.S3UsePathStyle,
			CreateBucketIfNotExist: !c.IsProduction(),
		})
	default:
		return nil, fmt.Errorf("unsupported media storage type: %s", c.Media.Type)
	}
}

// PingPostgres verifies connectivity to Postgres.
func PingPostgres(ctx context.Context, databaseURL string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
