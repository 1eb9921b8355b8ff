package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tendant/hidden-content/pkg/hiddencontent"
	"github.com/tendant/hidden-content/pkg/hiddencontent/api"
	"github.com/tendant/hidden-content/pkg/hiddencontent/config"
	"github.com/tendant/hidden-content/pkg/hiddencontent/metrics"
	"github.com/tendant/hidden-content/pkg/hiddencontent/render"
)

const usage = `Hidden Content Server

Serves pages with search-engine-only hidden content, the admin edit screen
and the analyzer API.

USAGE:
  server                 Start the HTTP server
  server token [options] Print an admin bearer token signed with JWT_SECRET

TOKEN OPTIONS:
  --user=<id>            User ID (default: 1)
  --role=<role>          administrator, editor, author, contributor or subscriber
                         (default: administrator)
  --ttl=<duration>       Token lifetime (default: 24h)

Configuration can be loaded from a .env file in the current directory.

ENVIRONMENT VARIABLES:
`

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "help", "--help", "-h":
			fmt.Print(usage)
			fmt.Println(config.Usage())
			return
		case "token":
			if err := printToken(os.Args[2:]); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			return
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
	}

	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(environment string) *slog.Logger {
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func run() error {
	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		return fmt.Errorf("failed to load server configuration: %w", err)
	}

	logger := newLogger(cfg.Environment)
	slog.SetDefault(logger)

	ctx := context.Background()
	if cfg.DatabaseType == "postgres" {
		if err := config.PingPostgres(ctx, cfg.DatabaseURL); err != nil {
			return err
		}
	}

	comp, err := cfg.Build(ctx, logger)
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}
	defer comp.Close()

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "development-only-secret"
		logger.Warn("JWT_SECRET not set, using the development secret")
	}

	apiCfg := api.Config{
		Service:    comp.Service,
		Hooks:      comp.Hooks,
		Repository: comp.Repository,
		Media:      comp.Media,
		Renderer:   render.NewDefault(cfg.RenderMarkdown),
		JWTSecret:  jwtSecret,
		Logger:     logger,
	}
	if comp.Metrics != nil {
		apiCfg.MetricsHandler = metrics.HTTPHandler(comp.Registry)
		apiCfg.Observer = comp.Metrics
	}

	server, err := api.NewServer(apiCfg)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Hidden content server starting",
			"port", cfg.Port,
			"env", cfg.Environment,
			"database", cfg.DatabaseType,
			"media", cfg.Media.Type,
			"metrics", cfg.EnableMetrics,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exiting")
	return nil
}

func printToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	userID := fs.Int64("user", 1, "user ID")
	role := fs.String("role", string(hiddencontent.RoleAdministrator), "user role")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user := hiddencontent.User{ID: *userID, Role: hiddencontent.Role(*role)}
	if !user.Role.IsValid() {
		return fmt.Errorf("unknown role: %s", *role)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "development-only-secret"
	}

	token, err := api.IssueToken(api.NewJWTAuth(secret), user, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
