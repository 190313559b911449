package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/tair/till-pos/internal/pos"
	"github.com/tair/till-pos/internal/pos/cache"
	httpDelivery "github.com/tair/till-pos/internal/pos/delivery/http"
	"github.com/tair/till-pos/internal/pos/domain"
	"github.com/tair/till-pos/pkg/config"
	"github.com/tair/till-pos/pkg/database"
	"github.com/tair/till-pos/pkg/logger"
	"github.com/tair/till-pos/pkg/tracing"
)

const version = "1.0.0"

func main() {
	app := &cli.App{
		Name:    "pos",
		Usage:   "point of sale till service",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file to load before reading the environment",
				Value: ".env",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "initialize the schema and the default administrator, then exit",
				Action: migrate,
			},
			{
				Name:   "report",
				Usage:  "print the dashboard as JSON",
				Action: printReport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, sets up logging and opens the database
func bootstrap(c *cli.Context) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return nil, nil, err
	}

	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Str("db_driver", cfg.DBDriver).
		Msg("Starting till service")

	db, err := database.NewGormConnection(cfg.Database())
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

// assemble initializes the schema and wires the application
func assemble(ctx context.Context, cfg *config.Config, db *gorm.DB, client *redis.Client, reg prometheus.Registerer) (*pos.App, error) {
	app, err := pos.InitializeApp(db, cfg, domain.SystemClock{}, client, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.Store.InitializeSchema(ctx); err != nil {
		_ = app.Store.Close()
		return nil, err
	}
	if _, err := app.Validator.BootstrapDefaultAdmin(ctx); err != nil {
		_ = app.Store.Close()
		return nil, err
	}

	logger.Logger.Info().Msg("Database initialized successfully")
	return app, nil
}

func serve(c *cli.Context) error {
	cfg, db, err := bootstrap(c)
	if err != nil {
		return err
	}

	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(cfg.ServiceName, version, cfg.JaegerEndpoint)
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Failed to initialize tracer, continuing without tracing")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracing.Shutdown(ctx, tp); err != nil {
					logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
				}
			}()
		}
	}

	client, err := cache.ConnectRedis(cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		// the dashboard is recomputed on every request without a cache
		logger.Logger.Warn().Err(err).Msg("Redis unavailable, dashboard caching disabled")
		client = nil
	}
	if client != nil {
		defer client.Close()
	}

	app, err := assemble(c.Context, cfg, db, client, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer app.Store.Close()

	// Setup router
	router := mux.NewRouter()
	httpDelivery.RegisterMiddlewares(router)
	app.Handler.RegisterRoutes(router)
	app.Handler.RegisterHealthCheck(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           corsHandler.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start HTTP server: %w", err)
	case <-quit:
	}

	logger.Logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	logger.Logger.Info().Msg("Server exited")
	return nil
}

func migrate(c *cli.Context) error {
	cfg, db, err := bootstrap(c)
	if err != nil {
		return err
	}

	app, err := assemble(c.Context, cfg, db, nil, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	return app.Store.Close()
}

func printReport(c *cli.Context) error {
	cfg, db, err := bootstrap(c)
	if err != nil {
		return err
	}

	app, err := assemble(c.Context, cfg, db, nil, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer app.Store.Close()

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(app.Aggregator.Dashboard(c.Context))
}
