package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/interview-tracker/config"
	"github.com/oksasatya/interview-tracker/internal/container"
	"github.com/oksasatya/interview-tracker/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/interview-tracker/internal/infrastructure/postgres"
	"github.com/oksasatya/interview-tracker/internal/infrastructure/search"
	"github.com/oksasatya/interview-tracker/internal/interface/middleware"
	"github.com/oksasatya/interview-tracker/internal/router"
	"github.com/oksasatya/interview-tracker/pkg/helpers"
	"github.com/oksasatya/interview-tracker/pkg/validation"
)

const shutdownGrace = 10 * time.Second

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()
	container.SetConfig(cfg)
	container.SetLogger(logger)

	switch cfg.Storage {
	case "memory":
		logger.Warn("STORAGE=memory; data is lost on restart")
		container.SetMemoryStore(memory.NewStore())
	case "postgres":
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		container.SetPGPool(pool)
	default:
		log.Fatalf("unknown STORAGE %q (want postgres or memory)", cfg.Storage)
	}

	// Redis backs the rate limiter only; the limiter fails open when it is unreachable.
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			helpers.LogWarn(logger, "redis unreachable; rate limiting fails open", err, logrus.Fields{"addr": cfg.RedisAddr})
		}
		container.SetRedis(rdb)
	}

	if cfg.SearchEnabled() {
		setupSearch(ctx, cfg, logger)
	}

	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS client: %v", err)
		}
		defer func() { _ = gcsClient.Close() }()
		container.SetGCS(gcsClient)
	}

	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQNotifyQueue)
		if err != nil {
			helpers.LogWarn(logger, "rabbitmq unavailable; notifications disabled", err, nil)
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
		}
	}

	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL))

	trusted, err := middleware.ParseTrustedProxies(cfg.TrustedProxyList())
	if err != nil {
		log.Fatalf("invalid TRUSTED_PROXIES: %v", err)
	}

	// Gin engine and global middleware
	r := gin.New()
	// an empty list trusts no proxy
	if err := r.SetTrustedProxies(cfg.TrustedProxyList()); err != nil {
		log.Fatalf("invalid TRUSTED_PROXIES: %v", err)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP(trusted...))
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		container.SetMetricsRegistry(reg)
		r.Use(middleware.NewMetrics(reg, metricsNamespace(cfg.AppName)).Middleware())
	}
	r.Use(cors.New(corsConfig(cfg)))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg, router.BuildDeps())
	reg.RegisterAll()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	stop, cancelSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancelSignals()

	serveErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{"addr": srv.Addr, "storage": cfg.Storage}).Info("http server listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server: %v", err)
		}
	case <-stop.Done():
	}
	logger.Info("draining connections")

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		return
	}
	logger.Info("http server stopped")
}

// setupSearch connects to Elasticsearch and makes sure the candidates index exists.
// Any failure leaves search on the store fallback.
func setupSearch(ctx context.Context, cfg *config.Config, logger *logrus.Logger) {
	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		helpers.LogWarn(logger, "elasticsearch client init failed; search uses the store", err, nil)
		return
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := helpers.PingES(pctx, es); err != nil {
		helpers.LogWarn(logger, "elasticsearch unreachable; search uses the store", err, nil)
		return
	}
	if err := search.NewCandidateIndex(es, cfg.ESCandidatesIndex).EnsureIndex(pctx); err != nil {
		helpers.LogWarn(logger, "elasticsearch index setup failed; search uses the store", err, logrus.Fields{"index": cfg.ESCandidatesIndex})
		return
	}
	container.SetES(es)
	helpers.LogInfo(logger, "elasticsearch ready", logrus.Fields{"index": cfg.ESCandidatesIndex})
}

// corsConfig reflects any origin when none are configured; credentials are always allowed.
func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		c.AllowOrigins = origins
	} else {
		c.AllowOriginFunc = func(string) bool { return true }
	}
	return c
}

func metricsNamespace(appName string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, appName)
}

// runMigrations applies every pending file in dir. An up-to-date schema is not an error.
func runMigrations(dsn, dir string, logger logrus.FieldLogger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("migrate: open: %w", err)
	}
	defer func() { _ = db.Close() }()

	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return fmt.Errorf("migrate: driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate: source %s: %w", dir, err)
	}

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Debug("schema up to date")
	case err != nil:
		return fmt.Errorf("migrate: up: %w", err)
	}
	if v, dirty, err := m.Version(); err == nil {
		logger.WithFields(logrus.Fields{"version": v, "dirty": dirty}).Info("schema migrated")
	}
	return nil
}
