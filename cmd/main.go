package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/lostudea/lostudea-api/config"
	"github.com/lostudea/lostudea-api/internal/application"
	"github.com/lostudea/lostudea-api/internal/container"
	"github.com/lostudea/lostudea-api/internal/infrastructure/feed"
	pginfra "github.com/lostudea/lostudea-api/internal/infrastructure/postgres"
	"github.com/lostudea/lostudea-api/internal/interface/middleware"
	"github.com/lostudea/lostudea-api/internal/router"
	"github.com/lostudea/lostudea-api/pkg/helpers"
	"github.com/lostudea/lostudea-api/pkg/mailer"
	"github.com/lostudea/lostudea-api/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Postgres pool
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	// Run migrations using database/sql with pgx stdlib
	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migration failed: %v", err)
	}

	// Redis: sessions, rate limits, and the change feed
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()

	// GCS for report photos; nil bucket disables uploads
	gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
	if err != nil {
		log.Fatalf("failed to init GCS client: %v", err)
	}
	defer func() { _ = gcsClient.Close() }()

	// JWT
	jwtManager := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	// Elasticsearch for report search; degraded to nil when unreachable
	esClient, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch unavailable, search disabled")
		esClient = nil
	}

	// RabbitMQ publisher for match notification emails
	var rabbitPub *helpers.RabbitPublisher
	if cfg.MailSendEnabled {
		rabbitPub, err = helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQMatchQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable, match emails disabled")
			rabbitPub = nil
		} else {
			defer rabbitPub.Close()
		}
	}

	// Repositories share one change feed so every write fans out to all
	// subscribed stores.
	changeFeed := feed.NewRedisFeed(rdb, logger)
	lostRepo := pginfra.NewLostItemRepository(pool, changeFeed)
	foundRepo := pginfra.NewFoundItemRepository(pool, changeFeed)
	matchRepo := pginfra.NewMatchRepository(pool, changeFeed)
	userRepo := pginfra.NewUserRepository(pool, changeFeed)

	reportIndex := application.NewReportIndex(esClient, cfg.ESLostIndex, cfg.ESFoundIndex, logger)
	lifecycle := application.NewMatchLifecycle(matchRepo, userRepo, mailQueue(rabbitPub), logger)
	store := application.NewItemStore(lostRepo, foundRepo, matchRepo, changeFeed, lifecycle, reportIndex, logger)
	userService := application.NewUserService(userRepo, jwtManager, rdb, logger)
	images := application.NewImageUploader(gcsClient, cfg.GCSBucket)

	teardown, err := store.Initialize(ctx)
	if err != nil {
		log.Fatalf("failed to initialize item store: %v", err)
	}
	defer teardown()

	// Provide singletons to the container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetRedis(rdb)
	container.SetGCS(gcsClient)
	container.SetJWT(jwtManager)
	container.SetES(esClient)
	container.SetRabbitPub(rabbitPub)
	container.SetMailgun(mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender))
	container.SetItemStore(store)
	container.SetUserService(userService)
	container.SetLifecycle(lifecycle)
	container.SetImageUploader(images)
	container.SetReportIndex(reportIndex)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// mailQueue adapts a possibly-nil publisher to the lifecycle's interface.
// A typed nil inside a non-nil interface would defeat the lifecycle's nil
// check, so the conversion happens here.
func mailQueue(pub *helpers.RabbitPublisher) application.MailQueue {
	if pub == nil {
		return nil
	}
	return pub
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
