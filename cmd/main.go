package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-places-api/config"
	"github.com/oksasatya/go-places-api/internal/application"
	"github.com/oksasatya/go-places-api/internal/container"
	"github.com/oksasatya/go-places-api/internal/domain/repository"
	"github.com/oksasatya/go-places-api/internal/infrastructure/geocode"
	"github.com/oksasatya/go-places-api/internal/infrastructure/imagestore"
	"github.com/oksasatya/go-places-api/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-places-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-places-api/internal/infrastructure/search"
	"github.com/oksasatya/go-places-api/internal/router"
	"github.com/oksasatya/go-places-api/pkg/helpers"
	"github.com/oksasatya/go-places-api/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()
	container.SetConfig(cfg)
	container.SetLogger(logger)

	// Store
	var store repository.Store
	if cfg.UsesPostgres() {
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		container.SetPGPool(pool)
		store = pginfra.NewStore(pool)
	} else {
		logger.Warn("using in-memory store; data is lost on restart")
		store = memory.NewStore()
	}
	container.SetStore(store)

	// Redis (rate limiting)
	if cfg.RateLimitEnabled {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		container.SetRedis(rdb)
	}

	// Images
	var images application.ImageStore
	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS client: %v", err)
		}
		defer func() { _ = gcsClient.Close() }()
		container.SetGCS(gcsClient)
		images = imagestore.NewGCS(gcsClient, cfg.GCSBucket)
	} else {
		local, err := imagestore.NewLocal(cfg.UploadDir)
		if err != nil {
			log.Fatalf("failed to prepare upload dir: %v", err)
		}
		images = local
	}

	// Geocoding
	var geocoder application.Geocoder = geocode.NewStatic()
	if cfg.GoogleMapsAPIKey != "" {
		geocoder = geocode.NewGoogle(cfg.GoogleMapsAPIKey)
	} else {
		logger.Warn("GOOGLE_MAPS_API_KEY not set; all places get default coordinates")
	}

	// Elasticsearch (optional)
	var index application.PlaceIndex
	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch disabled")
	} else if es != nil {
		container.SetES(es)
		index = search.NewPlaceIndex(es, cfg.ESPlacesIndex)
	}

	// RabbitMQ (optional, welcome emails)
	var jobs application.JobPublisher
	if cfg.MailSendEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; welcome emails disabled")
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
			jobs = pub
		}
	}

	jwtManager := helpers.NewJWTManager(cfg.JWTKey, cfg.JWTTTL)
	container.SetJWT(jwtManager)

	placeSvc := application.NewPlaceService(store, images, geocoder, index, logger)
	userSvc := application.NewUserService(store, jwtManager, helpers.NewPasswordHasher(cfg.BcryptCost), images, jobs, logger, cfg.AppURL)
	container.SetPlaceService(placeSvc)
	container.SetUserService(userSvc)

	r := router.NewEngine(router.EngineOptions{
		CORSOrigins: cfg.CORSOrigins(),
		AccessLog:   cfg.Env == "development" || cfg.HTTPLogEnabled,
	})

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "store": cfg.StoreDriver}).Info("server starting")
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
		logger.WithError(err).Error("server forced to shutdown")
	}
	placeSvc.Wait()
	logger.Info("server exited properly")
}
