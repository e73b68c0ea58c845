// server/cmd/api/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"coffee-os-api-server/config"
	"coffee-os-api-server/internal/api/handlers"
	"coffee-os-api-server/internal/api/routes"
	"coffee-os-api-server/internal/auth"
	"coffee-os-api-server/internal/database"
	"coffee-os-api-server/internal/logger"
	"coffee-os-api-server/internal/s3"
	"coffee-os-api-server/internal/socket"
	"coffee-os-api-server/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	flush, err := logger.Init(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Could not build logger: %v", err)
	}
	defer flush()
	if cfg.Log.Format == "json" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		zap.L().Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config) error {
	ttl, err := cfg.JWT.TTL()
	if err != nil {
		return err
	}
	if err := validation.RegisterWithGin(); err != nil {
		return err
	}

	// 2. MongoDB, indexes and seed data
	client, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()
	db := client.Database(cfg.Mongo.DBName)
	zap.L().Info("connected to mongo", zap.String("db", cfg.Mongo.DBName))

	if err := database.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	if err := database.SeedAdmin(ctx, db, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
		return err
	}
	if n, err := database.SeedCoffeeShops(ctx, db, cfg.Seed.File); err != nil {
		return err
	} else if n > 0 {
		zap.L().Info("coffee shops seeded", zap.Int("count", n))
	}

	// 3. Token denylist: redis when configured, process memory otherwise
	var (
		rdb      *redis.Client
		denylist auth.Denylist
	)
	if cfg.Redis.Addr != "" {
		rdb, err = database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		denylist = auth.NewRedisDenylist(rdb)
	} else {
		zap.L().Warn("redis not configured, revoked tokens are kept in memory")
		denylist = auth.NewMemoryDenylist()
	}

	// 4. Optional S3 image uploads
	var uploader handlers.ImageUploader
	if cfg.S3.Enabled() {
		u, err := s3.NewUploader(ctx, cfg.S3)
		if err != nil {
			return err
		}
		uploader = u
	} else {
		zap.L().Info("s3 not configured, image uploads disabled")
	}

	router := routes.SetupRouter(routes.Dependencies{
		DB:          db,
		Mongo:       client,
		Redis:       rdb,
		Tokens:      auth.NewTokenManager(cfg.JWT.Secret, ttl),
		Denylist:    denylist,
		Uploader:    uploader,
		Hub:         socket.NewHub(),
		Logger:      zap.L(),
		CORSOrigins: cfg.Server.CORSAllowedOrigins,
	})

	// 5. Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting API server", zap.String("port", cfg.Server.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
