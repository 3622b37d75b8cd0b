package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meridianlabs/backoffice/pkg"
	"github.com/meridianlabs/backoffice/pkg/cache"
	"github.com/meridianlabs/backoffice/pkg/database"
	"github.com/meridianlabs/backoffice/pkg/errhandler"
	middleware "github.com/meridianlabs/backoffice/pkg/middlewares"
	"github.com/meridianlabs/backoffice/pkg/repositories"
	"github.com/meridianlabs/backoffice/services/admin-api/configs"
	"github.com/meridianlabs/backoffice/services/admin-api/internal/handlers"
	"github.com/meridianlabs/backoffice/services/admin-api/internal/services"
)

// NewApp wires dependencies, builds the Gin engine, and returns an *http.Server and a cleanup func.
// It reads configuration from environment variables via configs.Load.
func NewApp(ctx context.Context, logger *zap.Logger) (*http.Server, func(), error) {
	// Load config
	cfg, err := configs.Load(logger)
	if err != nil {
		return nil, nil, err
	}

	// Initialize postgres db
	dbConfig := database.Config{
		PrimaryDSN:  cfg.PrimaryDbAddr,
		ReplicaDSNs: []string{cfg.ReplicaDbAddr},
		MaxConns:    cfg.MaxDbCons,
		MinConns:    cfg.MinDbCons,
	}
	db, disconnect, err := database.New(ctx, logger, dbConfig)
	if err != nil {
		return nil, nil, err
	}

	// Run migrations on primary
	if err := database.RunMigrations(logger, cfg.PrimaryDbAddr); err != nil {
		disconnect()
		return nil, nil, err
	}

	// Redis is optional; without it the write limiter is local-only.
	var redisClose func()
	limiter := pkg.NewDistributedLimiter(nil, "global:write_rate", cfg.WriteRatePerSec, cfg.WriteRateBurst, time.Minute, logger)
	if cfg.RedisAddr != "" {
		redisClient, closer, err := cache.New(ctx, cache.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err != nil {
			disconnect()
			return nil, nil, err
		}
		redisClose = closer
		limiter = pkg.NewDistributedLimiter(redisClient, "global:write_rate", cfg.WriteRatePerSec, cfg.WriteRateBurst, time.Minute, logger)
	}

	// Audit trail
	audit, err := services.NewAuditPublisher(logger, cfg.KafkaBrokers, cfg.AuditTopic)
	if err != nil {
		if redisClose != nil {
			redisClose()
		}
		disconnect()
		return nil, nil, err
	}

	// Error handler: the single terminal boundary for request failures.
	handler := errhandler.New(logger, errhandler.Config{
		Logging:  true,
		LogLevel: zapcore.ErrorLevel,
		Notify:   true,
	}, errhandler.LogNotifier{Logger: logger})

	// Setup dependencies
	baseHandler := handlers.NewBaseHandler(logger)

	productRepo := repositories.NewProductRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	userRepo := repositories.NewUserRepository(db)

	productService := services.NewProductService(logger, productRepo, audit)
	orderService := services.NewOrderService(logger, db, orderRepo, audit)
	userService := services.NewUserService(logger, userRepo, audit)

	productHandler := handlers.NewProductHandler(logger, productService)
	orderHandler := handlers.NewOrderHandler(logger, orderService)
	userHandler := handlers.NewUserHandler(logger, userService)

	// Router
	r := gin.New()
	r.Use(gin.Logger())

	api := r.Group("/api/v1")
	api.Use(middleware.TraceID())
	api.Use(middleware.Metrics())
	api.Use(errhandler.Middleware(handler))
	api.Use(middleware.WriteRateLimit(limiter))

	productHandler.RegisterRoutes(api)
	orderHandler.RegisterRoutes(api)
	userHandler.RegisterRoutes(api)
	baseHandler.RegisterRoutes(r)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	cleanup := func() {
		audit.Close()
		if redisClose != nil {
			redisClose()
		}
		disconnect()
	}

	return srv, cleanup, nil
}
