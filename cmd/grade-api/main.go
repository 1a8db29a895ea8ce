package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/grade-calculator-api/api/swagger"
	"github.com/noah-isme/grade-calculator-api/internal/handler"
	internalmiddleware "github.com/noah-isme/grade-calculator-api/internal/middleware"
	"github.com/noah-isme/grade-calculator-api/internal/repository"
	"github.com/noah-isme/grade-calculator-api/internal/service"
	"github.com/noah-isme/grade-calculator-api/pkg/cache"
	"github.com/noah-isme/grade-calculator-api/pkg/config"
	"github.com/noah-isme/grade-calculator-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/grade-calculator-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/grade-calculator-api/pkg/middleware/requestid"
)

// @title Grade Calculator API
// @version 1.0.0
// @description Two-period weighted grade calculator with GPE conversion and pass projection
// @BasePath /api/v1
// @schemes http

const cacheKeyPrefix = "grade-calculator"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			logr.Warn("result cache disabled, redis unavailable", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	r := newRouter(cfg, logr, redisClient)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "target", cfg.Calculator.PassingTarget)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// newRouter wires services and routes. A nil redis client runs without the result cache.
func newRouter(cfg *config.Config, logr *zap.Logger, redisClient *redis.Client) *gin.Engine {
	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	var cacheRepo service.CacheRepository
	checks := map[string]handler.ReadinessCheck{}
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, cacheKeyPrefix, logr)
		checks["redis"] = cache.Pinger(redisClient)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)
	calculatorSvc := service.NewCalculatorService(validator.New(), logr, cacheSvc, metricsSvc, cfg.Calculator.PassingTarget)

	var calculatorHandler *handler.CalculatorHandler
	if cfg.Exports.Enabled {
		calculatorHandler = handler.NewCalculatorHandler(calculatorSvc, service.NewExportService(nil, nil, metricsSvc))
	} else {
		calculatorHandler = handler.NewCalculatorHandler(calculatorSvc, nil)
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.WithResponseMeta())
	calculator := api.Group("/calculator")
	calculator.POST("/calculate", calculatorHandler.Calculate)
	calculator.POST("/period", calculatorHandler.Period)
	calculator.POST("/final", calculatorHandler.Final)
	calculator.POST("/points-needed", calculatorHandler.PointsNeeded)
	calculator.POST("/validate", calculatorHandler.Validate)
	calculator.GET("/gpe", calculatorHandler.GPE)
	calculator.POST("/export", calculatorHandler.Export)

	return r
}
