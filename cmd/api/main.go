package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"walletwise-api/internal/cache"
	"walletwise-api/internal/catalog"
	"walletwise-api/internal/config"
	"walletwise-api/internal/database"
	"walletwise-api/internal/engine"
	"walletwise-api/internal/events"
	"walletwise-api/internal/features"
	"walletwise-api/internal/handler"
	"walletwise-api/internal/middleware"
	"walletwise-api/internal/service"
	"walletwise-api/internal/tracing"
)

func main() {
	configFile := flag.String("config", "", "Path to JSON config file (optional)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	// Tracing
	if _, err := tracing.InitTracing(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: "walletwise-api",
		Environment: cfg.Tracing.Environment,
	}); err != nil {
		logger.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(ctx); err != nil {
			logger.Warn("failed to shut down tracing", zap.Error(err))
		}
	}()

	// Database
	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Offer catalog, loaded once at startup. A missing feed file is not
	// fatal: recommendations then run on method-owned offers only.
	loader := catalog.NewLoader(logger)
	cat, err := loader.LoadFile(cfg.Catalog.FeedPath)
	if err != nil {
		logger.Warn("offer feed unavailable, starting with empty catalog",
			zap.String("path", cfg.Catalog.FeedPath), zap.Error(err))
		cat = loader.Load(nil)
	}

	// Recommendation engine
	eng := engine.New(engine.Config{
		ExcludedMethodNames:       cfg.Engine.ExcludedMethodNames,
		UtilizationWarningPercent: decimal.NewFromInt(int64(cfg.Engine.UtilizationWarningPercent)),
	})

	// Cache: Redis when configured, in-memory otherwise
	var responseCache cache.Cache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		defer redisCache.Close()
		responseCache = redisCache
	} else {
		responseCache = cache.NewInMemoryCache()
	}

	// Feature flags
	flags := features.NewManager()
	flags.Register(features.FeatureCacheEnabled, true, "cache recommendation responses")
	flags.Register(features.FeatureEventHooksEnabled, true, "publish in-process domain events")

	// Events
	eventManager := events.NewManager(flags.IsEnabled(features.FeatureEventHooksEnabled))
	defer eventManager.Shutdown()
	eventManager.Subscribe(events.EventRecommendationMade, func(ctx context.Context, e events.Event) error {
		if data, ok := e.Data.(events.RecommendationMadeData); ok {
			logger.Debug("recommendation event",
				zap.String("user_id", data.UserID),
				zap.String("method", data.Result.Name))
		}
		return nil
	})
	eventManager.PublishCatalogLoaded(context.Background(), len(cat.Offers()), len(cat.Warnings()))

	svc := service.NewServiceWithOptions(db, cat, eng, service.Options{
		Cache:    responseCache,
		CacheTTL: time.Duration(cfg.Redis.TTLSeconds) * time.Second,
		Events:   eventManager,
		Features: flags,
		Logger:   logger,
	})

	h := handler.NewHandlerWithOptions(svc, handler.NewHandlerOptions{
		MaxBodySize: cfg.Security.MaxRequestBodySize,
	})

	// Rate limiter
	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimit.Rate, time.Duration(cfg.RateLimit.Window)*time.Second)
		defer rateLimiter.Stop()
	}

	// Setup router
	r := chi.NewRouter()

	// Middleware (order matters)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	if rateLimiter != nil {
		r.Use(middleware.RateLimitMiddleware(rateLimiter))
	}
	if cfg.Tracing.Enabled {
		r.Use(middleware.TracingMiddleware())
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(cfg.Security.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Routes
	r.Group(h.Routes)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	logger.Info("starting server",
		zap.String("addr", addr),
		zap.String("database", cfg.Database.Path),
		zap.String("catalog_feed", cfg.Catalog.FeedPath),
		zap.Int("catalog_offers", len(cat.Offers())))

	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("error during shutdown", zap.Error(err))
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server failed", zap.Error(err))
	}
}
