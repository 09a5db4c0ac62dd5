package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/assessdex/assessdex/internal/config"
	dbRedis "github.com/assessdex/assessdex/internal/db/redis"
	"github.com/assessdex/assessdex/internal/domain"
	logpkg "github.com/assessdex/assessdex/internal/logger"
	"github.com/assessdex/assessdex/internal/metrics"
	"github.com/assessdex/assessdex/internal/repository/catalog"
	"github.com/assessdex/assessdex/internal/repository/embcache"
	"github.com/assessdex/assessdex/internal/repository/rescache"
	"github.com/assessdex/assessdex/internal/repository/vectorindex"
	"github.com/assessdex/assessdex/internal/transport/httpapi"
	openaiEmb "github.com/assessdex/assessdex/internal/transport/openai"
	extractuc "github.com/assessdex/assessdex/internal/usecase/extract"
	healthuc "github.com/assessdex/assessdex/internal/usecase/health"
	recommenduc "github.com/assessdex/assessdex/internal/usecase/recommend"
	"github.com/assessdex/assessdex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting assessdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_path", cfg.Catalog.Path),
		zap.String("embedding_model", cfg.Embedding.Model),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRecommendMetrics()

	// Catalog is loaded all-or-nothing before anything else.
	catalogStore, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	logger.Info("Catalog loaded", zap.Int("items", catalogStore.Len()))

	ctx := context.Background()

	// Optional Redis tier for the embedding cache.
	var redisStore *dbRedis.Store
	if len(cfg.Embedding.Cache.RedisAddrs) > 0 {
		redisStore, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Embedding.Cache.RedisAddrs,
			Password: cfg.Embedding.Cache.RedisPassword,
		})
		if err != nil {
			logger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer redisStore.Close()

		if err := redisStore.WaitForReady(ctx, 30*time.Second); err != nil {
			logger.Fatal("Redis not ready", zap.Error(err))
		}
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Embedding.Cache.RedisAddrs))
	}

	embedder := buildEmbedder(cfg, redisStore, logger)

	// Probe the provider before the expensive catalog embed.
	if err := domain.VerifyModel(ctx, embedder); err != nil {
		logger.Fatal("Embedding model unavailable", zap.Error(err))
	}

	// Build the index before accepting traffic. A failed first build is fatal:
	// there is nothing to serve without it.
	index := vectorindex.New(embedder, cfg.Embedding.BatchSize, logger)
	if err := index.Build(ctx, catalogStore.Items()); err != nil {
		logger.Fatal("Failed to build vector index", zap.Error(err))
	}
	logger.Info("Vector index built",
		zap.Int("items", index.Len()),
		zap.Uint64("generation", index.Generation()),
	)

	if len(cfg.Embedding.WarmupTerms) > 0 {
		if err := embedder.WarmUp(ctx, cfg.Embedding.WarmupTerms); err != nil {
			logger.Warn("Embedding warm-up failed", zap.Error(err))
		}
	}

	// Ranking engine
	extractor := extractuc.New(cfg.Ranking.TypeSynonyms, cfg.Ranking.SkillTerms)

	resultCache, err := rescache.New(cfg.Ranking.CacheCapacity)
	if err != nil {
		logger.Fatal("Failed to create result cache", zap.Error(err))
	}

	recommendSvc := recommenduc.New(index, extractor, resultCache, recommenduc.Params{
		Alpha:               cfg.Ranking.Alpha,
		OverfetchMultiplier: cfg.Ranking.OverfetchMultiplier,
		OverfetchFloor:      cfg.Ranking.OverfetchFloor,
	}, logger)

	// Health service. The redis tier is optional; pass a nil interface when
	// it is not configured (a typed nil pointer would not compare to nil).
	var storePinger healthuc.StorePinger
	if redisStore != nil {
		storePinger = redisStore
	}
	healthSvc := healthuc.New(index, embedder, storePinger)

	// HTTP server
	server := httpapi.NewServer(recommendSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the embedder chain: OpenAI provider -> two-tier cache.
func buildEmbedder(cfg config.Config, redisStore *dbRedis.Store, logger *zap.Logger) *embcache.CachedEmbedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	var cached *embcache.CachedEmbedder
	var err error
	if redisStore != nil {
		cached, err = embcache.New(base, cfg.Embedding.Cache.Capacity, redisStore, metrics.EmbeddingCacheTotal, logger)
	} else {
		cached, err = embcache.New(base, cfg.Embedding.Cache.Capacity, nil, metrics.EmbeddingCacheTotal, logger)
	}
	if err != nil {
		logger.Fatal("Failed to create embedding cache", zap.Error(err))
	}
	if ttl := cfg.Embedding.Cache.RedisTTLSec; ttl > 0 {
		cached.WithTTL(time.Duration(ttl) * time.Second)
	}
	return cached
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
