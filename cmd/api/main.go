//	@title			Image Storage Service API
//	@version		1.0
//	@description	CRUD microservice for binary image assets backed by PostgreSQL, MinIO, and Redis.
//
//	@host		localhost:8080
//	@BasePath	/

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/imagevault/service/internal/cache"
	"github.com/imagevault/service/internal/config"
	"github.com/imagevault/service/internal/db"
	"github.com/imagevault/service/internal/health"
	"github.com/imagevault/service/internal/image"
	"github.com/imagevault/service/internal/logger"
	appMiddleware "github.com/imagevault/service/internal/middleware"
	"github.com/imagevault/service/internal/response"
	"github.com/imagevault/service/internal/storage"

	_ "github.com/imagevault/service/docs/swagger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.IsProduction())
	if err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	pool, err := db.Connect(startupCtx, cfg.DatabaseURL(), log)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL(), log); err != nil {
		log.Fatal("database migration failed", zap.Error(err))
	}

	store, err := storage.NewMinioStorage(startupCtx,
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioBucket,
		cfg.MinioUseSSL,
		log,
	)
	if err != nil {
		log.Fatal("object storage init failed", zap.Error(err))
	}

	kv := cache.NewRedisCache(cfg.RedisAddr())
	defer kv.Close() //nolint:errcheck

	// Wire dependencies: repository → service → handler
	imageRepo := image.NewRepository(pool)
	imageSvc := image.NewService(imageRepo, store, kv, log, cfg.BackendTimeout)
	imageHandler := image.NewHandler(imageSvc, log, cfg.MaxUploadSize)

	healthHandler := health.NewHandler(log,
		health.PingFunc(pool.Ping),
		kv,
		store,
	)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(log))
	r.Use(appMiddleware.Metrics)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler.Check)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Service descriptor
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		response.OK(w, map[string]interface{}{
			"message": "Image Storage Service",
			"version": "1.0.0",
			"endpoints": map[string]string{
				"health":   "/health",
				"metrics":  "/metrics",
				"images":   "/images",
				"upload":   "/upload",
				"download": "/download/{id}",
			},
		})
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Get("/images", imageHandler.List)
	r.Post("/upload", imageHandler.Upload)
	r.Get("/download/{id}", imageHandler.Download)
	r.Delete("/images/{id}", imageHandler.Delete)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("server listening",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	log.Info("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("forced shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
