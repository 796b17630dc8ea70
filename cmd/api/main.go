//	@title			Upix API
//	@version		1.0
//	@description	Image upload, rendition and CDN proxy service.
//
//	@host		localhost:8080
//	@BasePath	/

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/upix/service/internal/config"
	"github.com/upix/service/internal/db"
	appMiddleware "github.com/upix/service/internal/middleware"
	"github.com/upix/service/internal/proxy"
	"github.com/upix/service/internal/stats"
	"github.com/upix/service/internal/storage"
	"github.com/upix/service/internal/upload"

	_ "github.com/upix/service/docs/swagger"
)

func main() {
	cfg := config.Load()

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	store, err := storage.NewMinioStorage(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageBucket,
		cfg.CDNBaseURL,
		cfg.StorageUseSSL,
	)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	// Wire dependencies: stores → service → handlers
	statsStore := stats.NewPostgresStore(pool)
	uploadSvc := upload.NewService(store, statsStore)
	uploadHandler := upload.NewHandler(uploadSvc)
	proxyHandler := proxy.NewHandler(store, proxy.DefaultContentTypes())

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Ingestion and deletion
	r.Post("/upload", uploadHandler.Upload)
	r.Options("/upload", uploadHandler.Options)
	r.Delete("/images", uploadHandler.Delete)
	r.Options("/images", uploadHandler.Options)

	// Everything else is an object path served read-through from storage
	r.Get("/*", proxyHandler.Serve)

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
		log.Printf("server listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
		log.Printf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}
