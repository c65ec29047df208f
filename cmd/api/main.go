package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"booklib/internal/catalog"
	"booklib/internal/httpx"
	"booklib/internal/policy"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")

	serverAddress := getEnv("APP_ADDR", ":8080")
	databaseDSN := os.Getenv("DB_DSN")
	jwtSecret := mustGetEnv("JWT_SECRET")
	nonceSecret := getEnv("NONCE_SECRET", jwtSecret)
	rateLimitRPS := getEnvFloat("RATE_LIMIT_RPS", 10)
	corsOrigins := strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ",")

	var repo catalog.Repository
	var dbPool *pgxpool.Pool
	if databaseDSN == "" {
		log.Println("DB_DSN not set, using in-memory repository")
		repo = catalog.NewMemoryRepo()
	} else {
		dbPool = mustOpenDB(databaseDSN)
		defer dbPool.Close()
		repo = catalog.NewPostgresRepo(dbPool, 3*time.Second)
	}

	service := catalog.NewService(repo, policy.NewRolePolicy())
	restHandler := catalog.NewHTTPHandler(service)
	formHandler := catalog.NewFormHandler(service, nonceSecret)

	requireAuth := httpx.AuthMiddleware(jwtSecret)

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if dbPool != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := dbPool.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	restHandler.Register(router, requireAuth)

	router.Handle("POST /admin-ajax", formHandler)
	router.Handle("GET /admin-ajax/nonce", requireAuth(http.HandlerFunc(formHandler.Nonce)))

	rateLimit := httpx.NewRateLimitMiddleware(rateLimitRPS, int(rateLimitRPS)*2)
	handler := httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.SecurityHeadersMiddleware,
		httpx.CORSMiddleware(corsOrigins),
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		rateLimit.Middleware,
		httpx.RequestSizeLimitMiddleware(1<<20),
	)

	httpServer := &http.Server{
		Addr:         serverAddress,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting server on %s", serverAddress)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func mustGetEnv(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	log.Fatalf("missing required environment variable: %s", key)
	return ""
}

func mustOpenDB(dsn string) *pgxpool.Pool {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("cannot create db pool: %v", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.Fatalf("cannot ping database (%s): %v", redactDSN(dsn), err)
	}
	log.Println("database connection OK")
	return pool
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
